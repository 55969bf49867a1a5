package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/funvibe/weave/internal/backend"
	"github.com/funvibe/weave/internal/config"
	"github.com/funvibe/weave/internal/diagnostics"
	"github.com/funvibe/weave/internal/parser"
	"github.com/funvibe/weave/internal/pipeline"
	"github.com/funvibe/weave/internal/prettyprinter"
)

const (
	colorReset  = "\x1b[0m"
	colorYellow = "\x1b[33m"
	colorRed    = "\x1b[31m"
)

var useColor = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

func main() {
	root := &cobra.Command{
		Use:           "weave",
		Short:         "Weave compiles a small functional language to interaction nets",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(checkCmd(), compileCmd(), fmtCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE",
		Short: "Run the checks and transformations without requiring an entrypoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := run(args[0], false)
			if err != nil {
				return err
			}
			return report(ctx)
		},
	}
}

func compileCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "compile FILE",
		Short: "Compile a program to its interaction nets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := run(args[0], true)
			if err != nil {
				return err
			}
			if reportErr := report(ctx); reportErr != nil {
				return reportErr
			}
			printNetSummary(ctx, verbose)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print per-definition node counts")
	return cmd
}

func fmtCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fmt FILE",
		Short: "Parse a file and print it back formatted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			diags := diagnostics.NewCollector()
			book := parser.ParseBook(string(source), diags)
			printDiags(diags)
			if diags.HasErrors() {
				_, errors := diags.Count()
				return fmt.Errorf("%s: %d parse error(s)", args[0], errors)
			}
			fmt.Print(prettyprinter.NewIndented().Book(book).String())
			return nil
		},
	}
}

func run(path string, requireEntrypoint bool) (*pipeline.Context, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	project, err := config.LoadProject(path)
	if err != nil {
		return nil, err
	}
	return backend.Compile(path, string(source), project, requireEntrypoint), nil
}

// report prints the accumulated diagnostics, warnings first and errors
// last, and fails iff any error was present.
func report(ctx *pipeline.Context) error {
	printDiags(ctx.Diags)
	if ctx.Diags.HasErrors() {
		warnings, errors := ctx.Diags.Count()
		return fmt.Errorf("%s: %d error(s), %d warning(s)", ctx.FilePath, errors, warnings)
	}
	return nil
}

func printDiags(diags *diagnostics.Collector) {
	for _, d := range diags.Sorted() {
		if !useColor {
			fmt.Fprintln(os.Stderr, d.String())
			continue
		}
		color := colorYellow
		if d.Severity == diagnostics.Error {
			color = colorRed
		}
		fmt.Fprintf(os.Stderr, "%s%s%s\n", color, d.String(), colorReset)
	}
}

func printNetSummary(ctx *pipeline.Context, verbose bool) {
	totalWords := 0
	for _, dn := range ctx.Net.Nets {
		totalWords += len(dn.Net.Nodes)
		if verbose {
			fmt.Printf("%-24s %5d nodes\n", dn.Name, len(dn.Net.Nodes)/4)
		}
	}
	fmt.Printf("compiled %d definitions (%d net words), entry '%s'\n",
		len(ctx.Net.Nets), totalWords, ctx.Net.Entry)
}
