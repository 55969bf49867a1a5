package prettyprinter

import (
	"strings"
	"testing"

	"github.com/funvibe/weave/internal/diagnostics"
	"github.com/funvibe/weave/internal/parser"
)

// TestDenseRoundTrip checks parse(print(t)) ≡ t through a second print:
// printing a parsed term, reparsing it, and printing again must be a fixed
// point.
func TestDenseRoundTrip(t *testing.T) {
	sources := []string{
		"main = λx x",
		"main = λ* 0",
		"main = λf λx (f x x)",
		"main = λ$a λx ($a x)",
		"main = let x = (λy y); (x, x)",
		"main = let (a, b) = (1, 2); (+ a b)",
		"main = let #go{p q} = λz z; (p q)",
		"main = use k = 42; k",
		"main = (#pair(λa a λb b), #pair{1 2})",
		"main = [1, 2, 3]",
		"main = \"hi\\n\"",
		"main = #7",
		"main = (== 0xff 255)",
		"data Opt = (Some val) | None\nopt = λx match x { Some: x.val; None: 0 }",
		"swt = λn switch n { 0: 1; _: (* n-1 2) }",
		"swt = λn switch k = n with w { 0: w; _: (+ k-1 w) }",
		"m = λx match y = x with a, b { Some: (a y.val); None: b }",
	}
	for _, src := range sources {
		diags := diagnostics.NewCollector()
		book := parser.ParseBook(src, diags)
		if diags.HasErrors() {
			t.Errorf("source %q did not parse: %v", src, diags.All())
			continue
		}
		printed := PrintBook(book)

		diags2 := diagnostics.NewCollector()
		book2 := parser.ParseBook(printed, diags2)
		if diags2.HasErrors() {
			t.Errorf("printed form %q did not reparse: %v", printed, diags2.All())
			continue
		}
		printed2 := PrintBook(book2)
		if printed != printed2 {
			t.Errorf("round trip unstable:\n first: %s\nsecond: %s", printed, printed2)
		}
	}
}

// TestPrintDeterministicOrder checks that books print in insertion order.
func TestPrintDeterministicOrder(t *testing.T) {
	src := "b = 1\na = 2\nc = 3\n"
	diags := diagnostics.NewCollector()
	book := parser.ParseBook(src, diags)
	printed := PrintBook(book)

	bPos := strings.Index(printed, "b = 1")
	aPos := strings.Index(printed, "a = 2")
	cPos := strings.Index(printed, "c = 3")
	if bPos == -1 || aPos == -1 || cPos == -1 || !(bPos < aPos && aPos < cPos) {
		t.Errorf("definitions printed out of insertion order: %q", printed)
	}
}

func TestPrintNamelessAndUnscoped(t *testing.T) {
	diags := diagnostics.NewCollector()
	book := parser.ParseBook("main = λ* λ$c ($c *)\n", diags)
	printed := PrintBook(book)
	for _, want := range []string{"λ*", "λ$c", "$c", "*"} {
		if !strings.Contains(printed, want) {
			t.Errorf("printed form %q misses %q", printed, want)
		}
	}
}

func TestIndentedMatch(t *testing.T) {
	diags := diagnostics.NewCollector()
	book := parser.ParseBook("data Opt = (Some v) | None\nf = λx match x { Some: 1; None: 0 }\n", diags)
	printed := NewIndented().Book(book).String()
	if !strings.Contains(printed, "\n  Some: 1;\n") {
		t.Errorf("indented match arms not on their own lines:\n%s", printed)
	}
}
