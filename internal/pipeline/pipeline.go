// Package pipeline threads the shared compile context through an ordered
// list of processing stages.
package pipeline

import (
	"github.com/funvibe/weave/internal/config"
	"github.com/funvibe/weave/internal/diagnostics"
	"github.com/funvibe/weave/internal/inet"
	"github.com/funvibe/weave/internal/term"
)

// Context is the state owned by one compile call. Stages read and mutate it
// in place; all diagnostics go through Diags.
type Context struct {
	FilePath string
	Source   string

	Project *config.Project
	Book    *term.Book
	Net     *inet.Compiled
	Diags   *diagnostics.Collector

	// RequireEntrypoint makes the backend fail when no program root can be
	// resolved. Checking a library book leaves it off.
	RequireEntrypoint bool
}

func NewContext(filePath, source string, project *config.Project) *Context {
	diags := diagnostics.NewCollector()
	if project != nil {
		diags.DenyWarnings = project.DenyWarnings
		muted := make(map[diagnostics.Kind]bool)
		for kind, enabled := range project.Warnings {
			if !enabled {
				muted[diagnostics.Kind(kind)] = true
			}
		}
		diags.MutedWarnings = muted
	}
	return &Context{
		FilePath: filePath,
		Source:   source,
		Project:  project,
		Diags:    diags,
	}
}

// Processor is one stage of the pipeline.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the stages in order with a fatal gate between them: each
// stage runs to completion and collects every diagnostic it finds, but once
// a stage has recorded an error-severity diagnostic the remaining stages
// are skipped. Warnings never stop the pipeline.
func (p *Pipeline) Run(initialCtx *Context) *Context {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx.Diags.StartPass()
		ctx = processor.Process(ctx)
		if ctx.Diags.ErrorsSincePass() {
			break
		}
	}
	return ctx
}
