// Package backend assembles the full compile pipeline and carries the
// final stage that lowers the transformed book into interaction nets.
package backend

import (
	"github.com/funvibe/weave/internal/check"
	"github.com/funvibe/weave/internal/config"
	"github.com/funvibe/weave/internal/diagnostics"
	"github.com/funvibe/weave/internal/inet"
	"github.com/funvibe/weave/internal/parser"
	"github.com/funvibe/weave/internal/pipeline"
	"github.com/funvibe/weave/internal/transform"
)

// NetProcessor encodes every definition body into its net.
type NetProcessor struct{}

func (NetProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.RequireEntrypoint && ctx.Book.Entrypoint == "" {
		ctx.Diags.AddError(diagnostics.MissingEntrypoint,
			"no entrypoint: define 'main' or name one in %s", config.ProjectFileName)
		return ctx
	}
	ctx.Net = inet.EncodeBook(ctx.Book, ctx.Diags)
	return ctx
}

// NewPipeline builds the standard stage list: parse, prepare (builtins,
// constructor encoding, reference resolution, entrypoint), scope checks,
// match elaboration, match/literal lowering and linearization, combinator
// floating and pruning, net encoding. The pipeline gates on errors between
// stages.
func NewPipeline() *pipeline.Pipeline {
	return pipeline.New(
		parser.Processor{},
		transform.PrepareProcessor{},
		check.Processor{},
		transform.MatchProcessor{},
		transform.LowerProcessor{},
		transform.FloatProcessor{},
		NetProcessor{},
	)
}

// Compile runs the whole pipeline over one source text.
func Compile(filePath, source string, project *config.Project, requireEntrypoint bool) *pipeline.Context {
	ctx := pipeline.NewContext(filePath, source, project)
	ctx.RequireEntrypoint = requireEntrypoint
	return NewPipeline().Run(ctx)
}
