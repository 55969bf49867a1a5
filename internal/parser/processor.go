package parser

import (
	"github.com/funvibe/weave/internal/pipeline"
)

// Processor is the pipeline stage wrapping the parser.
type Processor struct{}

func (Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	ctx.Book = ParseBook(ctx.Source, ctx.Diags)
	return ctx
}
