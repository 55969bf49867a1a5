package check

import (
	"github.com/funvibe/weave/internal/pipeline"
)

// Processor runs the scope analyzer and the repeated-bind check in one
// pipeline stage. Both walk every rule to the end; nothing short-circuits.
type Processor struct{}

func (Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	CheckUnboundVars(ctx.Book, ctx.Diags)
	CheckRepeatedBinds(ctx.Book, ctx.Diags)
	return ctx
}
