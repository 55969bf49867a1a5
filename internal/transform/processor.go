package transform

import (
	"github.com/funvibe/weave/internal/config"
	"github.com/funvibe/weave/internal/diagnostics"
	"github.com/funvibe/weave/internal/pipeline"
	"github.com/funvibe/weave/internal/term"
)

// PrepareProcessor runs right after parsing: it installs the built-in data
// types, generates the constructor definitions, resolves references and
// picks the entrypoint.
type PrepareProcessor struct{}

func (PrepareProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	AddBuiltins(ctx.Book)
	EncodeAdts(ctx.Book)
	ResolveRefs(ctx.Book)
	resolveEntrypoint(ctx)
	return ctx
}

func resolveEntrypoint(ctx *pipeline.Context) {
	if ctx.Project != nil && ctx.Project.Entrypoint != "" {
		name := term.Name(ctx.Project.Entrypoint)
		if !ctx.Book.HasDef(name) {
			ctx.Diags.AddError(diagnostics.MissingEntrypoint,
				"entrypoint '%s' from %s is not defined", name, config.ProjectFileName)
			return
		}
		ctx.Book.Entrypoint = name
		return
	}
	for _, candidate := range config.EntrypointNames {
		if ctx.Book.HasDef(term.Name(candidate)) {
			ctx.Book.Entrypoint = term.Name(candidate)
			return
		}
	}
}

// MatchProcessor collapses patterned rules into matches and elaborates
// every match and switch to canonical form.
type MatchProcessor struct{}

func (MatchProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	RulesToMatches(ctx.Book, ctx.Diags)
	FixMatchTerms(ctx.Book, ctx.Diags)
	return ctx
}

// LowerProcessor lowers canonical matches, list/string literals and
// multi-arm switches onto core forms, then linearizes variables for the
// net encoder.
type LowerProcessor struct{}

func (LowerProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	EncodeMatches(ctx.Book, ctx.Diags)
	LinearizeVars(ctx.Book)
	return ctx
}

// FloatProcessor extracts unsafe combinators and prunes definitions the
// entrypoint cannot reach.
type FloatProcessor struct{}

func (FloatProcessor) Process(ctx *pipeline.Context) *pipeline.Context {
	FloatCombinators(ctx.Book)
	PruneUnusedDefinitions(ctx.Book, ctx.Diags)
	return ctx
}
