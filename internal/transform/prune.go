package transform

import (
	"github.com/funvibe/weave/internal/diagnostics"
	"github.com/funvibe/weave/internal/term"
)

// PruneUnusedDefinitions removes definitions unreachable from the
// entrypoint through Ref edges, warning about each non-builtin one.
// Builtin definitions, which include the generated constructor definitions,
// disappear silently; floated combinators carry their parent definition's
// builtin flag and are warned about when that flag is off. Without an
// entrypoint the pass does nothing: every definition is a potential root.
func PruneUnusedDefinitions(book *term.Book, diags *diagnostics.Collector) {
	if book.Entrypoint == "" || !book.HasDef(book.Entrypoint) {
		return
	}

	reachable := make(map[term.Name]bool)
	visit(book, book.Entrypoint, reachable)

	for _, defName := range append([]term.Name(nil), book.DefNames()...) {
		if reachable[defName] {
			continue
		}
		if !book.Def(defName).Builtin {
			diags.AddRuleWarning(diagnostics.UnusedDefinition, string(defName),
				"definition '%s' is never used", defName)
		}
		book.RemoveDef(defName)
	}
}

func visit(book *term.Book, defName term.Name, reachable map[term.Name]bool) {
	if reachable[defName] {
		return
	}
	reachable[defName] = true
	def := book.Def(defName)
	if def == nil {
		return
	}
	for _, rule := range def.Rules {
		visitRefs(rule.Body, book, reachable)
	}
}

func visitRefs(t term.Term, book *term.Book, reachable map[term.Name]bool) {
	term.MaybeGrow(func() struct{} {
		if ref, isRef := t.(*term.Ref); isRef {
			visit(book, ref.Nam, reachable)
			return struct{}{}
		}
		tt := t
		for _, child := range term.Children(&tt) {
			visitRefs(*child, book, reachable)
		}
		return struct{}{}
	})
}
