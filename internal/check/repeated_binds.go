package check

import (
	"github.com/funvibe/weave/internal/diagnostics"
	"github.com/funvibe/weave/internal/term"
)

// CheckRepeatedBinds warns when a rule binds the same name more than once:
// twice across the rule's patterns, or twice within a single tuple or
// duplication binder list. Shadowing across nested scopes is fine; binding
// the same name twice in one binder group almost always loses a value.
func CheckRepeatedBinds(book *term.Book, diags *diagnostics.Collector) {
	for _, defName := range book.DefNames() {
		def := book.Def(defName)
		if def.Builtin {
			continue
		}
		for _, rule := range def.Rules {
			seen := make(map[term.Name]bool)
			for _, pat := range rule.Pats {
				for _, bind := range patternBinds(pat) {
					if seen[bind] {
						diags.AddRuleWarning(diagnostics.RepeatedBind, string(def.Name),
							"repeated bind '%s' in rule pattern", bind)
					}
					seen[bind] = true
				}
			}
			checkBinderLists(rule.Body, def.Name, diags)
		}
	}
}

func checkBinderLists(t term.Term, rule term.Name, diags *diagnostics.Collector) {
	term.MaybeGrow(func() struct{} {
		switch s := t.(type) {
		case *term.Ltp:
			reportDuplicates(s.Bnd, rule, "tuple binder", diags)
		case *term.Dup:
			reportDuplicates(s.Bnd, rule, "duplication binder", diags)
		}
		tt := t
		for _, child := range term.Children(&tt) {
			checkBinderLists(*child, rule, diags)
		}
		return struct{}{}
	})
}

func reportDuplicates(binds []term.Name, rule term.Name, where string, diags *diagnostics.Collector) {
	seen := make(map[term.Name]bool)
	for _, b := range binds {
		if b == "" {
			continue
		}
		if seen[b] {
			diags.AddRuleWarning(diagnostics.RepeatedBind, string(rule),
				"repeated bind '%s' in %s list", b, where)
		}
		seen[b] = true
	}
}
