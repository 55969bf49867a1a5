// Package check implements the static checks that run before any term
// rewriting: the scope analyzer for ordinary variables and unscoped
// channels, and the repeated-bind check.
package check

import (
	"sort"

	"github.com/funvibe/weave/internal/diagnostics"
	"github.com/funvibe/weave/internal/term"
)

// channelState tracks the declare/use sides of one unscoped channel name.
type channelState struct {
	declared bool
	used     bool
}

// CheckUnboundVars verifies that every ordinary variable has a lexical
// binder on its path to the root, and that every unscoped use site has a
// matching declaration in the same definition. All failures in a rule are
// reported; the walk never stops at the first error.
//
// Precondition: references to definitions and constructors have been
// resolved to Ref terms.
func CheckUnboundVars(book *term.Book, diags *diagnostics.Collector) {
	for _, defName := range book.DefNames() {
		def := book.Def(defName)
		for _, rule := range def.Rules {
			scope := make(map[term.Name]int)
			for _, pat := range rule.Pats {
				for _, bind := range patternBinds(pat) {
					scope[bind]++
				}
			}
			globals := make(map[term.Name]*channelState)
			checkUses(rule.Body, book, scope, globals, def.Name, diags)

			for _, nam := range channelNames(globals) {
				state := globals[nam]
				if state.used && !state.declared {
					diags.AddRuleError(diagnostics.UnboundUnscopedVariable, string(def.Name),
						"unbound unscoped variable '$%s'", nam)
				}
			}
		}
	}
}

// checkUses walks a rule body with a counting multiset of the names in
// scope. Channel declarations and uses go to the flat globals map; a
// declared-but-unused channel is allowed here (it is a later-stage concern).
func checkUses(t term.Term, book *term.Book, scope map[term.Name]int,
	globals map[term.Name]*channelState, rule term.Name, diags *diagnostics.Collector) {
	term.MaybeGrow(func() struct{} {
		switch s := t.(type) {
		case *term.Var:
			if scope[s.Nam] == 0 {
				diags.AddRuleError(diagnostics.UnboundVariable, string(rule),
					"unbound variable '%s'", s.Nam)
			}
		case *term.Lam:
			withScope(scope, []term.Name{s.Nam}, func() {
				checkUses(s.Bod, book, scope, globals, rule, diags)
			})
		case *term.Chn:
			channel(globals, s.Nam).declared = true
			checkUses(s.Bod, book, scope, globals, rule, diags)
		case *term.Lnk:
			channel(globals, s.Nam).used = true
		case *term.Let:
			checkUses(s.Val, book, scope, globals, rule, diags)
			withScope(scope, []term.Name{s.Nam}, func() {
				checkUses(s.Nxt, book, scope, globals, rule, diags)
			})
		case *term.Use:
			checkUses(s.Val, book, scope, globals, rule, diags)
			withScope(scope, []term.Name{s.Nam}, func() {
				checkUses(s.Nxt, book, scope, globals, rule, diags)
			})
		case *term.Ltp:
			checkUses(s.Val, book, scope, globals, rule, diags)
			withScope(scope, s.Bnd, func() {
				checkUses(s.Nxt, book, scope, globals, rule, diags)
			})
		case *term.Dup:
			checkUses(s.Val, book, scope, globals, rule, diags)
			withScope(scope, s.Bnd, func() {
				checkUses(s.Nxt, book, scope, globals, rule, diags)
			})
		case *term.Mat:
			checkUses(s.Arg, book, scope, globals, rule, diags)
			checkWith(s.With, scope, rule, diags)
			bnd := s.Bnd
			if bnd == "" {
				bnd = term.MatchedVar
			}
			for i := range s.Arms {
				arm := &s.Arms[i]
				withScope(scope, armBinds(book, bnd, arm), func() {
					checkUses(arm.Bod, book, scope, globals, rule, diags)
				})
			}
		case *term.Swt:
			checkUses(s.Arg, book, scope, globals, rule, diags)
			checkWith(s.With, scope, rule, diags)
			for i, arm := range s.Arms {
				if i == len(s.Arms)-1 {
					withScope(scope, []term.Name{s.Pred}, func() {
						checkUses(arm, book, scope, globals, rule, diags)
					})
				} else {
					checkUses(arm, book, scope, globals, rule, diags)
				}
			}
		default:
			tt := t
			for _, child := range term.Children(&tt) {
				checkUses(*child, book, scope, globals, rule, diags)
			}
		}
		return struct{}{}
	})
}

func checkWith(with []term.Name, scope map[term.Name]int, rule term.Name, diags *diagnostics.Collector) {
	for _, w := range with {
		if scope[w] == 0 {
			diags.AddRuleError(diagnostics.UnboundVariable, string(rule),
				"unbound variable '%s'", w)
		}
	}
}

// armBinds returns the names an arm brings into scope. A constructor arm
// binds its field binders: the synthesized ones when the elaborator has not
// run yet, or the stored ones afterwards. A variable arm binds its own name.
func armBinds(book *term.Book, bnd term.Name, arm *term.MatchArm) []term.Name {
	if len(arm.Fld) > 0 {
		return arm.Fld
	}
	if arm.Ctr == "" {
		return nil
	}
	if adt := book.CtrAdt(arm.Ctr); adt != nil {
		ctr := adt.Ctr(arm.Ctr)
		binds := make([]term.Name, len(ctr.Fields))
		for i, f := range ctr.Fields {
			binds[i] = term.MatchFieldName(bnd, f)
		}
		return binds
	}
	return []term.Name{arm.Ctr}
}

func withScope(scope map[term.Name]int, binders []term.Name, f func()) {
	for _, b := range binders {
		if b != "" {
			scope[b]++
		}
	}
	f()
	for _, b := range binders {
		if b != "" {
			scope[b]--
		}
	}
}

func channel(globals map[term.Name]*channelState, nam term.Name) *channelState {
	if state, ok := globals[nam]; ok {
		return state
	}
	state := &channelState{}
	globals[nam] = state
	return state
}

func channelNames(globals map[term.Name]*channelState) []term.Name {
	names := make([]term.Name, 0, len(globals))
	for nam := range globals {
		names = append(names, nam)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func patternBinds(pat term.Pattern) []term.Name {
	switch s := pat.(type) {
	case *term.VarPat:
		if s.Nam == "" {
			return nil
		}
		return []term.Name{s.Nam}
	case *term.CtrPat:
		var out []term.Name
		for _, f := range s.Fld {
			out = append(out, patternBinds(f)...)
		}
		return out
	}
	return nil
}
