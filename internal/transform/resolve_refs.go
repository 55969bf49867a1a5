// Package transform contains the term rewriting passes of the compile
// pipeline: reference resolution, the rule-to-match conversion, the match
// elaborator, the match/ADT encoding, variable linearization, the
// combinator floater and unused-definition pruning.
package transform

import (
	"github.com/funvibe/weave/internal/term"
)

// ResolveRefs rewrites every Var whose name is not lexically bound but names
// a top-level definition (or a constructor, whose generated definition
// already exists by the time this runs) into a Ref. Vars that are neither
// bound nor known stay put for the scope analyzer to report.
func ResolveRefs(book *term.Book) {
	for _, defName := range book.DefNames() {
		def := book.Def(defName)
		for _, rule := range def.Rules {
			scope := make(map[term.Name]int)
			for _, pat := range rule.Pats {
				for _, bind := range PatternBinds(pat) {
					scope[bind]++
				}
			}
			resolveRefs(&rule.Body, book, scope)
		}
	}
}

func resolveRefs(t *term.Term, book *term.Book, scope map[term.Name]int) {
	term.MaybeGrow(func() struct{} {
		switch s := (*t).(type) {
		case *term.Var:
			if scope[s.Nam] == 0 && book.HasDef(s.Nam) {
				*t = &term.Ref{Nam: s.Nam}
			}
		case *term.Lam:
			withScope(scope, []term.Name{s.Nam}, func() { resolveRefs(&s.Bod, book, scope) })
		case *term.Chn:
			resolveRefs(&s.Bod, book, scope)
		case *term.Let:
			resolveRefs(&s.Val, book, scope)
			withScope(scope, []term.Name{s.Nam}, func() { resolveRefs(&s.Nxt, book, scope) })
		case *term.Use:
			resolveRefs(&s.Val, book, scope)
			withScope(scope, []term.Name{s.Nam}, func() { resolveRefs(&s.Nxt, book, scope) })
		case *term.Ltp:
			resolveRefs(&s.Val, book, scope)
			withScope(scope, s.Bnd, func() { resolveRefs(&s.Nxt, book, scope) })
		case *term.Dup:
			resolveRefs(&s.Val, book, scope)
			withScope(scope, s.Bnd, func() { resolveRefs(&s.Nxt, book, scope) })
		case *term.Mat:
			resolveRefs(&s.Arg, book, scope)
			bnd := s.Bnd
			if bnd == "" {
				bnd = term.MatchedVar
			}
			for i := range s.Arms {
				arm := &s.Arms[i]
				withScope(scope, matchArmBinds(book, bnd, arm), func() {
					resolveRefs(&arm.Bod, book, scope)
				})
			}
		case *term.Swt:
			resolveRefs(&s.Arg, book, scope)
			for i := range s.Arms {
				if i == len(s.Arms)-1 {
					withScope(scope, []term.Name{s.Pred}, func() { resolveRefs(&s.Arms[i], book, scope) })
				} else {
					resolveRefs(&s.Arms[i], book, scope)
				}
			}
		default:
			for _, child := range term.Children(t) {
				resolveRefs(child, book, scope)
			}
		}
		return struct{}{}
	})
}

// matchArmBinds mirrors the scope analyzer's view of what an arm binds: the
// stored field binders, the synthesized field binders of a constructor arm,
// or the variable-arm name.
func matchArmBinds(book *term.Book, bnd term.Name, arm *term.MatchArm) []term.Name {
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

// PatternBinds lists the names a rule pattern binds, left to right.
func PatternBinds(pat term.Pattern) []term.Name {
	switch s := pat.(type) {
	case *term.VarPat:
		if s.Nam == "" {
			return nil
		}
		return []term.Name{s.Nam}
	case *term.CtrPat:
		var out []term.Name
		for _, f := range s.Fld {
			out = append(out, PatternBinds(f)...)
		}
		return out
	}
	return nil
}
