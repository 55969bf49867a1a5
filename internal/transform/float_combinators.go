package transform

import (
	"github.com/funvibe/weave/internal/term"
)

// FloatCombinators extracts unsafe-to-duplicate subterms into new top-level
// definitions. The interaction-net runtime freely copies Ref nodes but not
// arbitrary subgraphs, so lifting closed unsafe subterms behind a Ref makes
// duplication correct and cheap.
//
// The floating algorithm follows these rules:
//   - Recursively float every child term, visiting application spines
//     argument by argument.
//   - Extract a child if it is a combinator (closed, balanced unscoped
//     channels, not itself a bare Ref) and is not a safe term.
//
// The entrypoint definition is skipped so the program root stays
// identifiable. Floated definitions are named "<def>$C<n>" with a counter
// reset per definition, and merged into the book after all definitions were
// processed. Safety lookups go against a snapshot of the pre-float bodies.
func FloatCombinators(book *term.Book) {
	snapshot := make(map[term.Name]term.Term, len(book.DefNames()))
	for _, defName := range book.DefNames() {
		snapshot[defName] = book.Def(defName).Rule0().Body
	}

	var combinators []*term.Definition
	for _, defName := range book.DefNames() {
		if book.Entrypoint != "" && book.Entrypoint == defName {
			continue
		}
		def := book.Def(defName)
		fl := &floater{
			book:    snapshot,
			defName: defName,
			builtin: def.Builtin,
			seen:    make(map[term.Name]bool),
			floated: &combinators,
		}
		fl.floatTerm(&def.Rule0().Body)
	}

	for _, comb := range combinators {
		book.AddDef(comb)
	}
}

type floater struct {
	book    map[term.Name]term.Term
	defName term.Name
	builtin bool
	nameGen int
	seen    map[term.Name]bool
	floated *[]*term.Definition
}

func (f *floater) floatTerm(t *term.Term) {
	term.MaybeGrow(func() struct{} {
		for _, child := range term.FloatChildren(t) {
			f.floatTerm(child)

			if isCombinator(*child) && !f.isSafe(*child) {
				f.extract(child)
			}
		}
		return struct{}{}
	})
}

// extract swaps the term with a fresh Ref and records the new definition.
func (f *floater) extract(t *term.Term) {
	combName := term.CombinatorName(f.defName, f.nameGen)
	f.nameGen++

	extracted := *t
	*t = &term.Ref{Nam: combName}

	*f.floated = append(*f.floated, &term.Definition{
		Name:    combName,
		Rules:   []*term.Rule{{Body: extracted}},
		Builtin: f.builtin,
	})
}

// isCombinator reports whether the term is closed, has a balanced unscoped
// channel set, and is not itself a bare Ref.
func isCombinator(t term.Term) bool {
	if _, isRef := t.(*term.Ref); isRef {
		return false
	}
	if len(term.FreeVars(t)) != 0 {
		return false
	}
	return !hasUnscopedDiff(t)
}

// hasUnscopedDiff reports whether the term declares a channel it does not
// use, or uses one it does not declare.
func hasUnscopedDiff(t term.Term) bool {
	declared, used := term.UnscopedVars(t)
	for nam, n := range declared {
		if used[nam] != n {
			return true
		}
	}
	for nam, n := range used {
		if declared[nam] != n {
			return true
		}
	}
	return false
}

// isSafe classifies the terms the runtime may duplicate without a Ref
// indirection:
//   - a number or an eraser;
//   - a tuple or superposition of safe elements;
//   - a safe lambda, e.g. a nullary constructor or a lambda with safe body;
//   - a reference whose referent's body is safe.
//
// The seen set breaks cycles across Ref edges: a reference observed twice on
// the current safety path is classified unsafe.
func (f *floater) isSafe(t term.Term) bool {
	return term.MaybeGrow(func() bool {
		switch s := t.(type) {
		case *term.Num, *term.Era:
			return true
		case *term.Tup:
			return f.allSafe(s.Els)
		case *term.Sup:
			return f.allSafe(s.Els)
		case *term.Lam:
			return f.isSafeLambda(t)
		case *term.Ref:
			if f.seen[s.Nam] {
				return false
			}
			f.seen[s.Nam] = true
			defer delete(f.seen, s.Nam)
			body, defined := f.book[s.Nam]
			if !defined {
				return false
			}
			return f.isSafe(body)
		default:
			return false
		}
	})
}

func (f *floater) allSafe(els []term.Term) bool {
	for _, el := range els {
		if !f.isSafe(el) {
			return false
		}
	}
	return true
}

// isSafeLambda checks a lambda sequence whose innermost body is a variable
// bound by one of the sequence's own binders, a reference, or a safe term.
func (f *floater) isSafeLambda(t term.Term) bool {
	var scope []term.Name
	current := t
	for {
		lam, isLam := current.(*term.Lam)
		if !isLam {
			break
		}
		if lam.Nam != "" {
			scope = append(scope, lam.Nam)
		}
		current = lam.Bod
	}
	switch s := current.(type) {
	case *term.Var:
		for _, nam := range scope {
			if nam == s.Nam {
				return true
			}
		}
		return false
	case *term.Ref:
		return true
	default:
		return f.isSafe(current)
	}
}
