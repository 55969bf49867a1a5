package transform

import (
	"strconv"

	"github.com/funvibe/weave/internal/diagnostics"
	"github.com/funvibe/weave/internal/term"
)

// FixMatchTerms converts every match and switch expression to a normalized
// form:
//
//   - Matches get one arm per constructor of the matched ADT, in declaration
//     order, with the canonical "<bind>.<field>" field binders.
//   - A scrutinee that is not already a variable is hoisted into a let bound
//     to "%matched" (then "%matched-2", "%matched-3", ... within the rule).
//   - Switches get their canonical predecessor binder.
//   - Redundant arms, unreachable arms, irrefutable matches, ADT mismatches
//     and non-exhaustive matches are reported.
//
// The pass runs to completion over the whole book before failure surfaces;
// errors and warnings accumulate per rule.
func FixMatchTerms(book *term.Book, diags *diagnostics.Collector) {
	for _, defName := range book.DefNames() {
		def := book.Def(defName)
		for _, rule := range def.Rules {
			fixer := &matchFixer{book: book, diags: diags, rule: def.Name}
			fixer.fixTerm(&rule.Body)
		}
	}
}

type matchFixer struct {
	book  *term.Book
	diags *diagnostics.Collector
	rule  term.Name

	// matched counts the scrutinees hoisted in this rule, for "%matched"
	// name synthesis.
	matched int
}

// freshMatched returns "%matched" for the first hoist of a rule and
// "%matched-<n>" (counting from 2) afterwards.
func (f *matchFixer) freshMatched() term.Name {
	f.matched++
	if f.matched == 1 {
		return term.MatchedVar
	}
	return term.MatchedVar + "-" + term.Name(strconv.Itoa(f.matched))
}

func (f *matchFixer) fixTerm(t *term.Term) {
	term.MaybeGrow(func() struct{} {
		for _, child := range term.Children(t) {
			f.fixTerm(child)
		}
		switch (*t).(type) {
		case *term.Mat:
			f.fixMatch(t)
		case *term.Swt:
			f.fixSwitch(t)
		}
		return struct{}{}
	})
}

// hoistArg gives the match a bind name and a variable scrutinee, wrapping
// the whole term in a let when the scrutinee is a compound term. It returns
// the bind name and the slot the normalized match lives in.
func (f *matchFixer) hoistArg(t *term.Term, bnd *term.Name, arg *term.Term) (term.Name, *term.Term) {
	if *bnd == "" {
		*bnd = f.freshMatched()
	}
	if _, isVar := (*arg).(*term.Var); !isVar {
		val := *arg
		*arg = &term.Var{Nam: *bnd}
		wrapped := &term.Let{Nam: *bnd, Val: val, Nxt: *t}
		*t = wrapped
		return *bnd, &wrapped.Nxt
	}
	return *bnd, t
}

func (f *matchFixer) fixMatch(t *term.Term) {
	mat := (*t).(*term.Mat)
	bnd, slot := f.hoistArg(t, &mat.Bnd, &mat.Arg)

	firstCtr := mat.Arms[0].Ctr
	adt := f.book.CtrAdt(firstCtr)
	if firstCtr == "" || adt == nil {
		f.collapseIrrefutable(slot, mat, bnd)
		return
	}

	bodies := f.matchArmBodies(mat, adt, bnd)

	// Build the canonical arms, one per constructor in declaration order.
	newArms := make([]term.MatchArm, 0, len(adt.Ctrs))
	for _, ctr := range adt.Ctrs {
		fields := make([]term.Name, len(ctr.Fields))
		for i, fld := range ctr.Fields {
			fields[i] = term.MatchFieldName(bnd, fld)
		}
		body, covered := bodies[ctr.Name]
		if !covered {
			f.diags.AddRuleError(diagnostics.NonExhaustiveMatch, string(f.rule),
				"non-exhaustive 'match' of type '%s': case '%s' not covered", adt.Name, ctr.Name)
			body = &term.Err{}
		}
		newArms = append(newArms, term.MatchArm{Ctr: ctr.Name, Fld: fields, Bod: body})
	}
	mat.Arms = newArms
}

// matchArmBodies decides which arm body serves each constructor of the
// matched ADT: the first constructor arm naming it, else the most recent
// still-unused wildcard arm with the wildcard variable replaced by the
// rebuilt constructor application.
func (f *matchFixer) matchArmBodies(mat *term.Mat, adt *term.Adt, bnd term.Name) map[term.Name]term.Term {
	bodies := make(map[term.Name]term.Term, len(adt.Ctrs))
	for idx := range mat.Arms {
		arm := &mat.Arms[idx]
		if found := f.book.CtrAdt(arm.Ctr); arm.Ctr != "" && found != nil {
			if found.Name != adt.Name {
				f.diags.AddRuleError(diagnostics.AdtMismatch, string(f.rule),
					"type mismatch in 'match': expected a constructor of type '%s', found '%s' of type '%s'",
					adt.Name, arm.Ctr, found.Name)
				continue
			}
			if _, taken := bodies[arm.Ctr]; taken {
				f.diags.AddRuleWarning(diagnostics.RedundantMatch, string(f.rule),
					"redundant arm in 'match': case '%s' appears more than once", arm.Ctr)
				continue
			}
			bodies[arm.Ctr] = term.Clone(arm.Bod)
			continue
		}

		// Wildcard arm: serves every constructor still missing a body.
		for _, ctr := range adt.Ctrs {
			if _, taken := bodies[ctr.Name]; taken {
				continue
			}
			body := term.Clone(arm.Bod)
			if arm.Ctr != "" {
				term.Subst(&body, arm.Ctr, rebuildCtr(bnd, &ctr))
			}
			bodies[ctr.Name] = body
		}
		if idx != len(mat.Arms)-1 {
			f.diags.AddRuleWarning(diagnostics.UnreachableMatch, string(f.rule),
				"unreachable arms in 'match': all cases after '%s' are ignored", varOrStar(arm.Ctr))
			mat.Arms = mat.Arms[:idx+1]
		}
		break
	}
	return bodies
}

// collapseIrrefutable replaces a match whose first arm is a variable or "*"
// with that arm's body, binding the variable to the scrutinee with a use.
func (f *matchFixer) collapseIrrefutable(slot *term.Term, mat *term.Mat, bnd term.Name) {
	if len(mat.Arms) > 1 {
		f.diags.AddRuleWarning(diagnostics.UnreachableMatch, string(f.rule),
			"unreachable arms in 'match': all cases after '%s' are ignored", varOrStar(mat.Arms[0].Ctr))
	} else {
		f.diags.AddRuleWarning(diagnostics.IrrefutableMatch, string(f.rule),
			"irrefutable 'match': the argument always matches '%s'; consider a 'let' instead",
			varOrStar(mat.Arms[0].Ctr))
	}
	body := mat.Arms[0].Bod
	if v := mat.Arms[0].Ctr; v != "" {
		*slot = &term.Use{Nam: v, Val: mat.Arg, Nxt: body}
	} else {
		*slot = body
	}
}

func (f *matchFixer) fixSwitch(t *term.Term) {
	swt := (*t).(*term.Swt)
	oldPred := swt.Pred
	bnd, _ := f.hoistArg(t, &swt.Bnd, &swt.Arg)
	// The default arm observes the scrutinee minus the literal arm count.
	swt.Pred = bnd + "-" + term.Name(strconv.Itoa(len(swt.Arms)-1))
	if oldPred != "" && oldPred != swt.Pred {
		term.Subst(&swt.Arms[len(swt.Arms)-1], oldPred, &term.Var{Nam: swt.Pred})
	}
}

// rebuildCtr builds the surface application of a constructor to its
// canonical field binders, used to substitute a wildcard variable when its
// arm serves a concrete constructor.
func rebuildCtr(bnd term.Name, ctr *term.AdtCtr) term.Term {
	args := make([]term.Term, len(ctr.Fields))
	for i, f := range ctr.Fields {
		args[i] = &term.Var{Nam: term.MatchFieldName(bnd, f)}
	}
	return term.Call(&term.Ref{Nam: ctr.Name}, args...)
}

func varOrStar(n term.Name) string {
	if n == "" {
		return "*"
	}
	return string(n)
}
