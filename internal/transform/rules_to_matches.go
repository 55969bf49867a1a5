package transform

import (
	"strconv"

	"github.com/funvibe/weave/internal/diagnostics"
	"github.com/funvibe/weave/internal/term"
)

// RulesToMatches collapses every definition into a single pattern-free rule.
// Variable patterns become lambda binders; at most one pattern column may
// hold constructor patterns, and that column becomes a match whose arms are
// the rules in source order. The match elaborator then canonicalizes the
// generated match and reports exhaustiveness on it.
func RulesToMatches(book *term.Book, diags *diagnostics.Collector) {
	for _, defName := range book.DefNames() {
		def := book.Def(defName)
		if def.Builtin {
			continue
		}
		if len(def.Rules) == 1 && len(def.Rules[0].Pats) == 0 {
			continue
		}
		body, ok := rulesToMatch(book, def, diags)
		if !ok {
			body = &term.Err{}
		}
		def.Rules = []*term.Rule{{Body: body}}
	}
}

func rulesToMatch(book *term.Book, def *term.Definition, diags *diagnostics.Collector) (term.Term, bool) {
	arity := len(def.Rules[0].Pats)
	for _, rule := range def.Rules {
		if len(rule.Pats) != arity {
			diags.AddRuleError(diagnostics.MalformedDefinition, string(def.Name),
				"rules have different arities (%d and %d)", arity, len(rule.Pats))
			return nil, false
		}
	}
	if len(def.Rules) > 1 && arity == 0 {
		diags.AddRuleError(diagnostics.MalformedDefinition, string(def.Name),
			"definition has more than one rule but no patterns to match on")
		return nil, false
	}

	// Find the single column holding constructor patterns. A bare name of a
	// known constructor ("Nil") counts as a constructor pattern.
	matchCol := -1
	for col := 0; col < arity; col++ {
		for _, rule := range def.Rules {
			_, isCtr := rule.Pats[col].(*term.CtrPat)
			if vp, isVar := rule.Pats[col].(*term.VarPat); isVar && vp.Nam != "" && book.CtrAdt(vp.Nam) != nil {
				isCtr = true
			}
			if isCtr {
				if matchCol != -1 && matchCol != col {
					diags.AddRuleError(diagnostics.MalformedDefinition, string(def.Name),
						"constructor patterns in more than one argument position")
					return nil, false
				}
				matchCol = col
			}
		}
	}
	if matchCol == -1 && len(def.Rules) > 1 {
		diags.AddRuleError(diagnostics.MalformedDefinition, string(def.Name),
			"rules overlap: no constructor pattern distinguishes them")
		return nil, false
	}

	binders := make([]term.Name, arity)
	for col := 0; col < arity; col++ {
		binders[col] = "%arg" + term.Name(strconv.Itoa(col))
	}

	if matchCol == -1 {
		// Single rule, all variable patterns: just lambda-abstract.
		body := term.Clone(def.Rules[0].Body)
		for col, pat := range def.Rules[0].Pats {
			bindPatternVar(&body, pat.(*term.VarPat), binders[col])
		}
		return term.Lams(binders, body), true
	}

	bnd := binders[matchCol]
	mat := &term.Mat{Bnd: bnd, Arg: &term.Var{Nam: bnd}}
	for _, rule := range def.Rules {
		body := term.Clone(rule.Body)
		for col, pat := range rule.Pats {
			if col == matchCol {
				continue
			}
			vp, isVar := pat.(*term.VarPat)
			if !isVar {
				// Unreachable: non-match columns were verified above.
				continue
			}
			bindPatternVar(&body, vp, binders[col])
		}
		arm := term.MatchArm{}
		switch pat := rule.Pats[matchCol].(type) {
		case *term.VarPat:
			arm.Ctr = pat.Nam
		case *term.CtrPat:
			arm.Ctr = pat.Nam
			if adt := book.CtrAdt(pat.Nam); adt == nil {
				diags.AddRuleError(diagnostics.MalformedDefinition, string(def.Name),
					"unknown constructor '%s' in rule pattern", pat.Nam)
				return nil, false
			} else {
				ctr := adt.Ctr(pat.Nam)
				if len(pat.Fld) != len(ctr.Fields) {
					diags.AddRuleError(diagnostics.MalformedDefinition, string(def.Name),
						"constructor '%s' expects %d fields, pattern has %d",
						pat.Nam, len(ctr.Fields), len(pat.Fld))
					return nil, false
				}
				// Rename user field binders to the canonical "<bind>.<field>"
				// names the elaborator will install.
				for i, f := range pat.Fld {
					vp := f.(*term.VarPat)
					canonical := term.MatchFieldName(bnd, ctr.Fields[i])
					if vp.Nam != "" && vp.Nam != canonical {
						term.Subst(&body, vp.Nam, &term.Var{Nam: canonical})
					}
				}
			}
		}
		arm.Bod = body
		mat.Arms = append(mat.Arms, arm)
	}
	return term.Lams(binders, mat), true
}

// bindPatternVar renames a variable pattern's uses in the body to the
// synthesized argument binder, or leaves the body alone for "*".
func bindPatternVar(body *term.Term, pat *term.VarPat, binder term.Name) {
	if pat.Nam != "" && pat.Nam != binder {
		term.Subst(body, pat.Nam, &term.Var{Nam: binder})
	}
}
