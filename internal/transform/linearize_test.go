package transform

import (
	"testing"

	"github.com/funvibe/weave/internal/prettyprinter"
	"github.com/funvibe/weave/internal/term"
)

// TestLinearizeDupInsertion checks that a binder used twice gets an
// auto-tagged duplication of two fresh names at the top of its scope.
func TestLinearizeDupInsertion(t *testing.T) {
	book, _ := prepare(t, "foo = λx (x x)\n")
	LinearizeVars(book)

	lam := book.Def("foo").Rule0().Body.(*term.Lam)
	dup, isDup := lam.Bod.(*term.Dup)
	if !isDup {
		t.Fatalf("no duplication inserted: %s", prettyprinter.PrintTerm(lam.Bod))
	}
	if dup.Tag.Kind != term.TagAuto {
		t.Errorf("inserted dup tag = %v, want auto", dup.Tag)
	}
	if len(dup.Bnd) != 2 || dup.Bnd[0] != "x$0" || dup.Bnd[1] != "x$1" {
		t.Errorf("dup binders = %v, want [x$0 x$1]", dup.Bnd)
	}
	if v, isVar := dup.Val.(*term.Var); !isVar || v.Nam != "x" {
		t.Errorf("dup value = %s, want x", prettyprinter.PrintTerm(dup.Val))
	}
	spine := dup.Nxt.(*term.App)
	if spine.Fun.(*term.Var).Nam != "x$0" || spine.Arg.(*term.Var).Nam != "x$1" {
		t.Errorf("uses not renamed in order: %s", prettyprinter.PrintTerm(dup.Nxt))
	}
}

// TestLinearizeErasesUnused checks that an unused binder becomes nameless.
func TestLinearizeErasesUnused(t *testing.T) {
	book, _ := prepare(t, "foo = λx 7\n")
	LinearizeVars(book)

	lam := book.Def("foo").Rule0().Body.(*term.Lam)
	if lam.Nam != "" {
		t.Errorf("unused binder kept its name %q", lam.Nam)
	}
}

// TestLinearizeKeepsSingleUse checks that a linear term is untouched.
func TestLinearizeKeepsSingleUse(t *testing.T) {
	book, _ := prepare(t, "foo = λx λy (x y)\n")
	before := prettyprinter.PrintBook(book)
	LinearizeVars(book)
	if after := prettyprinter.PrintBook(book); after != before {
		t.Errorf("linear body changed:\n before: %s\n  after: %s", before, after)
	}
}

// TestLinearizeUniquesShadowedBinders checks that shadowing binders get
// distinct names before use counting.
func TestLinearizeUniquesShadowedBinders(t *testing.T) {
	book, _ := prepare(t, "foo = λx (x λx x)\n")
	LinearizeVars(book)

	outer := book.Def("foo").Rule0().Body.(*term.Lam)
	spine := outer.Bod.(*term.App)
	inner := spine.Arg.(*term.Lam)
	if inner.Nam == outer.Nam {
		t.Errorf("shadowed binder was not renamed: outer %q, inner %q", outer.Nam, inner.Nam)
	}
	if v := inner.Bod.(*term.Var); v.Nam != inner.Nam {
		t.Errorf("inner use %q does not follow its binder %q", v.Nam, inner.Nam)
	}
}

// TestLinearizeSwitchPred checks the predecessor binder of a switch default
// arm is linearized like any other binder.
func TestLinearizeSwitchPred(t *testing.T) {
	book, diags := prepare(t, "foo = λn switch n { 0: 0; _: (+ n-1 n-1) }\n")
	FixMatchTerms(book, diags)
	LinearizeVars(book)

	swt := book.Def("foo").Rule0().Body.(*term.Lam).Bod.(*term.Swt)
	dup, isDup := swt.Arms[1].(*term.Dup)
	if !isDup {
		t.Fatalf("no duplication for doubly-used pred: %s", prettyprinter.PrintTerm(swt.Arms[1]))
	}
	if len(dup.Bnd) != 2 {
		t.Errorf("pred dup binders = %v", dup.Bnd)
	}
}
