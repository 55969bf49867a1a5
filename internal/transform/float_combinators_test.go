package transform

import (
	"strings"
	"testing"

	"github.com/funvibe/weave/internal/prettyprinter"
	"github.com/funvibe/weave/internal/term"
)

// TestFloatLeavesSafeLambdas checks that safe lambdas stay in place where
// they are: identity-like lambdas and lambda sequences ending in a bound
// variable are safe to duplicate directly.
func TestFloatLeavesSafeLambdas(t *testing.T) {
	book, _ := prepare(t, "id = λx x\npair = λx λy (x y)\nuse2 = λf (f (λa a) λa λb a)\n")
	before := len(book.DefNames())
	FloatCombinators(book)

	if got := len(book.DefNames()); got != before {
		t.Errorf("definition count changed %d -> %d; nothing should float", before, got)
	}
}

// TestFloatExtractsApplication checks that a closed application in argument
// position is extracted into a fresh definition and replaced by a Ref.
func TestFloatExtractsApplication(t *testing.T) {
	book, _ := prepare(t, "foo = λk (k ((λx x) (λy y)))\n")
	FloatCombinators(book)

	comb := book.Def("foo$C0")
	if comb == nil {
		t.Fatalf("foo$C0 was not created; defs = %v", book.DefNames())
	}
	if got := prettyprinter.PrintTerm(comb.Rule0().Body); got != "(λx x λy y)" {
		t.Errorf("extracted body = %s", got)
	}
	fooBody := prettyprinter.PrintTerm(book.Def("foo").Rule0().Body)
	if !strings.Contains(fooBody, "foo$C0") {
		t.Errorf("use site was not replaced by the Ref: %s", fooBody)
	}
}

// TestFloatSkipsEntrypoint checks that the program root is never floated.
func TestFloatSkipsEntrypoint(t *testing.T) {
	book, _ := prepare(t, "main = λk (k ((λx x) (λy y)))\n")
	book.Entrypoint = "main"
	FloatCombinators(book)

	if book.HasDef("main$C0") {
		t.Errorf("entrypoint body was floated")
	}
}

// TestFloatSafeTerms checks the safety classification on numbers, erasers,
// tuples and superpositions: safe terms stay in place even when closed.
func TestFloatSafeTerms(t *testing.T) {
	book, _ := prepare(t, "foo = λk (k (1, *) {2 3} λa λb a)\n")
	before := len(book.DefNames())
	FloatCombinators(book)

	if got := len(book.DefNames()); got != before {
		t.Errorf("safe arguments were floated: %v", book.DefNames())
	}
}

// TestFloatRecursiveRefUnsafe checks the cycle breaker: safety analysis
// follows Ref edges, and a reference seen twice on the safety path makes
// the candidate unsafe.
func TestFloatRecursiveRefUnsafe(t *testing.T) {
	book, _ := prepare(t, "r = (1, s)\ns = (1, r)\nfoo = λk (k (1, r))\n")
	FloatCombinators(book)
	if !book.HasDef("foo$C0") {
		t.Errorf("cyclic tuple argument was not floated: %v", book.DefNames())
	}

	// The same shape over an acyclic chain is safe and stays in place.
	book2, _ := prepare(t, "t = (1, 2)\nbar = λk (k (1, t))\n")
	before := len(book2.DefNames())
	FloatCombinators(book2)
	if got := len(book2.DefNames()); got != before {
		t.Errorf("acyclic safe tuple was floated: %v", book2.DefNames())
	}
}

// TestFloatInvariance checks that inlining every generated combinator back
// into its use site reproduces the pre-float term.
func TestFloatInvariance(t *testing.T) {
	src := "data List = (Cons h t) | Nil\n" +
		"foo = λk (k ((λx x) (λy y)) ((λa a) 1))\n"
	book, _ := prepare(t, src)
	before := prettyprinter.PrintTerm(book.Def("foo").Rule0().Body)

	FloatCombinators(book)
	body := term.Clone(book.Def("foo").Rule0().Body)
	inlineCombinators(&body, book)

	if after := prettyprinter.PrintTerm(body); after != before {
		t.Errorf("inlined term differs from pre-float term:\n before: %s\n  after: %s", before, after)
	}
}

func inlineCombinators(t *term.Term, book *term.Book) {
	if ref, isRef := (*t).(*term.Ref); isRef {
		if strings.Contains(string(ref.Nam), "$C") {
			*t = term.Clone(book.Def(ref.Nam).Rule0().Body)
			inlineCombinators(t, book)
			return
		}
	}
	for _, child := range term.Children(t) {
		inlineCombinators(child, book)
	}
}
