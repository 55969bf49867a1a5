package check

import (
	"testing"

	"github.com/funvibe/weave/internal/diagnostics"
	"github.com/funvibe/weave/internal/parser"
	"github.com/funvibe/weave/internal/term"
	"github.com/funvibe/weave/internal/transform"
)

// prepare parses a program and runs the stages that precede the scope
// checks: builtin installation, constructor encoding and reference
// resolution.
func prepare(t *testing.T, src string) (*term.Book, *diagnostics.Collector) {
	t.Helper()
	diags := diagnostics.NewCollector()
	book := parser.ParseBook(src, diags)
	if diags.HasErrors() {
		t.Fatalf("parse errors: %v", diags.All())
	}
	transform.AddBuiltins(book)
	transform.EncodeAdts(book)
	transform.ResolveRefs(book)
	return book, diags
}

func kinds(diags *diagnostics.Collector) []diagnostics.Kind {
	var out []diagnostics.Kind
	for _, d := range diags.All() {
		out = append(out, d.Kind)
	}
	return out
}

func TestWellScopedProgram(t *testing.T) {
	book, diags := prepare(t, `
data Opt = (Some val) | None
get = λx λd match x { Some: x.val; None: d }
main = (get (Some 1) 0)
`)
	CheckUnboundVars(book, diags)
	CheckRepeatedBinds(book, diags)
	if len(diags.All()) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags.All())
	}
}

func TestUnboundVariable(t *testing.T) {
	book, diags := prepare(t, "main = λx (x y)\n")
	CheckUnboundVars(book, diags)

	got := kinds(diags)
	if len(got) != 1 || got[0] != diagnostics.UnboundVariable {
		t.Fatalf("diagnostics = %v, want one UnboundVariable", diags.All())
	}
}

// TestMultipleErrorsReported pins down multi-error reporting: the analyzer
// must not stop at the first unbound variable.
func TestMultipleErrorsReported(t *testing.T) {
	book, diags := prepare(t, "main = λx (y (z x))\nother = λk (k w)\n")
	CheckUnboundVars(book, diags)

	got := kinds(diags)
	if len(got) != 3 {
		t.Fatalf("got %d diagnostics (%v), want 3", len(got), diags.All())
	}
	for _, kind := range got {
		if kind != diagnostics.UnboundVariable {
			t.Errorf("unexpected kind %s", kind)
		}
	}
}

func TestUnboundUnscopedVariable(t *testing.T) {
	book, diags := prepare(t, "main = λx ($ghost x)\n")
	CheckUnboundVars(book, diags)

	got := kinds(diags)
	if len(got) != 1 || got[0] != diagnostics.UnboundUnscopedVariable {
		t.Fatalf("diagnostics = %v, want one UnboundUnscopedVariable", diags.All())
	}
}

// TestDeclaredUnusedChannelAllowed checks that a declared-but-unused
// channel passes this analyzer: balancing it is a later-stage concern.
func TestDeclaredUnusedChannelAllowed(t *testing.T) {
	book, diags := prepare(t, "main = λ$c λx x\n")
	CheckUnboundVars(book, diags)
	if len(diags.All()) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags.All())
	}
}

func TestChannelScopeIsNotLexical(t *testing.T) {
	// The declaration sits under a lambda while the use is a sibling; the
	// pairing is per definition, not per lexical scope.
	book, diags := prepare(t, "main = ((λx λ$go x) $go)\n")
	CheckUnboundVars(book, diags)
	if len(diags.All()) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags.All())
	}
}

func TestMatchArmScopes(t *testing.T) {
	book, diags := prepare(t, `
data Opt = (Some val) | None
ok = λx match x { Some: x.val; None: 0 }
bad = λx match x { Some: x.nope; None: 0 }
wild = λx match x { y: y }
`)
	CheckUnboundVars(book, diags)

	got := kinds(diags)
	if len(got) != 1 || got[0] != diagnostics.UnboundVariable {
		t.Fatalf("diagnostics = %v, want one UnboundVariable for x.nope", diags.All())
	}
	if diags.All()[0].Rule != "bad" {
		t.Errorf("error attributed to %q, want bad", diags.All()[0].Rule)
	}
}

func TestSwitchPredScope(t *testing.T) {
	book, diags := prepare(t, "f = λn switch n { 0: 0; _: n-1 }\ng = λn switch n { 0: n-1; _: 0 }\n")
	CheckUnboundVars(book, diags)

	got := kinds(diags)
	if len(got) != 1 || got[0] != diagnostics.UnboundVariable {
		t.Fatalf("diagnostics = %v, want one UnboundVariable (pred only in default arm)", diags.All())
	}
}

func TestRulePatternsBind(t *testing.T) {
	book, diags := prepare(t, `
data List = (Cons h t) | Nil
len (Cons h t) = (+ 1 (len t))
len Nil = 0
`)
	CheckUnboundVars(book, diags)
	if len(diags.All()) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags.All())
	}
}

func TestRepeatedBinds(t *testing.T) {
	book, diags := prepare(t, `
data Pair = (MkPair a b)
fst (MkPair x x) = x
dup = let {y y} = λz z; (y y)
`)
	CheckRepeatedBinds(book, diags)

	got := kinds(diags)
	if len(got) != 2 {
		t.Fatalf("diagnostics = %v, want two RepeatedBind warnings", diags.All())
	}
	for _, d := range diags.All() {
		if d.Kind != diagnostics.RepeatedBind || d.Severity != diagnostics.Warning {
			t.Errorf("unexpected diagnostic %v", d)
		}
	}
}
