package transform

import (
	"testing"

	"github.com/funvibe/weave/internal/diagnostics"
)

// TestPruneUnusedDefinitions checks that definitions unreachable from the
// entrypoint are warned about and removed, while generated constructor
// definitions disappear silently.
func TestPruneUnusedDefinitions(t *testing.T) {
	book, diags := prepare(t, "helper = λx x\ndead = λx x\nmain = (helper 1)\n")
	book.Entrypoint = "main"
	PruneUnusedDefinitions(book, diags)

	if book.HasDef("dead") {
		t.Errorf("unreachable definition survived")
	}
	if !book.HasDef("helper") || !book.HasDef("main") {
		t.Errorf("reachable definitions were pruned: %v", book.DefNames())
	}
	if book.HasDef("Cons") {
		t.Errorf("unreachable builtin constructor survived")
	}

	got := kinds(diags)
	if len(got) != 1 || got[0] != diagnostics.UnusedDefinition {
		t.Fatalf("diagnostics = %v, want exactly one UnusedDefinition for dead", diags.All())
	}
	if diags.All()[0].Rule != "dead" {
		t.Errorf("warning attributed to %q", diags.All()[0].Rule)
	}
}

// TestPruneWithoutEntrypoint checks that a library book keeps everything.
func TestPruneWithoutEntrypoint(t *testing.T) {
	book, diags := prepare(t, "a = λx x\nb = λx x\n")
	PruneUnusedDefinitions(book, diags)

	if !book.HasDef("a") || !book.HasDef("b") {
		t.Errorf("pruning without an entrypoint removed definitions")
	}
	if len(diags.All()) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags.All())
	}
}
