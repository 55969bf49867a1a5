package backend

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/funvibe/weave/internal/config"
	"github.com/funvibe/weave/internal/diagnostics"
)

const sampleProgram = `
data Shape = (Square side) | (Circle radius)
area = λs match s { Square: (* s.side s.side); Circle: (* 3 s.radius) }
main = (area (Square 5))
`

// TestCompileCleanProgram checks an end-to-end compile with no
// diagnostics: the sample exercises ADTs, matches, duplication insertion
// and the net encoder.
func TestCompileCleanProgram(t *testing.T) {
	ctx := Compile("sample.wv", sampleProgram, nil, true)
	if got := ctx.Diags.All(); len(got) != 0 {
		t.Fatalf("unexpected diagnostics: %v", got)
	}
	if ctx.Net == nil || ctx.Net.Entry != "main" {
		t.Fatalf("no net for entrypoint")
	}
	if ctx.Net.EntryNodes() == nil {
		t.Fatalf("entry net missing")
	}
}

// TestCompileDeterministic checks that two runs over the same source
// produce identical net words and name tables.
func TestCompileDeterministic(t *testing.T) {
	first := Compile("sample.wv", sampleProgram, nil, true)
	second := Compile("sample.wv", sampleProgram, nil, true)

	if diff := cmp.Diff(first.Net.Names, second.Net.Names); diff != "" {
		t.Errorf("name tables differ (-first +second):\n%s", diff)
	}
	if len(first.Net.Nets) != len(second.Net.Nets) {
		t.Fatalf("net counts differ: %d vs %d", len(first.Net.Nets), len(second.Net.Nets))
	}
	for i, dn := range first.Net.Nets {
		other := second.Net.Nets[i]
		if dn.Name != other.Name {
			t.Errorf("net %d name %s vs %s", i, dn.Name, other.Name)
			continue
		}
		if diff := cmp.Diff(dn.Net.Nodes, other.Net.Nodes); diff != "" {
			t.Errorf("net words for %s differ:\n%s", dn.Name, diff)
		}
	}
}

// TestFatalGateStopsAfterErrors checks that an unbound variable stops the
// pipeline at the scope gate: no net is produced, and the error is
// reported.
func TestFatalGateStopsAfterErrors(t *testing.T) {
	ctx := Compile("bad.wv", "main = λx (x y)\n", nil, true)
	if !ctx.Diags.HasErrors() {
		t.Fatalf("unbound variable not reported")
	}
	if ctx.Net != nil {
		t.Errorf("net was produced despite a fatal diagnostic")
	}
}

// TestWarningsDoNotStopPipeline checks that warning-severity diagnostics
// flow through to a successful compile.
func TestWarningsDoNotStopPipeline(t *testing.T) {
	src := "data Opt = (Some v) | None\n" +
		"f = λa λb λx match x { Some: a; Some: b; None: a }\n" +
		"main = (f 1 2 (Some 3))\n"
	ctx := Compile("warn.wv", src, nil, true)

	if ctx.Diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", ctx.Diags.All())
	}
	warnings, _ := ctx.Diags.Count()
	if warnings == 0 {
		t.Fatalf("redundant arm warning lost")
	}
	if ctx.Net == nil {
		t.Errorf("warnings must not stop the pipeline")
	}
}

// TestMissingEntrypoint checks the compile-mode requirement for a program
// root.
func TestMissingEntrypoint(t *testing.T) {
	ctx := Compile("lib.wv", "helper = λx x\n", nil, true)
	if !ctx.Diags.HasErrors() {
		t.Fatalf("missing entrypoint not reported")
	}

	checkOnly := Compile("lib.wv", "helper = λx x\n", nil, false)
	if checkOnly.Diags.HasErrors() {
		t.Errorf("check mode must not require an entrypoint: %v", checkOnly.Diags.All())
	}
}

// TestProjectEntrypointAndMutedWarnings checks the weave.yaml knobs: a
// custom entrypoint and a muted warning kind.
func TestProjectEntrypointAndMutedWarnings(t *testing.T) {
	project := &config.Project{
		Entrypoint: "start",
		Warnings:   map[string]bool{string(diagnostics.UnusedDefinition): false},
	}
	src := "start = λx x\nextra = λx x\n"
	ctx := Compile("proj.wv", src, project, true)

	if ctx.Diags.HasErrors() {
		t.Fatalf("unexpected errors: %v", ctx.Diags.All())
	}
	if ctx.Net.Entry != "start" {
		t.Errorf("entry = %s, want start", ctx.Net.Entry)
	}
	if got := len(ctx.Diags.All()); got != 0 {
		t.Errorf("muted unused-definition warning still reported: %v", ctx.Diags.All())
	}
}

// TestDenyWarnings checks that deny-warnings promotes a warning to a
// fatal error.
func TestDenyWarnings(t *testing.T) {
	project := &config.Project{DenyWarnings: true}
	src := "data Opt = (Some v) | None\n" +
		"f = λa λx match x { Some: a; Some: a; None: a }\n" +
		"main = (f 1 (Some 2))\n"
	ctx := Compile("deny.wv", src, project, true)

	if !ctx.Diags.HasErrors() {
		t.Fatalf("denied warning did not become an error")
	}
	if ctx.Net != nil {
		t.Errorf("pipeline continued past a denied warning")
	}
}
