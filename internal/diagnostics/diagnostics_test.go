package diagnostics

import (
	"strings"
	"testing"
)

func TestSortedPutsWarningsFirst(t *testing.T) {
	c := NewCollector()
	c.AddRuleError(UnboundVariable, "f", "unbound variable 'x'")
	c.AddRuleWarning(RedundantMatch, "f", "redundant arm")
	c.AddRuleError(NonExhaustiveMatch, "g", "missing case")
	c.AddRuleWarning(UnusedDefinition, "h", "never used")

	sorted := c.Sorted()
	if sorted[0].Severity != Warning || sorted[1].Severity != Warning {
		t.Errorf("warnings must come first: %v", sorted)
	}
	if sorted[2].Severity != Error || sorted[3].Severity != Error {
		t.Errorf("errors must come last: %v", sorted)
	}
	// Stable within a severity: recording order preserved.
	if sorted[0].Kind != RedundantMatch || sorted[2].Kind != UnboundVariable {
		t.Errorf("sort is not stable: %v", sorted)
	}
}

func TestErrorsSincePass(t *testing.T) {
	c := NewCollector()
	c.StartPass()
	c.AddRuleWarning(RedundantMatch, "f", "w")
	if c.ErrorsSincePass() {
		t.Errorf("warnings must not trip the gate")
	}
	c.AddRuleError(UnboundVariable, "f", "e")
	if !c.ErrorsSincePass() {
		t.Errorf("error did not trip the gate")
	}
	c.StartPass()
	if c.ErrorsSincePass() {
		t.Errorf("gate must reset at a pass boundary")
	}
	if !c.HasErrors() {
		t.Errorf("HasErrors must see errors from earlier passes")
	}
}

func TestDenyAndMute(t *testing.T) {
	c := NewCollector()
	c.DenyWarnings = true
	c.MutedWarnings = map[Kind]bool{UnusedDefinition: true}

	c.AddRuleWarning(UnusedDefinition, "f", "muted")
	if len(c.All()) != 0 {
		t.Errorf("muted warning recorded: %v", c.All())
	}
	c.AddRuleWarning(RedundantMatch, "f", "promoted")
	if !c.HasErrors() {
		t.Errorf("deny-warnings did not promote the warning")
	}
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Severity: Error, Kind: UnboundVariable, Rule: "main", Message: "unbound variable 'y'"}
	s := d.String()
	if !strings.Contains(s, "error") || !strings.Contains(s, "main") || !strings.Contains(s, "'y'") {
		t.Errorf("diagnostic rendering = %q", s)
	}
}
