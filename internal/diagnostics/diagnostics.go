// Package diagnostics collects the warnings and errors produced by the
// compile pipeline. Phases append to a shared Collector and always run to
// completion; the driver checks the collector at the gate between phases and
// stops only there.
package diagnostics

import (
	"fmt"
	"sort"
	"strings"
)

// Severity of a diagnostic.
type Severity int

const (
	Warning Severity = iota
	Error
)

func (s Severity) String() string {
	if s == Error {
		return "error"
	}
	return "warning"
}

// Kind identifies the diagnostic class. Warning kinds and error kinds share
// the enum; the severity lives on the record.
type Kind string

const (
	// Warning kinds.
	IrrefutableMatch Kind = "irrefutable-match"
	UnreachableMatch Kind = "unreachable-match"
	RedundantMatch   Kind = "redundant-match"
	UnusedDefinition Kind = "unused-definition"
	RepeatedBind     Kind = "repeated-bind"

	// Error kinds.
	UnboundVariable         Kind = "unbound-variable"
	UnboundUnscopedVariable Kind = "unbound-unscoped-variable"
	AdtMismatch             Kind = "adt-mismatch"
	NonExhaustiveMatch      Kind = "non-exhaustive-match"
	ParseError              Kind = "parse-error"
	MalformedDefinition     Kind = "malformed-definition"
	MissingEntrypoint       Kind = "missing-entrypoint"
)

// Diagnostic is one recorded problem. Rule names the definition whose rule
// produced it, when there is one.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Rule     string
	Message  string
}

func (d Diagnostic) String() string {
	var sb strings.Builder
	sb.WriteString(d.Severity.String())
	if d.Rule != "" {
		fmt.Fprintf(&sb, " in definition '%s'", d.Rule)
	}
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	return sb.String()
}

// Collector accumulates diagnostics across phases. passMark remembers the
// error count at the last StartPass so the driver's fatal gate only reacts
// to errors from the phase that just ran.
type Collector struct {
	diags    []Diagnostic
	errCount int
	passMark int

	// DenyWarnings promotes every warning to an error as it is recorded.
	DenyWarnings bool

	// MutedWarnings silences individual warning kinds.
	MutedWarnings map[Kind]bool
}

func NewCollector() *Collector {
	return &Collector{}
}

// StartPass marks a phase boundary for ErrorsSincePass.
func (c *Collector) StartPass() { c.passMark = c.errCount }

// Add records a diagnostic.
func (c *Collector) Add(d Diagnostic) {
	if d.Severity == Warning {
		if c.MutedWarnings[d.Kind] {
			return
		}
		if c.DenyWarnings {
			d.Severity = Error
		}
	}
	if d.Severity == Error {
		c.errCount++
	}
	c.diags = append(c.diags, d)
}

// AddRuleError records an error attributed to a definition's rule.
func (c *Collector) AddRuleError(kind Kind, rule, format string, args ...any) {
	c.Add(Diagnostic{Severity: Error, Kind: kind, Rule: rule, Message: fmt.Sprintf(format, args...)})
}

// AddRuleWarning records a warning attributed to a definition's rule.
func (c *Collector) AddRuleWarning(kind Kind, rule, format string, args ...any) {
	c.Add(Diagnostic{Severity: Warning, Kind: kind, Rule: rule, Message: fmt.Sprintf(format, args...)})
}

// AddError records an error with no rule attribution.
func (c *Collector) AddError(kind Kind, format string, args ...any) {
	c.Add(Diagnostic{Severity: Error, Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any error has been recorded at all.
func (c *Collector) HasErrors() bool { return c.errCount > 0 }

// ErrorsSincePass reports whether the phase since the last StartPass
// recorded an error. This is the driver's fatal gate.
func (c *Collector) ErrorsSincePass() bool { return c.errCount > c.passMark }

// All returns the recorded diagnostics in recording order.
func (c *Collector) All() []Diagnostic { return c.diags }

// Sorted returns the diagnostics for display: warnings first, errors last,
// stably keeping recording order within each severity.
func (c *Collector) Sorted() []Diagnostic {
	out := make([]Diagnostic, len(c.diags))
	copy(out, c.diags)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity < out[j].Severity
	})
	return out
}

// Count returns the number of recorded warnings and errors.
func (c *Collector) Count() (warnings, errors int) {
	return len(c.diags) - c.errCount, c.errCount
}
