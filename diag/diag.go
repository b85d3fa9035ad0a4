// Package diag implements the compiler's diagnostic sink: the
// component responsible for formatting and accumulating error and
// warning messages against source locations (spec §2 "Diagnostics",
// §6 "Diagnostic sink", §7 "Error handling design").
//
// The sink never panics and never aborts a caller. Every diagnosable
// situation is recorded here and checking continues, per spec §7's
// "never throw; accumulate diagnostics" policy — the mirror image of
// the teacher's gql/log.go and gql/panic.go, which report the same
// kind of "what and where" message but do so by panicking. Where this
// module needs an actual escape hatch for a true internal-invariant
// violation (not a user error), see Recover, adapted from
// gql/panic.go's Recover.
package diag

import (
	"fmt"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/rill-lang/rillc/token"
)

// Severity classifies a diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one accumulated error or warning.
type Diagnostic struct {
	Severity Severity
	Loc      token.Location
	Message  string
}

// String formats the diagnostic the way the teacher formats panic
// messages in gql/log.go, with the severity between location and
// message: "loc: severity: message", newline-terminated per spec §6.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s\n", d.Loc, d.Severity, d.Message)
}

// Sink accumulates diagnostics. It is append-only and is the one
// concurrency-relevant resource named in spec §5 besides the type
// table; like the type table it is only ever touched from the single
// checking goroutine, so no internal locking is provided.
type Sink struct {
	diags []Diagnostic
}

// New creates an empty Sink.
func New() *Sink { return &Sink{} }

// Error records an error diagnostic at loc. It returns nothing to
// chain on: callers pass the complete message, or format it up front
// with Errorf.
func (s *Sink) Error(loc token.Location, message string) {
	s.diags = append(s.diags, Diagnostic{Error, loc, message})
}

// Errorf formats and records an error diagnostic.
func (s *Sink) Errorf(loc token.Location, format string, args ...interface{}) {
	s.Error(loc, fmt.Sprintf(format, args...))
}

// Warn records a warning diagnostic at loc.
func (s *Sink) Warn(loc token.Location, message string) {
	s.diags = append(s.diags, Diagnostic{Warning, loc, message})
}

// Warnf formats and records a warning diagnostic.
func (s *Sink) Warnf(loc token.Location, format string, args ...interface{}) {
	s.Warn(loc, fmt.Sprintf(format, args...))
}

// HasErrors reports whether any Error-severity diagnostic was recorded.
// A parser or checker that only emitted warnings should still report
// success (spec §4.1: "Failure is accumulated in a boolean result").
func (s *Sink) HasErrors() bool {
	for _, d := range s.diags {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// All returns every accumulated diagnostic, in emission order.
func (s *Sink) All() []Diagnostic {
	out := make([]Diagnostic, len(s.diags))
	copy(out, s.diags)
	return out
}

// Sorted returns every accumulated diagnostic ordered by source
// location, for stable, deterministic driver output.
func (s *Sink) Sorted() []Diagnostic {
	out := s.All()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Loc.Begin, out[j].Loc.Begin
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return out
}

// String renders every diagnostic, newline-terminated, in emission
// order — suitable for writing straight to the external sink
// destination (a file, a terminal) spec §6 treats as out of scope.
func (s *Sink) String() string {
	var b strings.Builder
	for _, d := range s.diags {
		b.WriteString(d.String())
	}
	return b.String()
}

// Recover runs cb, converting any panic into a single internal-error
// diagnostic recorded against loc instead of crashing the process.
// Adapted from gql/panic.go's Recover: that helper turns a panic into a
// Go error; this one turns it into the diagnostic-sink shape the rest
// of this package uses, since an internal assertion failure here still
// needs to surface through the same (bool, []Diagnostic) contract a
// driver expects from Parse/Check, spec §7 category 6 ("Internal").
func (s *Sink) Recover(loc token.Location) {
	if r := recover(); r != nil {
		err := errors.Errorf("internal compiler error: %v\n%s", r, string(debug.Stack()))
		s.Error(loc, err.Error())
	}
}
