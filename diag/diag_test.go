package diag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rill-lang/rillc/diag"
	"github.com/rill-lang/rillc/token"
)

func loc(line int) token.Location {
	p := token.Pos{File: "t.rl", Line: line, Column: 1}
	return token.Location{Begin: p, End: p}
}

func TestAccumulatesWithoutPanicking(t *testing.T) {
	s := diag.New()
	s.Errorf(loc(2), "expected %s, got %s", "int", "bool")
	s.Warnf(loc(1), "unused local %q", "x")
	assert.True(t, s.HasErrors())
	assert.Len(t, s.All(), 2)

	sorted := s.Sorted()
	assert.Equal(t, 1, sorted[0].Loc.Begin.Line)
	assert.Equal(t, 2, sorted[1].Loc.Begin.Line)
}

func TestWarningsOnlyIsNotAnError(t *testing.T) {
	s := diag.New()
	s.Warnf(loc(1), "unused local %q", "y")
	assert.False(t, s.HasErrors())
}

func TestRecoverConvertsPanicToDiagnostic(t *testing.T) {
	s := diag.New()
	func() {
		defer s.Recover(loc(5))
		panic("unreachable switch arm")
	}()
	assert.True(t, s.HasErrors())
	assert.Contains(t, s.All()[0].Message, "unreachable switch arm")
}
