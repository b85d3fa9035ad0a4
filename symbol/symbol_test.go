package symbol_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rill-lang/rillc/symbol"
)

func TestIntern(t *testing.T) {
	assert.Equal(t, symbol.Intern("abc"), symbol.Intern("abc"))
	assert.False(t, symbol.Intern("abc") == symbol.Intern("cde"))
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"_", "_3", "$x", "xyz"} {
		id := symbol.Intern(name)
		name2 := id.Str()
		assert.Equal(t, name, name2)
	}
}

func TestInvalidStrPanics(t *testing.T) {
	assert.Panics(t, func() { symbol.Invalid.Str() })
}

func TestStringNeverPanics(t *testing.T) {
	assert.Equal(t, "<invalid>", symbol.Invalid.String())
	assert.NotPanics(t, func() { _ = symbol.ID(999999).String() })
}
