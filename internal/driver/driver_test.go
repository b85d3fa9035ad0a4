package driver_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rill-lang/rillc/diag"
	"github.com/rill-lang/rillc/internal/driver"
)

func TestCheckAcceptsWellTypedModule(t *testing.T) {
	diags := diag.New()
	res := driver.Check("t.rl", `
		fn add(a: i32, b: i32) -> i32 { a + b }
	`, diags, driver.Options{})
	require.Truef(t, res.OK, "diagnostics: %s", diags.String())
	assert.False(t, diags.HasErrors())
}

func TestCheckReportsTypeError(t *testing.T) {
	diags := diag.New()
	res := driver.Check("t.rl", `
		fn add(a: i32, b: i32) -> i32 { a + true }
	`, diags, driver.Options{})
	assert.False(t, res.OK)
	assert.True(t, diags.HasErrors())
}

func TestPrintDiagnosticsRendersSortedOutput(t *testing.T) {
	diags := diag.New()
	driver.Check("t.rl", `fn bad() -> i32 { true }`, diags, driver.Options{})
	require.True(t, diags.HasErrors())

	var buf strings.Builder
	require.NoError(t, driver.NewPrinter(&buf).PrintDiagnostics(diags))
	assert.Contains(t, buf.String(), "t.rl")
}
