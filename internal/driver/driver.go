// Package driver is the thin wiring that exercises the front end
// end to end: lexer -> parser -> sema over a source string, the
// shape spec §0 describes as used only by tests and godoc examples.
// Modeled on the teacher's gql.Init(Opts) constructor-of-knobs
// pattern, minus the query-evaluation session state a real gql
// session carries, since this repo stops at type-checked AST.
package driver

import (
	"github.com/rill-lang/rillc/ast"
	"github.com/rill-lang/rillc/diag"
	"github.com/rill-lang/rillc/lexer"
	"github.com/rill-lang/rillc/parser"
	"github.com/rill-lang/rillc/sema"
	"github.com/rill-lang/rillc/types"
)

// Options bundles the two stage-specific Options structs so a test
// or godoc example has one knob bag to fill in, mirroring the
// teacher's single gql.Opts covering every stage of its own pipeline.
type Options struct {
	Parser parser.Options
	Sema   sema.Options
}

// Result is everything a caller needs after Check: the resolved type
// table (so a test can assert on interned types directly), the
// parsed module (possibly partial when parsing reported errors), and whether
// checking succeeded overall.
type Result struct {
	Table *types.Table
	Mod   *ast.Module
	OK    bool
}

// Check lexes, parses, and type-checks src in one shot, recording
// every diagnostic (parse and sema alike) on diags. It returns
// ok==false if either stage failed, matching the (bool, diagnostics)
// contract spec §4.1/§4.4 give their own Parse/CheckModule entry
// points.
func Check(filename, src string, diags *diag.Sink, opts Options) Result {
	table := types.NewTable()
	lx := lexer.New(filename, src)
	mod, parseOK := parser.Parse(table, lx, filename, diags, opts.Parser)
	if !parseOK {
		return Result{Table: table, Mod: mod, OK: false}
	}
	checker := sema.New(table, diags, opts.Sema)
	checkOK := checker.CheckModule(mod)
	return Result{Table: table, Mod: mod, OK: checkOK}
}
