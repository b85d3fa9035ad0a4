// Package sema implements the type-semantics engine: expected-type
// propagated inference, trait-bound resolution, polymorphic call
// checking with partial type-argument inference, method dispatch, and
// l-value/mutability analysis over the AST the parser package builds.
//
// Name resolution proper (binding a PathExpr to the declaration it
// refers to) is an external collaborator the rest of this module never
// implements; but without it sema has nothing to check against. This
// package carries a narrow, self-contained local-binding step — no
// more than lexical scoping of parameters and let-locals — just
// sufficient to populate PathExpr.Decl/Mutable for the expressions
// this checker actually evaluates, the same role token/symbol/lexer
// play as narrow external-collaborator stand-ins elsewhere in this
// module.
package sema

import (
	"github.com/rill-lang/rillc/ast"
	"github.com/rill-lang/rillc/symbol"
	"github.com/rill-lang/rillc/types"
)

// Binding is the concrete value a PathExpr.Decl carries once sema's
// local scope step resolves it: a parameter, let-local, or static.
// Top-level functions are not Bindings; checkPath resolves them
// through Checker.fns and stores the *ast.FnDecl in Decl.
type Binding struct {
	Name   symbol.ID
	Mut    bool
	Type   *types.Type
	Handle ast.Handle
	// Used records whether this binding was ever referenced by a
	// PathExpr, so a mutable local that is only ever initialized can be
	// flagged (spec §4.5 "Block": unused-mutable-local warning).
	Used bool

	// Fn is never set by this package: calls recover a top-level
	// function's bound type variables from Checker.fns instead.
	Fn *ast.FnDecl
}

// frame holds one lexical scope's bindings, keyed by name.
type frame map[symbol.ID]*Binding

// scope is a stack of frames, walked innermost-first on lookup —
// directly grounded on the teacher's aiBindings/aiFrame pattern
// (gql/ai.go), repurposed here from AI-typed dataframe columns to
// local variable bindings.
type scope struct {
	frames []frame
}

func (s *scope) push() {
	s.frames = append(s.frames, frame{})
}

func (s *scope) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

func (s *scope) bind(b *Binding) {
	s.frames[len(s.frames)-1][b.Name] = b
}

func (s *scope) lookup(name symbol.ID) (*Binding, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if b, ok := s.frames[i][name]; ok {
			return b, true
		}
	}
	return nil, false
}
