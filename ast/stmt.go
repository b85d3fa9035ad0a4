package ast

import (
	"fmt"

	"github.com/rill-lang/rillc/symbol"
	"github.com/rill-lang/rillc/token"
	"github.com/rill-lang/rillc/types"
)

// Stmt is a statement: expression-statement, item-statement, or
// let-statement (spec §3.3).
type Stmt interface {
	Loc() token.Location
	String() string
}

// ExprStmt is a bare expression used as a statement.
type ExprStmt struct {
	loc  token.Location
	Expr Expr
}

// NewExprStmt creates an ExprStmt.
func NewExprStmt(loc token.Location, e Expr) *ExprStmt { return &ExprStmt{loc, e} }

func (s *ExprStmt) Loc() token.Location { return s.loc }
func (s *ExprStmt) String() string      { return s.Expr.String() }

// ItemStmt wraps a local item declaration (e.g. a nested fn) used as a
// statement.
type ItemStmt struct {
	loc  token.Location
	Item Item
}

// NewItemStmt creates an ItemStmt.
func NewItemStmt(loc token.Location, it Item) *ItemStmt { return &ItemStmt{loc, it} }

func (s *ItemStmt) Loc() token.Location { return s.loc }
func (s *ItemStmt) String() string      { return s.Item.String() }

// LetStmt is `let mut? NAME (":" type)? ("=" init)? ";"` (spec §3.3:
// "let-statement (with declaration pattern and optional initializer)").
type LetStmt struct {
	loc         token.Location
	Name        symbol.ID
	Mut         bool
	Handle      Handle
	Annotated   *types.Type // nil if no ": type" annotation was written.
	Init        Expr        // nil if no initializer.
	Unused      bool        // set by sema if never referenced (mut-local warning, spec §4.5 "Block").
	InferredTyp *types.Type // the local's final type, once checked.
}

// NewLetStmt creates a LetStmt.
func NewLetStmt(loc token.Location, name symbol.ID, mut bool, handle Handle, annotated *types.Type, init Expr) *LetStmt {
	return &LetStmt{loc: loc, Name: name, Mut: mut, Handle: handle, Annotated: annotated, Init: init}
}

func (s *LetStmt) Loc() token.Location { return s.loc }

func (s *LetStmt) String() string {
	mut := ""
	if s.Mut {
		mut = "mut "
	}
	if s.Init != nil {
		return fmt.Sprintf("let %s%s = %s", mut, s.Name, s.Init)
	}
	return fmt.Sprintf("let %s%s", mut, s.Name)
}
