// Package ast defines the abstract syntax tree the parser builds and
// the type-semantics engine annotates: node variants, the ownership
// shape each must respect, and the mutability/l-value predicates that
// fall out of that shape.
//
// The node model follows the teacher's ASTNode split (gql/ast.go): a
// narrow interface implemented by one struct per syntactic variant,
// plus free functions for cross-cutting queries (gql/ast_util.go's
// astTypes/addFuncall style) rather than a method on every variant.
package ast

import (
	"fmt"

	"github.com/rill-lang/rillc/symbol"
	"github.com/rill-lang/rillc/token"
	"github.com/rill-lang/rillc/types"
)

// NodeKind tags every Expr with a closed, dense enum for quick
// classification (the parser's isBlockLike switches on it; sema
// dispatches with a type switch instead), the same role
// original_source/impala/ast.cpp's NodeKind tag plays ahead of a
// virtual-dispatch visit.
type NodeKind int

const (
	InvalidKind NodeKind = iota
	EmptyKind
	LiteralKind
	PathKind
	PrefixKind
	InfixKind
	PostfixKind
	CallKind
	IndexKind
	FieldKind
	TupleKind
	ArrayKind
	SimdKind
	StructLitKind
	BlockKind
	IfKind
	WhileKind
	ForKind
	FnExprKind
	CastKind
	SizeofKind
)

// Expr is any expression node. Every concrete type is a pointer to a
// struct embedding exprBase.
type Expr interface {
	Loc() token.Location
	Kind() NodeKind
	String() string

	// Type returns the node's type slot, or nil if not yet checked.
	Type() *types.Type
	// SetType fills the type slot. It is idempotent: a second call
	// with the same type is a no-op; a second call with a different
	// type panics, since that would indicate the checker re-derived a
	// different answer for the same node (spec §3.3's idempotence
	// invariant, §8 "AST-type idempotence").
	SetType(t *types.Type)
}

// exprBase is embedded by every concrete Expr, the way gql/ast.go's
// node structs all start with a Pos field.
type exprBase struct {
	loc     token.Location
	kind    NodeKind
	typ     *types.Type
	typeSet bool
}

func (b *exprBase) Loc() token.Location { return b.loc }
func (b *exprBase) Kind() NodeKind      { return b.kind }
func (b *exprBase) Type() *types.Type   { return b.typ }

func (b *exprBase) SetType(t *types.Type) {
	if b.typeSet {
		if b.typ != t {
			panic(fmt.Sprintf("ast: type slot already set to %v, cannot re-set to %v", b.typ, t))
		}
		return
	}
	b.typ = t
	b.typeSet = true
}

// IsLValue reports whether e denotes an addressable, potentially
// assignable location (spec §8 "L-value closure"): true for a path to
// a mutable binding, a dereference `*e` where e : pointer, a field
// access on an l-value, and an index of an l-value array or tuple.
func IsLValue(e Expr) bool {
	switch n := e.(type) {
	case *PathExpr:
		return n.Mutable
	case *PrefixExpr:
		return n.Op == MUL
	case *FieldExpr:
		return IsLValue(n.Recv)
	case *IndexExpr:
		switch n.Recv.Type().Kind() {
		case types.DefiniteArray, types.IndefiniteArray, types.Tuple:
			return IsLValue(n.Recv)
		}
		return false
	default:
		return false
	}
}

// Param is a function or closure parameter: `mut? IDENT (":" type)?`.
// Every Param owns a unique variable Handle; handles 0 and 1 are
// reserved globally (spec §3.3: "handles 0 and 1 are reserved: memory
// token, conditional").
type Param struct {
	Loc    token.Location
	Name   symbol.ID
	Mut    bool
	Type   *types.Type
	Handle Handle
}

// Handle is a parameter's unique variable handle.
type Handle uint32

const (
	// HandleMemory is the reserved handle for the implicit memory token
	// threaded through CPS-lowered code.
	HandleMemory Handle = 0
	// HandleCond is the reserved handle for the implicit condition
	// token used by control-flow desugaring.
	HandleCond Handle = 1
	// FirstUserHandle is the first handle a real, user-visible
	// parameter may be assigned.
	FirstUserHandle Handle = 2
)

// HandleAllocator hands out strictly increasing Handles starting at
// FirstUserHandle, so handles 0 and 1 stay reserved no matter how many
// parameters a module declares.
type HandleAllocator struct {
	next Handle
}

// NewHandleAllocator creates an allocator whose first issued handle is
// FirstUserHandle.
func NewHandleAllocator() *HandleAllocator {
	return &HandleAllocator{next: FirstUserHandle}
}

// Next returns a fresh handle.
func (a *HandleAllocator) Next() Handle {
	h := a.next
	a.next++
	return h
}
