package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rill-lang/rillc/ast"
	"github.com/rill-lang/rillc/symbol"
	"github.com/rill-lang/rillc/token"
	"github.com/rill-lang/rillc/types"
)

func loc() token.Location {
	p := token.Pos{File: "t.rl", Line: 1, Column: 1}
	return token.Location{Begin: p, End: p}
}

func TestTypeSlotIdempotent(t *testing.T) {
	tbl := types.NewTable()
	e := ast.NewLiteralExpr(loc(), token.Literal{Kind: token.LitInt, Int: 1})
	i32 := tbl.Primitive(types.I32)

	assert.Nil(t, e.Type())
	e.SetType(i32)
	assert.Same(t, i32, e.Type())

	assert.NotPanics(t, func() { e.SetType(i32) })
	assert.Panics(t, func() { e.SetType(tbl.Primitive(types.I64)) })
}

func TestIsLValue(t *testing.T) {
	tbl := types.NewTable()
	mutPath := ast.NewPathExpr(loc(), symbol.Intern("x"), nil)
	mutPath.Mutable = true
	assert.True(t, ast.IsLValue(mutPath))

	immPath := ast.NewPathExpr(loc(), symbol.Intern("y"), nil)
	assert.False(t, ast.IsLValue(immPath))

	i32 := tbl.Primitive(types.I32)
	ptr := tbl.Pointer(types.Owned, 0, i32)
	ptrPath := ast.NewPathExpr(loc(), symbol.Intern("p"), nil)
	ptrPath.SetType(ptr)
	deref := ast.Deref(loc(), ptrPath)
	assert.True(t, ast.IsLValue(deref))

	notDeref := ast.NewPrefixExpr(loc(), ast.NOT, immPath)
	assert.False(t, ast.IsLValue(notDeref))

	field := ast.NewFieldExpr(loc(), mutPath, symbol.Intern("f"))
	assert.True(t, ast.IsLValue(field))

	arr := tbl.DefiniteArray(i32, 4)
	arrPath := ast.NewPathExpr(loc(), symbol.Intern("a"), nil)
	arrPath.Mutable = true
	arrPath.SetType(arr)
	idx := ast.NewIndexExpr(loc(), arrPath, ast.NewLiteralExpr(loc(), token.Literal{Kind: token.LitInt, Int: 0}))
	assert.True(t, ast.IsLValue(idx))
}

func TestHandleAllocatorReservesLowHandles(t *testing.T) {
	a := ast.NewHandleAllocator()
	assert.Equal(t, ast.FirstUserHandle, a.Next())
	assert.NotEqual(t, ast.HandleMemory, ast.FirstUserHandle)
	assert.NotEqual(t, ast.HandleCond, ast.FirstUserHandle)
}

func TestBlockAndContinuationParamShape(t *testing.T) {
	tbl := types.NewTable()
	retParam := &ast.Param{Name: symbol.Intern("return"), Handle: ast.FirstUserHandle}
	fn := ast.NewFnDecl(loc(), symbol.Intern("f"), ast.Default, nil,
		[]*ast.Param{{Name: symbol.Intern("x"), Handle: ast.FirstUserHandle + 1}, retParam},
		tbl.Primitive(types.I32), ast.NewBlockExpr(loc(), nil, nil))
	assert.Same(t, retParam, fn.ContinuationParam())
}
