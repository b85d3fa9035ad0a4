package sema

import (
	"github.com/rill-lang/rillc/ast"
	"github.com/rill-lang/rillc/token"
	"github.com/rill-lang/rillc/types"
)

// checkExpr is the engine's single entry point for expression checking
// (spec §4.4 "check(node, expected, context?)"). It is idempotent: a
// node already carrying a type is returned as-is without re-deriving
// (spec §8 "AST-type idempotence"); Expr.SetType itself enforces this
// by panicking on a conflicting second SetType, so this function takes
// care never to attempt one.
func (c *Checker) checkExpr(e ast.Expr, expected *types.Type) *types.Type {
	if t := e.Type(); t != nil {
		return t
	}
	var result *types.Type
	switch n := e.(type) {
	case *ast.EmptyExpr:
		result = c.table.Unit()
	case *ast.LiteralExpr:
		result = c.literalType(n.Literal, expected)
	case *ast.PathExpr:
		result = c.checkPath(n, expected)
	case *ast.PrefixExpr:
		result = c.checkPrefix(n, expected)
	case *ast.InfixExpr:
		result = c.checkInfix(n, expected)
	case *ast.TernaryExpr:
		result = c.checkTernary(n, expected)
	case *ast.PostfixExpr:
		result = c.checkPostfix(n)
	case *ast.CallExpr:
		result = c.checkCall(n, expected)
	case *ast.IndexExpr:
		result = c.checkIndex(n)
	case *ast.FieldExpr:
		result = c.checkField(n)
	case *ast.TupleExpr:
		result = c.checkTuple(n, expected)
	case *ast.ArrayExpr:
		result = c.checkArray(n, expected)
	case *ast.SimdExpr:
		result = c.checkSimd(n, expected)
	case *ast.StructLitExpr:
		result = c.checkStructLit(n)
	case *ast.BlockExpr:
		result = c.checkBlock(n, expected)
	case *ast.IfExpr:
		result = c.checkIf(n, expected)
	case *ast.WhileExpr:
		result = c.checkWhile(n)
	case *ast.ForExpr:
		result = c.checkFor(n)
	case *ast.FnExpr:
		result = c.checkFnExpr(n, expected)
	case *ast.CastExpr:
		result = c.checkCast(n)
	case *ast.SizeofExpr:
		result = c.checkSizeof(n)
	default:
		result = c.table.ErrorType()
	}
	e.SetType(result)
	return result
}

// checkPath resolves a bare identifier reference (spec §3.3 "path",
// §4.5 "Path"): a local binding (parameter or let), else a top-level
// function, populating Decl/Mutable/AddressTaken as sema's narrow
// local-binding step in lieu of full name resolution.
func (c *Checker) checkPath(n *ast.PathExpr, expected *types.Type) *types.Type {
	if bind, ok := c.scope.lookup(n.Name); ok {
		bind.Used = true
		n.Decl = bind
		n.Mutable = bind.Mut
		if c.opts.NoSSA && bind.Mut {
			n.AddressTaken = true
		}
		return bind.Type
	}
	if fn, ok := c.fns[n.Name]; ok {
		n.Decl = fn
		return fn.FnType
	}
	c.diags.Errorf(n.Loc(), "undeclared name %q", n.Name)
	return c.table.ErrorType()
}

// checkPrefix checks a prefix-operator expression (spec §4.5 "Prefix
// operators"): `&e` borrows e's address (requiring e be an l-value),
// `~e` allocates an owned pointer initialized from e, `*e` dereferences
// a pointer, `++e`/`--e` require a mutable numeric l-value, `+e`/`-e`
// require a numeric operand, `!e` requires a bool, an integer, or a
// simd of bool and yields the operand's type, `run e`/`halt e`
// evaluate e for its side effect and yield unit/noret respectively.
func (c *Checker) checkPrefix(n *ast.PrefixExpr, expected *types.Type) *types.Type {
	switch n.Op {
	case ast.AND:
		operandExpected := (*types.Type)(nil)
		if expected != nil && expected.Kind() == types.Pointer {
			operandExpected = expected.Elem()
		}
		t := c.checkExpr(n.Operand, operandExpected)
		if !ast.IsLValue(n.Operand) {
			c.diags.Errorf(n.Loc(), "cannot take the address of a non-lvalue expression")
		}
		if path, ok := n.Operand.(*ast.PathExpr); ok {
			path.AddressTaken = true
		}
		return c.table.Pointer(types.Borrowed, 0, t)
	case ast.TILDE:
		operandExpected := (*types.Type)(nil)
		if expected != nil && expected.Kind() == types.Pointer {
			operandExpected = expected.Elem()
		}
		t := c.checkExpr(n.Operand, operandExpected)
		return c.table.Pointer(types.Owned, 0, t)
	case ast.MUL:
		t := c.checkExpr(n.Operand, nil)
		if t.Kind() != types.Pointer {
			if t.Kind() != types.Error {
				c.diags.Errorf(n.Loc(), "cannot dereference non-pointer type %s", t)
			}
			return c.table.ErrorType()
		}
		return t.Elem()
	case ast.INC, ast.DEC:
		t := c.checkExpr(n.Operand, nil)
		c.requireMutableLValue(n.Operand, n.Loc())
		c.requireNumeric(t, n.Loc())
		return t
	case ast.ADD, ast.SUB:
		t := c.checkExpr(n.Operand, expected)
		c.requireNumeric(t, n.Loc())
		return t
	case ast.NOT:
		t := c.checkExpr(n.Operand, nil)
		switch {
		case t.Kind() == types.Error:
		case t.Kind() == types.Bool:
		case types.IsInt(t.Kind()):
		case t.Kind() == types.Simd && t.Elem().Kind() == types.Bool:
		default:
			c.diags.Errorf(n.Loc(), "cannot apply ! to type %s", t)
		}
		return t
	case ast.RUN:
		c.checkExpr(n.Operand, nil)
		return c.table.Unit()
	case ast.HLT:
		c.checkExpr(n.Operand, nil)
		return c.table.NoRet()
	default:
		return c.table.ErrorType()
	}
}

func (c *Checker) requireMutableLValue(e ast.Expr, loc token.Location) {
	if !ast.IsLValue(e) {
		c.diags.Error(loc, "operand must be an assignable location")
	}
}

func (c *Checker) requireNumeric(t *types.Type, loc token.Location) {
	if t.Kind() != types.Error && !types.IsNumeric(t.Kind()) {
		c.diags.Errorf(loc, "expected a numeric type, got %s", t)
	}
}

func (c *Checker) requireBool(t *types.Type, loc token.Location) {
	if t.Kind() != types.Error && t.Kind() != types.Bool {
		c.diags.Errorf(loc, "expected bool, got %s", t)
	}
}
