package sema

import (
	"github.com/rill-lang/rillc/ast"
	"github.com/rill-lang/rillc/token"
	"github.com/rill-lang/rillc/types"
)

// checkInfix checks an infix-operator expression (spec §4.5 "Infix
// operators"): equality requires unifiable operands of a primitive,
// pointer, or simd type; ordered comparison and arithmetic require
// numeric operands; shift operators require integer operands; bitwise
// operators require unifiable integer or bool operands; logical operators
// require bool; assignment (plain or compound) requires a mutable
// l-value left-hand side.
func (c *Checker) checkInfix(n *ast.InfixExpr, expected *types.Type) *types.Type {
	if n.Op == ast.ASSIGN {
		return c.checkAssign(n)
	}
	if n.Op.IsCompoundAssign() {
		return c.checkCompoundAssign(n)
	}

	switch n.Op {
	case ast.EQ, ast.NE:
		lt := c.checkExpr(n.LHS, nil)
		rt := c.checkExpr(n.RHS, lt)
		if !c.table.Unify(lt, rt) && lt.Kind() != types.Error && rt.Kind() != types.Error {
			c.diags.Errorf(n.Loc(), "cannot compare %s and %s", lt, rt)
		}
		c.requireComparable(lt, n.Loc())
		return c.comparisonResult(lt)

	case ast.LT, ast.LE, ast.GT, ast.GE:
		lt := c.checkExpr(n.LHS, nil)
		rt := c.checkExpr(n.RHS, lt)
		c.requireOrderable(lt, n.Loc())
		c.requireOrderable(rt, n.Loc())
		return c.comparisonResult(lt)

	case ast.LAND, ast.LOR:
		lt := c.checkExpr(n.LHS, c.table.Primitive(types.Bool))
		rt := c.checkExpr(n.RHS, c.table.Primitive(types.Bool))
		c.requireBool(lt, n.Loc())
		c.requireBool(rt, n.Loc())
		return c.table.Primitive(types.Bool)

	case ast.ADD_, ast.SUB_, ast.MUL_, ast.DIV, ast.REM:
		lt := c.checkExpr(n.LHS, expected)
		rt := c.checkExpr(n.RHS, lt)
		c.requireNumeric(lt, n.Loc())
		c.requireNumeric(rt, n.Loc())
		return lt

	case ast.SHL, ast.SHR:
		lt := c.checkExpr(n.LHS, expected)
		rt := c.checkExpr(n.RHS, nil)
		if lt.Kind() != types.Error && !types.IsInt(lt.Kind()) {
			c.diags.Errorf(n.Loc(), "expected an integer type, got %s", lt)
		}
		if rt.Kind() != types.Error && !types.IsInt(rt.Kind()) {
			c.diags.Errorf(n.Loc(), "shift amount must be an integer, got %s", rt)
		}
		return lt

	case ast.BAND, ast.BOR, ast.BXOR:
		lt := c.checkExpr(n.LHS, expected)
		rt := c.checkExpr(n.RHS, lt)
		if lt.Kind() != types.Error && !types.IsInt(lt.Kind()) && lt.Kind() != types.Bool {
			c.diags.Errorf(n.Loc(), "expected an integer or bool type, got %s", lt)
		}
		if !c.table.Unify(lt, rt) && lt.Kind() != types.Error && rt.Kind() != types.Error {
			c.diags.Errorf(n.Loc(), "mismatched operand types %s and %s", lt, rt)
		}
		return lt

	default:
		return c.table.ErrorType()
	}
}

// checkAssign checks a plain `lhs = rhs` (spec §4.5 "Infix operators":
// assignment requires a mutable l-value left-hand side). It yields the
// assigned-to type, so a chained assignment `a = b = c` type-checks.
func (c *Checker) checkAssign(n *ast.InfixExpr) *types.Type {
	lt := c.checkExpr(n.LHS, nil)
	c.checkExpr(n.RHS, lt)
	if !ast.IsLValue(n.LHS) {
		c.diags.Error(n.Loc(), "left-hand side of assignment is not an assignable location")
	} else {
		c.requireMutable(n.LHS)
	}
	return lt
}

// checkCompoundAssign checks `lhs op= rhs`, reusing the base
// (non-assigning) operator's operand constraints against lhs's own
// type before storing back into lhs (spec §4.5: "operand constraints
// of the base operator").
func (c *Checker) checkCompoundAssign(n *ast.InfixExpr) *types.Type {
	lt := c.checkExpr(n.LHS, nil)
	rt := c.checkExpr(n.RHS, lt)
	if !ast.IsLValue(n.LHS) {
		c.diags.Error(n.Loc(), "left-hand side of assignment is not an assignable location")
	} else {
		c.requireMutable(n.LHS)
	}
	switch n.Op.BaseOp() {
	case ast.SHL, ast.SHR:
		if lt.Kind() != types.Error && !types.IsInt(lt.Kind()) {
			c.diags.Errorf(n.Loc(), "expected an integer type, got %s", lt)
		}
		if rt.Kind() != types.Error && !types.IsInt(rt.Kind()) {
			c.diags.Errorf(n.Loc(), "shift amount must be an integer, got %s", rt)
		}
	case ast.BAND, ast.BOR, ast.BXOR:
		if lt.Kind() != types.Error && !types.IsInt(lt.Kind()) && lt.Kind() != types.Bool {
			c.diags.Errorf(n.Loc(), "expected an integer or bool type, got %s", lt)
		}
	default:
		c.requireNumeric(lt, n.Loc())
		c.requireNumeric(rt, n.Loc())
	}
	return lt
}

// requireComparable checks t is one of the operand kinds spec §4.5
// allows for equality comparison: a primitive, a pointer, or a simd
// vector (tuples, structs, fns, and the like are not comparable).
func (c *Checker) requireComparable(t *types.Type, loc token.Location) {
	if t.Kind() == types.Error {
		return
	}
	switch t.Kind() {
	case types.Bool, types.Pointer, types.Simd:
		return
	default:
		if types.IsNumeric(t.Kind()) {
			return
		}
	}
	c.diags.Errorf(loc, "cannot compare operand of type %s", t)
}

// requireOrderable checks t is an operand kind spec §4.5 allows for
// ordered comparison: a numeric type, or a simd vector of a numeric
// type.
func (c *Checker) requireOrderable(t *types.Type, loc token.Location) {
	if t.Kind() == types.Error {
		return
	}
	if t.Kind() == types.Simd {
		if !types.IsNumeric(t.Elem().Kind()) {
			c.diags.Errorf(loc, "cannot order-compare simd of %s", t.Elem())
		}
		return
	}
	c.requireNumeric(t, loc)
}

// comparisonResult returns the result type of a comparison over
// operand type t: simd-of-bool when t is itself a simd vector (spec
// §4.5 "(or simd-of-bool for simd operands)"), scalar bool otherwise.
func (c *Checker) comparisonResult(t *types.Type) *types.Type {
	if t.Kind() == types.Simd {
		return c.table.Simd(c.table.Primitive(types.Bool), t.Lanes())
	}
	return c.table.Primitive(types.Bool)
}

func (c *Checker) requireMutable(e ast.Expr) {
	if path, ok := e.(*ast.PathExpr); ok && !path.Mutable {
		c.diags.Errorf(e.Loc(), "cannot assign to immutable local %q", path.Name)
	}
}

// checkTernary checks `cond ? then : els` (spec §4.1, parsed
// right-associative): cond must be bool, then/els must unify to a
// common type with the same widening rule as if-arms.
func (c *Checker) checkTernary(n *ast.TernaryExpr, expected *types.Type) *types.Type {
	ct := c.checkExpr(n.Cond, c.table.Primitive(types.Bool))
	c.requireBool(ct, n.Loc())
	thenT := c.checkExpr(n.Then, expected)
	elseT := c.checkExpr(n.Else, thenT)
	return c.unifyArms(thenT, elseT, n.Loc())
}

// checkPostfix checks `operand++`/`operand--` (spec §4.5 "Postfix"):
// same operand constraints as the prefix form, yielding the
// pre-increment value's type.
func (c *Checker) checkPostfix(n *ast.PostfixExpr) *types.Type {
	t := c.checkExpr(n.Operand, nil)
	c.requireMutable(n.Operand)
	if !ast.IsLValue(n.Operand) {
		c.diags.Error(n.Loc(), "operand must be an assignable location")
	}
	c.requireNumeric(t, n.Loc())
	return t
}

// unifyArms implements the single subtype rule spec §4.4 describes for
// two-armed constructs (if/ternary): one arm's type must be a subtype
// of the other's, and whichever side needed to widen to match is not
// recorded here (callers that care, like checkIf, compare directly).
func (c *Checker) unifyArms(a, b *types.Type, loc token.Location) *types.Type {
	if c.table.Subtype(b, a) {
		return a
	}
	if c.table.Subtype(a, b) {
		return b
	}
	if a.Kind() != types.Error && b.Kind() != types.Error {
		c.diags.Errorf(loc, "incompatible branch types %s and %s", a, b)
	}
	return c.table.ErrorType()
}
