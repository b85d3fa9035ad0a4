package sema

import (
	"github.com/rill-lang/rillc/ast"
	"github.com/rill-lang/rillc/types"
)

// checkIf checks `if cond { then } else { els }` (spec §4.5 "If"): cond
// must be bool; with no else-arm the construct yields unit and the
// then-arm must itself be unit-valued; with an else-arm both arms
// unify per the single-subtype rule, recording which side (if either)
// needed to widen.
func (c *Checker) checkIf(n *ast.IfExpr, expected *types.Type) *types.Type {
	condT := c.checkExpr(n.Cond, c.table.Primitive(types.Bool))
	c.requireBool(condT, n.Loc())

	thenT := c.checkBlock(n.Then, expected)
	if n.Else == nil {
		if thenT.Kind() != types.Unit && thenT.Kind() != types.Error {
			c.diags.Errorf(n.Loc(), "if without an else branch must yield (), got %s", thenT)
		}
		return c.table.Unit()
	}

	elseT := c.checkExpr(n.Else, expected)
	result := c.unifyArms(thenT, elseT, n.Loc())
	n.NeedsCastThen = thenT != result && thenT.Kind() != types.Error
	n.NeedsCastElse = elseT != result && elseT.Kind() != types.Error
	return result
}

// checkWhile checks `while cond { body }` (spec §4.5 "While"): cond
// must be bool, body is checked as a unit-expected block since a
// while-loop has no value-producing break in this language.
func (c *Checker) checkWhile(n *ast.WhileExpr) *types.Type {
	condT := c.checkExpr(n.Cond, c.table.Primitive(types.Bool))
	c.requireBool(condT, n.Loc())
	c.checkBlock(n.Body, c.table.Unit())
	n.Loop.BreakType = c.table.Unit()
	return c.table.Unit()
}

// checkFor checks `for pat in iter { body }` by desugaring it into a
// call `iter(|pat| body)` (spec §4.5 "For") and checking that call;
// the synthesized closure's parameter type is left nil so checkFnExpr
// infers it from iter's own parameter type.
func (c *Checker) checkFor(n *ast.ForExpr) *types.Type {
	param := &ast.Param{Loc: n.Loc(), Name: n.Pat, Handle: n.PatHandle}
	closure := ast.NewFnExpr(n.Loc(), []*ast.Param{param}, n.Body)
	call := ast.NewCallExpr(n.Loc(), n.Iter, nil, []ast.Expr{closure})
	c.checkExpr(call, nil)
	n.Desugared = call
	n.Loop.BreakType = c.table.Unit()
	return c.table.Unit()
}

// checkFnExpr checks an anonymous function/closure (spec §3.3
// "fn-expr", §4.5 "Fn-expr (closure)"). A parameter with no written
// annotation takes its type from the corresponding slot of expected
// (the fn-type the closure is being checked against, e.g. the
// argument position of a higher-order call) when available, else a
// fresh unknown resolved later through unification.
func (c *Checker) checkFnExpr(n *ast.FnExpr, expected *types.Type) *types.Type {
	var expectedElems []*types.Type
	if expected != nil && expected.Kind() == types.Fn {
		expectedElems = expected.Elems()
	}
	for i, p := range n.Params {
		if p.Type != nil {
			continue
		}
		if i < len(expectedElems)-1 {
			p.Type = expectedElems[i]
		} else {
			p.Type = c.table.NewUnknown()
		}
	}

	var bodyExpected *types.Type
	if len(expectedElems) > 0 {
		cont := expectedElems[len(expectedElems)-1]
		if cont.Kind() == types.Fn && len(cont.Elems()) >= 2 {
			bodyExpected = cont.Elems()[0]
		} else {
			bodyExpected = c.table.Unit()
		}
	}

	c.scope.push()
	defer c.scope.pop()
	for _, p := range n.Params {
		c.scope.bind(&Binding{Name: p.Name, Mut: p.Mut, Type: p.Type, Handle: p.Handle})
	}
	bodyT := c.checkBlock(n.Body, bodyExpected)

	argTypes := make([]*types.Type, len(n.Params)+1)
	for i, p := range n.Params {
		argTypes[i] = p.Type
	}
	argTypes[len(n.Params)] = c.continuationType(bodyT)
	return c.table.Fn(nil, argTypes)
}

// continuationType builds the synthesized trailing continuation
// parameter's fn-type for a checked result type ret, mirroring the
// parser's own construction for written function signatures.
func (c *Checker) continuationType(ret *types.Type) *types.Type {
	if ret.Kind() == types.Unit {
		return c.table.Fn(nil, []*types.Type{c.table.NoRet()})
	}
	return c.table.Fn(nil, []*types.Type{ret, c.table.NoRet()})
}

// checkCast checks `operand as target` (supplemented per SPEC_FULL
// from original_source/impala): the operand must be primitive,
// pointer, or simd; target must be a closed type (SPEC_FULL §3); and
// NeedsCast mirrors the widening rule, recording whether the source
// and target types actually differ.
func (c *Checker) checkCast(n *ast.CastExpr) *types.Type {
	t := c.checkExpr(n.Operand, nil)
	if t.Kind() != types.Error {
		switch t.Kind() {
		case types.Pointer, types.Simd:
		default:
			if !types.IsNumeric(t.Kind()) && t.Kind() != types.Bool {
				c.diags.Errorf(n.Loc(), "cannot cast from %s", t)
			}
		}
	}
	if !c.table.IsClosedTable(n.Target) {
		c.diags.Errorf(n.Loc(), "cast target %s is not a closed type", n.Target)
	}
	n.NeedsCast = t != n.Target
	return n.Target
}

// checkSizeof checks `sizeof(type-or-expr)` (supplemented per
// SPEC_FULL from original_source/impala): it always yields u64, and an
// expression operand is still type-checked (for e.g. undeclared-name
// diagnostics) even though it is never evaluated for side effects.
func (c *Checker) checkSizeof(n *ast.SizeofExpr) *types.Type {
	if n.Operand != nil {
		c.checkExpr(n.Operand, nil)
	}
	return c.table.Primitive(types.U64)
}
