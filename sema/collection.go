package sema

import (
	"github.com/rill-lang/rillc/ast"
	"github.com/rill-lang/rillc/symbol"
	"github.com/rill-lang/rillc/token"
	"github.com/rill-lang/rillc/types"
)

// checkIndex checks `recv[index]` (spec §4.5 "Index"): the receiver
// must be a definite/indefinite array, a simd vector, or a tuple,
// yielding its element type; the index must be an integer. A tuple
// receiver additionally requires index be a literal integer constant
// in range, since a tuple's elements may have distinct types and
// there is no single element type to yield for a runtime index
// (mirrors original_source's MapExpr::check_as_map handling of
// TupleType).
func (c *Checker) checkIndex(n *ast.IndexExpr) *types.Type {
	recvT := c.checkExpr(n.Recv, nil)
	if recvT.Kind() == types.Tuple {
		return c.checkTupleIndex(recvT, n.Index, n.Loc())
	}
	idxT := c.checkExpr(n.Index, nil)
	if idxT.Kind() != types.Error && !types.IsInt(idxT.Kind()) {
		c.diags.Errorf(n.Loc(), "index must be an integer, got %s", idxT)
	}
	switch recvT.Kind() {
	case types.DefiniteArray, types.IndefiniteArray, types.Simd:
		return recvT.Elem()
	case types.Error:
		return c.table.ErrorType()
	default:
		c.diags.Errorf(n.Loc(), "cannot index into type %s", recvT)
		return c.table.ErrorType()
	}
}

// checkTupleIndex resolves a literal-integer index against a tuple's
// element types, diagnosing a non-literal index or one out of range.
func (c *Checker) checkTupleIndex(tupleT *types.Type, index ast.Expr, loc token.Location) *types.Type {
	lit, ok := index.(*ast.LiteralExpr)
	if !ok || lit.Literal.Kind != token.LitInt {
		c.checkExpr(index, nil)
		c.diags.Error(loc, "tuple index must be a literal integer constant")
		return c.table.ErrorType()
	}
	c.checkExpr(index, c.table.Primitive(types.I64))
	elems := tupleT.Elems()
	i := lit.Literal.Int
	if i < 0 || i >= int64(len(elems)) {
		c.diags.Errorf(loc, "tuple index %d out of range for %s", i, tupleT)
		return c.table.ErrorType()
	}
	return elems[i]
}

// checkField checks `recv.name` (spec §4.5 "Field"): a pointer
// receiver is implicitly dereferenced once before field lookup (spec
// §3.3 "implicit dereference when a struct field ... has pointer
// type"); the field's declared type is substituted with the struct
// app's own type arguments.
func (c *Checker) checkField(n *ast.FieldExpr) *types.Type {
	recvT := c.checkExpr(n.Recv, nil)
	target := recvT
	if target.Kind() == types.Pointer {
		deref := ast.Deref(n.Loc(), n.Recv)
		target = c.checkExpr(deref, nil)
		n.Recv = deref
	}

	if target.Kind() != types.StructApp {
		if target.Kind() != types.Error {
			c.diags.Errorf(n.Loc(), "cannot access field %q on non-struct type %s", n.Name, target)
		}
		return c.table.ErrorType()
	}

	decl := target.Abs().StructDecl()
	idx := decl.FieldIndex(n.Name)
	if idx < 0 {
		c.diags.Errorf(n.Loc(), "struct %q has no field %q", decl.Name, n.Name)
		return c.table.ErrorType()
	}
	n.FieldIndex = idx

	subst := make(map[*types.Type]*types.Type, len(decl.TypeVars))
	for i, tv := range decl.TypeVars {
		subst[tv] = target.Args()[i]
	}
	return c.table.Substitute(decl.Fields[idx].Type, subst)
}

// checkTuple checks `(e0, e1, ...)` (spec §3.3 "tuple construction"),
// propagating expected's corresponding element type when expected is
// itself a tuple of matching arity.
func (c *Checker) checkTuple(n *ast.TupleExpr, expected *types.Type) *types.Type {
	var expElems []*types.Type
	if expected != nil && expected.Kind() == types.Tuple && len(expected.Elems()) == len(n.Elems) {
		expElems = expected.Elems()
	}
	elemTypes := make([]*types.Type, len(n.Elems))
	for i, e := range n.Elems {
		var exp *types.Type
		if expElems != nil {
			exp = expElems[i]
		}
		elemTypes[i] = c.checkExpr(e, exp)
	}
	return c.table.Tuple(elemTypes...)
}

// checkArray checks a definite array literal `[e0, e1, ...]` or a
// repeated array `[e; n]` (spec §3.3 "array construction (definite and
// repeated)"), unifying every element against the first's type (or
// expected's element type, when expected is itself an array).
func (c *Checker) checkArray(n *ast.ArrayExpr, expected *types.Type) *types.Type {
	var elemExpected *types.Type
	if expected != nil {
		switch expected.Kind() {
		case types.DefiniteArray, types.IndefiniteArray:
			elemExpected = expected.Elem()
		}
	}

	if n.Repeat != nil {
		t := c.checkExpr(n.Repeat, elemExpected)
		return c.table.DefiniteArray(t, n.Count)
	}

	if len(n.Elems) == 0 {
		if elemExpected != nil {
			return c.table.DefiniteArray(elemExpected, 0)
		}
		c.diags.Error(n.Loc(), "cannot infer element type of an empty array literal")
		return c.table.DefiniteArray(c.table.ErrorType(), 0)
	}

	first := c.checkExpr(n.Elems[0], elemExpected)
	for _, e := range n.Elems[1:] {
		if t := c.checkExpr(e, first); t != nil && first != nil && !c.table.Unify(t, first) {
			c.diags.Errorf(e.Loc(), "array element: expected %s, got %s", first, t)
		}
	}
	return c.table.DefiniteArray(first, uint64(len(n.Elems)))
}

// checkSimd checks a SIMD vector literal `simd[e0, e1, ...]`: elements
// must be numeric or bool, unified against the first element's type.
func (c *Checker) checkSimd(n *ast.SimdExpr, expected *types.Type) *types.Type {
	var elemExpected *types.Type
	if expected != nil && expected.Kind() == types.Simd {
		elemExpected = expected.Elem()
	}

	if len(n.Elems) == 0 {
		c.diags.Error(n.Loc(), "a simd literal must have at least one element")
		return c.table.Simd(c.table.ErrorType(), 0)
	}

	first := c.checkExpr(n.Elems[0], elemExpected)
	for _, e := range n.Elems[1:] {
		if t := c.checkExpr(e, first); t != nil && first != nil && !c.table.Unify(t, first) {
			c.diags.Errorf(e.Loc(), "simd element: expected %s, got %s", first, t)
		}
	}
	if first.Kind() != types.Error && !types.IsNumeric(first.Kind()) && first.Kind() != types.Bool {
		c.diags.Errorf(n.Loc(), "simd element type must be numeric or bool, got %s", first)
	}
	return c.table.Simd(first, len(n.Elems))
}

// checkStructLit checks a struct construction expression (spec §3.3
// "struct construction", §4.5): every declared field must be
// initialized exactly once, each against its (type-argument
// substituted) declared field type.
func (c *Checker) checkStructLit(n *ast.StructLitExpr) *types.Type {
	decl, ok := c.table.LookupStruct(n.Path.Name)
	if !ok {
		c.diags.Errorf(n.Loc(), "unknown struct %q", n.Path.Name)
		for _, f := range n.Fields {
			c.checkExpr(f.Expr, nil)
		}
		return c.table.ErrorType()
	}

	typeArgs := n.Path.TypeArgs
	if len(typeArgs) == 0 {
		typeArgs = make([]*types.Type, len(decl.TypeVars))
		for i := range decl.TypeVars {
			typeArgs[i] = c.table.NewUnknown()
		}
	}
	subst := make(map[*types.Type]*types.Type, len(decl.TypeVars))
	for i, tv := range decl.TypeVars {
		subst[tv] = typeArgs[i]
	}
	structType := c.table.StructApp(c.table.StructAbs(decl), typeArgs)
	n.Path.SetType(structType)

	seen := make(map[symbol.ID]bool, len(n.Fields))
	for _, f := range n.Fields {
		idx := decl.FieldIndex(f.Name)
		if idx < 0 {
			c.diags.Errorf(f.Loc, "struct %q has no field %q", decl.Name, f.Name)
			c.checkExpr(f.Expr, nil)
			continue
		}
		if seen[f.Name] {
			c.diags.Errorf(f.Loc, "field %q initialized more than once", f.Name)
		}
		seen[f.Name] = true
		fieldType := c.table.Substitute(decl.Fields[idx].Type, subst)
		if t := c.checkExpr(f.Expr, fieldType); t != nil && fieldType != nil && !c.table.Unify(t, fieldType) {
			c.diags.Errorf(f.Loc, "field %q: expected %s, got %s", f.Name, fieldType, t)
		}
	}
	for _, fd := range decl.Fields {
		if !seen[fd.Name] {
			c.diags.Errorf(n.Loc(), "missing field %q in struct literal for %q", fd.Name, decl.Name)
		}
	}
	return structType
}
