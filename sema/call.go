package sema

import (
	"github.com/rill-lang/rillc/ast"
	"github.com/rill-lang/rillc/diag"
	"github.com/rill-lang/rillc/token"
	"github.com/rill-lang/rillc/types"
)

// checkCall checks a function/method call expression (spec §4.5
// "Call"). A callee shaped like `recv.name(...)` is first tried as a
// method dispatch (spec §8 "Method rewriting"); if no method resolves,
// it falls back to checking `recv.name` as an ordinary field access
// that happens to hold a function value.
func (c *Checker) checkCall(n *ast.CallExpr, expected *types.Type) *types.Type {
	if fe, ok := n.Callee.(*ast.FieldExpr); ok {
		if result, handled := c.tryMethodCall(n, fe, expected); handled {
			return result
		}
	}

	var bound []types.BoundVar
	if path, ok := n.Callee.(*ast.PathExpr); ok {
		if fn, ok2 := c.fns[path.Name]; ok2 {
			bound = boundFromTypeParams(fn.TypeParams)
		}
	}
	calleeType := c.checkExpr(n.Callee, nil)
	switch calleeType.Kind() {
	case types.DefiniteArray, types.IndefiniteArray, types.Simd, types.Tuple:
		return c.checkCallAsIndex(n, calleeType)
	}
	return c.checkCallAgainstFn(n, calleeType, bound)
}

// checkCallAsIndex handles a call whose callee is an array, simd
// vector, or tuple value rather than a function (spec §4.5 "Call
// (MapExpr)"): a single-argument call on such a value is sugar for
// indexing, mirroring original_source's MapExpr::check_as_map handling
// of ArrayType/SimdType/TupleType.
func (c *Checker) checkCallAsIndex(n *ast.CallExpr, recvT *types.Type) *types.Type {
	if len(n.Args) != 1 {
		c.diags.Errorf(n.Loc(), "expected 1 subscript argument, got %d", len(n.Args))
		for _, a := range n.Args {
			c.checkExpr(a, nil)
		}
		return c.table.ErrorType()
	}
	if recvT.Kind() == types.Tuple {
		return c.checkTupleIndex(recvT, n.Args[0], n.Loc())
	}
	idxT := c.checkExpr(n.Args[0], nil)
	if idxT.Kind() != types.Error && !types.IsInt(idxT.Kind()) {
		c.diags.Errorf(n.Loc(), "subscript must be an integer, got %s", idxT)
	}
	return recvT.Elem()
}

// tryMethodCall attempts to resolve fe as `recv.method(...)` (spec §4.5
// "Call (method dispatch)", step-by-step per the engine's check_call
// algorithm): if recv's type (after at most one pointer dereference)
// has an ordinary field of that name, this is not a method call at all
// and the caller should fall back to plain field-access checking.
// Otherwise it searches the impl/trait store, and on a match rewrites n
// in place (prepending the receiver to Args, spec §8 scenario 7's
// `(3).m()` -> `T::m(3)`).
func (c *Checker) tryMethodCall(n *ast.CallExpr, fe *ast.FieldExpr, expected *types.Type) (*types.Type, bool) {
	recvT := c.checkExpr(fe.Recv, nil)
	if recvT.Kind() == types.Error {
		return nil, false
	}

	target := recvT
	recvArg := fe.Recv
	if target.Kind() == types.Pointer {
		elem := target.Elem()
		if elem.Kind() == types.StructApp && elem.Abs().StructDecl().FieldIndex(fe.Name) >= 0 {
			return nil, false
		}
		target = elem
		deref := ast.Deref(fe.Loc(), fe.Recv)
		c.checkExpr(deref, nil)
		recvArg = deref
	} else if target.Kind() == types.StructApp && target.Abs().StructDecl().FieldIndex(fe.Name) >= 0 {
		return nil, false
	}

	impl, method, implSubst, ok := c.findMethod(target, fe.Name)
	if !ok {
		return nil, false
	}

	subst := make(map[*types.Type]*types.Type, len(implSubst)+len(method.Bound)+1)
	for k, v := range implSubst {
		subst[k] = v
	}
	if impl.Trait != nil {
		subst[impl.Trait.Trait().Self] = target
	}
	for _, bv := range method.Bound {
		subst[bv.Var] = c.table.NewUnknown()
	}

	if len(n.ExplicitTypeArgs) > 0 {
		if len(n.ExplicitTypeArgs) != len(method.Bound) {
			c.diags.Errorf(n.Loc(), "method %q takes %d explicit type argument(s), got %d", fe.Name, len(method.Bound), len(n.ExplicitTypeArgs))
		} else {
			for i, bv := range method.Bound {
				c.table.Infer(subst[bv.Var], n.ExplicitTypeArgs[i])
			}
		}
	}

	elems := make([]*types.Type, len(method.Elems))
	for i, e := range method.Elems {
		elems[i] = c.table.Substitute(e, subst)
	}

	n.Args = append([]ast.Expr{recvArg}, n.Args...)
	n.Rewritten = true
	c.checkCallArgs(n, elems, n.Loc())
	c.verifyBounds(method.Bound, subst, n.Loc())
	c.verifyBounds(impl.Bound, implSubst, n.Loc())

	fe.SetType(method.Fn)
	return c.callResultType(elems), true
}

// checkCallAgainstFn checks n's arguments against fnType, a concrete
// (possibly polymorphic, over bound) function type, implementing the
// core of spec §4.4 step 2-6: fill any remaining type parameters with
// fresh unknowns, unify explicit type arguments (if supplied) into
// them, instantiate the signature, then check each argument against
// its instantiated parameter type (letting that argument's own
// checking further resolve any still-unknown type parameters via
// unification), and finally verify the resolved bounds.
func (c *Checker) checkCallAgainstFn(n *ast.CallExpr, fnType *types.Type, bound []types.BoundVar) *types.Type {
	if fnType.Kind() != types.Fn {
		if fnType.Kind() != types.Error {
			c.diags.Errorf(n.Loc(), "cannot call non-function type %s", fnType)
		}
		for _, a := range n.Args {
			c.checkExpr(a, nil)
		}
		return c.table.ErrorType()
	}

	subst := c.table.FreshSubst(bound)
	if len(n.ExplicitTypeArgs) > 0 {
		if len(n.ExplicitTypeArgs) != len(bound) {
			c.diags.Errorf(n.Loc(), "expected %d explicit type argument(s), got %d", len(bound), len(n.ExplicitTypeArgs))
		} else {
			for i, bv := range bound {
				c.table.Infer(subst[bv.Var], n.ExplicitTypeArgs[i])
			}
		}
	}

	elems := make([]*types.Type, len(fnType.Elems()))
	for i, e := range fnType.Elems() {
		elems[i] = c.table.Substitute(e, subst)
	}

	c.checkCallArgs(n, elems, n.Loc())
	c.verifyBounds(bound, subst, n.Loc())
	return c.callResultType(elems)
}

// checkCallArgs matches n.Args one-to-one against elems minus its
// trailing synthesized continuation slot, diagnosing an arity mismatch
// and checking each argument against its instantiated parameter type.
func (c *Checker) checkCallArgs(n *ast.CallExpr, elems []*types.Type, loc token.Location) {
	want := len(elems) - 1
	if want < 0 {
		want = 0
	}
	if len(n.Args) != want {
		c.diags.Errorf(loc, "expected %d argument(s), got %d", want, len(n.Args))
	}
	for i, arg := range n.Args {
		if i < len(elems)-1 {
			if t := c.checkExpr(arg, elems[i]); t != nil && elems[i] != nil && t.Kind() != types.NoRet && !c.table.Unify(t, elems[i]) {
				c.diags.Errorf(arg.Loc(), "argument %d: expected %s, got %s", i+1, elems[i], t)
			}
		} else {
			c.checkExpr(arg, nil)
		}
	}
}

// callResultType recovers a call's result type from its instantiated
// parameter list's trailing continuation slot — `fn(R) -> ()` yields
// R, `fn() -> ()` yields unit — the same CPS convention parser.types
// uses to build that slot in the first place.
func (c *Checker) callResultType(elems []*types.Type) *types.Type {
	if len(elems) == 0 {
		return c.table.Unit()
	}
	cont := elems[len(elems)-1]
	// A value-carrying continuation is Fn([R, NoRet]); a unit one is
	// Fn([NoRet]), whose only element is the NoRet marker, not a result.
	if cont.Kind() == types.Fn && len(cont.Elems()) >= 2 {
		return cont.Elems()[0]
	}
	return c.table.Unit()
}

// verifyBounds checks that every bound type variable resolved to a
// concrete type (spec §4.5 step 7, §8 "Bound soundness" — an
// unbounded type parameter that inference never pinned down is still
// unsound to let through silently) and that the resolved value
// satisfies the trait bounds it was declared with (spec §4.6 "bound
// verification"), suppressing the diagnostic when the resolved value
// is itself the error type (spec §4.6: errors never cascade).
func (c *Checker) verifyBounds(bound []types.BoundVar, subst map[*types.Type]*types.Type, loc token.Location) {
	for _, bv := range c.table.SpecializeMap(bound, subst) {
		resolved := c.table.Find(bv.Var)
		if resolved.Kind() == types.Error {
			continue
		}
		if resolved.Kind() == types.Unknown {
			c.diags.Errorf(loc, "cannot infer type for type parameter %s", bv.Var)
			continue
		}
		for _, traitApp := range bv.Bounds {
			diag.Tracef(loc, "bound check: does %s implement %s?", resolved, traitApp)
			if _, _, ok := c.implements(traitApp, resolved); !ok {
				c.diags.Errorf(loc, "type %s does not implement %s", resolved, traitApp)
			}
		}
	}
}

func boundFromTypeParams(tps []ast.TypeParam) []types.BoundVar {
	out := make([]types.BoundVar, len(tps))
	for i, tp := range tps {
		out[i] = types.BoundVar{Var: tp.Var, Bounds: tp.Bounds}
	}
	return out
}
