package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rill-lang/rillc/symbol"
	"github.com/rill-lang/rillc/types"
)

func TestPrimitivesAreSingletons(t *testing.T) {
	tbl := types.NewTable()
	assert.Same(t, tbl.Primitive(types.I32), tbl.Primitive(types.I32))
	assert.NotSame(t, tbl.Primitive(types.I32), tbl.Primitive(types.I64))
}

func TestInterningIsStructural(t *testing.T) {
	tbl := types.NewTable()
	a := tbl.Pointer(types.Owned, 0, tbl.Primitive(types.I32))
	b := tbl.Pointer(types.Owned, 0, tbl.Primitive(types.I32))
	assert.Same(t, a, b)

	c := tbl.Pointer(types.Borrowed, 0, tbl.Primitive(types.I32))
	assert.NotSame(t, a, c)
}

func TestTupleArityAndEmptyDistinctFromUnit(t *testing.T) {
	tbl := types.NewTable()
	empty := tbl.Tuple()
	assert.NotSame(t, empty, tbl.Unit())
	assert.Equal(t, types.Tuple, empty.Kind())
}

func TestArrayAndSimdInterning(t *testing.T) {
	tbl := types.NewTable()
	a1 := tbl.DefiniteArray(tbl.Primitive(types.F32), 4)
	a2 := tbl.DefiniteArray(tbl.Primitive(types.F32), 4)
	assert.Same(t, a1, a2)

	a3 := tbl.DefiniteArray(tbl.Primitive(types.F32), 8)
	assert.NotSame(t, a1, a3)

	s1 := tbl.Simd(tbl.Primitive(types.F32), 4)
	s2 := tbl.Simd(tbl.Primitive(types.F32), 4)
	assert.Same(t, s1, s2)
}

func TestFnDeclarationsAreNotStructurallySharedAcrossDistinctDecls(t *testing.T) {
	tbl := types.NewTable()
	f1 := tbl.Fn(nil, []*types.Type{tbl.Primitive(types.I32)})
	f2 := tbl.Fn(nil, []*types.Type{tbl.Primitive(types.I32)})
	assert.NotSame(t, f1, f2)
}

func TestUnifyResolvesUnknownToConcrete(t *testing.T) {
	tbl := types.NewTable()
	u := tbl.NewUnknown()
	i32 := tbl.Primitive(types.I32)
	require.True(t, tbl.Unify(u, i32))
	assert.Same(t, i32, tbl.Find(u))
}

func TestUnifyTwoUnknownsChain(t *testing.T) {
	tbl := types.NewTable()
	u1 := tbl.NewUnknown()
	u2 := tbl.NewUnknown()
	require.True(t, tbl.Unify(u1, u2))
	i32 := tbl.Primitive(types.I32)
	require.True(t, tbl.Unify(u2, i32))
	assert.Same(t, i32, tbl.Find(u1))
	assert.Same(t, i32, tbl.Find(u2))
}

func TestUnifyMismatchedPrimitivesFails(t *testing.T) {
	tbl := types.NewTable()
	assert.False(t, tbl.Unify(tbl.Primitive(types.I32), tbl.Primitive(types.I64)))
}

func TestUnifyStructurallyThroughPointer(t *testing.T) {
	tbl := types.NewTable()
	u := tbl.NewUnknown()
	p1 := tbl.Pointer(types.Owned, 0, u)
	p2 := tbl.Pointer(types.Owned, 0, tbl.Primitive(types.Bool))
	require.True(t, tbl.Unify(p1, p2))
	assert.Same(t, tbl.Primitive(types.Bool), tbl.Find(u))
}

func TestErrorTypeUnifiesWithAnything(t *testing.T) {
	tbl := types.NewTable()
	assert.True(t, tbl.Unify(tbl.ErrorType(), tbl.Primitive(types.I8)))
}

func TestSubtypeReflexiveAndThroughUnknown(t *testing.T) {
	tbl := types.NewTable()
	i32 := tbl.Primitive(types.I32)
	assert.True(t, tbl.Subtype(i32, i32))

	u := tbl.NewUnknown()
	assert.True(t, tbl.Subtype(u, i32))
	assert.Same(t, i32, tbl.Find(u))
}

func TestInstantiateSubstitutesBoundVars(t *testing.T) {
	tbl := types.NewTable()
	owner := struct{}{}
	tv := tbl.TypeVar(symbol.Intern("T"), &owner)
	fn := tbl.Fn([]types.BoundVar{{Var: tv}}, []*types.Type{tv, tv})

	i32 := tbl.Primitive(types.I32)
	instantiated := tbl.Instantiate(fn.Bound(), fn.Elems(), []*types.Type{i32})
	assert.Same(t, i32, instantiated[0])
	assert.Same(t, i32, instantiated[1])
}

func TestFreshSubstThenSubstituteYieldsDistinctUnknownsPerCall(t *testing.T) {
	tbl := types.NewTable()
	owner := struct{}{}
	tv := tbl.TypeVar(symbol.Intern("T"), &owner)
	bound := []types.BoundVar{{Var: tv}}

	s1 := tbl.FreshSubst(bound)
	s2 := tbl.FreshSubst(bound)
	assert.NotSame(t, s1[tv], s2[tv])
}

func TestIsClosedRejectsUnknownAndTypeVar(t *testing.T) {
	tbl := types.NewTable()
	assert.True(t, types.IsClosed(tbl.Primitive(types.I32)))
	assert.False(t, types.IsClosed(tbl.NewUnknown()))

	owner := struct{}{}
	tv := tbl.TypeVar(symbol.Intern("T"), &owner)
	assert.False(t, types.IsClosed(tv))

	assert.False(t, types.IsClosed(tbl.Pointer(types.Owned, 0, tv)))
}

func TestIntFloatPredicatesAreDisjoint(t *testing.T) {
	for _, k := range []types.Kind{types.I8, types.I16, types.I32, types.I64} {
		assert.True(t, types.IsSignedInt(k))
		assert.False(t, types.IsUnsignedInt(k))
		assert.True(t, types.IsInt(k))
		assert.False(t, types.IsFloat(k))
		assert.True(t, types.IsNumeric(k))
	}
	for _, k := range []types.Kind{types.U8, types.U16, types.U32, types.U64} {
		assert.True(t, types.IsUnsignedInt(k))
		assert.False(t, types.IsSignedInt(k))
		assert.True(t, types.IsNumeric(k))
	}
	for _, k := range []types.Kind{types.F32, types.F64} {
		assert.True(t, types.IsFloat(k))
		assert.False(t, types.IsInt(k))
		assert.True(t, types.IsNumeric(k))
	}
	assert.False(t, types.IsNumeric(types.Bool))
	assert.False(t, types.IsInt(types.Unit))
}

func TestStringRendersComposites(t *testing.T) {
	tbl := types.NewTable()
	p := tbl.Pointer(types.Borrowed, 0, tbl.Primitive(types.I32))
	assert.Equal(t, "&i32", p.String())

	arr := tbl.DefiniteArray(tbl.Primitive(types.U8), 16)
	assert.Equal(t, "[u8 * 16]", arr.String())
}
