package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rill-lang/rillc/symbol"
	"github.com/rill-lang/rillc/types"
)

func declareEq(t *testing.T, tbl *types.Table) (*types.TraitDecl, *types.Type) {
	t.Helper()
	owner := struct{ name string }{"Eq"}
	self := tbl.TypeVar(symbol.Intern("Self$Eq"), &owner)
	eq, err := types.NewTrait(symbol.Intern("Eq"), self, nil, nil)
	require.NoError(t, err)
	require.NoError(t, eq.AddMethod(&types.Method{
		Name:   symbol.Intern("eq"),
		Elems:  []*types.Type{self, self},
		Result: tbl.Primitive(types.Bool),
	}))
	return eq, self
}

func TestFindMethodDirect(t *testing.T) {
	tbl := types.NewTable()
	eq, _ := declareEq(t, tbl)

	owner, m, ok := eq.FindMethod(symbol.Intern("eq"))
	assert.True(t, ok)
	assert.Same(t, eq, owner)
	assert.Equal(t, symbol.Intern("eq"), m.Name)

	_, _, ok = eq.FindMethod(symbol.Intern("cmp"))
	assert.False(t, ok)
}

func TestDuplicateSuperTraitIsRejected(t *testing.T) {
	tbl := types.NewTable()
	eq, eqSelf := declareEq(t, tbl)

	ordOwner := struct{ name string }{"Ord"}
	ordSelf := tbl.TypeVar(symbol.Intern("Self$Ord"), &ordOwner)
	eqBound := tbl.TraitApp(eq, ordSelf, nil)
	_ = eqSelf

	_, err := types.NewTrait(symbol.Intern("Ord"), ordSelf, nil, []*types.Type{eqBound, eqBound})
	assert.Error(t, err)
}

func TestFindMethodTransitsSuperTrait(t *testing.T) {
	tbl := types.NewTable()
	eq, _ := declareEq(t, tbl)

	ordOwner := struct{ name string }{"Ord"}
	ordSelf := tbl.TypeVar(symbol.Intern("Self$Ord"), &ordOwner)
	eqBound := tbl.TraitApp(eq, ordSelf, nil)

	ord, err := types.NewTrait(symbol.Intern("Ord"), ordSelf, nil, []*types.Type{eqBound})
	require.NoError(t, err)
	require.NoError(t, ord.AddMethod(&types.Method{
		Name:   symbol.Intern("cmp"),
		Elems:  []*types.Type{ordSelf, ordSelf},
		Result: tbl.Primitive(types.I32),
	}))

	owner, m, ok := ord.FindMethod(symbol.Intern("eq"))
	assert.True(t, ok)
	assert.Same(t, eq, owner)
	assert.Equal(t, symbol.Intern("eq"), m.Name)

	_, m2, ok := ord.FindMethod(symbol.Intern("cmp"))
	assert.True(t, ok)
	assert.Equal(t, symbol.Intern("cmp"), m2.Name)
}

func TestAddMethodRejectsRedeclaredInheritedName(t *testing.T) {
	tbl := types.NewTable()
	eq, _ := declareEq(t, tbl)

	ordOwner := struct{ name string }{"Ord"}
	ordSelf := tbl.TypeVar(symbol.Intern("Self$Ord2"), &ordOwner)
	eqBound := tbl.TraitApp(eq, ordSelf, nil)
	ord, err := types.NewTrait(symbol.Intern("Ord2"), ordSelf, nil, []*types.Type{eqBound})
	require.NoError(t, err)

	err = ord.AddMethod(&types.Method{Name: symbol.Intern("eq"), Elems: nil, Result: tbl.Primitive(types.Bool)})
	assert.Error(t, err)
}

func TestImplementsMatchesTargetAndTrait(t *testing.T) {
	tbl := types.NewTable()
	eq, eqSelf := declareEq(t, tbl)

	i32 := tbl.Primitive(types.I32)
	implTrait := tbl.TraitApp(eq, i32, nil)
	impl := &types.Impl{Trait: implTrait, Target: i32}
	impl.AddMethod(&types.Method{Name: symbol.Intern("eq"), Elems: []*types.Type{i32, i32}, Result: tbl.Primitive(types.Bool)})
	tbl.AddImpl(impl)

	found, _, ok := tbl.Implements(tbl.TraitApp(eq, i32, nil), i32)
	assert.True(t, ok)
	assert.Same(t, impl, found)

	_, _, ok = tbl.Implements(tbl.TraitApp(eq, tbl.Primitive(types.I64), nil), tbl.Primitive(types.I64))
	assert.False(t, ok)
	_ = eqSelf
}

func TestFindMethodOnTargetViaImpl(t *testing.T) {
	tbl := types.NewTable()
	eq, _ := declareEq(t, tbl)

	i32 := tbl.Primitive(types.I32)
	implTrait := tbl.TraitApp(eq, i32, nil)
	impl := &types.Impl{Trait: implTrait, Target: i32}
	impl.AddMethod(&types.Method{Name: symbol.Intern("eq"), Elems: []*types.Type{i32, i32}, Result: tbl.Primitive(types.Bool)})
	tbl.AddImpl(impl)

	foundImpl, m, _, ok := tbl.FindMethod(i32, symbol.Intern("eq"))
	assert.True(t, ok)
	assert.Same(t, impl, foundImpl)
	assert.Equal(t, symbol.Intern("eq"), m.Name)

	_, _, _, ok = tbl.FindMethod(i32, symbol.Intern("nope"))
	assert.False(t, ok)
}

func TestImplGenericOverBoundVarUnifiesThroughFreshUnknown(t *testing.T) {
	tbl := types.NewTable()
	eq, _ := declareEq(t, tbl)

	implOwner := struct{}{}
	tv := tbl.TypeVar(symbol.Intern("T"), &implOwner)
	ptrT := tbl.Pointer(types.Owned, 0, tv)
	implTrait := tbl.TraitApp(eq, ptrT, nil)
	impl := &types.Impl{Bound: []types.BoundVar{{Var: tv}}, Trait: implTrait, Target: ptrT}
	impl.AddMethod(&types.Method{Name: symbol.Intern("eq"), Elems: []*types.Type{ptrT, ptrT}, Result: tbl.Primitive(types.Bool)})
	tbl.AddImpl(impl)

	concretePtr := tbl.Pointer(types.Owned, 0, tbl.Primitive(types.Bool))
	found, _, _, ok := tbl.FindMethod(concretePtr, symbol.Intern("eq"))
	assert.True(t, ok)
	assert.Same(t, impl, found)
}
