package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rill-lang/rillc/ast"
	"github.com/rill-lang/rillc/diag"
	"github.com/rill-lang/rillc/lexer"
	"github.com/rill-lang/rillc/parser"
	"github.com/rill-lang/rillc/types"
)

func parseModule(t *testing.T, src string) (*ast.Module, *diag.Sink, bool) {
	t.Helper()
	tbl := types.NewTable()
	diags := diag.New()
	l := lexer.New("t.rl", src)
	mod, ok := parser.Parse(tbl, l, "t.rl", diags, parser.Options{})
	return mod, diags, ok
}

func parseExprSrc(t *testing.T, src string) ast.Expr {
	t.Helper()
	mod, diags, ok := parseModule(t, "fn main() { "+src+"; }")
	require.Truef(t, ok, "diagnostics: %s", diags.String())
	fn := mod.Items[0].(*ast.FnDecl)
	require.NotEmpty(t, fn.Body.Stmts)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	return stmt.Expr
}

func TestPrecedenceLeftAssociativeAdditive(t *testing.T) {
	e := parseExprSrc(t, "1 + 2 - 3")
	assert.Equal(t, "((1 + 2) - 3)", e.String())
}

func TestPrecedenceMulBindsTighterThanAdd(t *testing.T) {
	e := parseExprSrc(t, "1 + 2 * 3")
	assert.Equal(t, "(1 + (2 * 3))", e.String())
}

func TestPrecedenceComparisonBelowAdditive(t *testing.T) {
	e := parseExprSrc(t, "1 + 2 < 3 * 4")
	assert.Equal(t, "((1 + 2) < (3 * 4))", e.String())
}

func TestPrecedenceLogicalOrLowestOfBinary(t *testing.T) {
	e := parseExprSrc(t, "a && b || c && d")
	assert.Equal(t, "((a && b) || (c && d))", e.String())
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	e := parseExprSrc(t, "a = b = c")
	infix, ok := e.(*ast.InfixExpr)
	require.True(t, ok)
	assert.Equal(t, ast.ASSIGN, infix.Op)
	rhs, ok := infix.RHS.(*ast.InfixExpr)
	require.True(t, ok)
	assert.Equal(t, ast.ASSIGN, rhs.Op)
}

func TestTernaryIsRightAssociative(t *testing.T) {
	e := parseExprSrc(t, "a ? b : c ? d : f")
	tern, ok := e.(*ast.TernaryExpr)
	require.True(t, ok)
	_, ok = tern.Else.(*ast.TernaryExpr)
	assert.True(t, ok)
}

func TestUnaryPrefixBindsTighterThanBinary(t *testing.T) {
	e := parseExprSrc(t, "-a + b")
	infix, ok := e.(*ast.InfixExpr)
	require.True(t, ok)
	_, ok = infix.LHS.(*ast.PrefixExpr)
	assert.True(t, ok)
}

func TestPostfixBindsTighterThanUnary(t *testing.T) {
	e := parseExprSrc(t, "*a.b")
	prefix, ok := e.(*ast.PrefixExpr)
	require.True(t, ok)
	_, ok = prefix.Operand.(*ast.FieldExpr)
	assert.True(t, ok)
}

func TestCallExpression(t *testing.T) {
	e := parseExprSrc(t, "f(1, 2)")
	call, ok := e.(*ast.CallExpr)
	require.True(t, ok)
	assert.Len(t, call.Args, 2)
}

func TestMethodCallShapedAsFieldThenCall(t *testing.T) {
	e := parseExprSrc(t, "x.len()")
	call, ok := e.(*ast.CallExpr)
	require.True(t, ok)
	field, ok := call.Callee.(*ast.FieldExpr)
	require.True(t, ok)
	assert.Equal(t, "len", field.Name.String())
}

func TestFieldAndIndexChain(t *testing.T) {
	e := parseExprSrc(t, "a.b[0]")
	idx, ok := e.(*ast.IndexExpr)
	require.True(t, ok)
	_, ok = idx.Recv.(*ast.FieldExpr)
	assert.True(t, ok)
}

func TestTupleLiteral(t *testing.T) {
	e := parseExprSrc(t, "(1, 2, 3)")
	tup, ok := e.(*ast.TupleExpr)
	require.True(t, ok)
	assert.Len(t, tup.Elems, 3)
}

func TestParenthesizedSingleExprIsNotATuple(t *testing.T) {
	e := parseExprSrc(t, "(1)")
	_, isTuple := e.(*ast.TupleExpr)
	assert.False(t, isTuple)
}

func TestArrayLiteralDefinite(t *testing.T) {
	e := parseExprSrc(t, "[1, 2, 3]")
	arr, ok := e.(*ast.ArrayExpr)
	require.True(t, ok)
	assert.Len(t, arr.Elems, 3)
}

func TestArrayRepeatLiteral(t *testing.T) {
	e := parseExprSrc(t, "[0; 4]")
	arr, ok := e.(*ast.ArrayExpr)
	require.True(t, ok)
	assert.Equal(t, uint64(4), arr.Count)
}

func TestSimdLiteral(t *testing.T) {
	e := parseExprSrc(t, "simd[1, 2, 3, 4]")
	_, ok := e.(*ast.SimdExpr)
	assert.True(t, ok)
}

func TestStructLiteral(t *testing.T) {
	mod, diags, ok := parseModule(t, `
		struct Point { x: i32, y: i32 }
		fn main() { Point { x: 1, y: 2 }; }
	`)
	require.Truef(t, ok, "diagnostics: %s", diags.String())
	fn := mod.Items[1].(*ast.FnDecl)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	lit, ok := stmt.Expr.(*ast.StructLitExpr)
	require.True(t, ok)
	assert.Len(t, lit.Fields, 2)
}

func TestIfConditionDoesNotSwallowStructLiteral(t *testing.T) {
	mod, diags, ok := parseModule(t, `
		struct Point { x: i32 }
		fn main() { if cond { Point { x: 1 }; } }
	`)
	require.Truef(t, ok, "diagnostics: %s", diags.String())
	fn := mod.Items[1].(*ast.FnDecl)
	// The if is the block's last expression, so it is the block's tail.
	ifExpr, ok := fn.Body.Tail.(*ast.IfExpr)
	require.True(t, ok)
	_, isPath := ifExpr.Cond.(*ast.PathExpr)
	assert.True(t, isPath)
}

func TestWhileConditionStopsBeforeBody(t *testing.T) {
	mod, diags, ok := parseModule(t, `fn main() { while cond { }; }`)
	require.Truef(t, ok, "diagnostics: %s", diags.String())
	fn := mod.Items[0].(*ast.FnDecl)
	stmt := fn.Body.Stmts[0].(*ast.ExprStmt)
	_, ok = stmt.Expr.(*ast.WhileExpr)
	assert.True(t, ok)
}

func TestClosureExpression(t *testing.T) {
	e := parseExprSrc(t, "|x, y| x + y")
	fnExpr, ok := e.(*ast.FnExpr)
	require.True(t, ok)
	assert.Len(t, fnExpr.Params, 2)
}

func TestEmptyParamClosure(t *testing.T) {
	e := parseExprSrc(t, "|| 1")
	_, ok := e.(*ast.FnExpr)
	assert.True(t, ok)
}

func TestCastExpression(t *testing.T) {
	e := parseExprSrc(t, "1 as i64")
	cast, ok := e.(*ast.CastExpr)
	require.True(t, ok)
	assert.NotNil(t, cast.Target)
}

func TestSizeofOfType(t *testing.T) {
	e := parseExprSrc(t, "sizeof(i32)")
	_, ok := e.(*ast.SizeofExpr)
	assert.True(t, ok)
}

func TestSizeofOfExpr(t *testing.T) {
	e := parseExprSrc(t, "sizeof(a)")
	_, ok := e.(*ast.SizeofExpr)
	assert.True(t, ok)
}

func TestFnDeclSynthesizesContinuationParam(t *testing.T) {
	mod, diags, ok := parseModule(t, "fn add(a: i32, b: i32) -> i32 { a + b; }")
	require.Truef(t, ok, "diagnostics: %s", diags.String())
	fn := mod.Items[0].(*ast.FnDecl)
	require.Len(t, fn.Params, 3)
	assert.Equal(t, "return", fn.Params[2].Name.String())
}

func TestStructDecl(t *testing.T) {
	mod, diags, ok := parseModule(t, "struct Pair[T] { a: T, b: T }")
	require.Truef(t, ok, "diagnostics: %s", diags.String())
	s := mod.Items[0].(*ast.StructItem)
	assert.Len(t, s.Fields, 2)
	assert.Len(t, s.TypeParams, 1)
}

func TestEnumDecl(t *testing.T) {
	mod, diags, ok := parseModule(t, `
		enum Opt {
			None,
			Some { value: i32 },
		}
	`)
	require.Truef(t, ok, "diagnostics: %s", diags.String())
	e := mod.Items[0].(*ast.EnumDecl)
	require.Len(t, e.Variants, 2)
	assert.Len(t, e.Variants[1].Fields, 1)
}

func TestTraitDeclWithSuperBound(t *testing.T) {
	mod, diags, ok := parseModule(t, `
		trait Eq {
			fn eq(self, other: Self) -> bool;
		}
		trait Ord: Eq {
			fn lt(self, other: Self) -> bool;
		}
	`)
	require.Truef(t, ok, "diagnostics: %s", diags.String())
	ord := mod.Items[1].(*ast.TraitItem)
	assert.Len(t, ord.Supers, 1)
}

func TestImplInherentForm(t *testing.T) {
	mod, diags, ok := parseModule(t, `
		struct Point { x: i32 }
		impl Point {
			fn zero() -> Point { Point { x: 0 } }
		}
	`)
	require.Truef(t, ok, "diagnostics: %s", diags.String())
	impl := mod.Items[1].(*ast.ImplItem)
	assert.Nil(t, impl.Trait)
	assert.NotNil(t, impl.Target)
}

func TestImplTraitForTargetForm(t *testing.T) {
	mod, diags, ok := parseModule(t, `
		struct Point { x: i32 }
		trait Zero {
			fn zero() -> Self;
		}
		impl Zero for Point {
			fn zero() -> Point { Point { x: 0 } }
		}
	`)
	require.Truef(t, ok, "diagnostics: %s", diags.String())
	impl := mod.Items[2].(*ast.ImplItem)
	assert.NotNil(t, impl.Trait)
	assert.NotNil(t, impl.Target)
}

func TestImplWithGenericTargetDisambiguatesViaFor(t *testing.T) {
	mod, diags, ok := parseModule(t, `
		struct Pair[T] { a: T, b: T }
		trait Swap {
			fn swap(mut self) -> ();
		}
		impl[T] Swap for Pair[T] {
			fn swap(mut self) -> () {}
		}
	`)
	require.Truef(t, ok, "diagnostics: %s", diags.String())
	impl := mod.Items[2].(*ast.ImplItem)
	assert.NotNil(t, impl.Trait)
}

func TestExternFnNoBody(t *testing.T) {
	mod, diags, ok := parseModule(t, `extern "C" fn puts(s: i64) -> i32;`)
	require.Truef(t, ok, "diagnostics: %s", diags.String())
	fn := mod.Items[0].(*ast.FnDecl)
	assert.True(t, fn.Extern)
	assert.Equal(t, "C", fn.ABI)
	assert.Nil(t, fn.Body)
}

func TestExternFnUnknownABIDiagnoses(t *testing.T) {
	_, diags, ok := parseModule(t, `extern "bogus" fn f() -> ();`)
	assert.False(t, ok)
	assert.True(t, diags.HasErrors())
}

func TestTypeAlias(t *testing.T) {
	mod, diags, ok := parseModule(t, `type IntPair = (i32, i32);`)
	require.Truef(t, ok, "diagnostics: %s", diags.String())
	_, ok = mod.Items[0].(*ast.TypeAliasDecl)
	assert.True(t, ok)
}

func TestStaticItem(t *testing.T) {
	mod, diags, ok := parseModule(t, `static mut counter: i32 = 0;`)
	require.Truef(t, ok, "diagnostics: %s", diags.String())
	s := mod.Items[0].(*ast.StaticDecl)
	assert.True(t, s.Mut)
}

func TestModNesting(t *testing.T) {
	mod, diags, ok := parseModule(t, `
		mod inner {
			fn f() -> ();
		}
	`)
	require.Truef(t, ok, "diagnostics: %s", diags.String())
	m := mod.Items[0].(*ast.ModDecl)
	assert.Len(t, m.Items, 1)
}

func TestLetStatementWithAnnotationAndInit(t *testing.T) {
	mod, diags, ok := parseModule(t, `fn main() { let mut x: i32 = 1; }`)
	require.Truef(t, ok, "diagnostics: %s", diags.String())
	fn := mod.Items[0].(*ast.FnDecl)
	let := fn.Body.Stmts[0].(*ast.LetStmt)
	assert.True(t, let.Mut)
	assert.NotNil(t, let.Init)
}

func TestBlockLikeStatementNeedsNoSemicolon(t *testing.T) {
	mod, diags, ok := parseModule(t, `
		fn main() {
			if cond { 1; }
			2;
		}
	`)
	require.Truef(t, ok, "diagnostics: %s", diags.String())
	fn := mod.Items[0].(*ast.FnDecl)
	require.Len(t, fn.Body.Stmts, 2)
	_, ok = fn.Body.Stmts[0].(*ast.ExprStmt)
	assert.True(t, ok)
}

func TestBlockTailExpressionHasNoSemicolon(t *testing.T) {
	mod, diags, ok := parseModule(t, `fn main() -> i32 { 1 + 2 }`)
	require.Truef(t, ok, "diagnostics: %s", diags.String())
	fn := mod.Items[0].(*ast.FnDecl)
	assert.Empty(t, fn.Body.Stmts)
	assert.NotNil(t, fn.Body.Tail)
}

func TestMissingSemicolonDiagnoses(t *testing.T) {
	_, diags, ok := parseModule(t, `fn main() { 1 2; }`)
	assert.False(t, ok)
	assert.True(t, diags.HasErrors())
}

func TestUnknownItemTokenRecovers(t *testing.T) {
	mod, diags, ok := parseModule(t, `
		???;
		fn f() -> ();
	`)
	assert.False(t, ok)
	assert.True(t, diags.HasErrors())
	// recovery still yields the following well-formed item
	found := false
	for _, it := range mod.Items {
		if fn, ok := it.(*ast.FnDecl); ok && fn.Name().String() == "f" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestPointerAndAddrSpaceTypes(t *testing.T) {
	mod, diags, ok := parseModule(t, `fn f(p: &<1>i32, q: ~i32) -> ();`)
	require.Truef(t, ok, "diagnostics: %s", diags.String())
	fn := mod.Items[0].(*ast.FnDecl)
	p := fn.Params[0].Type
	assert.Equal(t, types.Borrowed, p.PointerKind())
	assert.Equal(t, 1, p.AddrSpace())
	q := fn.Params[1].Type
	assert.Equal(t, types.Owned, q.PointerKind())
}

func TestGenericFnTypeParamsScoped(t *testing.T) {
	mod, diags, ok := parseModule(t, `fn identity[T](x: T) -> T { x }`)
	require.Truef(t, ok, "diagnostics: %s", diags.String())
	fn := mod.Items[0].(*ast.FnDecl)
	assert.Len(t, fn.TypeParams, 1)
	assert.Same(t, fn.TypeParams[0].Var, fn.Params[0].Type)
}
