package ast

import (
	"fmt"
	"strings"

	"github.com/rill-lang/rillc/symbol"
	"github.com/rill-lang/rillc/token"
	"github.com/rill-lang/rillc/types"
)

// PrefixOp enumerates the prefix operators of spec §3.3: "AND, TILDE,
// MUL, INC, DEC, ADD, SUB, NOT, RUN, HLT".
type PrefixOp int

const (
	AND PrefixOp = iota // &e : take address (borrow)
	TILDE                // ~e : owned-pointer allocation
	MUL                  // *e : dereference
	INC                  // ++e
	DEC                  // --e
	ADD                  // +e
	SUB                  // -e
	NOT                  // !e
	RUN                  // run e
	HLT                  // halt e
)

var prefixOpNames = map[PrefixOp]string{
	AND: "&", TILDE: "~", MUL: "*", INC: "++", DEC: "--",
	ADD: "+", SUB: "-", NOT: "!", RUN: "run", HLT: "halt",
}

func (op PrefixOp) String() string { return prefixOpNames[op] }

// InfixOp enumerates the infix operators of spec §3.3/§4.5.
type InfixOp int

const (
	EQ InfixOp = iota
	NE
	LT
	LE
	GT
	GE
	LAND
	LOR
	ADD_
	SUB_
	MUL_
	DIV
	REM
	SHL
	SHR
	BAND
	BOR
	BXOR
	ASSIGN
	ADD_ASSIGN
	SUB_ASSIGN
	MUL_ASSIGN
	DIV_ASSIGN
	REM_ASSIGN
	AND_ASSIGN
	OR_ASSIGN
	XOR_ASSIGN
	SHL_ASSIGN
	SHR_ASSIGN
)

var infixOpNames = map[InfixOp]string{
	EQ: "==", NE: "!=", LT: "<", LE: "<=", GT: ">", GE: ">=",
	LAND: "&&", LOR: "||",
	ADD_: "+", SUB_: "-", MUL_: "*", DIV: "/", REM: "%",
	SHL: "<<", SHR: ">>", BAND: "&", BOR: "|", BXOR: "^",
	ASSIGN: "=", ADD_ASSIGN: "+=", SUB_ASSIGN: "-=", MUL_ASSIGN: "*=",
	DIV_ASSIGN: "/=", REM_ASSIGN: "%=", AND_ASSIGN: "&=", OR_ASSIGN: "|=",
	XOR_ASSIGN: "^=", SHL_ASSIGN: "<<=", SHR_ASSIGN: ">>=",
}

func (op InfixOp) String() string { return infixOpNames[op] }

// IsCompoundAssign reports whether op is a compound-assignment
// operator (+=, -=, ...).
func (op InfixOp) IsCompoundAssign() bool {
	switch op {
	case ADD_ASSIGN, SUB_ASSIGN, MUL_ASSIGN, DIV_ASSIGN, REM_ASSIGN,
		AND_ASSIGN, OR_ASSIGN, XOR_ASSIGN, SHL_ASSIGN, SHR_ASSIGN:
		return true
	}
	return false
}

// BaseOp returns the non-assigning operator a compound assignment
// applies before storing (e.g. ADD_ASSIGN -> ADD_), used by sema to
// reuse the arithmetic-operator-typing rule for compound assignments
// (spec §4.5: "operand constraints of the base operator").
func (op InfixOp) BaseOp() InfixOp {
	switch op {
	case ADD_ASSIGN:
		return ADD_
	case SUB_ASSIGN:
		return SUB_
	case MUL_ASSIGN:
		return MUL_
	case DIV_ASSIGN:
		return DIV
	case REM_ASSIGN:
		return REM
	case AND_ASSIGN:
		return BAND
	case OR_ASSIGN:
		return BOR
	case XOR_ASSIGN:
		return BXOR
	case SHL_ASSIGN:
		return SHL
	case SHR_ASSIGN:
		return SHR
	}
	return op
}

// PostfixOp enumerates postfix operators (spec §3.3: "postfix (INC, DEC)").
type PostfixOp int

const (
	PostInc PostfixOp = iota
	PostDec
)

func (op PostfixOp) String() string {
	if op == PostInc {
		return "++"
	}
	return "--"
}

// EmptyExpr is the empty expression (e.g. the body of an omitted
// block-tail, or a placeholder in error recovery).
type EmptyExpr struct{ exprBase }

// NewEmptyExpr creates an EmptyExpr at loc.
func NewEmptyExpr(loc token.Location) *EmptyExpr {
	return &EmptyExpr{exprBase{loc: loc, kind: EmptyKind}}
}

func (n *EmptyExpr) String() string { return "()" }

// LiteralExpr is a primitive, char, or string constant (spec §3.3:
// "literal (primitive, char, string)").
type LiteralExpr struct {
	exprBase
	Literal token.Literal
}

// NewLiteralExpr creates a LiteralExpr.
func NewLiteralExpr(loc token.Location, lit token.Literal) *LiteralExpr {
	return &LiteralExpr{exprBase{loc: loc, kind: LiteralKind}, lit}
}

func (n *LiteralExpr) String() string {
	switch n.Literal.Kind {
	case token.LitString:
		return fmt.Sprintf("%q", n.Literal.Str)
	case token.LitChar:
		return fmt.Sprintf("%q", n.Literal.Char)
	case token.LitBool:
		return fmt.Sprintf("%v", n.Literal.Bool)
	case token.LitFloat:
		return fmt.Sprintf("%g", n.Literal.Float)
	default:
		return fmt.Sprintf("%d", n.Literal.Int)
	}
}

// Decl is the opaque, name-resolution-populated back-link an
// identifier reference carries (spec §6: "AST nodes that reference
// declarations expose a decl() back-link populated by the external
// resolver. Absence means error type."). It is treated as a
// non-owning weak handle (spec §9): this module never defines what it
// points to, only that PathExpr can carry one.
type Decl interface{}

// PathExpr is an identifier reference with optional explicit type
// arguments (spec §3.3: "path (identifier reference with optional
// type arguments)").
type PathExpr struct {
	exprBase
	Name     symbol.ID
	TypeArgs []*types.Type
	Decl     Decl // nil until name resolution runs.
	Mutable  bool // true if Decl resolves to a mutable local/param.

	// AddressTaken records whether sema decided this path's address
	// must be taken: sema sets it for the operand of `&`, and in NoSSA
	// mode for every reference to a mutable binding. A mutable local
	// referenced from a nested closure is not detected or marked.
	AddressTaken bool
}

// NewPathExpr creates a PathExpr.
func NewPathExpr(loc token.Location, name symbol.ID, typeArgs []*types.Type) *PathExpr {
	return &PathExpr{exprBase: exprBase{loc: loc, kind: PathKind}, Name: name, TypeArgs: typeArgs}
}

func (n *PathExpr) String() string {
	if len(n.TypeArgs) == 0 {
		return n.Name.String()
	}
	parts := make([]string, len(n.TypeArgs))
	for i, a := range n.TypeArgs {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s[%s]", n.Name, strings.Join(parts, ", "))
}

// PrefixExpr is `op operand`.
type PrefixExpr struct {
	exprBase
	Op      PrefixOp
	Operand Expr
}

// NewPrefixExpr creates a PrefixExpr.
func NewPrefixExpr(loc token.Location, op PrefixOp, operand Expr) *PrefixExpr {
	return &PrefixExpr{exprBase{loc: loc, kind: PrefixKind}, op, operand}
}

func (n *PrefixExpr) String() string { return n.Op.String() + n.Operand.String() }

// Deref wraps e in a synthesized dereference node, the implicit
// rewrite spec §3.3 requires "when a struct field or call receiver has
// pointer type" (see sema's field/call checking).
func Deref(loc token.Location, e Expr) *PrefixExpr {
	return NewPrefixExpr(loc, MUL, e)
}

// InfixExpr is `lhs op rhs`.
type InfixExpr struct {
	exprBase
	Op       InfixOp
	LHS, RHS Expr
}

// NewInfixExpr creates an InfixExpr.
func NewInfixExpr(loc token.Location, op InfixOp, lhs, rhs Expr) *InfixExpr {
	return &InfixExpr{exprBase{loc: loc, kind: InfixKind}, op, lhs, rhs}
}

func (n *InfixExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", n.LHS, n.Op, n.RHS)
}

// TernaryExpr is `cond ? then : els`, parsed as an infix with
// right-associative arms (spec §4.1).
type TernaryExpr struct {
	exprBase
	Cond, Then, Else Expr
}

// NewTernaryExpr creates a TernaryExpr.
func NewTernaryExpr(loc token.Location, cond, then, els Expr) *TernaryExpr {
	return &TernaryExpr{exprBase{loc: loc, kind: InfixKind}, cond, then, els}
}

func (n *TernaryExpr) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", n.Cond, n.Then, n.Else)
}

// PostfixExpr is `operand op`.
type PostfixExpr struct {
	exprBase
	Op      PostfixOp
	Operand Expr
}

// NewPostfixExpr creates a PostfixExpr.
func NewPostfixExpr(loc token.Location, op PostfixOp, operand Expr) *PostfixExpr {
	return &PostfixExpr{exprBase{loc: loc, kind: PostfixKind}, op, operand}
}

func (n *PostfixExpr) String() string { return n.Operand.String() + n.Op.String() }

// CallExpr is a function/array/tuple/simd application (spec §3.3,
// §4.5 "Call (MapExpr)"). ExplicitTypeArgs are the `[...]` type
// arguments supplied at the call site, if any; Rewritten records
// whether method-dispatch rewrote `e.m(...)` into this call with the
// receiver prepended to Args (spec §8 "Method rewriting").
type CallExpr struct {
	exprBase
	Callee           Expr
	ExplicitTypeArgs []*types.Type
	Args             []Expr
	Rewritten        bool
}

// NewCallExpr creates a CallExpr.
func NewCallExpr(loc token.Location, callee Expr, typeArgs []*types.Type, args []Expr) *CallExpr {
	return &CallExpr{exprBase: exprBase{loc: loc, kind: CallKind}, Callee: callee, ExplicitTypeArgs: typeArgs, Args: args}
}

func (n *CallExpr) String() string {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", n.Callee, strings.Join(parts, ", "))
}

// IndexExpr is `recv[index]`.
type IndexExpr struct {
	exprBase
	Recv  Expr
	Index Expr
}

// NewIndexExpr creates an IndexExpr.
func NewIndexExpr(loc token.Location, recv, index Expr) *IndexExpr {
	return &IndexExpr{exprBase: exprBase{loc: loc, kind: IndexKind}, Recv: recv, Index: index}
}

func (n *IndexExpr) String() string { return fmt.Sprintf("%s[%s]", n.Recv, n.Index) }

// FieldExpr is `recv.Name`. FieldIndex is recorded by sema once the
// receiver's struct-app type is known (spec §4.5 "Field").
type FieldExpr struct {
	exprBase
	Recv       Expr
	Name       symbol.ID
	FieldIndex int
}

// NewFieldExpr creates a FieldExpr.
func NewFieldExpr(loc token.Location, recv Expr, name symbol.ID) *FieldExpr {
	return &FieldExpr{exprBase: exprBase{loc: loc, kind: FieldKind}, Recv: recv, Name: name, FieldIndex: -1}
}

func (n *FieldExpr) String() string { return fmt.Sprintf("%s.%s", n.Recv, n.Name) }

// TupleExpr is `(e0, e1, ...)`.
type TupleExpr struct {
	exprBase
	Elems []Expr
}

// NewTupleExpr creates a TupleExpr.
func NewTupleExpr(loc token.Location, elems []Expr) *TupleExpr {
	return &TupleExpr{exprBase{loc: loc, kind: TupleKind}, elems}
}

func (n *TupleExpr) String() string {
	parts := make([]string, len(n.Elems))
	for i, e := range n.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ArrayExpr is either a definite array literal `[e0, e1, ...]` (Elems
// set, Repeat nil) or a repeated array `[e; n]` (Repeat and Count set,
// Elems nil) — spec §3.3 "array construction (definite and repeated)".
type ArrayExpr struct {
	exprBase
	Elems  []Expr
	Repeat Expr
	Count  uint64
}

// NewArrayExpr creates a definite array literal.
func NewArrayExpr(loc token.Location, elems []Expr) *ArrayExpr {
	return &ArrayExpr{exprBase: exprBase{loc: loc, kind: ArrayKind}, Elems: elems}
}

// NewRepeatArrayExpr creates a repeated array literal `[e; n]`.
func NewRepeatArrayExpr(loc token.Location, repeat Expr, count uint64) *ArrayExpr {
	return &ArrayExpr{exprBase: exprBase{loc: loc, kind: ArrayKind}, Repeat: repeat, Count: count}
}

func (n *ArrayExpr) String() string {
	if n.Repeat != nil {
		return fmt.Sprintf("[%s; %d]", n.Repeat, n.Count)
	}
	parts := make([]string, len(n.Elems))
	for i, e := range n.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// SimdExpr is a SIMD vector literal `simd[e0, e1, ...]`.
type SimdExpr struct {
	exprBase
	Elems []Expr
}

// NewSimdExpr creates a SimdExpr.
func NewSimdExpr(loc token.Location, elems []Expr) *SimdExpr {
	return &SimdExpr{exprBase{loc: loc, kind: SimdKind}, elems}
}

func (n *SimdExpr) String() string {
	parts := make([]string, len(n.Elems))
	for i, e := range n.Elems {
		parts[i] = e.String()
	}
	return "simd[" + strings.Join(parts, ", ") + "]"
}

// FieldInit is one `name: expr` field initializer in a struct literal.
type FieldInit struct {
	Loc  token.Location
	Name symbol.ID
	Expr Expr
}

// StructLitExpr is a struct construction expression (spec §3.3
// "struct construction", §4.5).
type StructLitExpr struct {
	exprBase
	Path   *PathExpr
	Fields []FieldInit
}

// NewStructLitExpr creates a StructLitExpr.
func NewStructLitExpr(loc token.Location, path *PathExpr, fields []FieldInit) *StructLitExpr {
	return &StructLitExpr{exprBase: exprBase{loc: loc, kind: StructLitKind}, Path: path, Fields: fields}
}

func (n *StructLitExpr) String() string {
	parts := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Name, f.Expr)
	}
	return fmt.Sprintf("%s { %s }", n.Path, strings.Join(parts, ", "))
}

// BlockExpr is `{ stmt* expr? }` (spec §3.3, §4.1, §4.5 "Block").
type BlockExpr struct {
	exprBase
	Stmts []Stmt
	// Tail is the trailing expression without a semicolon, or nil if
	// the block's value is unit.
	Tail Expr
}

// NewBlockExpr creates a BlockExpr.
func NewBlockExpr(loc token.Location, stmts []Stmt, tail Expr) *BlockExpr {
	return &BlockExpr{exprBase: exprBase{loc: loc, kind: BlockKind}, Stmts: stmts, Tail: tail}
}

func (n *BlockExpr) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for _, s := range n.Stmts {
		b.WriteString(s.String())
		b.WriteByte(';')
	}
	if n.Tail != nil {
		b.WriteString(n.Tail.String())
	}
	b.WriteByte('}')
	return b.String()
}

// IfExpr is `if cond { then } else { els }` (Else may be nil). Spec
// §4.5 "If".
type IfExpr struct {
	exprBase
	Cond Expr
	Then *BlockExpr
	Else Expr // *BlockExpr or *IfExpr (else-if chain), or nil.

	// NeedsCastThen/NeedsCastElse record which arm (if any) was widened
	// to the other's type (spec §4.4 "needs_cast").
	NeedsCastThen bool
	NeedsCastElse bool
}

// NewIfExpr creates an IfExpr.
func NewIfExpr(loc token.Location, cond Expr, then *BlockExpr, els Expr) *IfExpr {
	return &IfExpr{exprBase: exprBase{loc: loc, kind: IfKind}, Cond: cond, Then: then, Else: els}
}

func (n *IfExpr) String() string {
	if n.Else != nil {
		return fmt.Sprintf("if %s %s else %s", n.Cond, n.Then, n.Else)
	}
	return fmt.Sprintf("if %s %s", n.Cond, n.Then)
}

// LoopDecl is a pseudo-declaration typed from its enclosing loop,
// referenced by `break`/`continue` expressions (spec §4.5 "While":
// "break/continue pseudo-decls are typed from their enclosing loop").
type LoopDecl struct {
	// BreakType is the type a `break` (or, for `for`, the break
	// continuation) resolves to.
	BreakType *types.Type
}

// WhileExpr is `while cond { body }` (spec §4.5 "While").
type WhileExpr struct {
	exprBase
	Cond Expr
	Body *BlockExpr
	Loop *LoopDecl
}

// NewWhileExpr creates a WhileExpr.
func NewWhileExpr(loc token.Location, cond Expr, body *BlockExpr) *WhileExpr {
	return &WhileExpr{exprBase: exprBase{loc: loc, kind: WhileKind}, Cond: cond, Body: body, Loop: &LoopDecl{}}
}

func (n *WhileExpr) String() string { return fmt.Sprintf("while %s %s", n.Cond, n.Body) }

// ForExpr is `for pat in iter { body }`, desugared by sema into a call
// `iter(|pat| body)` per spec §4.5 "For". Pat is a single bound name
// (this language's for-loops bind one pattern variable); Desugared is
// filled in by sema with the equivalent CallExpr once checked.
type ForExpr struct {
	exprBase
	Pat        symbol.ID
	PatHandle  Handle
	Iter       Expr
	Body       *BlockExpr
	Loop       *LoopDecl
	Desugared  *CallExpr
}

// NewForExpr creates a ForExpr.
func NewForExpr(loc token.Location, pat symbol.ID, handle Handle, iter Expr, body *BlockExpr) *ForExpr {
	return &ForExpr{exprBase: exprBase{loc: loc, kind: ForKind}, Pat: pat, PatHandle: handle, Iter: iter, Body: body, Loop: &LoopDecl{}}
}

func (n *ForExpr) String() string {
	return fmt.Sprintf("for %s in %s %s", n.Pat, n.Iter, n.Body)
}

// FnExpr is an anonymous function / closure (spec §3.3 "fn-expr",
// §4.5 "Fn-expr (closure)").
type FnExpr struct {
	exprBase
	Params []*Param
	Body   *BlockExpr
}

// NewFnExpr creates an FnExpr.
func NewFnExpr(loc token.Location, params []*Param, body *BlockExpr) *FnExpr {
	return &FnExpr{exprBase: exprBase{loc: loc, kind: FnExprKind}, Params: params, Body: body}
}

func (n *FnExpr) String() string {
	parts := make([]string, len(n.Params))
	for i, p := range n.Params {
		parts[i] = p.Name.String()
	}
	return fmt.Sprintf("|%s| %s", strings.Join(parts, ", "), n.Body)
}

// CastExpr is `operand as type` (supplemented per SPEC_FULL from
// original_source/impala: source must be primitive/pointer/simd,
// target closed; records NeedsCast like the widening rule).
type CastExpr struct {
	exprBase
	Operand    Expr
	Target     *types.Type
	NeedsCast  bool
}

// NewCastExpr creates a CastExpr.
func NewCastExpr(loc token.Location, operand Expr, target *types.Type) *CastExpr {
	return &CastExpr{exprBase: exprBase{loc: loc, kind: CastKind}, Operand: operand, Target: target}
}

func (n *CastExpr) String() string { return fmt.Sprintf("%s as %s", n.Operand, n.Target) }

// SizeofExpr is `sizeof(type-or-expr)`; it always yields u64 and its
// operand is never evaluated for side effects (supplemented per
// SPEC_FULL from original_source/impala).
type SizeofExpr struct {
	exprBase
	Operand Expr
	OfType  *types.Type // set instead of Operand when the operand was a bare type name.
}

// NewSizeofExpr creates a SizeofExpr over an expression operand.
func NewSizeofExpr(loc token.Location, operand Expr) *SizeofExpr {
	return &SizeofExpr{exprBase: exprBase{loc: loc, kind: SizeofKind}, Operand: operand}
}

// NewSizeofTypeExpr creates a SizeofExpr over a bare type operand.
func NewSizeofTypeExpr(loc token.Location, t *types.Type) *SizeofExpr {
	return &SizeofExpr{exprBase: exprBase{loc: loc, kind: SizeofKind}, OfType: t}
}

func (n *SizeofExpr) String() string {
	if n.OfType != nil {
		return fmt.Sprintf("sizeof(%s)", n.OfType)
	}
	return fmt.Sprintf("sizeof(%s)", n.Operand)
}
