// Package token defines the token kinds, source locations, and literal
// payloads that flow from the (external) lexer into the parser.
//
// Tokenization itself lives upstream of this module's scope; this
// package only fixes the contract the parser is written against, the
// way gql/lex.go fixed a concrete yySymType contract for goyacc. The
// precedence tables that climb over these kinds live in package parser,
// not here — Kind is pure data.
package token

import "fmt"

// Kind identifies the lexical class of a token.
type Kind int

const (
	Illegal Kind = iota
	EOF

	// Identifiers and literals.
	Ident
	IntLit
	FloatLit
	CharLit
	StringLit

	// Keywords.
	KwPub
	KwPriv
	KwEnum
	KwExtern
	KwFn
	KwImpl
	KwMod
	KwStatic
	KwStruct
	KwTrait
	KwType
	KwLet
	KwMut
	KwIf
	KwElse
	KwWhile
	KwFor
	KwIn
	KwReturn
	KwBreak
	KwContinue
	KwSizeof
	KwAs
	KwTrue
	KwFalse
	KwRun
	KwHalt

	// Primitive type keywords.
	KwBool
	KwI8
	KwI16
	KwI32
	KwI64
	KwU8
	KwU16
	KwU32
	KwU64
	KwF32
	KwF64

	// Punctuation and delimiters.
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Semi
	Colon
	ColonColon
	Arrow // ->
	FatArrow
	Question
	Dot

	// Operators (prefix/infix/postfix — disambiguated by the parser using
	// the preceding-token context per the LL(2) lookahead rule).
	Amp      // &
	AmpAmp   // &&
	Pipe     // |
	PipePipe // ||
	Caret    // ^
	Tilde    // ~
	Bang     // !
	Plus
	Minus
	Star
	Slash
	Percent
	Shl // <<
	Shr // >>
	Lt
	Le
	Gt
	Ge
	EqEq
	Ne
	Eq // =
	PlusEq
	MinusEq
	StarEq
	SlashEq
	PercentEq
	AmpEq
	PipeEq
	CaretEq
	ShlEq
	ShrEq
	Inc // ++
	Dec // --
)

var names = map[Kind]string{
	Illegal: "illegal", EOF: "eof",
	Ident: "identifier", IntLit: "integer literal", FloatLit: "float literal",
	CharLit: "char literal", StringLit: "string literal",
	KwPub: "pub", KwPriv: "priv", KwEnum: "enum", KwExtern: "extern",
	KwFn: "fn", KwImpl: "impl", KwMod: "mod", KwStatic: "static",
	KwStruct: "struct", KwTrait: "trait", KwType: "type", KwLet: "let",
	KwMut: "mut", KwIf: "if", KwElse: "else", KwWhile: "while", KwFor: "for",
	KwIn: "in", KwReturn: "return", KwBreak: "break", KwContinue: "continue",
	KwSizeof: "sizeof", KwAs: "as", KwTrue: "true", KwFalse: "false",
	KwRun: "run", KwHalt: "halt",
	KwBool: "bool", KwI8: "i8", KwI16: "i16", KwI32: "i32", KwI64: "i64",
	KwU8: "u8", KwU16: "u16", KwU32: "u32", KwU64: "u64", KwF32: "f32", KwF64: "f64",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]",
	Comma: ",", Semi: ";", Colon: ":", ColonColon: "::", Arrow: "->", FatArrow: "=>",
	Question: "?", Dot: ".",
	Amp: "&", AmpAmp: "&&", Pipe: "|", PipePipe: "||", Caret: "^", Tilde: "~", Bang: "!",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%",
	Shl: "<<", Shr: ">>", Lt: "<", Le: "<=", Gt: ">", Ge: ">=", EqEq: "==", Ne: "!=",
	Eq: "=", PlusEq: "+=", MinusEq: "-=", StarEq: "*=", SlashEq: "/=", PercentEq: "%=",
	AmpEq: "&=", PipeEq: "|=", CaretEq: "^=", ShlEq: "<<=", ShrEq: ">>=",
	Inc: "++", Dec: "--",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Keywords maps identifier spellings to their keyword Kind. It also
// includes the primitive type names: some grammars leave those
// ambiguous with user-defined type names, but this language reserves
// them (per original_source/impala/parser.cpp).
var Keywords = map[string]Kind{
	"pub": KwPub, "priv": KwPriv, "enum": KwEnum, "extern": KwExtern,
	"fn": KwFn, "impl": KwImpl, "mod": KwMod, "static": KwStatic,
	"struct": KwStruct, "trait": KwTrait, "type": KwType, "let": KwLet,
	"mut": KwMut, "if": KwIf, "else": KwElse, "while": KwWhile, "for": KwFor,
	"in": KwIn, "return": KwReturn, "break": KwBreak, "continue": KwContinue,
	"sizeof": KwSizeof, "as": KwAs, "true": KwTrue, "false": KwFalse,
	"run": KwRun, "halt": KwHalt,
	"bool": KwBool, "i8": KwI8, "i16": KwI16, "i32": KwI32, "i64": KwI64,
	"u8": KwU8, "u16": KwU16, "u32": KwU32, "u64": KwU64, "f32": KwF32, "f64": KwF64,
}

// Pos is a single point in a source file.
type Pos struct {
	File   string
	Line   int
	Column int
}

// String implements fmt.Stringer, formatted as the teacher's
// scanner.Position does: "file:line:col".
func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Location is a (begin, end) span. Every AST node carries one.
type Location struct {
	Begin, End Pos
}

// String implements fmt.Stringer.
func (l Location) String() string { return l.Begin.String() }

// LiteralKind classifies the payload carried by a literal token.
type LiteralKind int

const (
	NoLiteral LiteralKind = iota
	LitInt
	LitFloat
	LitChar
	LitString
	LitBool
)

// Literal is the literal payload box a token carries, per spec §3.1 and
// §6 ("literal box").
type Literal struct {
	Kind LiteralKind
	Int  int64
	// IntWidth/IntSigned describe the literal's suffix, if
	// any (e.g. 10i32 vs 10u8 vs a bare 10 whose width is inferred by
	// the type-semantics engine from the expected type).
	IntWidth     int // 0, 8, 16, 32, or 64; 0 means unsuffixed
	IntSigned    bool
	Float        float64
	FloatWidth   int // 32 or 64; 0 means unsuffixed
	Char         rune
	Str          string
	Bool         bool
}

// Token is one lexical unit: kind, location, and (for literals) payload.
type Token struct {
	Kind    Kind
	Loc     Location
	Literal Literal
	// Text is the raw spelling, used for identifiers and for error
	// messages ("expected X, got Y").
	Text string
}

func (t Token) String() string {
	if t.Text != "" {
		return t.Text
	}
	return t.Kind.String()
}
