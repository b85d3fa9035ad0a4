package sema

import (
	"github.com/rill-lang/rillc/token"
	"github.com/rill-lang/rillc/types"
)

// literalType resolves a literal token's type (spec §4.5 "Literal"):
// an explicit numeric suffix always wins; otherwise an int/float
// literal adopts expected's kind when expected asks for a compatible
// numeric family, and falls back to i32/f64 when nothing constrains
// it. Strings are represented as a borrowed pointer to an indefinite
// array of u8 (supplemented per SPEC_FULL from original_source/impala,
// which represents string literals the same way: a byte-array
// reference, not a distinct primitive kind).
func (c *Checker) literalType(lit token.Literal, expected *types.Type) *types.Type {
	t := c.table
	switch lit.Kind {
	case token.LitBool:
		return t.Primitive(types.Bool)
	case token.LitChar:
		return t.Primitive(types.U8)
	case token.LitString:
		return t.Pointer(types.Borrowed, 0, t.IndefiniteArray(t.Primitive(types.U8)))
	case token.LitInt:
		if lit.IntWidth != 0 {
			return t.Primitive(intKind(lit.IntWidth, lit.IntSigned))
		}
		if expected != nil && types.IsInt(expected.Kind()) {
			return expected
		}
		return t.Primitive(types.I32)
	case token.LitFloat:
		if lit.FloatWidth == 32 {
			return t.Primitive(types.F32)
		}
		if lit.FloatWidth == 64 {
			return t.Primitive(types.F64)
		}
		if expected != nil && types.IsFloat(expected.Kind()) {
			return expected
		}
		return t.Primitive(types.F64)
	default:
		return t.ErrorType()
	}
}

func intKind(width int, signed bool) types.Kind {
	switch {
	case signed && width == 8:
		return types.I8
	case signed && width == 16:
		return types.I16
	case signed && width == 32:
		return types.I32
	case signed && width == 64:
		return types.I64
	case !signed && width == 8:
		return types.U8
	case !signed && width == 16:
		return types.U16
	case !signed && width == 32:
		return types.U32
	default:
		return types.U64
	}
}
