package parser

import (
	"github.com/rill-lang/rillc/ast"
	"github.com/rill-lang/rillc/symbol"
	"github.com/rill-lang/rillc/token"
	"github.com/rill-lang/rillc/types"
)

// typeScope binds in-scope generic type-parameter names to their
// interned TypeVar, pushed while parsing the rest of the declaration
// that introduced them and popped once that declaration is fully
// parsed.
func (p *Parser) pushTypeScope(scope map[string]*types.Type) { p.typeScopes = append(p.typeScopes, scope) }
func (p *Parser) popTypeScope()                               { p.typeScopes = p.typeScopes[:len(p.typeScopes)-1] }

func (p *Parser) lookupTypeVar(name string) (*types.Type, bool) {
	for i := len(p.typeScopes) - 1; i >= 0; i-- {
		if tv, ok := p.typeScopes[i][name]; ok {
			return tv, true
		}
	}
	return nil, false
}

var primitiveKeyword = map[token.Kind]types.Kind{
	token.KwBool: types.Bool,
	token.KwI8: types.I8, token.KwI16: types.I16, token.KwI32: types.I32, token.KwI64: types.I64,
	token.KwU8: types.U8, token.KwU16: types.U16, token.KwU32: types.U32, token.KwU64: types.U64,
	token.KwF32: types.F32, token.KwF64: types.F64,
}

// parseType parses a single type expression (spec §4.1 "Types").
func (p *Parser) parseType() *types.Type {
	switch {
	case p.at(token.Amp):
		p.lex()
		addrSpace := p.parseOptionalAddrSpace()
		return p.table.Pointer(types.Borrowed, addrSpace, p.parseType())
	case p.at(token.Tilde):
		p.lex()
		addrSpace := p.parseOptionalAddrSpace()
		return p.table.Pointer(types.Owned, addrSpace, p.parseType())
	case p.at(token.KwFn):
		return p.parseFnType()
	case p.at(token.LParen):
		return p.parseTupleType()
	case p.at(token.LBracket):
		return p.parseArrayType()
	case p.isPrimitiveKeyword():
		k := primitiveKeyword[p.cur().Kind]
		p.lex()
		return p.table.Primitive(k)
	case p.at(token.Ident):
		return p.parseNamedType()
	default:
		p.ok = false
		p.diags.Errorf(p.cur().Loc, "expected a type, got %s", p.cur().Kind)
		return p.table.ErrorType()
	}
}

func (p *Parser) isPrimitiveKeyword() bool {
	_, ok := primitiveKeyword[p.cur().Kind]
	return ok
}

// parseOptionalAddrSpace parses an optional `<N>` address-space tag
// immediately following a pointer sigil; absent means address space 0.
func (p *Parser) parseOptionalAddrSpace() int {
	if !p.at(token.Lt) {
		return 0
	}
	p.lex()
	tok := p.expect(token.IntLit, "address space")
	p.expect(token.Gt, "address space")
	return int(tok.Literal.Int)
}

// parseFnType parses `fn ( T, ... ) -> R`, applying the CPS return-type
// rule of spec §4.1: R becomes a trailing continuation parameter whose
// type is `fn() -> ()` for a void return, else `fn(R) -> ()`.
func (p *Parser) parseFnType() *types.Type {
	p.lex() // 'fn'
	p.expect(token.LParen, "fn type")
	var args []*types.Type
	for !p.at(token.RParen) && !p.at(token.EOF) {
		args = append(args, p.parseType())
		if p.at(token.Comma) {
			p.lex()
			continue
		}
		break
	}
	p.expect(token.RParen, "fn type")

	var ret *types.Type
	if p.at(token.Arrow) {
		p.lex()
		ret = p.parseType()
	} else {
		ret = p.table.Unit()
	}
	args = append(args, p.continuationType(ret))
	return p.table.Fn(nil, args)
}

// continuationType builds the synthesized continuation parameter's
// fn-type for a declared return type ret (spec §4.1 "Function head").
func (p *Parser) continuationType(ret *types.Type) *types.Type {
	if ret == p.table.Unit() {
		return p.table.Fn(nil, []*types.Type{p.table.NoRet()})
	}
	return p.table.Fn(nil, []*types.Type{ret, p.table.NoRet()})
}

func (p *Parser) parseTupleType() *types.Type {
	p.lex() // '('
	var elems []*types.Type
	for !p.at(token.RParen) && !p.at(token.EOF) {
		elems = append(elems, p.parseType())
		if p.at(token.Comma) {
			p.lex()
			continue
		}
		break
	}
	p.expect(token.RParen, "tuple type")
	return p.table.Tuple(elems...)
}

// parseArrayType parses `[ T ]` (indefinite) or `[ T * N ]` (definite,
// N an integer literal) per spec §4.1.
func (p *Parser) parseArrayType() *types.Type {
	p.lex() // '['
	elem := p.parseType()
	if p.at(token.Star) {
		p.lex()
		n := p.expect(token.IntLit, "array length")
		p.expect(token.RBracket, "array type")
		return p.table.DefiniteArray(elem, uint64(n.Literal.Int))
	}
	p.expect(token.RBracket, "array type")
	return p.table.IndefiniteArray(elem)
}

// parseNamedType resolves an identifier to a bound type variable (if
// it names one currently in scope) or a registered nominal struct type
// applied to any `[...]` type arguments present.
func (p *Parser) parseNamedType() *types.Type {
	name := p.lex()
	if tv, ok := p.lookupTypeVar(name.Text); ok {
		return tv
	}
	var args []*types.Type
	if p.at(token.LBracket) {
		args = p.parseTypeArgList()
	}
	return p.resolveNamedTypeFromIdent(name, args)
}

// resolveNamedTypeFromIdent resolves an already-lexed identifier (with
// its already-parsed, possibly empty, explicit type-argument list) to
// a registered nominal struct type, synthesizing fresh-unknown
// arguments when none were written (spec §4.2 "Unification"). Factored
// out of parseNamedType so parseImpl can reuse it after first
// disambiguating the identifier from a trait name (spec §3.3 "impl
// item").
func (p *Parser) resolveNamedTypeFromIdent(name token.Token, args []*types.Type) *types.Type {
	if tv, ok := p.lookupTypeVar(name.Text); ok {
		return tv
	}
	decl, ok := p.table.LookupStruct(symbol.Intern(name.Text))
	if !ok {
		p.diags.Errorf(name.Loc, "unknown type %q", name.Text)
		return p.table.ErrorType()
	}
	abs := p.table.StructAbs(decl)
	if len(args) == 0 && len(decl.TypeVars) > 0 {
		// no explicit arguments: instantiate with fresh unknowns, to be
		// resolved by inference at first use (spec §4.2 "Unification").
		for range decl.TypeVars {
			args = append(args, p.table.NewUnknown())
		}
	}
	if len(args) != len(decl.TypeVars) {
		p.diags.Errorf(name.Loc, "type %q takes %d type argument(s), got %d", name.Text, len(decl.TypeVars), len(args))
	}
	return p.table.StructApp(abs, args)
}

// parseTypeArgList parses a `[ T, ... ]` explicit type-argument list.
func (p *Parser) parseTypeArgList() []*types.Type {
	p.lex() // '['
	var args []*types.Type
	for !p.at(token.RBracket) && !p.at(token.EOF) {
		args = append(args, p.parseType())
		if p.at(token.Comma) {
			p.lex()
			continue
		}
		break
	}
	p.expect(token.RBracket, "type argument list")
	return args
}

// parseOptionalTypeParams parses an optional `[ T (":" Bound ("+" Bound)*)? , ... ]`
// generic parameter list and pushes a type scope covering the rest of
// the declaration being parsed. Callers must popTypeScope() once done.
func (p *Parser) parseOptionalTypeParams() []TypeParamResult {
	scope := map[string]*types.Type{}
	if !p.at(token.LBracket) {
		p.pushTypeScope(scope)
		return nil
	}
	owner := new(struct{})
	p.lex() // '['
	var out []TypeParamResult
	for !p.at(token.RBracket) && !p.at(token.EOF) {
		nameTok := p.expect(token.Ident, "type parameter")
		tv := p.table.TypeVar(symbol.Intern(nameTok.Text), owner)
		scope[nameTok.Text] = tv
		p.pushTypeScope(scope) // bounds may reference earlier params in this list; harmless to push repeatedly? pop once below.

		var bounds []*types.Type
		if p.at(token.Colon) {
			p.lex()
			for {
				boundName := p.expect(token.Ident, "trait bound")
				var args []*types.Type
				if p.at(token.LBracket) {
					args = p.parseTypeArgList()
				}
				if decl, ok := p.table.LookupTrait(symbol.Intern(boundName.Text)); ok {
					bounds = append(bounds, p.table.TraitApp(decl, tv, args))
				} else {
					p.diags.Errorf(boundName.Loc, "unknown trait %q in bound", boundName.Text)
				}
				if p.at(token.Plus) {
					p.lex()
					continue
				}
				break
			}
		}
		p.popTypeScope()
		out = append(out, TypeParamResult{Var: tv, Bounds: bounds})
		if p.at(token.Comma) {
			p.lex()
			continue
		}
		break
	}
	p.expect(token.RBracket, "type parameter list")
	p.pushTypeScope(scope)
	return out
}

// TypeParamResult is the parser-local return shape of
// parseOptionalTypeParams, converted to ast.TypeParam by callers.
type TypeParamResult struct {
	Var    *types.Type
	Bounds []*types.Type
}

func toASTTypeParams(rs []TypeParamResult) []ast.TypeParam {
	out := make([]ast.TypeParam, len(rs))
	for i, r := range rs {
		out[i] = ast.TypeParam{Var: r.Var, Bounds: r.Bounds}
	}
	return out
}
