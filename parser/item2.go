package parser

import (
	"github.com/rill-lang/rillc/ast"
	"github.com/rill-lang/rillc/symbol"
	"github.com/rill-lang/rillc/token"
	"github.com/rill-lang/rillc/types"
)

// parseParamList parses `( param ("," param)* ","? )`, where a param is
// `mut? IDENT (":" type)?` (spec §4.1 "Parameter list").
func (p *Parser) parseParamList() []*ast.Param {
	p.expect(token.LParen, "parameter list")
	var params []*ast.Param
	for !p.at(token.RParen) && !p.at(token.EOF) {
		loc := p.cur().Loc
		mut := false
		if p.at(token.KwMut) {
			mut = true
			p.lex()
		}
		name := p.expect(token.Ident, "parameter")
		var t *types.Type
		if p.at(token.Colon) {
			p.lex()
			t = p.parseType()
		}
		params = append(params, &ast.Param{Loc: loc, Name: symbol.Intern(name.Text), Mut: mut, Type: t, Handle: p.handles.Next()})
		if p.at(token.Comma) {
			p.lex()
			continue
		}
		break
	}
	p.expect(token.RParen, "parameter list")
	return params
}

// parseFn parses a function declaration, synthesizing the trailing
// continuation parameter per spec §4.1 "Function head". When extern is
// true, no block body is parsed; a semicolon terminates the signature
// instead. Otherwise a semicolon in place of the block leaves the
// declaration bodyless (`fn f() -> ();`).
func (p *Parser) parseFn(vis ast.Visibility, extern bool, abi string) *ast.FnDecl {
	loc := p.cur().Loc
	p.expect(token.KwFn, "function declaration")
	return p.parseFnBody(loc, vis, extern, abi, true)
}

// parseExternFn parses `extern "ABI" fn ...` (spec §4.1: "extern fn
// sets the extern flag"), validating the ABI string against the
// allow-list (spec §6).
func (p *Parser) parseExternFn(vis ast.Visibility) *ast.FnDecl {
	loc := p.cur().Loc
	p.lex() // 'extern'
	abi := "C"
	if p.at(token.StringLit) {
		tok := p.lex()
		abi = tok.Literal.Str
		if !p.opts.abiAllowed(abi) {
			p.diags.Errorf(tok.Loc, "unknown ABI %q on extern fn", abi)
		}
	}
	p.expect(token.KwFn, "extern fn")
	return p.parseFnBody(loc, vis, true, abi, false)
}

// parseFnBody parses everything after the 'fn' keyword has already
// been consumed, shared by parseFn, parseExternFn, and trait-method
// signature parsing. When bodyOptional is true and a ';' follows the
// signature instead of a block, the declaration is left bodyless (a
// trait method signature with no default implementation, or a bodyless
// fn declaration).
func (p *Parser) parseFnBody(loc token.Location, vis ast.Visibility, extern bool, abi string, bodyOptional bool) *ast.FnDecl {
	name := p.expect(token.Ident, "function name")
	tps := p.parseOptionalTypeParams()
	params := p.parseParamList()

	var retType *types.Type
	if p.at(token.Arrow) {
		p.lex()
		retType = p.parseType()
	} else {
		retType = p.table.Unit()
	}

	contType := p.continuationType(retType)
	params = append(params, &ast.Param{Loc: p.cur().Loc, Name: symbol.Intern("return"), Type: contType, Handle: p.handles.Next()})

	var body *ast.BlockExpr
	switch {
	case extern:
		p.expect(token.Semi, "extern fn")
	case bodyOptional && p.at(token.Semi):
		p.lex()
	default:
		body = p.parseBlock()
	}
	p.popTypeScope()

	decl := ast.NewFnDecl(loc, symbol.Intern(name.Text), vis, toASTTypeParams(tps), params, retType, body)
	decl.Extern = extern
	decl.ABI = abi
	return decl
}

// bindImplicitSelf types an unannotated leading "self" parameter to
// selfType — the convention (grounded on original_source/impala's
// method receivers and exercised by spec §8 scenario 7's `fn m(self)
// -> i32`) that a method's receiver parameter may omit its type
// annotation, since it is always the enclosing trait's Self variable
// (inside a trait) or the impl's concrete target type (inside an
// impl).
func bindImplicitSelf(fn *ast.FnDecl, selfType *types.Type) {
	if len(fn.Params) == 0 {
		return
	}
	first := fn.Params[0]
	if first.Name.String() == "self" && first.Type == nil {
		first.Type = selfType
	}
}

// methodFromFnDecl builds the types.Method (and its underlying
// polymorphic Fn type) that a parsed trait or impl method signature
// registers in the trait/impl store, reusing the method's own generic
// type parameters (if any) as the Fn type's bound set.
func methodFromFnDecl(table *types.Table, fn *ast.FnDecl) *types.Method {
	argTypes := make([]*types.Type, len(fn.Params))
	for i, prm := range fn.Params {
		argTypes[i] = prm.Type
	}
	bound := make([]types.BoundVar, len(fn.TypeParams))
	for i, tp := range fn.TypeParams {
		bound[i] = types.BoundVar{Var: tp.Var, Bounds: tp.Bounds}
	}
	return &types.Method{
		Name:   fn.Name(),
		Elems:  argTypes,
		Result: fn.ReturnType,
		Bound:  bound,
		Fn:     table.Fn(bound, argTypes),
	}
}

func (p *Parser) parseFieldList() []ast.FieldDecl {
	p.expect(token.LBrace, "field list")
	var fields []ast.FieldDecl
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		name := p.expect(token.Ident, "field name")
		p.expect(token.Colon, "field")
		t := p.parseType()
		fields = append(fields, ast.FieldDecl{Name: symbol.Intern(name.Text), Type: t})
		if p.at(token.Comma) {
			p.lex()
			continue
		}
		break
	}
	p.expect(token.RBrace, "field list")
	return fields
}

func (p *Parser) parseStruct(vis ast.Visibility) *ast.StructItem {
	loc := p.cur().Loc
	p.lex() // 'struct'
	name := p.expect(token.Ident, "struct name")
	tps := p.parseOptionalTypeParams()
	fields := p.parseFieldList()
	p.popTypeScope()

	tvars := make([]*types.Type, len(tps))
	for i, tp := range tps {
		tvars[i] = tp.Var
	}
	tfields := make([]types.StructField, len(fields))
	for i, f := range fields {
		tfields[i] = types.StructField{Name: f.Name, Type: f.Type}
	}
	decl := &types.StructDecl{Name: symbol.Intern(name.Text), TypeVars: tvars, Fields: tfields}
	if err := p.table.RegisterStruct(decl); err != nil {
		p.diags.Error(name.Loc, err.Error())
	}

	item := ast.NewStructItem(loc, symbol.Intern(name.Text), vis, toASTTypeParams(tps), fields)
	item.Resolved = decl
	return item
}

func (p *Parser) parseEnum(vis ast.Visibility) *ast.EnumDecl {
	loc := p.cur().Loc
	p.lex() // 'enum'
	name := p.expect(token.Ident, "enum name")
	tps := p.parseOptionalTypeParams()
	p.expect(token.LBrace, "enum body")
	var variants []ast.EnumVariant
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		vname := p.expect(token.Ident, "enum variant")
		var fields []ast.FieldDecl
		if p.at(token.LBrace) {
			fields = p.parseFieldList()
		}
		variants = append(variants, ast.EnumVariant{Name: symbol.Intern(vname.Text), Fields: fields})
		if p.at(token.Comma) {
			p.lex()
			continue
		}
		break
	}
	p.expect(token.RBrace, "enum body")
	p.popTypeScope()
	return ast.NewEnumDecl(loc, symbol.Intern(name.Text), vis, toASTTypeParams(tps), variants)
}

// parseTrait parses a trait declaration (spec §3.3, §4.3): a self type
// variable, optional type parameters, optional super-trait bounds, and
// a set of method signatures.
func (p *Parser) parseTrait(vis ast.Visibility) *ast.TraitItem {
	loc := p.cur().Loc
	p.lex() // 'trait'
	name := p.expect(token.Ident, "trait name")

	owner := new(struct{})
	self := p.table.TypeVar(symbol.Intern("Self"), owner)
	scope := map[string]*types.Type{"Self": self}
	p.pushTypeScope(scope)

	tps := p.parseOptionalTypeParams()

	var supers []*types.Type
	if p.at(token.Colon) {
		p.lex()
		for {
			superName := p.expect(token.Ident, "super-trait bound")
			var args []*types.Type
			if p.at(token.LBracket) {
				args = p.parseTypeArgList()
			}
			if decl, ok := p.table.LookupTrait(symbol.Intern(superName.Text)); ok {
				supers = append(supers, p.table.TraitApp(decl, self, args))
			} else {
				p.diags.Errorf(superName.Loc, "unknown trait %q in super-trait bound", superName.Text)
			}
			if p.at(token.Plus) {
				p.lex()
				continue
			}
			break
		}
	}

	p.expect(token.LBrace, "trait body")
	var methods []*ast.TraitMethod
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if !p.at(token.KwFn) {
			p.diags.Errorf(p.cur().Loc, "expected a method signature in trait body, got %s", p.cur().Kind)
			p.recoverTo(token.Semi, token.RBrace)
			if p.at(token.Semi) {
				p.lex()
			}
			continue
		}
		fnLoc := p.cur().Loc
		p.lex() // 'fn'
		fn := p.parseFnBody(fnLoc, ast.Default, false, "", true)
		bindImplicitSelf(fn, self)
		methods = append(methods, &ast.TraitMethod{Decl: fn})
	}
	p.expect(token.RBrace, "trait body")
	p.popTypeScope() // trait's own param scope
	p.popTypeScope() // Self scope

	item := ast.NewTraitItem(loc, symbol.Intern(name.Text), vis, self, toASTTypeParams(tps), supers, methods)

	traitParams := make([]*types.Type, len(tps))
	for i, tp := range tps {
		traitParams[i] = tp.Var
	}
	decl, err := types.NewTrait(symbol.Intern(name.Text), self, traitParams, supers)
	if err != nil {
		p.diags.Error(name.Loc, err.Error())
		return item
	}
	for _, m := range methods {
		if err := decl.AddMethod(methodFromFnDecl(p.table, m.Decl)); err != nil {
			p.diags.Error(m.Decl.Loc(), err.Error())
		}
	}
	if err := p.table.RegisterTrait(decl); err != nil {
		p.diags.Error(name.Loc, err.Error())
	}
	item.Resolved = decl
	return item
}

// parseImpl parses an impl block: `impl [params] Trait[args] for Target
// { methods }` or the inherent form `impl [params] Target { methods }`
// (spec §3.3, §4.3).
func (p *Parser) parseImpl() *ast.ImplItem {
	loc := p.cur().Loc
	p.lex() // 'impl'
	tps := p.parseOptionalTypeParams()

	var trait *types.Type
	var target *types.Type
	if p.at(token.Ident) {
		// A leading identifier is ambiguous between "the target type
		// itself" (a struct name) and "a trait name, followed by `for
		// Target`" — only resolvable once `for` either does or doesn't
		// appear after the name and its optional `[...]` arguments
		// (spec §3.3 "impl item").
		nameTok := p.lex()
		var args []*types.Type
		if p.at(token.LBracket) {
			args = p.parseTypeArgList()
		}
		if p.at(token.KwFor) {
			p.lex()
			target = p.parseType()
			if decl, ok := p.table.LookupTrait(symbol.Intern(nameTok.Text)); ok {
				trait = p.table.TraitApp(decl, target, args)
			} else {
				p.diags.Errorf(nameTok.Loc, "unknown trait %q in impl", nameTok.Text)
			}
		} else {
			target = p.resolveNamedTypeFromIdent(nameTok, args)
		}
	} else {
		target = p.parseType()
	}

	p.expect(token.LBrace, "impl body")
	var methods []*ast.FnDecl
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if !p.at(token.KwFn) {
			p.diags.Errorf(p.cur().Loc, "expected a method in impl body, got %s", p.cur().Kind)
			p.recoverTo(token.RBrace)
			continue
		}
		fn := p.parseFn(ast.Default, false, "")
		bindImplicitSelf(fn, target)
		methods = append(methods, fn)
	}
	p.expect(token.RBrace, "impl body")
	p.popTypeScope()

	item := ast.NewImplItem(loc, toASTTypeParams(tps), trait, target, methods)

	bound := make([]types.BoundVar, len(tps))
	for i, tp := range tps {
		bound[i] = types.BoundVar{Var: tp.Var, Bounds: tp.Bounds}
	}
	impl := &types.Impl{Bound: bound, Trait: trait, Target: target}
	for _, m := range methods {
		impl.AddMethod(methodFromFnDecl(p.table, m))
	}
	p.table.AddImpl(impl)
	item.Resolved = impl
	return item
}
