package parser

import (
	"github.com/rill-lang/rillc/ast"
	"github.com/rill-lang/rillc/symbol"
	"github.com/rill-lang/rillc/token"
	"github.com/rill-lang/rillc/types"
)

// atItemStart reports whether the current token opens an item, used to
// dispatch a block-scope statement between item-statement and
// expression parsing (spec §4.1 "Item dispatch" applies equally at
// block scope).
func (p *Parser) atItemStart() bool {
	switch p.cur().Kind {
	case token.KwFn, token.KwExtern, token.KwStruct, token.KwEnum,
		token.KwType, token.KwStatic, token.KwTrait, token.KwImpl, token.KwMod,
		token.KwPub, token.KwPriv:
		return true
	}
	return false
}

// isBlockLike reports whether e's surface syntax ends in '}', so a
// trailing statement semicolon is optional after it (spec §4.1 "Block"
// statement-separator rule, the same convention original_source/impala
// uses for if/while/for/block-as-statement).
func isBlockLike(e ast.Expr) bool {
	switch e.Kind() {
	case ast.BlockKind, ast.IfKind, ast.WhileKind, ast.ForKind:
		return true
	}
	return false
}

// parseBlock parses `{ stmt* expr? }` (spec §3.3, §4.1, §4.5 "Block").
func (p *Parser) parseBlock() *ast.BlockExpr {
	loc := p.cur().Loc
	p.expect(token.LBrace, "block")
	var stmts []ast.Stmt
	var tail ast.Expr
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if p.at(token.Semi) {
			p.lex()
			continue
		}
		if p.at(token.KwLet) {
			stmts = append(stmts, p.parseLet())
			continue
		}
		if p.atItemStart() {
			itemLoc := p.cur().Loc
			it := p.parseItem()
			if it != nil {
				stmts = append(stmts, ast.NewItemStmt(itemLoc, it))
			}
			continue
		}
		exprLoc := p.cur().Loc
		e := p.parseExpr()
		if p.at(token.RBrace) {
			tail = e
			break
		}
		if p.at(token.Semi) {
			p.lex()
			stmts = append(stmts, ast.NewExprStmt(exprLoc, e))
			continue
		}
		if isBlockLike(e) {
			stmts = append(stmts, ast.NewExprStmt(exprLoc, e))
			continue
		}
		p.ok = false
		p.diags.Errorf(p.cur().Loc, "expected ';' or '}' after statement, got %s", p.cur().Kind)
		stmts = append(stmts, ast.NewExprStmt(exprLoc, e))
	}
	p.expect(token.RBrace, "block")
	return ast.NewBlockExpr(loc, stmts, tail)
}

// parseLet parses `let mut? NAME (":" type)? ("=" init)? ";"` (spec
// §3.3 "let-statement").
func (p *Parser) parseLet() *ast.LetStmt {
	loc := p.cur().Loc
	p.lex() // 'let'
	mut := false
	if p.at(token.KwMut) {
		mut = true
		p.lex()
	}
	name := p.expect(token.Ident, "let binding")
	handle := p.handles.Next()

	var annotated *types.Type
	if p.at(token.Colon) {
		p.lex()
		annotated = p.parseType()
	}

	var init ast.Expr
	if p.at(token.Eq) {
		p.lex()
		init = p.parseExpr()
	}
	p.expect(token.Semi, "let statement")

	return ast.NewLetStmt(loc, symbol.Intern(name.Text), mut, handle, annotated, init)
}
