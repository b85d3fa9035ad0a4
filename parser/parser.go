// Package parser implements the LL(2), Pratt/precedence-climbing
// parser of spec §4.1: it converts a token.Token stream into an
// *ast.Module. Grounded on the teacher's hand-rolled lexer/parser split
// (gql/lex.go feeding a goyacc grammar) but written as a direct
// recursive-descent parser instead of a generated one, the way
// original_source/impala/parser.cpp itself is structured.
package parser

import (
	"github.com/pkg/errors"

	"github.com/rill-lang/rillc/ast"
	"github.com/rill-lang/rillc/diag"
	"github.com/rill-lang/rillc/symbol"
	"github.com/rill-lang/rillc/token"
	"github.com/rill-lang/rillc/types"
)

// Options carries the two driver-visible knobs spec §6 names: the
// no-SSA compile-mode flag and the ABI allow-list for `extern fn`
// blocks. Modeled on the teacher's gql.Opts struct-of-knobs passed
// into a constructor.
type Options struct {
	NoSSA bool
	// ABIAllowList enumerates accepted `extern fn` ABI strings. A blank
	// list defaults to spec §6's set: "C", "device", "thorin".
	ABIAllowList []string
}

func (o Options) abiAllowed(abi string) bool {
	list := o.ABIAllowList
	if len(list) == 0 {
		list = []string{"C", "device", "thorin"}
	}
	for _, a := range list {
		if a == abi {
			return true
		}
	}
	return false
}

// tokenSource is anything that yields a token.Token stream; *lexer.Lexer
// satisfies it, and tests can substitute a canned slice.
type tokenSource interface {
	Next() token.Token
}

// Parser holds the LL(2) lookahead buffer and all parsing state.
type Parser struct {
	src      tokenSource
	filename string
	table    *types.Table
	diags    *diag.Sink
	opts     Options

	buf    [2]token.Token
	handles *ast.HandleAllocator
	// noBars suppresses parsing a leading '|'/'||' as a closure opener,
	// used while parsing if/while/for condition expressions where the
	// trailing '{' would otherwise be ambiguous with a closure body
	// (spec §4.1 "Expression grammar").
	noBars bool
	// noStructLit suppresses parsing `Path { ... }` as a struct literal
	// for the same reason: the condition of if/while/for must not
	// swallow the following block as its own literal body.
	noStructLit bool
	ok          bool
	typeScopes  []map[string]*types.Type
}

// New creates a Parser reading from src.
func New(table *types.Table, src tokenSource, filename string, diags *diag.Sink, opts Options) *Parser {
	p := &Parser{src: src, filename: filename, table: table, diags: diags, opts: opts, handles: ast.NewHandleAllocator(), ok: true}
	p.buf[0] = p.src.Next()
	p.buf[1] = p.src.Next()
	return p
}

// Parse runs New(...).ParseModule(), the package-level convenience
// entry point spec §4.1 names: "parse(type_table, token_stream,
// filename) -> module_contents".
func Parse(table *types.Table, src tokenSource, filename string, diags *diag.Sink, opts Options) (*ast.Module, bool) {
	p := New(table, src, filename, diags, opts)
	return p.ParseModule()
}

func (p *Parser) cur() token.Token  { return p.buf[0] }
func (p *Parser) peek() token.Token { return p.buf[1] }

// lex consumes the current token and refills the two-token buffer
// (spec §4.1 "lex() consumes one and refills").
func (p *Parser) lex() token.Token {
	t := p.buf[0]
	p.buf[0] = p.buf[1]
	p.buf[1] = p.src.Next()
	return t
}

func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

// expect consumes the current token if it has kind k; otherwise it
// records "expected X, got Y while parsing ctx" and does not consume,
// letting the caller's synchronization point recover (spec §4.1
// "Error recovery").
func (p *Parser) expect(k token.Kind, ctx string) token.Token {
	if p.at(k) {
		return p.lex()
	}
	p.ok = false
	p.diags.Errorf(p.cur().Loc, "expected %s, got %s while parsing %s", k, p.cur().Kind, ctx)
	return token.Token{Kind: k, Loc: p.cur().Loc}
}

// recoverTo skips tokens until one of the synchronization kinds (or
// EOF) is reached, without consuming it, implementing spec §4.1's
// "Synchronization points are statement terminators and block
// delimiters."
func (p *Parser) recoverTo(kinds ...token.Kind) {
	start := p.cur().Loc
	skipped := 0
	for {
		if p.at(token.EOF) {
			break
		}
		synced := false
		for _, k := range kinds {
			if p.at(k) {
				synced = true
				break
			}
		}
		if synced {
			break
		}
		p.lex()
		skipped++
	}
	diag.Tracef(start, "recoverTo: skipped %d token(s) to resynchronize at %s", skipped, p.cur().Kind)
}

// internalError records a diagnostic for a genuine parser-internal
// invariant violation (spec §7 category 6), never for user-reachable
// syntax errors, which always go through expect/Errorf instead.
func (p *Parser) internalError(loc token.Location, err error) {
	p.ok = false
	p.diags.Error(loc, errors.Wrap(err, "internal parser error").Error())
}

// ParseModule parses a complete source file into an *ast.Module,
// returning whether parsing completed without error (spec §4.1:
// "Failure is accumulated in a boolean result; the parser always
// returns a (possibly partial) tree.").
func (p *Parser) ParseModule() (mod *ast.Module, ok bool) {
	defer p.diags.Recover(p.cur().Loc)
	mod = &ast.Module{Filename: p.filename}
	for !p.at(token.EOF) {
		before := p.cur()
		item := p.parseItem()
		if item != nil {
			mod.Items = append(mod.Items, item)
		}
		if p.cur() == before && !p.at(token.EOF) {
			// parseItem made no progress; avoid an infinite loop on
			// unexpected input (spec §9: "parse_mod_contents loop
			// termination... implementations must break on EOF and
			// diagnose if items are truncated").
			p.diags.Errorf(p.cur().Loc, "unexpected token %s at module scope", p.cur().Kind)
			p.lex()
		}
	}
	return mod, p.ok && !p.diags.HasErrors()
}

func (p *Parser) parseVisibility() ast.Visibility {
	switch p.cur().Kind {
	case token.KwPub:
		p.lex()
		return ast.Pub
	case token.KwPriv:
		p.lex()
		return ast.Priv
	default:
		return ast.Default
	}
}

// parseItem dispatches on an optional visibility prefix followed by
// one of the item keywords (spec §4.1 "Item dispatch").
func (p *Parser) parseItem() ast.Item {
	vis := p.parseVisibility()
	switch p.cur().Kind {
	case token.KwFn:
		return p.parseFn(vis, false, "")
	case token.KwExtern:
		return p.parseExternFn(vis)
	case token.KwStruct:
		return p.parseStruct(vis)
	case token.KwEnum:
		return p.parseEnum(vis)
	case token.KwType:
		return p.parseTypeAlias(vis)
	case token.KwStatic:
		return p.parseStatic(vis)
	case token.KwTrait:
		return p.parseTrait(vis)
	case token.KwImpl:
		return p.parseImpl()
	case token.KwMod:
		return p.parseMod(vis)
	default:
		p.ok = false
		p.diags.Errorf(p.cur().Loc, "expected an item (fn, struct, trait, impl, ...), got %s", p.cur().Kind)
		p.recoverTo(token.Semi, token.RBrace)
		if p.at(token.Semi) {
			p.lex()
		}
		return nil
	}
}

func (p *Parser) parseMod(vis ast.Visibility) *ast.ModDecl {
	loc := p.cur().Loc
	p.lex() // 'mod'
	name := p.expect(token.Ident, "mod name")
	p.expect(token.LBrace, "mod body")
	var items []ast.Item
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if it := p.parseItem(); it != nil {
			items = append(items, it)
		}
	}
	p.expect(token.RBrace, "mod body")
	return ast.NewModDecl(loc, symbol.Intern(name.Text), vis, items)
}

func (p *Parser) parseStatic(vis ast.Visibility) *ast.StaticDecl {
	loc := p.cur().Loc
	p.lex() // 'static'
	mut := false
	if p.at(token.KwMut) {
		mut = true
		p.lex()
	}
	name := p.expect(token.Ident, "static name")
	var t *types.Type
	if p.at(token.Colon) {
		p.lex()
		t = p.parseType()
	}
	var init ast.Expr
	if p.at(token.Eq) {
		p.lex()
		init = p.parseExpr()
	}
	p.expect(token.Semi, "static item")
	return ast.NewStaticDecl(loc, symbol.Intern(name.Text), vis, mut, t, init)
}

func (p *Parser) parseTypeAlias(vis ast.Visibility) *ast.TypeAliasDecl {
	loc := p.cur().Loc
	p.lex() // 'type'
	name := p.expect(token.Ident, "type alias name")
	tps := p.parseOptionalTypeParams()
	p.expect(token.Eq, "type alias")
	t := p.parseType()
	p.expect(token.Semi, "type alias")
	p.popTypeScope()
	return ast.NewTypeAliasDecl(loc, symbol.Intern(name.Text), vis, toASTTypeParams(tps), t)
}
