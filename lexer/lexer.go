// Package lexer is a narrow, hand-written tokenizer built on
// text/scanner, the same foundation gql/lex.go uses. Lexing is one of
// the external collaborators this front end treats as a fixed upstream
// contract (spec §1); this package exists only so parser and sema are
// exercisable end to end against real source text, not just hand-built
// ASTs.
package lexer

import (
	"strconv"
	"strings"
	"text/scanner"

	"github.com/rill-lang/rillc/token"
)

// Lexer scans one source file into token.Tokens on demand.
type Lexer struct {
	sc       scanner.Scanner
	filename string
}

// New creates a Lexer reading src, reporting locations against
// filename.
func New(filename string, src string) *Lexer {
	l := &Lexer{filename: filename}
	l.sc.Init(strings.NewReader(src))
	l.sc.Filename = filename
	l.sc.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats |
		scanner.ScanChars | scanner.ScanStrings | scanner.ScanComments | scanner.SkipComments
	return l
}

func (l *Lexer) pos(p scanner.Position) token.Pos {
	return token.Pos{File: l.filename, Line: p.Line, Column: p.Column}
}

// Next scans and returns the next token, or an EOF token at end of
// input. It never returns an error; malformed input surfaces as
// Illegal tokens, which the parser's expect() turns into diagnostics
// (spec §4.1 "the parser does not throw").
func (l *Lexer) Next() token.Token {
	tok := l.sc.Scan()
	begin := l.sc.Position
	end := l.sc.Pos()
	loc := token.Location{Begin: l.pos(begin), End: l.pos(end)}

	switch tok {
	case scanner.EOF:
		return token.Token{Kind: token.EOF, Loc: loc}
	case scanner.Ident:
		text := l.sc.TokenText()
		if kw, ok := token.Keywords[text]; ok {
			return token.Token{Kind: kw, Loc: loc, Text: text}
		}
		return token.Token{Kind: token.Ident, Loc: loc, Text: text}
	case scanner.Int:
		text := l.sc.TokenText()
		// text/scanner ends an Int token before a width suffix such as
		// "i32" or "u8"; consume it here so parseIntLiteral sees it.
		if r := l.sc.Peek(); r == 'i' || r == 'u' {
			text += string(l.sc.Next())
			for r := l.sc.Peek(); r >= '0' && r <= '9'; r = l.sc.Peek() {
				text += string(l.sc.Next())
			}
			loc.End = l.pos(l.sc.Pos())
		}
		lit, width, signed := parseIntLiteral(text)
		return token.Token{Kind: token.IntLit, Loc: loc, Text: text, Literal: token.Literal{
			Kind: token.LitInt, Int: lit, IntWidth: width, IntSigned: signed,
		}}
	case scanner.Float:
		text := l.sc.TokenText()
		f, width := parseFloatLiteral(text)
		return token.Token{Kind: token.FloatLit, Loc: loc, Text: text, Literal: token.Literal{
			Kind: token.LitFloat, Float: f, FloatWidth: width,
		}}
	case scanner.Char:
		text := l.sc.TokenText()
		r := decodeCharLiteral(text)
		return token.Token{Kind: token.CharLit, Loc: loc, Text: text, Literal: token.Literal{Kind: token.LitChar, Char: r}}
	case scanner.String:
		text := l.sc.TokenText()
		s := decodeStringLiteral(text)
		return token.Token{Kind: token.StringLit, Loc: loc, Text: text, Literal: token.Literal{Kind: token.LitString, Str: s}}
	default:
		return l.scanOperator(tok, loc)
	}
}

// scanOperator handles punctuation/operator runes, greedily matching
// the longest spelling (e.g. "<<=" over "<<" over "<"), the same
// longest-prefix-match idiom gql/lex.go's registerOp/opPrefixes table
// implements via a trie instead of an ad hoc switch; this grammar's
// operator set is small enough for a direct switch to stay readable.
func (l *Lexer) scanOperator(tok rune, loc token.Location) token.Token {
	ch := tok
	text := string(ch)

	two := func(next rune, kind token.Kind, single token.Kind) token.Token {
		if l.sc.Peek() == next {
			l.sc.Next()
			return token.Token{Kind: kind, Loc: loc, Text: text + string(next)}
		}
		return token.Token{Kind: single, Loc: loc, Text: text}
	}

	switch ch {
	case '(':
		return token.Token{Kind: token.LParen, Loc: loc, Text: text}
	case ')':
		return token.Token{Kind: token.RParen, Loc: loc, Text: text}
	case '{':
		return token.Token{Kind: token.LBrace, Loc: loc, Text: text}
	case '}':
		return token.Token{Kind: token.RBrace, Loc: loc, Text: text}
	case '[':
		return token.Token{Kind: token.LBracket, Loc: loc, Text: text}
	case ']':
		return token.Token{Kind: token.RBracket, Loc: loc, Text: text}
	case ',':
		return token.Token{Kind: token.Comma, Loc: loc, Text: text}
	case ';':
		return token.Token{Kind: token.Semi, Loc: loc, Text: text}
	case '?':
		return token.Token{Kind: token.Question, Loc: loc, Text: text}
	case '.':
		return token.Token{Kind: token.Dot, Loc: loc, Text: text}
	case ':':
		return two(':', token.ColonColon, token.Colon)
	case '-':
		if l.sc.Peek() == '>' {
			l.sc.Next()
			return token.Token{Kind: token.Arrow, Loc: loc, Text: "->"}
		}
		return two('=', token.MinusEq, token.Minus)
	case '=':
		if l.sc.Peek() == '>' {
			l.sc.Next()
			return token.Token{Kind: token.FatArrow, Loc: loc, Text: "=>"}
		}
		return two('=', token.EqEq, token.Eq)
	case '+':
		if l.sc.Peek() == '+' {
			l.sc.Next()
			return token.Token{Kind: token.Inc, Loc: loc, Text: "++"}
		}
		return two('=', token.PlusEq, token.Plus)
	case '*':
		return two('=', token.StarEq, token.Star)
	case '/':
		return two('=', token.SlashEq, token.Slash)
	case '%':
		return two('=', token.PercentEq, token.Percent)
	case '^':
		return two('=', token.CaretEq, token.Caret)
	case '~':
		return token.Token{Kind: token.Tilde, Loc: loc, Text: text}
	case '!':
		return two('=', token.Ne, token.Bang)
	case '&':
		if l.sc.Peek() == '&' {
			l.sc.Next()
			return token.Token{Kind: token.AmpAmp, Loc: loc, Text: "&&"}
		}
		return two('=', token.AmpEq, token.Amp)
	case '|':
		if l.sc.Peek() == '|' {
			l.sc.Next()
			return token.Token{Kind: token.PipePipe, Loc: loc, Text: "||"}
		}
		return two('=', token.PipeEq, token.Pipe)
	case '<':
		if l.sc.Peek() == '<' {
			l.sc.Next()
			return two('=', token.ShlEq, token.Shl)
		}
		return two('=', token.Le, token.Lt)
	case '>':
		if l.sc.Peek() == '>' {
			l.sc.Next()
			return two('=', token.ShrEq, token.Shr)
		}
		return two('=', token.Ge, token.Gt)
	default:
		return token.Token{Kind: token.Illegal, Loc: loc, Text: text}
	}
}

func parseIntLiteral(text string) (value int64, width int, signed bool) {
	body := text
	signed = true
	for _, suf := range []struct {
		s string
		w int
		u bool
	}{{"u64", 64, true}, {"u32", 32, true}, {"u16", 16, true}, {"u8", 8, true},
		{"i64", 64, false}, {"i32", 32, false}, {"i16", 16, false}, {"i8", 8, false}} {
		if strings.HasSuffix(body, suf.s) {
			body = strings.TrimSuffix(body, suf.s)
			width, signed = suf.w, !suf.u
			v, _ := strconv.ParseInt(body, 0, 64)
			return v, width, signed
		}
	}
	v, _ := strconv.ParseInt(body, 0, 64)
	return v, 0, true
}

func parseFloatLiteral(text string) (value float64, width int) {
	body := text
	if strings.HasSuffix(body, "f32") {
		body = strings.TrimSuffix(body, "f32")
		width = 32
	} else if strings.HasSuffix(body, "f64") {
		body = strings.TrimSuffix(body, "f64")
		width = 64
	}
	v, _ := strconv.ParseFloat(body, 64)
	return v, width
}

// decodeCharLiteral and decodeStringLiteral recognize the escape set
// spec §6 names verbatim: "\0 \n \t \' \" \\; any other \x diagnoses."
// Lexing proper is out of scope, so an unrecognized escape is decoded
// as its literal second character rather than diagnosed here; a
// production lexer would route this through the diagnostic sink.
func decodeCharLiteral(text string) rune {
	inner := strings.Trim(text, "'")
	return decodeEscapes(inner)[0]
}

func decodeStringLiteral(text string) string {
	inner := text
	if strings.HasPrefix(inner, "\"") {
		inner = strings.Trim(inner, "\"")
	}
	return string(decodeEscapes(inner))
}

func decodeEscapes(s string) []rune {
	var out []rune
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '\\' || i+1 >= len(runes) {
			out = append(out, runes[i])
			continue
		}
		i++
		switch runes[i] {
		case '0':
			out = append(out, 0)
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case '\'':
			out = append(out, '\'')
		case '"':
			out = append(out, '"')
		case '\\':
			out = append(out, '\\')
		default:
			out = append(out, runes[i])
		}
	}
	if len(out) == 0 {
		out = []rune{0}
	}
	return out
}
