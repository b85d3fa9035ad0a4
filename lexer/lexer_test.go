package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rill-lang/rillc/lexer"
	"github.com/rill-lang/rillc/token"
)

func kinds(src string) []token.Kind {
	l := lexer.New("t.rl", src)
	var out []token.Kind
	for {
		tok := l.Next()
		out = append(out, tok.Kind)
		if tok.Kind == token.EOF {
			break
		}
	}
	return out
}

func TestKeywordsAndIdents(t *testing.T) {
	assert.Equal(t, []token.Kind{token.KwFn, token.Ident, token.LParen, token.RParen, token.EOF},
		kinds("fn foo()"))
}

func TestOperatorLongestMatch(t *testing.T) {
	assert.Equal(t, []token.Kind{token.ShlEq, token.EOF}, kinds("<<="))
	assert.Equal(t, []token.Kind{token.Shl, token.EOF}, kinds("<<"))
	assert.Equal(t, []token.Kind{token.Lt, token.EOF}, kinds("<"))
	assert.Equal(t, []token.Kind{token.Arrow, token.EOF}, kinds("->"))
	assert.Equal(t, []token.Kind{token.FatArrow, token.EOF}, kinds("=>"))
}

func TestIntLiteralSuffix(t *testing.T) {
	l := lexer.New("t.rl", "10i32")
	tok := l.Next()
	assert.Equal(t, token.IntLit, tok.Kind)
	assert.Equal(t, int64(10), tok.Literal.Int)
	assert.Equal(t, 32, tok.Literal.IntWidth)
	assert.True(t, tok.Literal.IntSigned)
}

func TestStringEscape(t *testing.T) {
	l := lexer.New("t.rl", `"a\nb"`)
	tok := l.Next()
	assert.Equal(t, token.StringLit, tok.Kind)
	assert.Equal(t, "a\nb", tok.Literal.Str)
}
