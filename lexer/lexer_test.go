/*
Copyright © 2026 Jeff Berkowitz (pdxjjb@gmail.com)

This program is free software: you can redistribute it and/or modify it
under the terms of the GNU Affero General Public License as published
by the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful, but
WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public
License along with this program. If not, see
<http://www.gnu.org/licenses/>.
*/

package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/pdxjjb/tinylox/token"
)

// tokenCmpOpts lets go-cmp see inside token.Kind, a one-field wrapper
// struct around an int (see token.Kind's doc comment for why it's a
// struct and not a bare int). The field itself is a comparable leaf, so
// this is sufficient without recursing into anything further.
var tokenCmpOpts = cmp.AllowUnexported(token.Kind{})

func scanAll(lx *Lexer) []token.Token {
	var toks []token.Token
	for {
		tk := lx.ScanNext()
		toks = append(toks, tk)
		if tk.Kind == token.Eof {
			return toks
		}
	}
}

func TestSingleAndTwoCharTokens(t *testing.T) {
	lx := MakeLexer("( ) { } , . - + ; / * ! != = == > >= < <=")
	want := []token.Kind{
		token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
		token.Comma, token.Dot, token.Minus, token.Plus, token.Semicolon,
		token.Slash, token.Star, token.Bang, token.BangEqual, token.Equal,
		token.EqualEqual, token.Greater, token.GreaterEqual, token.Less,
		token.LessEqual, token.Eof,
	}
	for _, k := range want {
		tk := lx.ScanNext()
		assert.Equal(t, k, tk.Kind, "token %v", tk)
	}
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	lx := MakeLexer("and class else false for fun if nil or print return super this true var while foobar")
	kinds := []token.Kind{
		token.And, token.Class, token.Else, token.False, token.For, token.Fun,
		token.If, token.Nil, token.Or, token.Print, token.Return, token.Super,
		token.This, token.True, token.Var, token.While, token.Identifier,
	}
	for _, k := range kinds {
		tk := lx.ScanNext()
		assert.Equal(t, k, tk.Kind, "token %v", tk)
	}
}

func TestStringLiteral(t *testing.T) {
	lx := MakeLexer(`"hello world"`)
	tk := lx.ScanNext()
	assert.Equal(t, token.String, tk.Kind)
	assert.Equal(t, `"hello world"`, tk.Lexeme)
}

func TestStringSpansLines(t *testing.T) {
	lx := MakeLexer("\"line one\nline two\"\n1")
	tk := lx.ScanNext()
	assert.Equal(t, token.String, tk.Kind)
	num := lx.ScanNext()
	assert.Equal(t, token.Number, num.Kind)
	assert.Equal(t, 3, num.Line)
	assert.Equal(t, 1, num.Col)
}

func TestUnterminatedStringIsError(t *testing.T) {
	lx := MakeLexer(`"oops`)
	tk := lx.ScanNext()
	assert.Equal(t, token.Error, tk.Kind)
	assert.Equal(t, "Unterminated string.", tk.Lexeme)
}

func TestNumbers(t *testing.T) {
	lx := MakeLexer("123 4.56 7.")
	n1 := lx.ScanNext()
	assert.Equal(t, token.Number, n1.Kind)
	assert.Equal(t, "123", n1.Lexeme)

	n2 := lx.ScanNext()
	assert.Equal(t, token.Number, n2.Kind)
	assert.Equal(t, "4.56", n2.Lexeme)

	// "7." - the dot is not followed by a digit, so it is not part of
	// the number; a separate Dot token follows.
	n3 := lx.ScanNext()
	assert.Equal(t, token.Number, n3.Kind)
	assert.Equal(t, "7", n3.Lexeme)
	dot := lx.ScanNext()
	assert.Equal(t, token.Dot, dot.Kind)
}

func TestLineCommentSkipped(t *testing.T) {
	lx := MakeLexer("// a comment\n1")
	tk := lx.ScanNext()
	assert.Equal(t, token.Number, tk.Kind)
	assert.Equal(t, 2, tk.Line)
}

func TestUnexpectedCharacterIsError(t *testing.T) {
	lx := MakeLexer("@")
	tk := lx.ScanNext()
	assert.Equal(t, token.Error, tk.Kind)
}

func TestEofIsSticky(t *testing.T) {
	lx := MakeLexer("")
	for i := 0; i < 3; i++ {
		tk := lx.ScanNext()
		assert.Equal(t, token.Eof, tk.Kind)
	}
}

// TestTokenStreamShape diffs an entire scanned token stream against its
// expected shape in one go, rather than field-by-field.
func TestTokenStreamShape(t *testing.T) {
	got := scanAll(MakeLexer("1 + 2"))
	want := []token.Token{
		{Kind: token.Number, Lexeme: "1", Line: 1, Col: 1},
		{Kind: token.Plus, Lexeme: "+", Line: 1, Col: 3},
		{Kind: token.Number, Lexeme: "2", Line: 1, Col: 5},
		{Kind: token.Eof, Lexeme: "", Line: 1, Col: 6},
	}
	if diff := cmp.Diff(want, got, tokenCmpOpts); diff != "" {
		t.Errorf("token stream mismatch (-want +got):\n%s", diff)
	}
}

func TestLineColumnOfFirstCharacter(t *testing.T) {
	lx := MakeLexer("1 + 2\n  foo")
	one := lx.ScanNext()
	assert.Equal(t, 1, one.Line)
	assert.Equal(t, 1, one.Col)

	plus := lx.ScanNext()
	assert.Equal(t, 1, plus.Line)
	assert.Equal(t, 3, plus.Col)

	lx.ScanNext() // 2

	foo := lx.ScanNext()
	assert.Equal(t, 2, foo.Line)
	assert.Equal(t, 3, foo.Col)
}
