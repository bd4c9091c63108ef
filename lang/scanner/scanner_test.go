package scanner_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uwconv/toolchain/lang/scanner"
	"github.com/uwconv/toolchain/lang/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	s := scanner.New("test.uws", []byte(src))
	var toks []token.Token
	for {
		tok, _, err := s.Scan()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok == token.EOF {
			return toks
		}
	}
}

func TestScanKeywordsAndPunct(t *testing.T) {
	toks := scanAll(t, "let x = 1 + 2\n")
	require.Equal(t, []token.Token{
		token.LET, token.IDENT, token.EQ, token.INT, token.PLUS, token.INT, token.NEWLINE, token.EOF,
	}, toks)
}

func TestScanString(t *testing.T) {
	s := scanner.New("test.uws", []byte(`"HP: @SI0\n"`))
	tok, val, err := s.Scan()
	require.NoError(t, err)
	require.Equal(t, token.STRING, tok)
	require.Equal(t, "HP: @SI0\n", val.Str)
}

func TestScanUnterminatedString(t *testing.T) {
	s := scanner.New("test.uws", []byte(`"abc`))
	_, _, err := s.Scan()
	require.Error(t, err)
}

func TestScanHexLiteral(t *testing.T) {
	s := scanner.New("test.uws", []byte("0x1A"))
	tok, val, err := s.Scan()
	require.NoError(t, err)
	require.Equal(t, token.INT, tok)
	require.EqualValues(t, 26, val.Int)
}

func TestScanLineComment(t *testing.T) {
	toks := scanAll(t, "let x = 1 // comment\nlet y = 2\n")
	require.Equal(t, []token.Token{
		token.LET, token.IDENT, token.EQ, token.INT, token.NEWLINE,
		token.LET, token.IDENT, token.EQ, token.INT, token.NEWLINE, token.EOF,
	}, toks)
}

func TestScanCompoundAssign(t *testing.T) {
	toks := scanAll(t, "x += 1\nx -= 1\nx *= 2\nx /= 2\n")
	require.Contains(t, toks, token.PLUS_EQ)
	require.Contains(t, toks, token.MINUS_EQ)
	require.Contains(t, toks, token.STAR_EQ)
	require.Contains(t, toks, token.SLASH_EQ)
}
