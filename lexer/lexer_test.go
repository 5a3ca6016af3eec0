package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextBasicTokens(t *testing.T) {
	lex := New([]byte(`/Name123 42 -17 3.14 (foo) <41 42> [ ] << >> true false null R`))

	kinds := []Kind{Name, Int, Int, Real, StringLiteral, HexString,
		ArrayOpen, ArrayClose, DictOpen, DictClose, Keyword, Keyword, Keyword, Keyword}
	for _, want := range kinds {
		tok, err := lex.Next()
		require.NoError(t, err)
		require.Equal(t, want, tok.Kind)
	}
}

func TestNameHexEscape(t *testing.T) {
	lex := New([]byte(`/A#20B`))
	lex.HexEscapeNames = true
	tok, err := lex.Next()
	require.NoError(t, err)
	require.Equal(t, Name, tok.Kind)
	require.Equal(t, "A B", string(tok.Bytes))

	lex2 := New([]byte(`/A#20B`))
	tok2, err := lex2.Next()
	require.NoError(t, err)
	require.Equal(t, "A#20B", string(tok2.Bytes))
}

func TestStringLiteralLineContinuationAndEOLNormalization(t *testing.T) {
	lex := New([]byte("(foo\\\nbar)"))
	tok, err := lex.Next()
	require.NoError(t, err)
	require.Equal(t, "foobar", string(tok.Bytes))

	lex2 := New([]byte("(foo\r\nbar)"))
	tok2, err := lex2.Next()
	require.NoError(t, err)
	require.Equal(t, "foo\nbar", string(tok2.Bytes))
}

func TestHexStringOddNibblePadding(t *testing.T) {
	lex := New([]byte(`<901fa3>`))
	tok, err := lex.Next()
	require.NoError(t, err)
	require.Equal(t, []byte{0x90, 0x1f, 0xa3}, tok.Bytes)

	lex2 := New([]byte(`<9>`))
	tok2, err := lex2.Next()
	require.NoError(t, err)
	require.Equal(t, []byte{0x90}, tok2.Bytes)
}

func TestCommentsSkipped(t *testing.T) {
	lex := New([]byte("% a comment\n123"))
	tok, err := lex.Next()
	require.NoError(t, err)
	require.Equal(t, Int, tok.Kind)
	require.Equal(t, int64(123), tok.IntVal)
}

func TestSeekToRewinds(t *testing.T) {
	lex := New([]byte("1 2 R"))
	first, _ := lex.Next()
	lex.Next()
	lex.Next()
	lex.SeekTo(first.Offset)
	tok, err := lex.Next()
	require.NoError(t, err)
	require.Equal(t, Int, tok.Kind)
	require.Equal(t, int64(1), tok.IntVal)
}
