package token

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphemes(t *testing.T) {
	var tk Graphemes
	input := "née 🇩🇪!\r\n"

	tokens, err := tk.Tokenize(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []Grapheme{"n", "é", "e", " ", "🇩🇪", "!", "\r\n"}, tokens)

	var buf bytes.Buffer
	require.NoError(t, tk.Detokenize(&buf, tokens))
	assert.Equal(t, input, buf.String())

	data, err := tk.EncodeTokens(tokens)
	require.NoError(t, err)
	decoded, err := tk.DecodeTokens(data)
	require.NoError(t, err)
	assert.Equal(t, tokens, decoded)
}

func TestGraphemes_Empty(t *testing.T) {
	tokens, err := Graphemes{}.Tokenize(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, tokens)
}
