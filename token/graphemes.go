package token

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/rivo/uniseg"
)

// Grapheme is a token holding one Unicode extended grapheme cluster.
type Grapheme string

func (g Grapheme) String() string {
	return string(g)
}

// Graphemes tokenizes text into Graphemes, per UAX #29.  It is lossless.
type Graphemes struct{}

// Tokenize implements Tokenizer.
func (Graphemes) Tokenize(r io.Reader) ([]Grapheme, error) {
	text, err := readAllString(r)
	if err != nil {
		return nil, err
	}
	var out []Grapheme
	state := -1
	for len(text) != 0 {
		var cluster string
		cluster, text, _, state = uniseg.FirstGraphemeClusterInString(text, state)
		out = append(out, Grapheme(cluster))
	}
	return out, nil
}

// Detokenize implements Tokenizer.
func (Graphemes) Detokenize(w io.Writer, tokens []Grapheme) error {
	for _, g := range tokens {
		if _, err := io.WriteString(w, string(g)); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// EncodeTokens implements Tokenizer.
func (Graphemes) EncodeTokens(tokens []Grapheme) ([]byte, error) {
	return encodeStrings(tokens), nil
}

// DecodeTokens implements Tokenizer.
func (Graphemes) DecodeTokens(data []byte) ([]Grapheme, error) {
	return decodeStrings[Grapheme](data)
}

var (
	_ fmt.Stringer        = Grapheme("")
	_ Tokenizer[Grapheme] = Graphemes{}
)
