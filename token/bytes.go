package token

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Byte is a token holding a single byte of text.
type Byte uint8

// String returns the byte in hexadecimal.
func (b Byte) String() string {
	return fmt.Sprintf("0x%02x", uint8(b))
}

// Bytes tokenizes text into Bytes.  It is lossless.
type Bytes struct{}

// Tokenize implements Tokenizer.
func (Bytes) Tokenize(r io.Reader) ([]Byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	out := make([]Byte, len(data))
	for i, b := range data {
		out[i] = Byte(b)
	}
	return out, nil
}

// Detokenize implements Tokenizer.
func (tk Bytes) Detokenize(w io.Writer, tokens []Byte) error {
	data, _ := tk.EncodeTokens(tokens)
	_, err := w.Write(data)
	return errors.WithStack(err)
}

// EncodeTokens implements Tokenizer.  Each token is one byte.
func (Bytes) EncodeTokens(tokens []Byte) ([]byte, error) {
	out := make([]byte, len(tokens))
	for i, b := range tokens {
		out[i] = byte(b)
	}
	return out, nil
}

// DecodeTokens implements Tokenizer.
func (Bytes) DecodeTokens(data []byte) ([]Byte, error) {
	out := make([]Byte, len(data))
	for i, b := range data {
		out[i] = Byte(b)
	}
	return out, nil
}

var (
	_ fmt.Stringer    = Byte(0)
	_ Tokenizer[Byte] = Bytes{}
)
