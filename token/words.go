package token

import (
	"fmt"
	"io"
	"unicode"

	"github.com/pkg/errors"
	"github.com/rivo/uniseg"
)

// Word is a token holding one Unicode word.
type Word string

func (w Word) String() string {
	return string(w)
}

// Words tokenizes text into Words, per UAX #29.  Only segments containing a
// letter or a digit are kept, so punctuation and spacing are lost;
// Detokenize separates words with single spaces.
type Words struct{}

// Tokenize implements Tokenizer.
func (Words) Tokenize(r io.Reader) ([]Word, error) {
	text, err := readAllString(r)
	if err != nil {
		return nil, err
	}
	var out []Word
	state := -1
	for len(text) != 0 {
		var segment string
		segment, text, state = uniseg.FirstWordInString(text, state)
		if isWord(segment) {
			out = append(out, Word(segment))
		}
	}
	return out, nil
}

func isWord(segment string) bool {
	for _, ch := range segment {
		if unicode.IsLetter(ch) || unicode.IsNumber(ch) {
			return true
		}
	}
	return false
}

// Detokenize implements Tokenizer.
func (Words) Detokenize(w io.Writer, tokens []Word) error {
	for i, word := range tokens {
		if i != 0 {
			if _, err := io.WriteString(w, " "); err != nil {
				return errors.WithStack(err)
			}
		}
		if _, err := io.WriteString(w, string(word)); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// EncodeTokens implements Tokenizer.
func (Words) EncodeTokens(tokens []Word) ([]byte, error) {
	return encodeStrings(tokens), nil
}

// DecodeTokens implements Tokenizer.
func (Words) DecodeTokens(data []byte) ([]Word, error) {
	return decodeStrings[Word](data)
}

var (
	_ fmt.Stringer    = Word("")
	_ Tokenizer[Word] = Words{}
)
