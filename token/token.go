// Package token splits text into tokens and joins tokens back into text.
//
// Four kinds of token are provided: bytes, Unicode grapheme clusters,
// Unicode words, and byte-pair-encoding token ids.  Each kind comes with a
// Tokenizer that also serializes a list of distinct tokens, so that the
// token set of a code table can be stored next to it.
package token

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Tokenizer converts between text and a stream of tokens of type T.
type Tokenizer[T any] interface {
	// Tokenize reads all of r and splits it into tokens.
	Tokenize(r io.Reader) ([]T, error)

	// Detokenize writes the text for tokens to w.  For lossy kinds of
	// token, the text may differ from the text that was tokenized.
	Detokenize(w io.Writer, tokens []T) error

	// EncodeTokens serializes a list of tokens.
	EncodeTokens(tokens []T) ([]byte, error)

	// DecodeTokens reverses EncodeTokens.
	DecodeTokens(data []byte) ([]T, error)
}

// Kind identifies a kind of token.  The numeric value of a Kind is its
// one-byte marker in serialized data.
type Kind uint8

const (
	KindByte     Kind = 1
	KindGrapheme Kind = 2
	KindWord     Kind = 3
	KindBPE      Kind = 4
)

var kindNames = [...]string{
	KindByte:     "byte",
	KindGrapheme: "grapheme",
	KindWord:     "word",
	KindBPE:      "bpe",
}

// Kinds lists every valid Kind.
func Kinds() []Kind {
	return []Kind{KindByte, KindGrapheme, KindWord, KindBPE}
}

// IsValid returns true iff k is one of the defined Kinds.
func (k Kind) IsValid() bool {
	return k >= KindByte && k <= KindBPE
}

// String returns the name of the Kind, as accepted by ParseKind.
func (k Kind) String() string {
	if k.IsValid() {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind returns the Kind with the given name.
func ParseKind(name string) (Kind, error) {
	lower := strings.ToLower(name)
	for _, k := range Kinds() {
		if kindNames[k] == lower {
			return k, nil
		}
	}
	return 0, errors.Errorf("unknown tokenizer %q", name)
}

// KindFromMarker returns the Kind with the given marker byte.
func KindFromMarker(marker byte) (Kind, error) {
	k := Kind(marker)
	if !k.IsValid() {
		return 0, errors.Errorf("unknown tokenization scheme marker %d", marker)
	}
	return k, nil
}

var _ fmt.Stringer = Kind(0)

// encodeStrings serializes each string as a uvarint length and its bytes.
func encodeStrings[S ~string](tokens []S) []byte {
	var out []byte
	for _, t := range tokens {
		out = binary.AppendUvarint(out, uint64(len(t)))
		out = append(out, t...)
	}
	return out
}

func decodeStrings[S ~string](data []byte) ([]S, error) {
	var out []S
	for offset := 0; offset < len(data); {
		size, n := binary.Uvarint(data[offset:])
		if n <= 0 {
			return nil, errors.Errorf("malformed token length at offset %d", offset)
		}
		offset += n
		if size > uint64(len(data)-offset) {
			return nil, errors.Errorf("token of %d bytes at offset %d overruns %d bytes of data", size, offset, len(data))
		}
		end := offset + int(size)
		out = append(out, S(data[offset:end]))
		offset = end
	}
	return out, nil
}

func readAllString(r io.Reader) (string, error) {
	var buf strings.Builder
	if _, err := io.Copy(&buf, r); err != nil {
		return "", errors.WithStack(err)
	}
	return buf.String(), nil
}
