package prefixcode

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"
)

// maxTokenBytes bounds the size of the serialized token list read by
// UnpackEncoding.
const maxTokenBytes = 1 << 30

// TokenCodec serializes the token list of an Encoding.  DecodeTokens must
// return the tokens given to EncodeTokens, in the same order.
type TokenCodec[T Token] interface {
	EncodeTokens(tokens []T) ([]byte, error)
	DecodeTokens(data []byte) ([]T, error)
}

// Encoding maps each Token of a Model to a Letter.  The Letters form an
// Alphabet.
type Encoding[T Token] struct {
	codes    map[T]Letter
	tokens   []T
	alphabet *Alphabet
}

// newEncoding takes ownership of codes.  The Alphabet lists the Letters in
// Letter order, and tokens is aligned with it.
func newEncoding[T Token](codes map[T]Letter) (*Encoding[T], error) {
	tokens := make([]T, 0, len(codes))
	for t := range codes {
		tokens = append(tokens, t)
	}
	sort.Slice(tokens, func(i, j int) bool {
		return codes[tokens[i]].Compare(codes[tokens[j]]) < 0
	})

	letters := make([]Letter, len(tokens))
	for index, t := range tokens {
		letters[index] = codes[t]
	}
	alphabet, err := NewAlphabet(letters)
	if err != nil {
		return nil, err
	}

	return &Encoding[T]{
		codes:    codes,
		tokens:   tokens,
		alphabet: alphabet,
	}, nil
}

// NewEncoding constructs an Encoding from a known map.  The Letters must form
// a valid Alphabet.
func NewEncoding[T Token](codes map[T]Letter) (*Encoding[T], error) {
	clone := make(map[T]Letter, len(codes))
	for t, l := range codes {
		clone[t] = l
	}
	return newEncoding(clone)
}

// Len returns the number of tokens covered by this Encoding.
func (e *Encoding[T]) Len() int {
	return len(e.tokens)
}

// Alphabet returns the Alphabet of this Encoding.
func (e *Encoding[T]) Alphabet() *Alphabet {
	return e.alphabet
}

// Tokens returns the tokens covered by this Encoding.  The i'th token maps to
// the i'th Letter of Alphabet().
func (e *Encoding[T]) Tokens() []T {
	out := make([]T, len(e.tokens))
	copy(out, e.tokens)
	return out
}

// Map returns a copy of the token to Letter map.
func (e *Encoding[T]) Map() map[T]Letter {
	out := make(map[T]Letter, len(e.codes))
	for t, l := range e.codes {
		out[t] = l
	}
	return out
}

// Letter returns the Letter for t, or false if t is not covered.
func (e *Encoding[T]) Letter(t T) (Letter, bool) {
	l, found := e.codes[t]
	return l, found
}

// Encode maps a token stream to its Letters.
func (e *Encoding[T]) Encode(tokens []T) ([]Letter, error) {
	out := make([]Letter, len(tokens))
	for i, t := range tokens {
		l, found := e.codes[t]
		if !found {
			return nil, errors.Wrapf(ErrUnknownToken, "token %q at offset %d", t.String(), i)
		}
		out[i] = l
	}
	return out, nil
}

// EncodeText encodes a token stream and packs the Letters to w.  Returns the
// number of bytes written.
func (e *Encoding[T]) EncodeText(w io.Writer, tokens []T) (int64, error) {
	letters, err := e.Encode(tokens)
	if err != nil {
		return 0, err
	}
	return Pack(w, letters)
}

// DecodeText parses packed Letters from r and maps them back to tokens.
func (e *Encoding[T]) DecodeText(r io.Reader) ([]T, error) {
	p := NewParser(r, e.alphabet)
	var out []T
	for {
		index, err := p.NextIndex()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, e.tokens[index])
	}
}

// Pack serializes this Encoding: the size of the token list as a big-endian
// uint64, the token list as serialized by codec, then the Alphabet.
func (e *Encoding[T]) Pack(w io.Writer, codec TokenCodec[T]) error {
	data, err := codec.EncodeTokens(e.tokens)
	if err != nil {
		return errors.Wrap(err, "failed to encode token list")
	}
	if err := writeUint64(w, uint64(len(data))); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return errors.WithStack(err)
	}
	return e.alphabet.Pack(w)
}

// UnpackEncoding deserializes an Encoding written by Encoding.Pack.  It reads
// exactly the bytes that Pack wrote.
func UnpackEncoding[T Token](r io.Reader, codec TokenCodec[T]) (*Encoding[T], error) {
	size, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	if size > maxTokenBytes {
		return nil, errors.Wrapf(ErrInvalidEncoding, "token list of %d bytes exceeds the limit of %d bytes", size, maxTokenBytes)
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, errors.WithStack(err)
	}
	tokens, err := codec.DecodeTokens(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode token list")
	}

	alphabet, err := UnpackAlphabet(r)
	if err != nil {
		return nil, err
	}
	if len(tokens) != alphabet.Len() {
		return nil, errors.Wrapf(ErrTokenLetterCountMismatch, "%d tokens, %d letters", len(tokens), alphabet.Len())
	}

	codes := make(map[T]Letter, len(tokens))
	for index, t := range tokens {
		if _, found := codes[t]; found {
			return nil, errors.Wrapf(ErrInvalidEncoding, "duplicate token %q", t.String())
		}
		codes[t] = alphabet.At(index)
	}
	return &Encoding[T]{
		codes:    codes,
		tokens:   tokens,
		alphabet: alphabet,
	}, nil
}

// Dump writes a programmer-readable debugging dump of the Encoding to the
// given writer, in Alphabet order.
func (e *Encoding[T]) Dump(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString("Encoding{\n")
	fmt.Fprintf(&buf, "\tLen() = %d\n", len(e.tokens))
	for _, t := range e.tokens {
		fmt.Fprintf(&buf, "\tEncode(%s) = %q\n", t, e.codes[t])
	}
	buf.WriteString("}\n")
	return buf.WriteTo(w)
}
