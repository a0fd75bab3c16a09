package prefixcode

import (
	"github.com/pkg/errors"
)

var (
	// ErrInvalidAlphabet is returned when a set of letters does not form a
	// prefix code, or when one of the letters is all zero bits.
	ErrInvalidAlphabet = errors.New("invalid alphabet")

	// ErrIndexOutOfBounds is returned by Letter.At for an index past the
	// end of the letter.
	ErrIndexOutOfBounds = errors.New("index out of bounds")

	// ErrTooManyTokens is returned when a model has more distinct tokens
	// than a 64-bit fixed width code can number.
	ErrTooManyTokens = errors.New("model has too many tokens")

	// ErrIncompleteCodeword is returned when a packed stream ends in the
	// middle of a codeword.
	ErrIncompleteCodeword = errors.New("incomplete codeword")

	// ErrTrailingData is returned when a packed stream contains bits that
	// are neither codewords of the alphabet nor zero padding.
	ErrTrailingData = errors.New("trailing data")

	// ErrTokenLetterCountMismatch is returned when a serialized Encoding
	// lists a different number of tokens than letters.
	ErrTokenLetterCountMismatch = errors.New("token count does not match letter count")

	// ErrInvalidEncoding is returned when a serialized Encoding does not
	// describe an injective token to letter map.
	ErrInvalidEncoding = errors.New("invalid encoding")

	// ErrUnknownToken is returned when encoding a token that the Encoding
	// has no letter for.
	ErrUnknownToken = errors.New("unknown token")
)
