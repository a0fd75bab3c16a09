package prefixcode

import (
	"encoding/binary"

	"github.com/chronos-tachyon/assert"
	"github.com/pkg/errors"
)

// BuildBalancedTree constructs an Encoding in which every Letter has the
// same width: the smallest width that can number all of the Model's tokens
// starting from 1.  The all-zero codeword is never assigned.
//
// Tokens are assigned the codewords 1, 2, 3, ... in order of descending
// frequency, so the Encoding is stable for a given Model.
func BuildBalancedTree[T Token](m *Model[T]) (*Encoding[T], error) {
	n := uint64(m.Len())
	width := bitWidth(n)
	if width > 64 {
		return nil, errors.Wrapf(ErrTooManyTokens, "%d tokens need %d-bit codewords", n, width)
	}

	codes := make(map[T]Letter, n)
	value := uint64(1)
	for _, t := range m.TokensSorted() {
		codes[t] = fixedWidthLetter(value, width)
		value++
	}
	return newEncoding(codes)
}

func fixedWidthLetter(value uint64, width uint64) Letter {
	assert.Assertf(value != 0, "codeword 0 is reserved")
	assert.Assertf(bitWidth(value) <= width, "value %d does not fit in %d bits", value, width)

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], value<<(64-width))
	return NewLetter(buf[:], width)
}
