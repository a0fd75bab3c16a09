package prefixcode

import (
	"fmt"
	"io"
	"strings"

	"github.com/chronos-tachyon/assert"
	"github.com/pkg/errors"
)

// maxLetterBits bounds the size of a deserialized Letter.  No code builder
// comes anywhere near it; a larger size means the input is corrupt.
const maxLetterBits = 1 << 20

// Letter represents a single codeword: a sequence of bits.  The first bit of
// a Letter is the most significant bit of its first byte.
//
// Letter is a comparable value type, so it can be used as a map key and
// compared with ==.  Push0 and Push1 never modify storage shared with a copy.
type Letter struct {
	// data holds ceil(size/8) bytes; bits past size in the last byte are 0.
	data string

	// size holds the number of valid bits.
	size uint64
}

// NewLetter constructs a Letter holding the first bitCount bits of data.
// Trailing bits in data past bitCount are ignored.
func NewLetter(data []byte, bitCount uint64) Letter {
	n := byteCount(bitCount)
	assert.Assertf(uint64(len(data)) >= n, "len(data) %d < %d bytes needed for %d bits", len(data), n, bitCount)

	buf := make([]byte, n)
	copy(buf, data)
	if r := bitCount % 8; r != 0 {
		buf[n-1] &= ^byte(0) << (8 - r)
	}
	return Letter{data: string(buf), size: bitCount}
}

// LetterFromBytes constructs a byte-aligned Letter holding all bits of data.
func LetterFromBytes(data []byte) Letter {
	return NewLetter(data, 8*uint64(len(data)))
}

// ParseLetter constructs a Letter from its String representation, a string
// of '0' and '1' characters.
func ParseLetter(str string) (Letter, error) {
	var l Letter
	for i := 0; i < len(str); i++ {
		switch str[i] {
		case '0':
			l.Push0()
		case '1':
			l.Push1()
		default:
			return Letter{}, errors.Errorf("invalid character %q at offset %d in letter %q", str[i], i, str)
		}
	}
	return l, nil
}

// Len returns the number of bits in this Letter.
func (l Letter) Len() uint64 {
	return l.size
}

// Bytes returns a copy of the bits of this Letter, packed MSB-first.
func (l Letter) Bytes() []byte {
	return []byte(l.data)
}

// At returns the bit at index i.
func (l Letter) At(i uint64) (bool, error) {
	if i >= l.size {
		return false, errors.Wrapf(ErrIndexOutOfBounds, "index %d of letter sized %d", i, l.size)
	}
	return l.bit(i), nil
}

func (l Letter) bit(i uint64) bool {
	return l.data[i/8]&(0x80>>(i%8)) != 0
}

// IsZero returns true iff this Letter has no 1 bits.  The empty Letter is
// zero.
func (l Letter) IsZero() bool {
	for i := 0; i < len(l.data); i++ {
		if l.data[i] != 0 {
			return false
		}
	}
	return true
}

// Push0 appends a 0 bit.
func (l *Letter) Push0() {
	l.push(false)
}

// Push1 appends a 1 bit.
func (l *Letter) Push1() {
	l.push(true)
}

func (l *Letter) push(bit bool) {
	offset := l.size % 8
	switch {
	case offset == 0 && bit:
		l.data += "\x80"
	case offset == 0:
		l.data += "\x00"
	case bit:
		last := len(l.data) - 1
		l.data = l.data[:last] + string([]byte{l.data[last] | 0x80>>offset})
	}
	l.size++
}

// Equal returns true iff the two Letters hold the same bits.
func (l Letter) Equal(other Letter) bool {
	return l == other
}

// Compare orders Letters lexicographically by their bytes, then by their
// length.  This is not the numeric order of the bit strings.
func (l Letter) Compare(other Letter) int {
	if cmp := strings.Compare(l.data, other.data); cmp != 0 {
		return cmp
	}
	switch {
	case l.size < other.size:
		return -1
	case l.size > other.size:
		return 1
	default:
		return 0
	}
}

// String returns the bits of this Letter as a string of '0' and '1'.
func (l Letter) String() string {
	var buf strings.Builder
	buf.Grow(int(l.size))
	for i := uint64(0); i < l.size; i++ {
		if l.bit(i) {
			buf.WriteByte('1')
		} else {
			buf.WriteByte('0')
		}
	}
	return buf.String()
}

// Pack serializes this Letter: its bit count as a big-endian uint64, then
// its bytes.
func (l Letter) Pack(w io.Writer) error {
	if err := writeUint64(w, l.size); err != nil {
		return err
	}
	_, err := io.WriteString(w, l.data)
	return errors.WithStack(err)
}

// UnpackLetter deserializes a Letter written by Letter.Pack.
func UnpackLetter(r io.Reader) (Letter, error) {
	size, err := readUint64(r)
	if err != nil {
		return Letter{}, err
	}
	if size > maxLetterBits {
		return Letter{}, errors.Errorf("letter of %d bits exceeds the limit of %d bits", size, maxLetterBits)
	}
	buf := make([]byte, byteCount(size))
	if _, err := io.ReadFull(r, buf); err != nil {
		return Letter{}, errors.WithStack(err)
	}
	return NewLetter(buf, size), nil
}

var _ fmt.Stringer = Letter{}
