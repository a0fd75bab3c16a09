package prefixcode

import (
	"encoding/binary"
	"io"
	mathbits "math/bits"

	"github.com/pkg/errors"
)

// bitWidth returns the number of bits needed to write x in binary, i.e. the
// smallest w such that 2^w > x.
func bitWidth(x uint64) uint64 {
	return uint64(64 - mathbits.LeadingZeros64(x))
}

// byteCount returns the number of bytes needed to hold n bits.
func byteCount(n uint64) uint64 {
	return (n + 7) / 8
}

// saturatingAdd returns a+b, or math.MaxUint64 if the sum overflows.
func saturatingAdd(a, b uint64) uint64 {
	sum, carry := mathbits.Add64(a, b, 0)
	if carry != 0 {
		return ^uint64(0)
	}
	return sum
}

func writeUint64(w io.Writer, x uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], x)
	_, err := w.Write(buf[:])
	return errors.WithStack(err)
}

func readUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, errors.WithStack(err)
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}
