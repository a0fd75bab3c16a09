package prefixcode

import (
	"bytes"
	"io"

	"github.com/chronos-tachyon/assert"
	"github.com/icza/bitio"
	"github.com/pkg/errors"
)

// PackBytes packs the given Letters into a byte slice, MSB-first, with no
// separators between Letters.  If the total number of bits is not a multiple
// of 8, the final byte is padded on the right with 0 bits.
func PackBytes(letters []Letter) []byte {
	var buf bytes.Buffer
	bw := bitio.NewWriter(&buf)
	for _, l := range letters {
		full := l.size / 8
		for i := uint64(0); i < full; i++ {
			err := bw.WriteByte(l.data[i])
			assert.Assertf(err == nil, "bitio write to bytes.Buffer failed: %v", err)
		}
		if r := l.size % 8; r != 0 {
			err := bw.WriteBits(uint64(l.data[full]>>(8-r)), uint8(r))
			assert.Assertf(err == nil, "bitio write to bytes.Buffer failed: %v", err)
		}
	}
	err := bw.Close()
	assert.Assertf(err == nil, "bitio flush to bytes.Buffer failed: %v", err)
	return buf.Bytes()
}

// Pack writes the given Letters to w as by PackBytes.  Nothing is written
// unless all of the Letters have been packed.  Returns the number of bytes
// written.
func Pack(w io.Writer, letters []Letter) (int64, error) {
	packed := PackBytes(letters)
	n, err := w.Write(packed)
	return int64(n), errors.WithStack(err)
}

// Parser reads back a stream of Letters written by Pack, given the Alphabet
// they were drawn from.
//
// The stream carries no length: the Parser stops cleanly when the only bits
// left are zero padding.  This works because no Letter in an Alphabet is all
// zero bits.
type Parser struct {
	alphabet *Alphabet
	r        *bitio.Reader
	err      error
}

// NewParser returns a Parser that decodes Letters of the given Alphabet from
// r.  The Parser may read ahead of the last Letter, so the packed Letters
// must be the final element of whatever r holds.
func NewParser(r io.Reader, alphabet *Alphabet) *Parser {
	return &Parser{
		alphabet: alphabet,
		r:        bitio.NewReader(r),
	}
}

// Next returns the next Letter in the stream.  At the clean end of the
// stream, Next returns io.EOF.  Once Next has returned an error, every later
// call returns the same error.
func (p *Parser) Next() (Letter, error) {
	index, err := p.NextIndex()
	if err != nil {
		return Letter{}, err
	}
	return p.alphabet.letters[index], nil
}

// NextIndex is like Next, but returns the index of the Letter within the
// Alphabet instead of the Letter itself.
func (p *Parser) NextIndex() (int, error) {
	if p.err != nil {
		return -1, p.err
	}
	index, err := p.step()
	if err != nil {
		p.err = err
		return -1, err
	}
	return index, nil
}

// step descends the trie from the root, one bit at a time, until it reaches
// a leaf or fails.  trivialTail holds while every bit read since the root
// has been 0.
func (p *Parser) step() (int, error) {
	n := p.alphabet.root
	trivialTail := true
	var depth uint64
	for !n.leaf {
		bit, err := p.r.ReadBool()
		if err == io.EOF {
			if trivialTail {
				return -1, io.EOF
			}
			return -1, errors.Wrapf(ErrIncompleteCodeword, "stream ended after %d bits of a codeword", depth)
		}
		if err != nil {
			return -1, errors.WithStack(err)
		}
		depth++

		next := n.child(bit)
		if next == nil {
			if trivialTail && !bit {
				return -1, p.skipPadding()
			}
			return -1, errors.Wrapf(ErrTrailingData, "no codeword matches the %d bits read", depth)
		}
		trivialTail = trivialTail && !bit
		n = next
	}
	return n.index, nil
}

// skipPadding consumes the rest of the stream.  It returns io.EOF if only 0
// bits remain, or ErrTrailingData if a 1 bit is found.
func (p *Parser) skipPadding() error {
	for {
		bit, err := p.r.ReadBool()
		if err == io.EOF {
			return io.EOF
		}
		if err != nil {
			return errors.WithStack(err)
		}
		if bit {
			return errors.Wrap(ErrTrailingData, "non-zero bit after the last codeword")
		}
	}
}

// ParseAll decodes every Letter of the given Alphabet in r.
func ParseAll(r io.Reader, alphabet *Alphabet) ([]Letter, error) {
	p := NewParser(r, alphabet)
	var out []Letter
	for {
		l, err := p.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
}
