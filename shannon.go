package prefixcode

import (
	mathbits "math/bits"

	"github.com/chronos-tachyon/assert"
)

// BuildShannon constructs a Shannon code for the Model.
//
// Let the tokens sorted by descending frequency be t1, t2, t3, ... with
// probabilities p1 >= p2 >= p3 >= ...  Token tk is assigned the first
// lk = ceil(-log2(pk)) bits of the binary expansion of the cumulative
// probability ck = p1 + ... + p(k-1).
//
// c1 is always 0, which would make the first codeword all zero bits.  That
// codeword gets an extra trailing 1 bit instead.
//
// Lengths and expansions are computed exactly from the integer frequencies,
// with ck = Ck/N for the cumulative frequency Ck and total N.
func BuildShannon[T Token](m *Model[T]) (*Encoding[T], error) {
	total := m.Total()
	codes := make(map[T]Letter, m.Len())
	var cumulative uint64
	for _, t := range m.TokensSorted() {
		freq := m.Frequency(t)
		letter := binaryExpansion(cumulative, total, shannonLength(freq, total))
		if cumulative == 0 {
			letter.Push1()
		}
		assert.Assertf(!letter.IsZero(), "Shannon codeword for %q is all zero bits", t.String())
		codes[t] = letter
		cumulative += freq
	}
	return newEncoding(codes)
}

// shannonLength returns ceil(log2(total/freq)), i.e. the smallest l such that
// freq * 2^l >= total.
func shannonLength(freq uint64, total uint64) uint64 {
	assert.Assertf(freq != 0, "token with frequency 0")
	for l := uint64(0); l < 64; l++ {
		hi, lo := mathbits.Mul64(freq, uint64(1)<<l)
		if hi != 0 || lo >= total {
			return l
		}
	}
	return 64
}

// binaryExpansion returns the first n bits after the binary point of
// num/denom, where num < denom.
func binaryExpansion(num uint64, denom uint64, n uint64) Letter {
	assert.Assertf(num < denom, "numerator %d >= denominator %d", num, denom)

	var letter Letter
	for i := uint64(0); i < n; i++ {
		doubled, carry := mathbits.Add64(num, num, 0)
		if carry != 0 || doubled >= denom {
			letter.Push1()
			num = doubled - denom
		} else {
			letter.Push0()
			num = doubled
		}
	}
	return letter
}
