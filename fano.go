package prefixcode

import (
	"fmt"
	"math"
	"strings"

	"github.com/chronos-tachyon/assert"
)

// linearSearchThreshold is the window size below which fanoWindow.findSplit
// stops bisecting and scans linearly.
const linearSearchThreshold = 6

// BuildFano constructs a Shannon-Fano code for the Model.
//
// The tokens, sorted by descending frequency, are split into two runs at the
// token whose cumulative probability is closest to half of the run's final
// cumulative probability.  The first run is prefixed with a 0 bit and the
// second with a 1 bit, and each run is split again until only single tokens
// remain.
//
// Every codeword starts with a 1 bit, so no codeword is all zero bits.  A
// Model with a single token gets the codeword "1".
func BuildFano[T Token](m *Model[T]) (*Encoding[T], error) {
	codes := make(map[T]Letter, m.Len())
	if m.IsEmpty() {
		return newEncoding(codes)
	}

	total := float64(m.Total())
	sorted := m.TokensSorted()
	items := make([]fanoItem[T], len(sorted))
	var cumulative uint64
	for i, t := range sorted {
		cumulative += m.Frequency(t)
		items[i] = fanoItem[T]{token: t, cumulative: float64(cumulative) / total}
	}

	coder := newFanoCoder(fanoWindow[T]{items: items})
	for {
		t, letter, ok := coder.next()
		if !ok {
			break
		}
		assert.Assertf(!letter.IsZero(), "Fano codeword for %q is all zero bits", t.String())
		codes[t] = letter
	}
	return newEncoding(codes)
}

// type fanoWindow {{{

type fanoItem[T Token] struct {
	token      T
	cumulative float64
}

// fanoWindow is a contiguous run of tokens with their cumulative
// probabilities.  base is the cumulative probability just before the run.
type fanoWindow[T Token] struct {
	items []fanoItem[T]
	base  float64
}

func (w fanoWindow[T]) isTerminal() bool {
	return len(w.items) == 1
}

// split divides the window at the token whose cumulative probability is
// closest to half of the window's final cumulative probability.  Both halves
// are non-empty.
func (w fanoWindow[T]) split() (left fanoWindow[T], right fanoWindow[T]) {
	length := len(w.items)
	assert.Assertf(length > 1, "cannot split a window of length %d", length)

	target := w.items[length-1].cumulative / 2
	index := w.findSplit(target)

	// Tokens too rare to move the cumulative probability would otherwise
	// leave one half empty.
	if index >= length {
		index = length - 1
	}

	left = fanoWindow[T]{items: w.items[:index], base: w.base}
	right = fanoWindow[T]{items: w.items[index:], base: w.items[index-1].cumulative}
	return left, right
}

// findSplit returns one past the index of the item whose cumulative
// probability is closest to target.  Bisection narrows the range to
// linearSearchThreshold items, then a linear scan finishes the job.
func (w fanoWindow[T]) findSplit(target float64) int {
	lo, hi := 0, len(w.items)
	for hi-lo > linearSearchThreshold {
		mid := (lo + hi) / 2
		if w.items[mid].cumulative > target {
			hi = mid
		} else {
			lo = mid
		}
	}
	if hi >= len(w.items) {
		hi = len(w.items) - 1
	}

	best := lo
	bestDiff := math.Abs(w.items[lo].cumulative - target)
	for i := lo + 1; i <= hi; i++ {
		diff := math.Abs(w.items[i].cumulative - target)
		if diff > bestDiff {
			break
		}
		best, bestDiff = i, diff
	}
	return best + 1
}

func (w fanoWindow[T]) String() string {
	var buf strings.Builder
	buf.WriteByte('[')
	for i, item := range w.items {
		if i != 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "(%s, %g)", item.token, item.cumulative)
	}
	buf.WriteByte(']')
	return buf.String()
}

// }}}

// type fanoCoder {{{

// fanoFrame is one level of the bisection in progress.  A left frame holds
// the right half that is still to be visited; a right frame holds nothing.
type fanoFrame[T Token] struct {
	right    bool
	residual fanoWindow[T]
}

// fanoCoder walks the bisection tree depth first with an explicit stack,
// yielding one (token, codeword) pair per call to next.  The codeword of a
// token is read off the stack: 0 for each left frame, 1 for each right frame.
type fanoCoder[T Token] struct {
	stack []fanoFrame[T]
}

func newFanoCoder[T Token](w fanoWindow[T]) *fanoCoder[T] {
	return &fanoCoder[T]{
		stack: []fanoFrame[T]{{residual: w}},
	}
}

func (c *fanoCoder[T]) next() (T, Letter, bool) {
	residual, ok := c.unroll()
	if !ok {
		var zero T
		return zero, Letter{}, false
	}
	c.stack = append(c.stack, fanoFrame[T]{right: true})
	t, letter := c.descend(residual)
	return t, letter, true
}

// unroll pops right frames, then the next left frame, and returns the window
// that left frame was holding.
func (c *fanoCoder[T]) unroll() (fanoWindow[T], bool) {
	for len(c.stack) != 0 {
		last := len(c.stack) - 1
		frame := c.stack[last]
		c.stack[last] = fanoFrame[T]{}
		c.stack = c.stack[:last]
		if !frame.right {
			return frame.residual, true
		}
	}
	return fanoWindow[T]{}, false
}

func (c *fanoCoder[T]) descend(w fanoWindow[T]) (T, Letter) {
	for !w.isTerminal() {
		left, right := w.split()
		c.stack = append(c.stack, fanoFrame[T]{residual: right})
		w = left
	}
	return w.items[0].token, c.readLetter()
}

func (c *fanoCoder[T]) readLetter() Letter {
	var letter Letter
	for _, frame := range c.stack {
		if frame.right {
			letter.Push1()
		} else {
			letter.Push0()
		}
	}
	return letter
}

// }}}
