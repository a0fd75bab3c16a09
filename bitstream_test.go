package prefixcode

import (
	"bytes"
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackBytes(t *testing.T) {
	type testRow struct {
		name    string
		letters []Letter
		expect  []byte
	}

	testData := [...]testRow{
		{
			name:    "empty",
			letters: nil,
			expect:  nil,
		},
		{
			name:    "single-aligned",
			letters: []Letter{LetterFromBytes([]byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, 0x99, 0xaa})},
			expect:  []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, 0x99, 0xaa},
		},
		{
			name:    "single-unaligned-short",
			letters: []Letter{NewLetter([]byte{0b1101_1000}, 5)},
			expect:  []byte{0b1101_1000},
		},
		{
			name:    "single-unaligned-long",
			letters: []Letter{NewLetter([]byte{0b1101_1000, 0b1110_0000}, 13)},
			expect:  []byte{0b1101_1000, 0b1110_0000},
		},
		{
			name: "multiple-aligned",
			letters: []Letter{
				LetterFromBytes([]byte{0x11, 0x22}),
				LetterFromBytes([]byte{0x33, 0x44, 0x55}),
				LetterFromBytes([]byte{0x66, 0x11}),
			},
			expect: []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x11},
		},
		{
			name: "multiple-unaligned",
			letters: []Letter{
				NewLetter([]byte{0b1101_1000, 0b1000_0000}, 9),
				NewLetter([]byte{0b1101_0000}, 4),
				LetterFromBytes([]byte{0b1101_1101}),
			},
			expect: []byte{0b1101_1000, 0b1110_1110, 0b1110_1000},
		},
		{
			name:    "multiple-unaligned-short",
			letters: mustLetters(t, "110", "110100", "110"),
			expect:  []byte{0b1101_1010, 0b0110_0000},
		},
	}
	for _, row := range testData {
		t.Run(row.name, func(t *testing.T) {
			actual := PackBytes(row.letters)
			assert.Equal(t, len(row.expect), len(actual))
			if len(row.expect) != 0 {
				assert.Equal(t, row.expect, actual)
			}

			var buf bytes.Buffer
			n, err := Pack(&buf, row.letters)
			require.NoError(t, err)
			assert.Equal(t, int64(len(row.expect)), n)
			assert.Equal(t, len(row.expect), buf.Len())
		})
	}
}

func TestParse(t *testing.T) {
	type testRow struct {
		name     string
		alphabet []Letter
		input    []byte
		expect   []int
	}

	testData := [...]testRow{
		{
			name:     "empty",
			alphabet: []Letter{LetterFromBytes([]byte{0xff})},
			input:    nil,
			expect:   nil,
		},
		{
			name: "single-byte-disjoint",
			alphabet: []Letter{
				LetterFromBytes([]byte{0x44}),
				LetterFromBytes([]byte{0x11}),
				LetterFromBytes([]byte{0x22}),
				LetterFromBytes([]byte{0x33}),
			},
			input:  []byte{0x44, 0x22, 0x33, 0x22, 0x33, 0x44},
			expect: []int{0, 2, 3, 2, 3, 0},
		},
		{
			name: "single-byte-common-prefix",
			alphabet: []Letter{
				LetterFromBytes([]byte{0b0000_0001}),
				LetterFromBytes([]byte{0b0000_0010}),
				LetterFromBytes([]byte{0b0010_1111}),
				LetterFromBytes([]byte{0b0011_0000}),
			},
			input: []byte{
				0b0000_0001,
				0b0010_1111,
				0b0011_0000,
				0b0010_1111,
				0b0011_0000,
				0b0000_0001,
			},
			expect: []int{0, 2, 3, 2, 3, 0},
		},
		{
			name: "multi-byte-common-prefix",
			alphabet: []Letter{
				LetterFromBytes([]byte{0x00, 0x11}),
				LetterFromBytes([]byte{0x00, 0x10}),
				LetterFromBytes([]byte{0x00, 0x01}),
				LetterFromBytes([]byte{0x11}),
			},
			input:  []byte{0x00, 0x11, 0x00, 0x01, 0x11, 0x00, 0x01, 0x11, 0x00, 0x11},
			expect: []int{0, 2, 3, 2, 3, 0},
		},
		{
			name:     "short-unaligned-fit",
			alphabet: mustLetters(t, "100", "01"),
			input:    []byte{0b100_01_100, 0b01_100_100},
			expect:   []int{0, 1, 0, 1, 0, 0},
		},
		{
			name:     "short-unaligned-trailing-zeros",
			alphabet: mustLetters(t, "100", "01"),
			input:    []byte{0b100_01_100, 0b01_01_0000},
			expect:   []int{0, 1, 0, 1, 1},
		},
		{
			name: "long-unaligned-shared-trailing-zeros",
			alphabet: []Letter{
				NewLetter([]byte{0b1000_0001, 0b1100_0000}, 10),
				NewLetter([]byte{0b1000_0001, 0b1000_0000}, 13),
			},
			input: []byte{
				0b1000_0001,
				0b11_1000_00,
				0b01_1000_0_1,
				0b000_0001_1,
				0b000_0_1000,
				0b0001_11_00,
				0b0000_0000,
				0b0000_0000,
			},
			expect: []int{0, 1, 1, 0},
		},
		{
			name:     "only-padding",
			alphabet: mustLetters(t, "1"),
			input:    []byte{0x00, 0x00},
			expect:   nil,
		},
	}
	for _, row := range testData {
		t.Run(row.name, func(t *testing.T) {
			a, err := NewAlphabet(row.alphabet)
			require.NoError(t, err)

			actual, err := ParseAll(bytes.NewReader(row.input), a)
			require.NoError(t, err)
			require.Equal(t, len(row.expect), len(actual))
			for i, index := range row.expect {
				assert.Equal(t, row.alphabet[index], actual[i], "letter %d", i)
			}

			p := NewParser(bytes.NewReader(row.input), a)
			for i, index := range row.expect {
				actualIndex, err := p.NextIndex()
				require.NoError(t, err)
				assert.Equal(t, index, actualIndex, "letter %d", i)
			}
			_, err = p.NextIndex()
			assert.Equal(t, io.EOF, err)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	type testRow struct {
		name     string
		alphabet []Letter
		input    []byte
		expect   error
	}

	testData := [...]testRow{
		{
			name:     "incomplete",
			alphabet: []Letter{LetterFromBytes([]byte{0x11, 0x00})},
			input:    []byte{0x11},
			expect:   ErrIncompleteCodeword,
		},
		{
			name:     "nonexistent-letter",
			alphabet: []Letter{LetterFromBytes([]byte{0x11, 0x00})},
			input:    []byte{0x10, 0x00},
			expect:   ErrTrailingData,
		},
		{
			name:     "trailing-data",
			alphabet: []Letter{LetterFromBytes([]byte{0x11})},
			input:    []byte{0x11, 0x11, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01},
			expect:   ErrTrailingData,
		},
		{
			name:     "stray-one-in-padding",
			alphabet: mustLetters(t, "100", "01"),
			input:    []byte{0b100_01_000, 0b0000_0001},
			expect:   ErrTrailingData,
		},
		{
			name:     "incomplete-unaligned",
			alphabet: mustLetters(t, "11111111111"),
			input:    []byte{0xff},
			expect:   ErrIncompleteCodeword,
		},
	}
	for _, row := range testData {
		t.Run(row.name, func(t *testing.T) {
			a, err := NewAlphabet(row.alphabet)
			require.NoError(t, err)

			_, err = ParseAll(bytes.NewReader(row.input), a)
			assert.True(t, errors.Is(err, row.expect), "unexpected error: %v", err)
		})
	}
}

func TestParser_StickyError(t *testing.T) {
	a := mustAlphabet(t, "100", "01")
	p := NewParser(bytes.NewReader([]byte{0b100_11_000}), a)

	l, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, "100", l.String())

	_, err = p.Next()
	assert.True(t, errors.Is(err, ErrTrailingData), "unexpected error: %v", err)

	_, err2 := p.Next()
	assert.Equal(t, err, err2)
}

func TestParser_Text(t *testing.T) {
	l0 := NewLetter([]byte{0b1101_1000, 0b1000_0000}, 9)
	l1 := NewLetter([]byte{0b1100_0000}, 4)
	l2 := LetterFromBytes([]byte{0b0101_1101})

	a, err := NewAlphabet([]Letter{l0, l1, l2})
	require.NoError(t, err)

	text := []Letter{l1, l2, l0, l2, l1, l0, l1}
	expectPacked := []byte{
		0b1100_0101,
		0b1101_1101,
		0b1000_1_010,
		0b1_1101_110,
		0b0_1101_100,
		0b0_1_1100_00,
	}

	var buf bytes.Buffer
	n, err := Pack(&buf, text)
	require.NoError(t, err)
	assert.Equal(t, int64(len(expectPacked)), n)
	assert.Equal(t, expectPacked, buf.Bytes())

	actual, err := ParseAll(&buf, a)
	require.NoError(t, err)
	assert.Equal(t, text, actual)
}
