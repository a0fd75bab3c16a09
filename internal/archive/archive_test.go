package archive

import (
	"bytes"
	"encoding/binary"
	"log/slog"
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronos-tachyon/prefixcode"
	"github.com/chronos-tachyon/prefixcode/token"
)

const sampleText = "It was the best of times, it was the worst of times, " +
	"it was the age of wisdom, it was the age of foolishness.\n" +
	"Ça ira, ça ira! 🇫🇷 👩‍👩‍👧\n"

// wordText survives word tokenization unchanged.
const wordText = "it was the best of times it was the worst of times"

func roundTrip(t *testing.T, input string, opts Options) (string, []byte) {
	t.Helper()

	var archive bytes.Buffer
	stats, err := Compress(&archive, strings.NewReader(input), opts)
	require.NoError(t, err)
	assert.Equal(t, int64(len(input)), stats.TextBytes)
	assert.Equal(t, int64(archive.Len()), stats.ArchiveBytes)
	assert.Equal(t, opts.Kind, stats.Kind)
	assert.Equal(t, opts.Scheme, stats.Scheme)
	packed := append([]byte(nil), archive.Bytes()...)

	var output bytes.Buffer
	dstats, err := Decompress(&output, &archive, Options{Logger: opts.Logger})
	require.NoError(t, err)
	assert.Equal(t, int64(len(packed)), dstats.ArchiveBytes)
	assert.Equal(t, int64(output.Len()), dstats.TextBytes)
	assert.Equal(t, stats.Tokens, dstats.Tokens)
	assert.Equal(t, stats.DistinctTokens, dstats.DistinctTokens)
	return output.String(), packed
}

func TestRoundTrip(t *testing.T) {
	for _, kind := range []token.Kind{token.KindByte, token.KindGrapheme, token.KindWord} {
		for _, scheme := range prefixcode.Schemes() {
			kind, scheme := kind, scheme
			t.Run(kind.String()+"/"+scheme.String(), func(t *testing.T) {
				input := sampleText
				if kind == token.KindWord {
					input = wordText
				}
				output, _ := roundTrip(t, input, Options{Kind: kind, Scheme: scheme})
				assert.Equal(t, input, output)
			})
		}
	}
}

func TestRoundTrip_BPE(t *testing.T) {
	if _, err := loadTikToken(""); err != nil {
		t.Skipf("tiktoken encoding unavailable: %v", err)
	}
	for _, scheme := range prefixcode.Schemes() {
		scheme := scheme
		t.Run(scheme.String(), func(t *testing.T) {
			output, packed := roundTrip(t, sampleText, Options{Kind: token.KindBPE, Scheme: scheme})
			assert.Equal(t, sampleText, output)

			paramLen := int(packed[len(magic)+3])
			assert.Equal(t, token.DefaultBPEEncoding, string(packed[len(magic)+4:len(magic)+4+paramLen]))
		})
	}
}

func TestRoundTrip_Empty(t *testing.T) {
	for _, scheme := range prefixcode.Schemes() {
		output, _ := roundTrip(t, "", Options{Kind: token.KindByte, Scheme: scheme})
		assert.Equal(t, "", output)
	}
}

func TestRoundTrip_Words(t *testing.T) {
	output, _ := roundTrip(t, "Hello,   world!\n", Options{Kind: token.KindWord, Scheme: prefixcode.Huffman})
	assert.Equal(t, "Hello world", output)
}

func TestRoundTrip_Logging(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	output, _ := roundTrip(t, "abracadabra", Options{Kind: token.KindByte, Scheme: prefixcode.Fano, Logger: logger})
	assert.Equal(t, "abracadabra", output)
	assert.Contains(t, logs.String(), "tokenized input")
	assert.Contains(t, logs.String(), "Encoding{")
	assert.Contains(t, logs.String(), "decoded text")
}

func TestCompress_Header(t *testing.T) {
	var archive bytes.Buffer
	_, err := Compress(&archive, strings.NewReader("aab"), Options{Kind: token.KindByte, Scheme: prefixcode.Huffman})
	require.NoError(t, err)

	// a -> "1", b -> "01"
	encoding := []byte{
		0, 0, 0, 0, 0, 0, 0, 2,
		'b', 'a',
		0, 0, 0, 0, 0, 0, 0, 2,
		0, 0, 0, 0, 0, 0, 0, 2, 0b0100_0000,
		0, 0, 0, 0, 0, 0, 0, 1, 0b1000_0000,
	}
	text := []byte{0b1_1_01_0000}
	expect := []byte{'P', 'F', 'X', 'C', 1, 1, 4, 0}
	var sum [8]byte
	binary.BigEndian.PutUint64(sum[:], xxhash.Sum64(append(append([]byte(nil), encoding...), text...)))
	expect = append(expect, sum[:]...)
	expect = append(expect, encoding...)
	expect = append(expect, text...)
	assert.Equal(t, expect, archive.Bytes())
}

func TestDecompress_CorruptTokenList(t *testing.T) {
	var archive bytes.Buffer
	_, err := Compress(&archive, strings.NewReader("aab"), Options{Kind: token.KindByte, Scheme: prefixcode.Huffman})
	require.NoError(t, err)

	// Header is 16 bytes, then the 8 byte token list size, then "ba".
	// Swapping 'b' for 'z' leaves a well-formed encoding.
	data := archive.Bytes()
	require.Equal(t, byte('b'), data[24])
	data[24] = 'z'

	var output bytes.Buffer
	_, err = Decompress(&output, bytes.NewReader(data), Options{})
	assert.True(t, errors.Is(err, ErrChecksumMismatch), "unexpected error: %v", err)
	assert.Equal(t, 0, output.Len())
}

func TestChecksum(t *testing.T) {
	assert.Equal(t, xxhash.Sum64String("encodingtext"), checksum([]byte("encoding"), []byte("text")))
	assert.Equal(t, xxhash.Sum64(nil), checksum())
}

func TestCompress_InvalidOptions(t *testing.T) {
	_, err := Compress(&bytes.Buffer{}, strings.NewReader("x"), Options{Kind: token.KindByte})
	assert.Error(t, err)

	_, err = Compress(&bytes.Buffer{}, strings.NewReader("x"), Options{Kind: token.Kind(9), Scheme: prefixcode.Huffman})
	assert.Error(t, err)
}

func TestDecompress_Errors(t *testing.T) {
	_, valid := roundTrip(t, sampleText, Options{Kind: token.KindGrapheme, Scheme: prefixcode.Shannon})

	corrupt := func(offset int, value byte) []byte {
		out := append([]byte(nil), valid...)
		out[offset] = value
		return out
	}

	type testRow struct {
		name   string
		input  []byte
		expect error
	}

	testData := [...]testRow{
		{name: "empty", input: nil, expect: ErrBadMagic},
		{name: "short", input: []byte("PFX"), expect: ErrBadMagic},
		{name: "magic", input: corrupt(0, 'Q'), expect: ErrBadMagic},
		{name: "version", input: corrupt(4, 2), expect: ErrUnsupportedVersion},
		{name: "checksum", input: corrupt(len(valid)-1, valid[len(valid)-1]^0x01), expect: ErrChecksumMismatch},
		{name: "header-checksum", input: corrupt(9, valid[9]^0x80), expect: ErrChecksumMismatch},
	}
	for _, row := range testData {
		t.Run(row.name, func(t *testing.T) {
			_, err := Decompress(&bytes.Buffer{}, bytes.NewReader(row.input), Options{})
			assert.True(t, errors.Is(err, row.expect), "unexpected error: %v", err)
		})
	}

	t.Run("markers", func(t *testing.T) {
		_, err := Decompress(&bytes.Buffer{}, bytes.NewReader(corrupt(5, 0)), Options{})
		assert.Error(t, err)
		_, err = Decompress(&bytes.Buffer{}, bytes.NewReader(corrupt(6, 7)), Options{})
		assert.Error(t, err)
	})

	t.Run("truncated", func(t *testing.T) {
		for _, n := range []int{8, 12, 20, 30} {
			_, err := Decompress(&bytes.Buffer{}, bytes.NewReader(valid[:n]), Options{})
			assert.Error(t, err, "truncated to %d bytes", n)
		}
	})
}

func TestLoadTikToken_Cached(t *testing.T) {
	a, err := loadTikToken("")
	if err != nil {
		t.Skipf("tiktoken encoding unavailable: %v", err)
	}
	b, err := loadTikToken(token.DefaultBPEEncoding)
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestStats_Ratio(t *testing.T) {
	assert.Equal(t, 0.0, Stats{}.Ratio())
	assert.Equal(t, 0.5, Stats{TextBytes: 10, ArchiveBytes: 5}.Ratio())
}
