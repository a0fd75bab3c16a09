// Package archive implements the prefixcode compressed file format and the
// pipelines that produce and consume it.
package archive

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/chronos-tachyon/assert"
	"github.com/pkg/errors"

	"github.com/chronos-tachyon/prefixcode"
	"github.com/chronos-tachyon/prefixcode/token"
)

const (
	magic   = "PFXC"
	version = uint8(1)

	maxParamLen = 255
)

// Wire format (version 1):
//
//	magic[4]  = "PFXC"
//	version   = uint8
//	kind      = uint8, a token.Kind marker
//	scheme    = uint8, a prefixcode.Scheme marker
//	paramLen  = uint8
//	param     = paramLen bytes; the tiktoken encoding name for BPE
//	checksum  = uint64 big-endian, xxhash64 of encoding followed by text
//	encoding  = prefixcode.Encoding.Pack output
//	text      = prefixcode.Pack output, up to the end of the file
//
// The coded text carries no length, so it must come last.
type header struct {
	kind     token.Kind
	scheme   prefixcode.Scheme
	param    string
	checksum uint64
}

var (
	// ErrBadMagic is returned when the input is not a prefixcode archive.
	ErrBadMagic = errors.New("not a prefixcode archive")

	// ErrUnsupportedVersion is returned for archives written by a newer
	// version of this package.
	ErrUnsupportedVersion = errors.New("unsupported archive version")

	// ErrChecksumMismatch is returned when the encoding and coded text do
	// not match the checksum in the header.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// Options configures Compress and Decompress.
type Options struct {
	// Kind selects the tokenizer.  Ignored by Decompress.
	Kind token.Kind

	// Scheme selects the code construction.  Ignored by Decompress.
	Scheme prefixcode.Scheme

	// BPEEncoding names the tiktoken encoding used when Kind is
	// token.KindBPE.  Empty means token.DefaultBPEEncoding.
	BPEEncoding string

	// Logger receives debug output.  Nil discards it.
	Logger *slog.Logger
}

func (opts Options) logger() *slog.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Stats describes one run of Compress or Decompress.
type Stats struct {
	Kind           token.Kind
	Scheme         prefixcode.Scheme
	Tokens         int
	DistinctTokens int
	TextBytes      int64
	ArchiveBytes   int64
}

// Ratio returns ArchiveBytes / TextBytes, or 0 for empty text.
func (s Stats) Ratio() float64 {
	if s.TextBytes == 0 {
		return 0
	}
	return float64(s.ArchiveBytes) / float64(s.TextBytes)
}

// Compress reads all of r, compresses it as configured by opts, and writes
// the archive to w.
func Compress(w io.Writer, r io.Reader, opts Options) (Stats, error) {
	if !opts.Scheme.IsValid() {
		return Stats{}, errors.Errorf("unknown encoding scheme %v", opts.Scheme)
	}
	h := header{kind: opts.Kind, scheme: opts.Scheme}
	cr := &countingReader{r: r}
	cw := &countingWriter{w: w}

	var stats Stats
	var err error
	switch opts.Kind {
	case token.KindByte:
		stats, err = compress[token.Byte](cw, cr, token.Bytes{}, h, opts.logger())
	case token.KindGrapheme:
		stats, err = compress[token.Grapheme](cw, cr, token.Graphemes{}, h, opts.logger())
	case token.KindWord:
		stats, err = compress[token.Word](cw, cr, token.Words{}, h, opts.logger())
	case token.KindBPE:
		var tk *token.TikToken
		tk, err = loadTikToken(opts.BPEEncoding)
		if err == nil {
			h.param = tk.Name()
			stats, err = compress[token.BPE](cw, cr, tk, h, opts.logger())
		}
	default:
		err = errors.Errorf("unknown tokenizer %v", opts.Kind)
	}
	stats.TextBytes = cr.n
	stats.ArchiveBytes = cw.n
	return stats, err
}

// Decompress reads an archive from r and writes the decompressed text to w.
// Only opts.Logger is used; everything else comes from the archive header.
func Decompress(w io.Writer, r io.Reader, opts Options) (Stats, error) {
	cr := &countingReader{r: r}
	cw := &countingWriter{w: w}

	h, err := readHeader(cr)
	if err != nil {
		return Stats{ArchiveBytes: cr.n}, err
	}

	var stats Stats
	switch h.kind {
	case token.KindByte:
		stats, err = decompress[token.Byte](cw, cr, token.Bytes{}, h, opts.logger())
	case token.KindGrapheme:
		stats, err = decompress[token.Grapheme](cw, cr, token.Graphemes{}, h, opts.logger())
	case token.KindWord:
		stats, err = decompress[token.Word](cw, cr, token.Words{}, h, opts.logger())
	case token.KindBPE:
		var tk *token.TikToken
		tk, err = loadTikToken(h.param)
		if err == nil {
			stats, err = decompress[token.BPE](cw, cr, tk, h, opts.logger())
		}
	}
	stats.TextBytes = cw.n
	stats.ArchiveBytes = cr.n
	return stats, err
}

func compress[T prefixcode.Token](w io.Writer, r io.Reader, tk token.Tokenizer[T], h header, logger *slog.Logger) (Stats, error) {
	stats := Stats{Kind: h.kind, Scheme: h.scheme}

	tokens, err := tk.Tokenize(r)
	if err != nil {
		return stats, errors.Wrap(err, "failed to tokenize input")
	}
	model := prefixcode.NewModel(tokens)
	stats.Tokens = len(tokens)
	stats.DistinctTokens = model.Len()
	logger.Debug("tokenized input", "kind", h.kind, "tokens", len(tokens), "distinct", model.Len())

	enc, err := prefixcode.Build(h.scheme, model)
	if err != nil {
		return stats, errors.Wrapf(err, "failed to build %v encoding", h.scheme)
	}
	dumpEncoding(logger, enc)

	var packed bytes.Buffer
	if err := enc.Pack(&packed, tk); err != nil {
		return stats, err
	}
	var text bytes.Buffer
	if _, err := enc.EncodeText(&text, tokens); err != nil {
		return stats, err
	}
	h.checksum = checksum(packed.Bytes(), text.Bytes())
	logger.Debug("encoded text", "scheme", h.scheme, "encoding_bytes", packed.Len(), "text_bytes", text.Len(), "checksum", h.checksum)

	if err := writeHeader(w, h); err != nil {
		return stats, err
	}
	if _, err := packed.WriteTo(w); err != nil {
		return stats, errors.WithStack(err)
	}
	if _, err := text.WriteTo(w); err != nil {
		return stats, errors.WithStack(err)
	}
	return stats, nil
}

func decompress[T prefixcode.Token](w io.Writer, r io.Reader, tk token.Tokenizer[T], h header, logger *slog.Logger) (Stats, error) {
	stats := Stats{Kind: h.kind, Scheme: h.scheme}

	// Every byte after the header feeds the checksum.
	digest := xxhash.New()
	r = io.TeeReader(r, digest)

	enc, err := prefixcode.UnpackEncoding[T](r, tk)
	if err != nil {
		return stats, errors.Wrap(err, "failed to read encoding")
	}
	stats.DistinctTokens = enc.Len()

	text, err := io.ReadAll(r)
	if err != nil {
		return stats, errors.WithStack(err)
	}
	if sum := digest.Sum64(); sum != h.checksum {
		return stats, errors.Wrapf(ErrChecksumMismatch, "header has %#016x, archive has %#016x", h.checksum, sum)
	}
	logger.Debug("read encoding", "kind", h.kind, "scheme", h.scheme, "distinct", enc.Len())
	dumpEncoding(logger, enc)

	tokens, err := enc.DecodeText(bytes.NewReader(text))
	if err != nil {
		return stats, errors.Wrap(err, "failed to decode text")
	}
	stats.Tokens = len(tokens)
	logger.Debug("decoded text", "bytes", len(text), "tokens", len(tokens))

	if err := tk.Detokenize(w, tokens); err != nil {
		return stats, errors.Wrap(err, "failed to write output")
	}
	return stats, nil
}

// checksum returns the xxhash64 of the concatenated parts.
func checksum(parts ...[]byte) uint64 {
	digest := xxhash.New()
	for _, part := range parts {
		_, err := digest.Write(part)
		assert.Assertf(err == nil, "xxhash write failed: %v", err)
	}
	return digest.Sum64()
}

func dumpEncoding[T prefixcode.Token](logger *slog.Logger, enc *prefixcode.Encoding[T]) {
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	var buf strings.Builder
	_, err := enc.Dump(&buf)
	assert.Assertf(err == nil, "Dump to strings.Builder failed: %v", err)
	logger.Debug("encoding", "dump", buf.String())
}

func writeHeader(w io.Writer, h header) error {
	if len(h.param) > maxParamLen {
		return errors.Errorf("tokenizer parameter of %d bytes exceeds the limit of %d bytes", len(h.param), maxParamLen)
	}

	var buf bytes.Buffer
	buf.WriteString(magic)
	buf.WriteByte(version)
	buf.WriteByte(byte(h.kind))
	buf.WriteByte(byte(h.scheme))
	buf.WriteByte(byte(len(h.param)))
	buf.WriteString(h.param)
	var sum [8]byte
	binary.BigEndian.PutUint64(sum[:], h.checksum)
	buf.Write(sum[:])

	_, err := buf.WriteTo(w)
	return errors.WithStack(err)
}

func readHeader(r io.Reader) (header, error) {
	var fixed [len(magic) + 4]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return header{}, errors.Wrap(ErrBadMagic, "archive is too short")
		}
		return header{}, errors.WithStack(err)
	}
	if string(fixed[:len(magic)]) != magic {
		return header{}, errors.Wrapf(ErrBadMagic, "found %q", fixed[:len(magic)])
	}
	rest := fixed[len(magic):]
	if rest[0] != version {
		return header{}, errors.Wrapf(ErrUnsupportedVersion, "version %d", rest[0])
	}

	kind, err := token.KindFromMarker(rest[1])
	if err != nil {
		return header{}, err
	}
	scheme := prefixcode.Scheme(rest[2])
	if !scheme.IsValid() {
		return header{}, errors.Errorf("unknown encoding scheme marker %d", rest[2])
	}

	param := make([]byte, rest[3])
	if _, err := io.ReadFull(r, param); err != nil {
		return header{}, errors.WithStack(err)
	}
	var sum [8]byte
	if _, err := io.ReadFull(r, sum[:]); err != nil {
		return header{}, errors.WithStack(err)
	}

	return header{
		kind:     kind,
		scheme:   scheme,
		param:    string(param),
		checksum: binary.BigEndian.Uint64(sum[:]),
	}, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

var (
	_ io.Reader = (*countingReader)(nil)
	_ io.Writer = (*countingWriter)(nil)
)
