package token

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/pkoukk/tiktoken-go"
)

// DefaultBPEEncoding is the tiktoken encoding used when none is named.
const DefaultBPEEncoding = "cl100k_base"

// BPE is a token holding a byte-pair-encoding token id.
type BPE int

func (b BPE) String() string {
	return strconv.Itoa(int(b))
}

// TikToken tokenizes text into BPE token ids using a tiktoken encoding such
// as "cl100k_base" or "p50k_base".  It is lossless.
type TikToken struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewTikToken loads the named tiktoken encoding.  The vocabulary is fetched
// on first use and cached by the tiktoken library.
func NewTikToken(encodingName string) (*TikToken, error) {
	if encodingName == "" {
		encodingName = DefaultBPEEncoding
	}
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load tiktoken encoding %q", encodingName)
	}
	return &TikToken{encoding: encoding, name: encodingName}, nil
}

// Name returns the name of the tiktoken encoding.
func (tk *TikToken) Name() string {
	return tk.name
}

// Tokenize implements Tokenizer.
func (tk *TikToken) Tokenize(r io.Reader) ([]BPE, error) {
	text, err := readAllString(r)
	if err != nil {
		return nil, err
	}
	ids := tk.encoding.Encode(text, nil, nil)
	out := make([]BPE, len(ids))
	for i, id := range ids {
		out[i] = BPE(id)
	}
	return out, nil
}

// Detokenize implements Tokenizer.
func (tk *TikToken) Detokenize(w io.Writer, tokens []BPE) error {
	ids := make([]int, len(tokens))
	for i, t := range tokens {
		ids[i] = int(t)
	}
	_, err := io.WriteString(w, tk.encoding.Decode(ids))
	return errors.WithStack(err)
}

// EncodeTokens implements Tokenizer.  Each token id is a uvarint.
func (tk *TikToken) EncodeTokens(tokens []BPE) ([]byte, error) {
	var out []byte
	for _, t := range tokens {
		if t < 0 {
			return nil, errors.Errorf("negative token id %d", int(t))
		}
		out = binary.AppendUvarint(out, uint64(t))
	}
	return out, nil
}

// DecodeTokens implements Tokenizer.
func (tk *TikToken) DecodeTokens(data []byte) ([]BPE, error) {
	var out []BPE
	for offset := 0; offset < len(data); {
		id, n := binary.Uvarint(data[offset:])
		if n <= 0 || id > uint64(int(^uint(0)>>1)) {
			return nil, errors.Errorf("malformed token id at offset %d", offset)
		}
		out = append(out, BPE(id))
		offset += n
	}
	return out, nil
}

var (
	_ fmt.Stringer   = BPE(0)
	_ Tokenizer[BPE] = (*TikToken)(nil)
)
