package prefixcode

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Scheme selects a code construction algorithm.
type Scheme uint8

const (
	// BalancedTree assigns fixed width codewords.
	BalancedTree Scheme = iota + 1

	// Shannon assigns each token the leading bits of its cumulative
	// probability.
	Shannon

	// Fano recursively bisects the tokens into halves of near-equal
	// probability.
	Fano

	// Huffman builds an optimal code by merging the two least frequent
	// nodes.
	Huffman
)

var schemeNames = [...]string{
	BalancedTree: "balanced-tree",
	Shannon:      "shannon",
	Fano:         "fano",
	Huffman:      "huffman",
}

// Schemes lists every valid Scheme.
func Schemes() []Scheme {
	return []Scheme{BalancedTree, Shannon, Fano, Huffman}
}

// IsValid returns true iff s is one of the defined Schemes.
func (s Scheme) IsValid() bool {
	return s >= BalancedTree && s <= Huffman
}

// String returns the name of the Scheme, as accepted by ParseScheme.
func (s Scheme) String() string {
	if s.IsValid() {
		return schemeNames[s]
	}
	return fmt.Sprintf("Scheme(%d)", uint8(s))
}

// ParseScheme returns the Scheme with the given name.  Underscores are
// accepted in place of dashes.
func ParseScheme(name string) (Scheme, error) {
	normalized := strings.ReplaceAll(strings.ToLower(name), "_", "-")
	for _, s := range Schemes() {
		if schemeNames[s] == normalized {
			return s, nil
		}
	}
	return 0, errors.Errorf("unknown encoding scheme %q", name)
}

var _ fmt.Stringer = Scheme(0)

// Build constructs an Encoding for the Model using the given Scheme.
func Build[T Token](s Scheme, m *Model[T]) (*Encoding[T], error) {
	switch s {
	case BalancedTree:
		return BuildBalancedTree(m)
	case Shannon:
		return BuildShannon(m)
	case Fano:
		return BuildFano(m)
	case Huffman:
		return BuildHuffman(m)
	default:
		return nil, errors.Errorf("unknown encoding scheme %v", s)
	}
}
