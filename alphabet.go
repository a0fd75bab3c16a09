package prefixcode

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// Alphabet is an ordered list of unique Letters that together form a prefix
// code: no Letter is a prefix of another, and no Letter is all zero bits.
//
// An Alphabet owns a binary trie of its Letters, built once by NewAlphabet
// and used by Parser to decode packed streams.
type Alphabet struct {
	letters []Letter
	root    *node
}

// NewAlphabet constructs an Alphabet from the given Letters.  The order of
// the Letters is significant: Pack and UnpackAlphabet preserve it, and the
// index of each Letter is reported by Parser.NextIndex.
//
// Returns an error wrapping ErrInvalidAlphabet if the Letters do not form a
// prefix code or if any Letter is all zero bits.
func NewAlphabet(letters []Letter) (*Alphabet, error) {
	a := &Alphabet{
		letters: make([]Letter, len(letters)),
		root:    &node{},
	}
	copy(a.letters, letters)

	for index, l := range a.letters {
		if l.IsZero() {
			return nil, errors.Wrapf(ErrInvalidAlphabet, "letter %q is all zero bits", l)
		}
		if err := a.root.insert(l, index); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Len returns the number of Letters in this Alphabet.
func (a *Alphabet) Len() int {
	return len(a.letters)
}

// IsEmpty returns true iff this Alphabet has no Letters.
func (a *Alphabet) IsEmpty() bool {
	return len(a.letters) == 0
}

// Letters returns a copy of the ordered Letters in this Alphabet.
func (a *Alphabet) Letters() []Letter {
	out := make([]Letter, len(a.letters))
	copy(out, a.letters)
	return out
}

// At returns the Letter at the given index.
func (a *Alphabet) At(index int) Letter {
	return a.letters[index]
}

// Index returns the index of the given Letter, or false if this Alphabet
// does not contain it.
func (a *Alphabet) Index(l Letter) (int, bool) {
	n := a.root
	for i := uint64(0); i < l.size; i++ {
		if n == nil || n.leaf {
			return -1, false
		}
		n = n.child(l.bit(i))
	}
	if n == nil || !n.leaf {
		return -1, false
	}
	return n.index, true
}

// Pack serializes this Alphabet: the number of Letters as a big-endian
// uint64, then each Letter in order.
func (a *Alphabet) Pack(w io.Writer) error {
	if err := writeUint64(w, uint64(len(a.letters))); err != nil {
		return err
	}
	for _, l := range a.letters {
		if err := l.Pack(w); err != nil {
			return err
		}
	}
	return nil
}

// UnpackAlphabet deserializes an Alphabet written by Alphabet.Pack.  The
// result is validated exactly as NewAlphabet would.
func UnpackAlphabet(r io.Reader) (*Alphabet, error) {
	count, err := readUint64(r)
	if err != nil {
		return nil, err
	}

	// The count is untrusted; let append grow the slice past this hint.
	hint := count
	if hint > 1024 {
		hint = 1024
	}
	letters := make([]Letter, 0, hint)
	for i := uint64(0); i < count; i++ {
		l, err := UnpackLetter(r)
		if err != nil {
			return nil, errors.Wrapf(err, "letter %d of %d", i, count)
		}
		letters = append(letters, l)
	}
	return NewAlphabet(letters)
}

// Dump writes a programmer-readable debugging dump of the Alphabet to the
// given writer.
func (a *Alphabet) Dump(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString("Alphabet{\n")
	fmt.Fprintf(&buf, "\tLen() = %d\n", len(a.letters))
	for index, l := range a.letters {
		fmt.Fprintf(&buf, "\tAt(%d) = %q\n", index, l)
	}
	fmt.Fprintf(&buf, "\tTrie = %s\n", a.root)
	buf.WriteString("}\n")
	return buf.WriteTo(w)
}

// type node {{{

// node is a node of the Alphabet trie.  Internal nodes have leaf == false
// and at least one child (except for the root of an empty Alphabet); leaf
// nodes have no children and hold the index of their Letter.
type node struct {
	zero  *node
	one   *node
	leaf  bool
	index int
}

func (n *node) child(bit bool) *node {
	if bit {
		return n.one
	}
	return n.zero
}

func (n *node) childPtr(bit bool) **node {
	if bit {
		return &n.one
	}
	return &n.zero
}

// insert adds the Letter l to the trie rooted at n.  The walk follows
// existing nodes as far as they go, then grows a fresh single-path chain of
// internal nodes ending in a leaf.
func (n *node) insert(l Letter, index int) error {
	for i := uint64(0); i < l.size; i++ {
		if n.leaf {
			return errors.Wrapf(ErrInvalidAlphabet, "duplicate prefix: %q has prefix %q", l, l.String()[:i])
		}

		tip := n.childPtr(l.bit(i))
		if *tip != nil {
			n = *tip
			continue
		}

		for j := i + 1; j < l.size; j++ {
			next := &node{}
			*tip = next
			tip = next.childPtr(l.bit(j))
		}
		*tip = &node{leaf: true, index: index}
		return nil
	}
	return errors.Wrapf(ErrInvalidAlphabet, "duplicate prefix: %q", l)
}

// String renders the trie rooted at n.  Internal nodes are "{zero,one}",
// missing children are "-", and leaves are "#index".
func (n *node) String() string {
	var buf bytes.Buffer
	n.render(&buf)
	return buf.String()
}

func (n *node) render(buf *bytes.Buffer) {
	switch {
	case n == nil:
		buf.WriteByte('-')
	case n.leaf:
		buf.WriteByte('#')
		buf.WriteString(strconv.Itoa(n.index))
	default:
		buf.WriteByte('{')
		n.zero.render(buf)
		buf.WriteByte(',')
		n.one.render(buf)
		buf.WriteByte('}')
	}
}

var _ fmt.Stringer = (*node)(nil)

// }}}
