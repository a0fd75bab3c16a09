package prefixcode

import (
	"container/heap"

	"github.com/chronos-tachyon/assert"
)

// BuildHuffman constructs a Huffman code for the Model.
//
// The two least frequent nodes are repeatedly merged into a new node, the
// first becoming its 0 child and the second its 1 child, until a single tree
// remains.  Among nodes of equal frequency the shorter subtree is merged
// first, which keeps the tree balanced across ties.
//
// The leftmost leaf of the tree would get an all-zero codeword; it gets an
// extra trailing 1 bit instead.  A Model with a single token gets the
// codeword "1".
func BuildHuffman[T Token](m *Model[T]) (*Encoding[T], error) {
	codes := make(map[T]Letter, m.Len())
	if m.IsEmpty() {
		return newEncoding(codes)
	}

	sorted := m.TokensSorted()
	tree := buildHuffmanTree(m, sorted)
	for leaf, t := range sorted {
		letter := tree.readLetter(leaf)
		assert.Assertf(!letter.IsZero(), "Huffman codeword for %q is all zero bits", t.String())
		codes[t] = letter
	}
	return newEncoding(codes)
}

// huffmanNode is a node in the arena of a huffmanTree.  Nodes refer to their
// parents by index; parents do not refer to their children.
type huffmanNode struct {
	value  uint64
	height uint
	parent int
	bit    bool
}

// huffmanTree holds every node of a Huffman tree.  The first n nodes are the
// leaves, one per token; the merged nodes follow.
type huffmanTree struct {
	nodes []huffmanNode
}

func buildHuffmanTree[T Token](m *Model[T], sorted []T) *huffmanTree {
	numLeaves := len(sorted)
	tree := &huffmanTree{nodes: make([]huffmanNode, numLeaves, 2*numLeaves-1)}
	h := huffmanHeap{tree: tree, list: make([]int, numLeaves)}
	for leaf, t := range sorted {
		tree.nodes[leaf] = huffmanNode{value: m.Frequency(t), parent: -1}
		h.list[leaf] = leaf
	}
	h.Init()

	for h.Len() > 1 {
		zero := heap.Pop(&h).(int)
		one := heap.Pop(&h).(int)
		heap.Push(&h, tree.merge(zero, one))
	}
	return tree
}

// merge adds a new node with the given children and returns its index.
func (tree *huffmanTree) merge(zero int, one int) int {
	a, b := tree.nodes[zero], tree.nodes[one]
	height := a.height
	if height < b.height {
		height = b.height
	}

	index := len(tree.nodes)
	tree.nodes = append(tree.nodes, huffmanNode{
		value:  saturatingAdd(a.value, b.value),
		height: height + 1,
		parent: -1,
	})
	tree.nodes[zero].parent, tree.nodes[zero].bit = index, false
	tree.nodes[one].parent, tree.nodes[one].bit = index, true
	return index
}

// readLetter walks from a leaf up to the root and returns the path from the
// root down to the leaf.
func (tree *huffmanTree) readLetter(leaf int) Letter {
	var path []bool
	for n := leaf; tree.nodes[n].parent >= 0; n = tree.nodes[n].parent {
		path = append(path, tree.nodes[n].bit)
	}

	var letter Letter
	sawOne := false
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] {
			sawOne = true
			letter.Push1()
		} else {
			letter.Push0()
		}
	}
	if !sawOne {
		letter.Push1()
	}
	return letter
}

// type huffmanHeap {{{

// huffmanHeap is a min-heap of node indices ordered by (value, height),
// with ties broken by index.
type huffmanHeap struct {
	tree *huffmanTree
	list []int
}

func (h *huffmanHeap) Init() {
	heap.Init(h)
}

func (h *huffmanHeap) Len() int {
	return len(h.list)
}

func (h *huffmanHeap) Swap(i, j int) {
	h.list[i], h.list[j] = h.list[j], h.list[i]
}

func (h *huffmanHeap) Less(i, j int) bool {
	a, b := h.tree.nodes[h.list[i]], h.tree.nodes[h.list[j]]
	if a.value != b.value {
		return a.value < b.value
	}
	if a.height != b.height {
		return a.height < b.height
	}
	return h.list[i] < h.list[j]
}

func (h *huffmanHeap) Push(x interface{}) {
	h.list = append(h.list, x.(int))
}

func (h *huffmanHeap) Pop() interface{} {
	last := len(h.list) - 1
	x := h.list[last]
	h.list = h.list[:last]
	return x
}

var _ heap.Interface = (*huffmanHeap)(nil)

// }}}
