package prefixcode

import (
	"fmt"
	"sort"
)

// Token is the constraint satisfied by every kind of token that can be
// encoded.  Tokens are used as map keys.
type Token interface {
	comparable
	fmt.Stringer
}

// TokenFrequency pairs a Token with its number of occurrences.
type TokenFrequency[T Token] struct {
	Token     T
	Frequency uint64
}

// Model is a zero-order frequency model of a token stream.
type Model[T Token] struct {
	freqs  map[T]uint64
	sorted []T
	total  uint64
}

// NewModel counts the tokens of a stream.
func NewModel[T Token](tokens []T) *Model[T] {
	freqs := make(map[T]uint64)
	var order []T
	for _, t := range tokens {
		if _, found := freqs[t]; !found {
			order = append(order, t)
		}
		freqs[t]++
	}
	return newModel(freqs, order)
}

// NewModelFromFrequencies builds a Model from known frequencies.  Tokens with
// a frequency of 0 are omitted; repeated tokens have their frequencies
// summed.
func NewModelFromFrequencies[T Token](list []TokenFrequency[T]) *Model[T] {
	freqs := make(map[T]uint64, len(list))
	order := make([]T, 0, len(list))
	for _, item := range list {
		if item.Frequency == 0 {
			continue
		}
		if _, found := freqs[item.Token]; !found {
			order = append(order, item.Token)
		}
		freqs[item.Token] = saturatingAdd(freqs[item.Token], item.Frequency)
	}
	return newModel(freqs, order)
}

// newModel takes ownership of freqs and order.  Ties in frequency keep their
// relative position in order.
func newModel[T Token](freqs map[T]uint64, order []T) *Model[T] {
	var total uint64
	for _, t := range order {
		total = saturatingAdd(total, freqs[t])
	}
	sort.SliceStable(order, func(i, j int) bool {
		return freqs[order[i]] > freqs[order[j]]
	})
	return &Model[T]{freqs: freqs, sorted: order, total: total}
}

// Len returns the number of distinct tokens.
func (m *Model[T]) Len() int {
	return len(m.sorted)
}

// IsEmpty returns true iff the Model has no tokens.
func (m *Model[T]) IsEmpty() bool {
	return len(m.sorted) == 0
}

// Total returns the sum of all token frequencies.
func (m *Model[T]) Total() uint64 {
	return m.total
}

// Frequency returns the number of occurrences of t, or 0.
func (m *Model[T]) Frequency(t T) uint64 {
	return m.freqs[t]
}

// Probability returns the relative frequency of t, or 0.
func (m *Model[T]) Probability(t T) float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.freqs[t]) / float64(m.total)
}

// TokensSorted returns the distinct tokens by descending frequency.  Tokens
// of equal frequency appear in order of first occurrence.
func (m *Model[T]) TokensSorted() []T {
	out := make([]T, len(m.sorted))
	copy(out, m.sorted)
	return out
}
