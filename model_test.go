package prefixcode

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type testToken string

func (t testToken) String() string {
	return string(t)
}

func testTokens(str string) []testToken {
	out := make([]testToken, 0, len(str))
	for _, ch := range str {
		out = append(out, testToken(ch))
	}
	return out
}

func testModel(freqs ...uint64) *Model[testToken] {
	list := make([]TokenFrequency[testToken], len(freqs))
	for i, freq := range freqs {
		list[i] = TokenFrequency[testToken]{Token: testToken(rune('a' + i)), Frequency: freq}
	}
	return NewModelFromFrequencies(list)
}

func TestNewModel(t *testing.T) {
	m := NewModel(testTokens("abacba"))
	assert.Equal(t, 3, m.Len())
	assert.False(t, m.IsEmpty())
	assert.Equal(t, uint64(6), m.Total())
	assert.Equal(t, uint64(3), m.Frequency("a"))
	assert.Equal(t, uint64(2), m.Frequency("b"))
	assert.Equal(t, uint64(1), m.Frequency("c"))
	assert.Equal(t, uint64(0), m.Frequency("z"))
	assert.Equal(t, 0.5, m.Probability("a"))
	assert.Equal(t, 0.0, m.Probability("z"))
	assert.Equal(t, []testToken{"a", "b", "c"}, m.TokensSorted())
}

func TestNewModel_Empty(t *testing.T) {
	m := NewModel[testToken](nil)
	assert.Equal(t, 0, m.Len())
	assert.True(t, m.IsEmpty())
	assert.Equal(t, uint64(0), m.Total())
	assert.Equal(t, 0.0, m.Probability("a"))
	assert.Empty(t, m.TokensSorted())
}

func TestNewModel_TiesKeepFirstOccurrence(t *testing.T) {
	m := NewModel(testTokens("xyyxzwz"))
	assert.Equal(t, []testToken{"x", "y", "z", "w"}, m.TokensSorted())
}

func TestNewModel_ProbabilitiesSumToOne(t *testing.T) {
	m := NewModel(testTokens(strings.Repeat("the quick brown fox jumps over the lazy dog ", 7)))
	var sum float64
	for _, tok := range m.TokensSorted() {
		sum += m.Probability(tok)
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestNewModelFromFrequencies(t *testing.T) {
	m := NewModelFromFrequencies([]TokenFrequency[testToken]{
		{Token: "a", Frequency: 2},
		{Token: "b", Frequency: 0},
		{Token: "c", Frequency: 3},
		{Token: "a", Frequency: 2},
	})
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, uint64(7), m.Total())
	assert.Equal(t, uint64(4), m.Frequency("a"))
	assert.Equal(t, uint64(0), m.Frequency("b"))
	assert.Equal(t, []testToken{"a", "c"}, m.TokensSorted())
}

func TestNewModelFromFrequencies_Saturates(t *testing.T) {
	m := NewModelFromFrequencies([]TokenFrequency[testToken]{
		{Token: "a", Frequency: math.MaxUint64 - 1},
		{Token: "a", Frequency: 5},
	})
	assert.Equal(t, uint64(math.MaxUint64), m.Frequency("a"))
	assert.Equal(t, uint64(math.MaxUint64), m.Total())
}

func TestModel_TokensSortedIsACopy(t *testing.T) {
	m := testModel(3, 2, 1)
	sorted := m.TokensSorted()
	sorted[0] = "z"
	assert.Equal(t, []testToken{"a", "b", "c"}, m.TokensSorted())
}
