package titlematch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfidenceString(t *testing.T) {
	assert.Equal(t, "high", ConfidenceHigh.String())
	assert.Equal(t, "medium", ConfidenceMedium.String())
	assert.Equal(t, "low", ConfidenceLow.String())
	assert.Equal(t, "none", ConfidenceNone.String())
}

func TestConfidenceOf(t *testing.T) {
	assert.Equal(t, ConfidenceHigh, ConfidenceOf(1))
	assert.Equal(t, ConfidenceMedium, ConfidenceOf(0.9))
	assert.Equal(t, ConfidenceLow, ConfidenceOf(0.75))
	assert.Equal(t, ConfidenceNone, ConfidenceOf(0.2))
}

func TestScore_ExactAfterNormalize(t *testing.T) {
	assert.Equal(t, 1.0, Score("the simpsons", "The Simpsons"))
}

func TestScore_SequelNumbers(t *testing.T) {
	same := Score("Rocky 2", "Rocky II")
	other := Score("Rocky 2", "Rocky III")
	assert.Greater(t, same, other)
}

func TestRank(t *testing.T) {
	candidates := []string{"Star Trek: The Next Generation", "Star Trek", "Frasier"}
	ranked := Rank("star trek", candidates)
	require.Len(t, ranked, 3)
	assert.Equal(t, 1, ranked[0].Index)
	assert.Equal(t, "Star Trek", ranked[0].Title)
	assert.Equal(t, 2, ranked[2].Index)
}

func TestRank_TiesKeepOrder(t *testing.T) {
	ranked := Rank("cheers", []string{"Cheers", "cheers"})
	require.Len(t, ranked, 2)
	assert.Equal(t, 0, ranked[0].Index)
	assert.Equal(t, 1, ranked[1].Index)
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank("anything", nil))
}

func TestBest(t *testing.T) {
	m, ok := Best("Simpsons", []string{"The Simpsons", "Seinfeld"}, ConfidenceHigh)
	require.True(t, ok)
	assert.Equal(t, "The Simpsons", m.Title)

	_, ok = Best("Twin Peaks", []string{"Seinfeld"}, ConfidenceMedium)
	assert.False(t, ok)

	m, ok = Best("x", nil, ConfidenceNone)
	assert.False(t, ok)
	assert.Equal(t, -1, m.Index)
}
