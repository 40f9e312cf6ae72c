package localize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repairlab/testgen/core"
)

func weighted(weights ...float64) []core.WeightedIdentifier {
	out := make([]core.WeightedIdentifier, len(weights))
	for i, w := range weights {
		out[i] = core.WeightedIdentifier{Identifier: string(rune('a' + i)), Weight: w}
	}
	return out
}

func TestDefaultKeepsOrderAndWeights(t *testing.T) {
	m := NewDefault()
	suggestions := weighted(0.3, 0.9, 0.1, 0.9)

	got := m.Locations(suggestions)
	require.Equal(t, suggestions, got)

	// Returned slice is a copy, not an alias.
	got[0].Weight = 0.0
	assert.Equal(t, 0.3, suggestions[0].Weight)

	for _, location := range suggestions {
		assert.Equal(t, location.Weight, m.MutationChance(location))
	}
}

func TestTopRankTruncatesThenDropsZeroWeights(t *testing.T) {
	m := NewTopRank(3)
	got := m.Locations(weighted(0.0, 0.9, 0.5, 0.1))

	require.Len(t, got, 2)
	assert.Equal(t, 0.9, got[0].Weight)
	assert.Equal(t, 0.5, got[1].Weight)
	assert.Equal(t, 1.0, m.MutationChance(got[0]))
}

func TestTopRankShortInput(t *testing.T) {
	m := NewTopRank(10)
	got := m.Locations(weighted(0.4, 0.2))
	require.Len(t, got, 2)
}

func TestTopEqualRankRanksDistinctWeights(t *testing.T) {
	m := NewTopEqualRank(2, 0.2)
	got := m.Locations(weighted(0.9, 0.9, 0.5, 0.1))

	// The two highest distinct weights are {0.9, 0.5}, so both 0.9 items and
	// the 0.5 item survive; 0.1 is outside the top weights.
	require.Len(t, got, 3)
	assert.Equal(t, 0.9, got[0].Weight)
	assert.Equal(t, 0.9, got[1].Weight)
	assert.Equal(t, 0.5, got[2].Weight)
	assert.Equal(t, 1.0, m.MutationChance(got[0]))
}

func TestTopEqualRankThresholdIsStrict(t *testing.T) {
	m := NewTopEqualRank(3, 0.5)
	got := m.Locations(weighted(0.9, 0.5, 0.3))

	require.Len(t, got, 1)
	assert.Equal(t, 0.9, got[0].Weight)
}

func TestSigmoidMidpointMapsToHalf(t *testing.T) {
	m, err := NewSigmoid(10, 0.8)
	require.NoError(t, err)

	got := m.Locations(weighted(0.8, 0.9, 0.7))
	require.Len(t, got, 3)
	assert.InDelta(t, 0.5, got[0].Weight, 1e-9)
	assert.Greater(t, got[1].Weight, 0.5)
	assert.Less(t, got[2].Weight, 0.5)

	// Mutation chance reads the reweighted value.
	assert.Equal(t, got[1].Weight, m.MutationChance(got[1]))
}

func TestSigmoidMonotonic(t *testing.T) {
	m, err := NewSigmoid(10, 0.8)
	require.NoError(t, err)

	prev := -1.0
	for w := 0.0; w <= 1.0; w += 0.05 {
		got := m.Locations([]core.WeightedIdentifier{{Identifier: "x", Weight: w}})
		require.GreaterOrEqual(t, got[0].Weight, prev, "weight %v", w)
		prev = got[0].Weight
	}
}

func TestSigmoidRejectsDegenerateMidpoint(t *testing.T) {
	for _, midpoint := range []float64{0.0, 1.0, -0.1, 1.5} {
		_, err := NewSigmoid(10, midpoint)
		assert.Error(t, err, "midpoint %v", midpoint)
	}
}
