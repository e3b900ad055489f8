package algo

import (
	"math"
	"testing"

	"github.com/huangsam/cadence/schema"
	"github.com/stretchr/testify/assert"
)

func TestTrimLags(t *testing.T) {
	coefficients := []float64{1, 0.9, 0.8, 0.7, 0.6}

	assert.Equal(t, []schema.LagScore{{Lag: 3, Score: 0.7}, {Lag: 4, Score: 0.6}}, TrimLags(coefficients, 3))
	assert.Len(t, TrimLags(coefficients, 0), 5)
	assert.Len(t, TrimLags(coefficients, -2), 5)
	assert.Empty(t, TrimLags(coefficients, 5))
	assert.Empty(t, TrimLags(nil, 3))
}

func TestRankLags(t *testing.T) {
	tests := []struct {
		name     string
		scores   []schema.LagScore
		limit    int
		expected []schema.LagScore
	}{
		{
			name:     "descending by score",
			scores:   []schema.LagScore{{Lag: 3, Score: 0.1}, {Lag: 4, Score: 0.5}, {Lag: 5, Score: 0.3}, {Lag: 6, Score: 0.2}},
			limit:    3,
			expected: []schema.LagScore{{Lag: 4, Score: 0.5}, {Lag: 5, Score: 0.3}, {Lag: 6, Score: 0.2}},
		},
		{
			name:     "negative scores rank below weak positives",
			scores:   []schema.LagScore{{Lag: 3, Score: -0.9}, {Lag: 4, Score: 0.05}, {Lag: 5, Score: -0.1}},
			limit:    2,
			expected: []schema.LagScore{{Lag: 4, Score: 0.05}, {Lag: 5, Score: -0.1}},
		},
		{
			name:     "ties keep the smaller lag first",
			scores:   []schema.LagScore{{Lag: 14, Score: 0.4}, {Lag: 7, Score: 0.4}, {Lag: 21, Score: 0.4}},
			limit:    3,
			expected: []schema.LagScore{{Lag: 7, Score: 0.4}, {Lag: 14, Score: 0.4}, {Lag: 21, Score: 0.4}},
		},
		{
			name:     "NaN is dropped",
			scores:   []schema.LagScore{{Lag: 3, Score: math.NaN()}, {Lag: 4, Score: 0.2}},
			limit:    3,
			expected: []schema.LagScore{{Lag: 4, Score: 0.2}},
		},
		{
			name:     "fewer scores than limit",
			scores:   []schema.LagScore{{Lag: 3, Score: 0.2}},
			limit:    3,
			expected: []schema.LagScore{{Lag: 3, Score: 0.2}},
		},
		{
			name:     "zero limit",
			scores:   []schema.LagScore{{Lag: 3, Score: 0.2}},
			limit:    0,
			expected: []schema.LagScore{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RankLags(tt.scores, tt.limit))
		})
	}
}

func TestRankLags_DoesNotModifyInput(t *testing.T) {
	scores := []schema.LagScore{{Lag: 3, Score: 0.1}, {Lag: 4, Score: 0.5}}
	RankLags(scores, 1)
	assert.Equal(t, []schema.LagScore{{Lag: 3, Score: 0.1}, {Lag: 4, Score: 0.5}}, scores)
}

func TestRank(t *testing.T) {
	coefficients := []float64{1, 0.95, 0.9, 0.2, 0.1, 0.6, 0.3}

	// Lags 0..2 are dropped even though they carry the largest scores.
	got := Rank(coefficients, 3, 3)
	assert.Equal(t, []schema.LagScore{{Lag: 5, Score: 0.6}, {Lag: 6, Score: 0.3}, {Lag: 3, Score: 0.2}}, got)

	assert.Equal(t, []schema.LagScore{}, Rank(nil, 3, 3))
}

func TestRank_WeeklyPatternACF(t *testing.T) {
	acf, err := ACF(periodic(weekly, 95), DefaultMaxLag)
	assert.NoError(t, err)

	got := Rank(acf, DefaultDropLags, DefaultTopK)
	lags := make([]int, len(got))
	for i, s := range got {
		lags[i] = s.Lag
	}
	assert.Equal(t, []int{7, 14, 21}, lags)
}
