package algo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestACF_SmallSeries(t *testing.T) {
	acf, err := ACF([]float64{1, 2, 3, 4}, 3)
	require.NoError(t, err)
	require.Len(t, acf, 4)

	expected := []float64{1, 0.25, -0.3, -0.45}
	for k, want := range expected {
		assert.InDelta(t, want, acf[k], 1e-12, "lag %d", k)
	}
}

func TestACF_WeeklyPattern(t *testing.T) {
	acf, err := ACF(periodic(weekly, 95), DefaultMaxLag)
	require.NoError(t, err)
	require.Len(t, acf, DefaultMaxLag+1)

	assert.Equal(t, 1.0, acf[0])
	assert.InDelta(t, 0.9247, acf[7], 1e-3)
	assert.Greater(t, acf[7], acf[14])
	assert.Greater(t, acf[14], acf[21])
	assert.Less(t, acf[3], acf[7])
}

func TestACF_Bounded(t *testing.T) {
	for _, seed := range []uint64{1, 42, 7, 2024, 99} {
		acf, err := ACF(noise(seed, 95), DefaultMaxLag)
		require.NoError(t, err)
		for k, v := range acf {
			assert.GreaterOrEqual(t, v, -1.0, "seed %d lag %d", seed, k)
			assert.LessOrEqual(t, v, 1.0, "seed %d lag %d", seed, k)
		}
	}
}

func TestACF_Errors(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		maxLag int
		err    error
	}{
		{"constant", periodic([]float64{4}, 95), 35, ErrZeroVariance},
		{"lag equals length", []float64{1, 2, 3}, 3, ErrLagWindow},
		{"negative lag", []float64{1, 2, 3}, -1, ErrLagWindow},
		{"empty", nil, 0, ErrLagWindow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acf, err := ACF(tt.values, tt.maxLag)
			assert.ErrorIs(t, err, tt.err)
			assert.Nil(t, acf)
		})
	}
}
