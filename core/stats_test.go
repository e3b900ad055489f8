package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeriesStats(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = float64(i + 1)
	}

	s := seriesStats(values)
	assert.InDelta(t, 10.5, s.Mean, 1e-9)
	assert.InDelta(t, 5.766, s.StdDev, 1e-3) // population standard deviation
	assert.InDelta(t, 19.25, s.P95, 0.3)
}

func TestSeriesStats_Empty(t *testing.T) {
	s := seriesStats(nil)
	assert.Zero(t, s.Mean)
	assert.Zero(t, s.StdDev)
	assert.Zero(t, s.P95)
}
