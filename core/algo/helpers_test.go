package algo

import (
	"time"

	"github.com/huangsam/cadence/schema"
)

// weekly is the seven-day usage profile repeated by the periodic fixtures.
var weekly = []float64{10, 20, 30, 40, 50, 5, 5}

// periodic repeats pattern until n values are produced.
func periodic(pattern []float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = pattern[i%len(pattern)]
	}
	return out
}

// noise returns n deterministic uniform values in [0, 1) from a xorshift64 generator.
func noise(seed uint64, n int) []float64 {
	s := seed
	out := make([]float64, n)
	for i := range out {
		s ^= s << 13
		s ^= s >> 7
		s ^= s << 17
		out[i] = float64(s>>11) / (1 << 53)
	}
	return out
}

// dailyPoints builds one point per day starting at start, rows in input order.
func dailyPoints(start time.Time, values []float64) []schema.Point {
	points := make([]schema.Point, len(values))
	for i, v := range values {
		points[i] = schema.Point{Day: start.AddDate(0, 0, i), Value: v, Row: i}
	}
	return points
}
