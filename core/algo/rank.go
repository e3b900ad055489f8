package algo

import (
	"math"
	"sort"

	"github.com/huangsam/cadence/schema"
)

// TrimLags pairs every coefficient from firstLag onwards with its lag.
// coefficients[k] is the coefficient at lag k.
func TrimLags(coefficients []float64, firstLag int) []schema.LagScore {
	firstLag = max(firstLag, 0)
	if firstLag >= len(coefficients) {
		return []schema.LagScore{}
	}
	scores := make([]schema.LagScore, 0, len(coefficients)-firstLag)
	for lag := firstLag; lag < len(coefficients); lag++ {
		scores = append(scores, schema.LagScore{Lag: lag, Score: coefficients[lag]})
	}
	return scores
}

// RankLags sorts lag scores by signed score in descending order and returns
// the top 'limit' of them. A strongly negative score never outranks a weaker
// positive one. Equal scores keep the smaller lag first. NaN scores are dropped.
// The input slice is not modified.
func RankLags(scores []schema.LagScore, limit int) []schema.LagScore {
	ranked := make([]schema.LagScore, 0, len(scores))
	for _, s := range scores {
		if !math.IsNaN(s.Score) {
			ranked = append(ranked, s)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Lag < ranked[j].Lag
	})
	if len(ranked) > limit {
		return ranked[:max(limit, 0)]
	}
	return ranked
}

// Rank trims the coefficient vector of an estimator to lags >= firstLag and
// keeps the topK most significant lags. A nil vector stands for an undefined
// estimator and yields an empty list.
func Rank(coefficients []float64, firstLag, topK int) []schema.LagScore {
	if coefficients == nil {
		return []schema.LagScore{}
	}
	return RankLags(TrimLags(coefficients, firstLag), topK)
}
