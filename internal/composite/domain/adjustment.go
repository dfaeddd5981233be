package domain

import (
	"math"

	"github.com/smallbiznis/meritscore/internal/config"
)

// Weighted is one category score with its program weight.
type Weighted struct {
	Score  float64
	Weight float64
}

// CompositeScore is the weighted sum of category scores clamped to [0,100].
func CompositeScore(parts ...Weighted) float64 {
	var total float64
	for _, p := range parts {
		total += p.Score * p.Weight
	}
	return round2(clamp(total, 0, 100))
}

// PaymentAdjustment maps a composite score to a percent adjustment. Scores at
// or above the threshold scale linearly toward the positive bound at 100;
// scores below it scale toward the negative bound at 0.
func PaymentAdjustment(composite float64, rules config.ProgramRules) float64 {
	c := clamp(composite, 0, 100)
	threshold := rules.PerformanceThreshold
	maxPositive := math.Abs(rules.MaxPositiveAdjustment)
	maxNegative := math.Abs(rules.MaxNegativeAdjustment)

	var adj float64
	if c >= threshold {
		adj = (c - threshold) / (100 - threshold) * maxPositive
	} else {
		adj = -((threshold - c) / threshold) * maxNegative
	}
	return round2(clamp(adj, -maxNegative, maxPositive))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
