package domain

import "math"

// MinimumCompleteness is the data completeness a quality measure needs to count.
const MinimumCompleteness = 70.0

// QualityRate is numerator over the eligible population (denominator less
// exclusions) as a percentage; zero when nobody is eligible.
func QualityRate(numerator, denominator, exclusions int64) float64 {
	eligible := denominator - exclusions
	if eligible <= 0 {
		return 0
	}
	return round2(float64(numerator) / float64(eligible) * 100)
}

// MeasureScore buckets a performance rate onto the 0-10 measure scale.
func MeasureScore(rate float64) float64 {
	switch {
	case rate >= 90:
		return 10
	case rate >= 80:
		return 8
	case rate >= 70:
		return 6
	case rate >= 60:
		return 4
	case rate >= 50:
		return 2
	default:
		return 1
	}
}

// Qualifies reports whether a period passes the case-minimum and completeness gates.
func (p *QualityPerformance) Qualifies() bool {
	return p != nil && p.CaseMinimumMet && p.CompletenessPercent >= MinimumCompleteness
}

func PIRate(numerator, denominator int64) float64 {
	if denominator <= 0 {
		return 0
	}
	return round2(float64(numerator) / float64(denominator) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
