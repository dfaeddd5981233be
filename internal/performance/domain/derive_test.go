package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeasureScoreBuckets(t *testing.T) {
	cases := map[float64]float64{
		100:   10,
		90:    10,
		89.99: 8,
		80:    8,
		70:    6,
		60:    4,
		50:    2,
		49.99: 1,
		0:     1,
	}
	for rate, want := range cases {
		assert.Equal(t, want, MeasureScore(rate), "rate %.2f", rate)
	}
}

func TestQualityRateSubtractsExclusions(t *testing.T) {
	assert.Equal(t, 90.0, QualityRate(45, 60, 10))
	assert.Equal(t, 0.0, QualityRate(0, 10, 10))
	assert.Equal(t, 33.33, QualityRate(1, 3, 0))
}

func TestQualifies(t *testing.T) {
	var missing *QualityPerformance
	assert.False(t, missing.Qualifies())
	assert.False(t, (&QualityPerformance{CaseMinimumMet: false, CompletenessPercent: 100}).Qualifies())
	assert.False(t, (&QualityPerformance{CaseMinimumMet: true, CompletenessPercent: 69.9}).Qualifies())
	assert.True(t, (&QualityPerformance{CaseMinimumMet: true, CompletenessPercent: 70}).Qualifies())
}

func TestPIRate(t *testing.T) {
	assert.Equal(t, 0.0, PIRate(5, 0))
	assert.Equal(t, 75.0, PIRate(3, 4))
}
