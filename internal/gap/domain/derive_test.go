package domain

import (
	"testing"
	"time"

	measuredomain "github.com/smallbiznis/meritscore/internal/measure/domain"
	perfdomain "github.com/smallbiznis/meritscore/internal/performance/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFacts() Facts {
	return Facts{
		Quality: []perfdomain.QualityFact{
			{
				Selection:   measuredomain.ProviderMeasureSelection{MeasureCode: "Q001", ExpectedCompleteness: 70},
				Measure:     measuredomain.QualityMeasure{ID: 10, Code: "Q001", MinimumCases: 20},
				Performance: &perfdomain.QualityPerformance{Denominator: 12, CompletenessPercent: 50},
			},
			{
				Selection:   measuredomain.ProviderMeasureSelection{MeasureCode: "Q002", ExpectedCompleteness: 70},
				Measure:     measuredomain.QualityMeasure{ID: 11, Code: "Q002", MinimumCases: 20},
				Performance: &perfdomain.QualityPerformance{Denominator: 80, CompletenessPercent: 95},
			},
		},
		PI: []perfdomain.PIFact{
			{Measure: measuredomain.PIMeasure{ID: 20, Code: "PI_EP_1", RequiredMeasure: true, MaxPoints: 10}},
			{
				Measure:     measuredomain.PIMeasure{ID: 21, Code: "PI_HIE_1", MaxPoints: 20, PerformanceThreshold: 60},
				Performance: &perfdomain.PIPerformance{AttestationStatus: perfdomain.AttestationAttested, PerformanceRate: 40},
			},
		},
		IA: []perfdomain.IAFact{
			{Attestation: perfdomain.IAAttestation{Status: perfdomain.ActivityCompleted, PointsEarned: 20}},
			{Attestation: perfdomain.IAAttestation{Status: perfdomain.ActivityPlanned}},
		},
	}
}

func TestDeriveProducesSortedGaps(t *testing.T) {
	gaps := Derive(2024, sampleFacts())
	require.Len(t, gaps, 5)

	type shape struct {
		category Category
		gapType  GapType
		impact   Impact
		code     string
	}
	var got []shape
	for _, g := range gaps {
		got = append(got, shape{g.Category, g.GapType, g.ImpactLevel, g.MeasureCode})
		assert.Equal(t, 2024, g.PerformanceYear)
	}
	assert.Equal(t, []shape{
		{CategoryPI, GapMissingData, ImpactCritical, "PI_EP_1"},
		{CategoryIA, GapInsufficientPoints, ImpactHigh, ""},
		{CategoryQuality, GapInsufficientVolume, ImpactHigh, "Q001"},
		{CategoryPI, GapInsufficientPerformance, ImpactMedium, "PI_HIE_1"},
		{CategoryQuality, GapIncompleteData, ImpactMedium, "Q001"},
	}, got)
}

func TestDeriveDueDates(t *testing.T) {
	due := map[GapType]time.Time{}
	for _, g := range Derive(2024, sampleFacts()) {
		due[g.GapType] = g.DueDate
	}
	assert.Equal(t, time.Date(2024, time.September, 30, 0, 0, 0, 0, time.UTC), due[GapIncompleteData])
	assert.Equal(t, time.Date(2024, time.October, 2, 0, 0, 0, 0, time.UTC), due[GapInsufficientPoints])
	assert.Equal(t, time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), due[GapInsufficientVolume])
	assert.Equal(t, time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC), due[GapMissingData])
}

func TestDeriveKeysAreStableAndUnique(t *testing.T) {
	first := Derive(2024, sampleFacts())
	second := Derive(2024, sampleFacts())

	seen := map[string]bool{}
	for i := range first {
		assert.Equal(t, first[i].GapKey, second[i].GapKey)
		assert.False(t, seen[first[i].GapKey], "duplicate key %s", first[i].GapKey)
		seen[first[i].GapKey] = true
	}
	assert.Equal(t, Key(CategoryQuality, GapInsufficientVolume, "Q001"), first[2].GapKey)
}

func TestDeriveNoIAGapAtFortyPoints(t *testing.T) {
	gaps := Derive(2024, Facts{IA: []perfdomain.IAFact{
		{Attestation: perfdomain.IAAttestation{Status: perfdomain.ActivityCompleted, PointsEarned: 20}},
		{Attestation: perfdomain.IAAttestation{Status: perfdomain.ActivityCompleted, PointsEarned: 20}},
	}})
	assert.Empty(t, gaps)
}
