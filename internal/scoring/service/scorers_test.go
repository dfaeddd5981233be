package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	measuredomain "github.com/smallbiznis/meritscore/internal/measure/domain"
	perfdomain "github.com/smallbiznis/meritscore/internal/performance/domain"
	"github.com/smallbiznis/meritscore/internal/scoring/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFacts struct {
	quality []perfdomain.QualityFact
	pi      []perfdomain.PIFact
	ia      []perfdomain.IAFact
	cost    []perfdomain.CostPerformance
}

func (f *fakeFacts) QualityFacts(context.Context, snowflake.ID, int) ([]perfdomain.QualityFact, error) {
	return f.quality, nil
}

func (f *fakeFacts) PIFacts(context.Context, snowflake.ID, int) ([]perfdomain.PIFact, error) {
	return f.pi, nil
}

func (f *fakeFacts) IAFacts(context.Context, snowflake.ID, int) ([]perfdomain.IAFact, error) {
	return f.ia, nil
}

func (f *fakeFacts) CostFacts(context.Context, snowflake.ID, int) ([]perfdomain.CostPerformance, error) {
	return f.cost, nil
}

func (f *fakeFacts) ProvidersWithFacts(context.Context, int) ([]snowflake.ID, error) {
	return nil, nil
}

func qualityFact(code string, outcome, highPriority bool, score float64, denominator int64, completeness float64) perfdomain.QualityFact {
	return perfdomain.QualityFact{
		Measure: measuredomain.QualityMeasure{Code: code, IsOutcome: outcome, IsHighPriority: highPriority},
		Performance: &perfdomain.QualityPerformance{
			Denominator:         denominator,
			MeasureScore:        score,
			CompletenessPercent: completeness,
			CaseMinimumMet:      denominator >= 20,
		},
	}
}

func TestQualityScorerAppliesBonuses(t *testing.T) {
	facts := &fakeFacts{quality: []perfdomain.QualityFact{
		qualityFact("Q001", true, true, 8, 40, 90),   // outcome bonus +2
		qualityFact("Q002", false, true, 10, 40, 90), // high priority bonus +1
		qualityFact("Q003", false, false, 6, 40, 90),
		qualityFact("Q004", false, false, 4, 40, 90),
		qualityFact("Q005", true, true, 6, 40, 90), // below bonus threshold
		qualityFact("Q006", false, false, 2, 40, 90),
	}}

	result, err := NewQualityScorer(facts, zap.NewNop()).Score(context.Background(), 1, 2024)
	require.NoError(t, err)
	assert.True(t, result.DataAvailable)
	// average 6 -> 60 + 3 bonus
	assert.Equal(t, 63.0, result.Score)
	assert.Equal(t, 3.0, result.Facts["bonus"])
	assert.Equal(t, 6, result.Facts["qualifying"])
}

func TestQualityScorerCapsAtHundred(t *testing.T) {
	facts := &fakeFacts{}
	for _, code := range []string{"Q1", "Q2", "Q3", "Q4", "Q5", "Q6"} {
		facts.quality = append(facts.quality, qualityFact(code, true, true, 10, 40, 100))
	}
	result, err := NewQualityScorer(facts, zap.NewNop()).Score(context.Background(), 1, 2024)
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.Score)
}

func TestQualityScorerZeroWhenNoMeasureQualifies(t *testing.T) {
	facts := &fakeFacts{quality: []perfdomain.QualityFact{
		qualityFact("Q001", true, true, 10, 12, 95),  // below case minimum
		qualityFact("Q002", false, false, 10, 19, 95), // below case minimum
		qualityFact("Q003", false, false, 10, 50, 60), // incomplete
	}}

	result, err := NewQualityScorer(facts, zap.NewNop()).Score(context.Background(), 1, 2024)
	require.NoError(t, err)
	assert.True(t, result.DataAvailable)
	assert.Zero(t, result.Score)
	assert.Equal(t, []string{"Q001", "Q002", "Q003"}, result.Facts["excluded"])
}

func TestQualityScorerUnavailableWithoutPerformance(t *testing.T) {
	facts := &fakeFacts{quality: []perfdomain.QualityFact{
		{Measure: measuredomain.QualityMeasure{Code: "Q001"}},
	}}
	result, err := NewQualityScorer(facts, zap.NewNop()).Score(context.Background(), 1, 2024)
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.False(t, result.DataAvailable)
	assert.Zero(t, result.Score)
}

func piFact(code string, required bool, max float64, status perfdomain.AttestationStatus, points float64) perfdomain.PIFact {
	return perfdomain.PIFact{
		Measure:     measuredomain.PIMeasure{Code: code, RequiredMeasure: required, MaxPoints: max},
		Performance: &perfdomain.PIPerformance{MeasureCode: code, AttestationStatus: status, PointsEarned: points},
	}
}

func TestPIScorerRatioOfAttestedPoints(t *testing.T) {
	facts := &fakeFacts{pi: []perfdomain.PIFact{
		piFact("PI_EP_1", true, 10, perfdomain.AttestationAttested, 10),
		piFact("PI_HIE_1", false, 20, perfdomain.AttestationAttested, 15),
		piFact("PI_PEA_1", false, 40, perfdomain.AttestationInProgress, 0),
	}}
	result, err := NewPIScorer(facts, zap.NewNop()).Score(context.Background(), 1, 2024)
	require.NoError(t, err)
	// 25 of 30 attested points
	assert.Equal(t, 83.33, result.Score)
}

func TestPIScorerRequiredMeasureGate(t *testing.T) {
	cases := []struct {
		name string
		fact perfdomain.PIFact
	}{
		{"zero_points", piFact("PI_EP_1", true, 10, perfdomain.AttestationAttested, 0)},
		{"not_attested", piFact("PI_EP_1", true, 10, perfdomain.AttestationInProgress, 10)},
		{"no_row", perfdomain.PIFact{Measure: measuredomain.PIMeasure{Code: "PI_EP_1", RequiredMeasure: true, MaxPoints: 10}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			facts := &fakeFacts{pi: []perfdomain.PIFact{
				tc.fact,
				piFact("PI_HIE_1", false, 20, perfdomain.AttestationAttested, 20),
			}}
			result, err := NewPIScorer(facts, zap.NewNop()).Score(context.Background(), 1, 2024)
			require.NoError(t, err)
			assert.Zero(t, result.Score)
			assert.Equal(t, []string{"PI_EP_1"}, result.Facts["failed_required"])
		})
	}
}

func TestIAScorerCountsCompletedActivities(t *testing.T) {
	facts := &fakeFacts{ia: []perfdomain.IAFact{
		{Attestation: perfdomain.IAAttestation{Status: perfdomain.ActivityCompleted, PointsEarned: 20}},
		{Attestation: perfdomain.IAAttestation{Status: perfdomain.ActivityCompleted, PointsEarned: 10}},
		{Attestation: perfdomain.IAAttestation{Status: perfdomain.ActivityInProgress, PointsEarned: 0}},
	}}
	result, err := NewIAScorer(facts, zap.NewNop()).Score(context.Background(), 1, 2024)
	require.NoError(t, err)
	assert.Equal(t, 75.0, result.Score)

	facts.ia = append(facts.ia, perfdomain.IAFact{Attestation: perfdomain.IAAttestation{Status: perfdomain.ActivityCompleted, PointsEarned: 20}})
	result, err = NewIAScorer(facts, zap.NewNop()).Score(context.Background(), 1, 2024)
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.Score)
}

func TestCostScorerAverages(t *testing.T) {
	facts := &fakeFacts{cost: []perfdomain.CostPerformance{
		{MeasureCode: "TPCC", PerformanceScore: 70},
		{MeasureCode: "MSPB", PerformanceScore: 50},
	}}
	result, err := NewCostScorer(facts, zap.NewNop()).Score(context.Background(), 1, 2024)
	require.NoError(t, err)
	assert.Equal(t, 60.0, result.Score)

	result, err = NewCostScorer(&fakeFacts{}, zap.NewNop()).Score(context.Background(), 1, 2024)
	assert.ErrorIs(t, err, domain.ErrDataUnavailable)
	assert.Equal(t, domain.CategoryCost, result.Category)
}
