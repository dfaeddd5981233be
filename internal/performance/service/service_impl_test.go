package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/meritscore/internal/clock"
	measuredomain "github.com/smallbiznis/meritscore/internal/measure/domain"
	measurerepo "github.com/smallbiznis/meritscore/internal/measure/repository"
	measureservice "github.com/smallbiznis/meritscore/internal/measure/service"
	"github.com/smallbiznis/meritscore/internal/performance/domain"
	"github.com/smallbiznis/meritscore/internal/performance/repository"
	"github.com/smallbiznis/meritscore/internal/testutil"
	pkgrepo "github.com/smallbiznis/meritscore/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const providerID = snowflake.ID(500)

type fixture struct {
	svc      domain.Service
	measures measuredomain.Service
	clock    *clock.FakeClock
	quality  []measuredomain.QualityMeasure
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := testutil.OpenDB(t,
		&measuredomain.QualityMeasure{},
		&measuredomain.PIMeasure{},
		&measuredomain.ImprovementActivity{},
		&measuredomain.ProviderMeasureSelection{},
		&domain.QualityPerformance{},
		&domain.PIPerformance{},
		&domain.IAAttestation{},
		&domain.CostPerformance{},
	)
	node := testutil.Node(t)
	clk := clock.NewFakeClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	measures := measureservice.New(measureservice.Params{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      clk,
		Measures:   pkgrepo.ProvideStore[measuredomain.QualityMeasure](db),
		PIMeasures: pkgrepo.ProvideStore[measuredomain.PIMeasure](db),
		Activities: pkgrepo.ProvideStore[measuredomain.ImprovementActivity](db),
		Selections: measurerepo.ProvideSelections(),
	})

	catalog := measuredomain.Catalog{
		PIMeasures: []measuredomain.PIMeasure{
			{Code: "PI_EP_1", Title: "e-Prescribing", MaxPoints: 10, RequiredMeasure: true},
			{Code: "PI_HIE_1", Title: "Send records", MaxPoints: 20},
		},
		Activities: []measuredomain.ImprovementActivity{
			{Code: "IA_BE_4", Title: "Engagement", Weight: measuredomain.WeightHigh},
		},
	}
	for i := 1; i <= 6; i++ {
		catalog.QualityMeasures = append(catalog.QualityMeasures, measuredomain.QualityMeasure{
			Code: fmt.Sprintf("Q%03d", i), Title: "m", MinimumCases: 20,
		})
	}
	_, err := measures.ImportCatalog(context.Background(), catalog)
	require.NoError(t, err)

	quality, err := measures.ListCatalog(context.Background(), "")
	require.NoError(t, err)
	inputs := make([]measuredomain.SelectionInput, 0, len(quality))
	for _, m := range quality {
		inputs = append(inputs, measuredomain.SelectionInput{MeasureID: m.ID})
	}
	_, err = measures.ReplaceSelections(context.Background(), measuredomain.ReplaceSelectionsRequest{
		ProviderID: providerID, PerformanceYear: 2024, Selections: inputs,
	})
	require.NoError(t, err)

	svc := New(Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   clk,
		Repo:    repository.Provide(),
		Catalog: measures,
	})
	return fixture{svc: svc, measures: measures, clock: clk, quality: quality}
}

func TestRecordQualityDerivesFields(t *testing.T) {
	f := newFixture(t)
	row, err := f.svc.RecordQuality(context.Background(), domain.RecordQualityRequest{
		ProviderID: providerID, PerformanceYear: 2024, MeasureID: f.quality[0].ID,
		ReportingPeriod: "2024-Q1", PeriodEnd: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Numerator: 45, Denominator: 60, Exclusions: 10, CompletenessPercent: 80,
	})
	require.NoError(t, err)
	assert.Equal(t, 90.0, row.PerformanceRate)
	assert.Equal(t, 10.0, row.MeasureScore)
	assert.True(t, row.CaseMinimumMet)
}

func TestRecordQualityRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordQuality(ctx, domain.RecordQualityRequest{
		ProviderID: providerID, PerformanceYear: 2024, MeasureID: f.quality[0].ID,
		ReportingPeriod: "2024-Q1", Numerator: 50, Denominator: 40,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCounts)

	_, err = f.svc.RecordQuality(ctx, domain.RecordQualityRequest{
		ProviderID: providerID, PerformanceYear: 2024, MeasureID: 1,
		ReportingPeriod: "2024-Q1", Numerator: 1, Denominator: 40, CompletenessPercent: 90,
	})
	assert.ErrorIs(t, err, domain.ErrMeasureNotSelected)

	_, err = f.svc.RecordQuality(ctx, domain.RecordQualityRequest{
		ProviderID: providerID, PerformanceYear: 2024, MeasureID: f.quality[0].ID,
		Numerator: 1, Denominator: 40,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestQualityFactsUseLatestPeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	measureID := f.quality[0].ID

	for _, p := range []struct {
		label string
		end   time.Time
		num   int64
	}{
		{"2024-Q2", time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), 30},
		{"2024-Q1", time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), 10},
	} {
		_, err := f.svc.RecordQuality(ctx, domain.RecordQualityRequest{
			ProviderID: providerID, PerformanceYear: 2024, MeasureID: measureID,
			ReportingPeriod: p.label, PeriodEnd: p.end, Numerator: p.num, Denominator: 40, CompletenessPercent: 90,
		})
		require.NoError(t, err)
	}

	facts, err := f.svc.QualityFacts(ctx, providerID, 2024)
	require.NoError(t, err)
	require.Len(t, facts, 6)

	var found bool
	for _, fact := range facts {
		if fact.Measure.ID != measureID {
			assert.Nil(t, fact.Performance)
			continue
		}
		found = true
		require.NotNil(t, fact.Performance)
		assert.Equal(t, "2024-Q2", fact.Performance.ReportingPeriod)
		assert.Equal(t, 75.0, fact.Performance.PerformanceRate)
	}
	assert.True(t, found)
}

func TestQualityFactsSurviveReselection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	measureID := f.quality[0].ID

	_, err := f.svc.RecordQuality(ctx, domain.RecordQualityRequest{
		ProviderID: providerID, PerformanceYear: 2024, MeasureID: measureID,
		ReportingPeriod: "2024-Q1", PeriodEnd: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Numerator: 30, Denominator: 40, CompletenessPercent: 90,
	})
	require.NoError(t, err)

	reselect := func(measures []measuredomain.QualityMeasure, rationale string) {
		inputs := make([]measuredomain.SelectionInput, 0, len(measures))
		for _, m := range measures {
			inputs = append(inputs, measuredomain.SelectionInput{MeasureID: m.ID, Rationale: rationale})
		}
		_, err := f.measures.ReplaceSelections(ctx, measuredomain.ReplaceSelectionsRequest{
			ProviderID: providerID, PerformanceYear: 2024, Selections: inputs,
		})
		require.NoError(t, err)
	}
	performanceFor := func() *domain.QualityPerformance {
		facts, err := f.svc.QualityFacts(ctx, providerID, 2024)
		require.NoError(t, err)
		for _, fact := range facts {
			if fact.Measure.ID == measureID {
				return fact.Performance
			}
		}
		return nil
	}

	// same set, new rationale
	reselect(f.quality, "annual review")
	perf := performanceFor()
	require.NotNil(t, perf)
	assert.Equal(t, 75.0, perf.PerformanceRate)

	// dropped then re-added under a fresh selection id
	_, err = f.measures.ImportCatalog(ctx, measuredomain.Catalog{
		QualityMeasures: []measuredomain.QualityMeasure{{Code: "Q007", Title: "m", MinimumCases: 20}},
	})
	require.NoError(t, err)
	all, err := f.measures.ListCatalog(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 7)
	var withoutFirst []measuredomain.QualityMeasure
	for _, m := range all {
		if m.ID != measureID {
			withoutFirst = append(withoutFirst, m)
		}
	}
	reselect(withoutFirst, "")
	assert.Nil(t, performanceFor())

	reselect(f.quality, "")
	perf = performanceFor()
	require.NotNil(t, perf)
	assert.Equal(t, "2024-Q1", perf.ReportingPeriod)
}

func TestRecordPIComputesPointsAndUpserts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	row, err := f.svc.RecordPI(ctx, domain.RecordPIRequest{
		ProviderID: providerID, PerformanceYear: 2024, MeasureCode: "PI_HIE_1",
		AttestationStatus: domain.AttestationAttested, Numerator: 3, Denominator: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, 15.0, row.PointsEarned)

	_, err = f.svc.RecordPI(ctx, domain.RecordPIRequest{
		ProviderID: providerID, PerformanceYear: 2024, MeasureCode: "PI_HIE_1",
		AttestationStatus: domain.AttestationInProgress, Numerator: 3, Denominator: 4,
	})
	require.NoError(t, err)

	facts, err := f.svc.PIFacts(ctx, providerID, 2024)
	require.NoError(t, err)
	require.Len(t, facts, 2)
	for _, fact := range facts {
		switch fact.Measure.Code {
		case "PI_EP_1":
			assert.Nil(t, fact.Performance)
		case "PI_HIE_1":
			require.NotNil(t, fact.Performance)
			assert.Equal(t, domain.AttestationInProgress, fact.Performance.AttestationStatus)
			assert.Equal(t, 0.0, fact.Performance.PointsEarned)
		}
	}

	over := 50.0
	_, err = f.svc.RecordPI(ctx, domain.RecordPIRequest{
		ProviderID: providerID, PerformanceYear: 2024, MeasureCode: "PI_EP_1",
		AttestationStatus: domain.AttestationAttested, Numerator: 1, Denominator: 1, PointsEarned: &over,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPoints)
}

func TestRecordIAAndCost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ia, err := f.svc.RecordIA(ctx, domain.RecordIARequest{
		ProviderID: providerID, PerformanceYear: 2024, ActivityCode: "IA_BE_4", Status: domain.ActivityCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, 20.0, ia.PointsEarned)
	require.NotNil(t, ia.CompletedAt)

	_, err = f.svc.RecordIA(ctx, domain.RecordIARequest{
		ProviderID: providerID, PerformanceYear: 2024, ActivityCode: "IA_NOPE", Status: domain.ActivityPlanned,
	})
	assert.ErrorIs(t, err, domain.ErrUnknownMeasure)

	_, err = f.svc.RecordCost(ctx, domain.RecordCostRequest{
		ProviderID: providerID, PerformanceYear: 2024, MeasureCode: "TPCC", PerformanceScore: 64, EpisodeCount: 120,
	})
	require.NoError(t, err)
	_, err = f.svc.RecordCost(ctx, domain.RecordCostRequest{
		ProviderID: providerID, PerformanceYear: 2024, MeasureCode: "MSPB", PerformanceScore: 101,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidScore)

	cost, err := f.svc.CostFacts(ctx, providerID, 2024)
	require.NoError(t, err)
	require.Len(t, cost, 1)

	ids, err := f.svc.ProvidersWithFacts(ctx, 2024)
	require.NoError(t, err)
	assert.Equal(t, []snowflake.ID{providerID}, ids)
}
