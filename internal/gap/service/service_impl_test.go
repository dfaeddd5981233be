package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/meritscore/internal/clock"
	"github.com/smallbiznis/meritscore/internal/gap/domain"
	"github.com/smallbiznis/meritscore/internal/gap/repository"
	"github.com/smallbiznis/meritscore/internal/lock"
	measuredomain "github.com/smallbiznis/meritscore/internal/measure/domain"
	perfdomain "github.com/smallbiznis/meritscore/internal/performance/domain"
	"github.com/smallbiznis/meritscore/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFacts struct {
	mu      sync.Mutex
	quality []perfdomain.QualityFact
	pi      []perfdomain.PIFact
	ia      []perfdomain.IAFact
}

func (f *fakeFacts) QualityFacts(context.Context, snowflake.ID, int) ([]perfdomain.QualityFact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quality, nil
}

func (f *fakeFacts) PIFacts(context.Context, snowflake.ID, int) ([]perfdomain.PIFact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pi, nil
}

func (f *fakeFacts) IAFacts(context.Context, snowflake.ID, int) ([]perfdomain.IAFact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ia, nil
}

func (f *fakeFacts) CostFacts(context.Context, snowflake.ID, int) ([]perfdomain.CostPerformance, error) {
	return nil, nil
}

func (f *fakeFacts) ProvidersWithFacts(context.Context, int) ([]snowflake.ID, error) {
	return nil, nil
}

func newFacts() *fakeFacts {
	return &fakeFacts{
		quality: []perfdomain.QualityFact{{
			Selection:   measuredomain.ProviderMeasureSelection{MeasureCode: "Q001", ExpectedCompleteness: 70},
			Measure:     measuredomain.QualityMeasure{ID: 10, Code: "Q001", MinimumCases: 20},
			Performance: &perfdomain.QualityPerformance{Denominator: 5, CompletenessPercent: 40},
		}},
		pi: []perfdomain.PIFact{
			{Measure: measuredomain.PIMeasure{ID: 20, Code: "PI_EP_1", RequiredMeasure: true, MaxPoints: 10}},
		},
	}
}

func newTestService(t *testing.T, facts perfdomain.FactReader) domain.Service {
	t.Helper()
	return New(Params{
		DB:     testutil.OpenDB(t, &domain.DataGap{}),
		Log:    zap.NewNop(),
		GenID:  testutil.Node(t),
		Clock:  clock.NewFakeClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
		Repo:   repository.Provide(),
		Facts:  facts,
		Locker: lock.NewLocalLocker(),
	})
}

func keys(gaps []domain.DataGap) []string {
	out := make([]string, 0, len(gaps))
	for _, g := range gaps {
		out = append(out, g.GapKey)
	}
	return out
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	svc := newTestService(t, newFacts())
	ctx := context.Background()

	first, err := svc.Analyze(ctx, 9, 2024)
	require.NoError(t, err)
	require.Len(t, first, 4)

	second, err := svc.Analyze(ctx, 9, 2024)
	require.NoError(t, err)
	assert.Equal(t, keys(first), keys(second))

	stored, err := svc.List(ctx, 9, 2024)
	require.NoError(t, err)
	assert.Equal(t, keys(second), keys(stored))
	assert.Equal(t, second[0].ID, stored[0].ID)
}

func TestAnalyzeReplacesResolvedGaps(t *testing.T) {
	facts := newFacts()
	svc := newTestService(t, facts)
	ctx := context.Background()

	_, err := svc.Analyze(ctx, 9, 2024)
	require.NoError(t, err)

	facts.mu.Lock()
	facts.quality[0].Performance = &perfdomain.QualityPerformance{Denominator: 50, CompletenessPercent: 90}
	facts.pi[0].Performance = &perfdomain.PIPerformance{AttestationStatus: perfdomain.AttestationAttested, PointsEarned: 10}
	facts.ia = []perfdomain.IAFact{{Attestation: perfdomain.IAAttestation{Status: perfdomain.ActivityCompleted, PointsEarned: 40}}}
	facts.mu.Unlock()

	gaps, err := svc.Analyze(ctx, 9, 2024)
	require.NoError(t, err)
	assert.Empty(t, gaps)

	stored, err := svc.List(ctx, 9, 2024)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestAnalyzeConcurrentRunsLeaveOneSet(t *testing.T) {
	svc := newTestService(t, newFacts())
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Analyze(ctx, 9, 2024)
		}()
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}

	stored, err := svc.List(ctx, 9, 2024)
	require.NoError(t, err)
	assert.Len(t, stored, 4)
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	svc := newTestService(t, newFacts())
	_, err := svc.Analyze(context.Background(), 0, 2024)
	assert.ErrorIs(t, err, domain.ErrInvalidProvider)
	_, err = svc.List(context.Background(), 1, 3000)
	assert.ErrorIs(t, err, domain.ErrInvalidYear)
}
