package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/meritscore/internal/clock"
	compositedomain "github.com/smallbiznis/meritscore/internal/composite/domain"
	gapdomain "github.com/smallbiznis/meritscore/internal/gap/domain"
	"github.com/smallbiznis/meritscore/internal/lock"
	obscontext "github.com/smallbiznis/meritscore/internal/observability/context"
	perfdomain "github.com/smallbiznis/meritscore/internal/performance/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFacts struct {
	perfdomain.FactReader
	byYear map[int][]snowflake.ID
}

func (f *fakeFacts) ProvidersWithFacts(_ context.Context, year int) ([]snowflake.ID, error) {
	return f.byYear[year], nil
}

type fakeComposite struct {
	compositedomain.Service
	mu      sync.Mutex
	batches [][]snowflake.ID
	years   []int
	runIDs  []string
	fail    map[snowflake.ID]bool
}

func (f *fakeComposite) ComputeBatch(ctx context.Context, year int, providerIDs []snowflake.ID) (compositedomain.BatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, providerIDs)
	f.years = append(f.years, year)
	f.runIDs = append(f.runIDs, obscontext.RunIDFromContext(ctx))

	result := compositedomain.BatchResult{RunID: obscontext.RunIDFromContext(ctx)}
	var errs []error
	for _, id := range providerIDs {
		if f.fail[id] {
			if result.Failed == nil {
				result.Failed = map[string]string{}
			}
			result.Failed[id.String()] = "scorer_failed"
			errs = append(errs, errors.New("scorer_failed"))
			continue
		}
		result.Computed++
	}
	return result, errors.Join(errs...)
}

type fakeGaps struct {
	gapdomain.Service
	mu       sync.Mutex
	analyzed []snowflake.ID
}

func (f *fakeGaps) Analyze(_ context.Context, providerID snowflake.ID, _ int) ([]gapdomain.DataGap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyzed = append(f.analyzed, providerID)
	return nil, nil
}

type fixture struct {
	sched     *Scheduler
	clock     *clock.FakeClock
	composite *fakeComposite
	gaps      *fakeGaps
}

func newFixture(t *testing.T, now time.Time, cfg Config, byYear map[int][]snowflake.ID) fixture {
	t.Helper()
	restore := swapPrometheusRegistry(prometheus.NewRegistry())
	t.Cleanup(restore)

	clk := clock.NewFakeClock(now)
	composite := &fakeComposite{fail: map[snowflake.ID]bool{}}
	gaps := &fakeGaps{}
	sched, err := New(Params{
		Log:          zap.NewNop(),
		Clock:        clk,
		Facts:        &fakeFacts{byYear: byYear},
		CompositeSvc: composite,
		GapSvc:       gaps,
		Locker:       lock.NewLocalLocker(),
		Config:       cfg,
	})
	require.NoError(t, err)
	return fixture{sched: sched, clock: clk, composite: composite, gaps: gaps}
}

func ids(values ...int64) []snowflake.ID {
	out := make([]snowflake.ID, 0, len(values))
	for _, v := range values {
		out = append(out, snowflake.ID(v))
	}
	return out
}

func asInts(batches [][]snowflake.ID) [][]int64 {
	out := make([][]int64, 0, len(batches))
	for _, batch := range batches {
		row := make([]int64, 0, len(batch))
		for _, id := range batch {
			row = append(row, int64(id))
		}
		out = append(out, row)
	}
	return out
}

func TestTargetYearFollowsTimeline(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		cfg  Config
		want int
	}{
		{"performance_period", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Config{}, 2024},
		{"submission_window_scores_previous_year", time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC), Config{}, 2024},
		{"after_submission_window", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), Config{}, 2025},
		{"pinned_year", time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC), Config{PerformanceYear: 2023}, 2023},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, tc.now, tc.cfg, nil)
			assert.Equal(t, tc.want, f.sched.TargetYear())
		})
	}
}

func TestRunOnceRecomputesInBatchesThenRefreshesGaps(t *testing.T) {
	f := newFixture(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), Config{BatchSize: 2},
		map[int][]snowflake.ID{2024: ids(11, 12, 13), 2025: ids(99)})

	require.NoError(t, f.sched.RunOnce(context.Background()))

	assert.Equal(t, [][]int64{{11, 12}, {13}}, asInts(f.composite.batches))
	assert.Equal(t, []int{2024, 2024}, f.composite.years)
	require.Len(t, f.composite.runIDs, 2)
	assert.NotEmpty(t, f.composite.runIDs[0])
	assert.Equal(t, f.composite.runIDs[0], f.composite.runIDs[1])
	assert.Equal(t, ids(11, 12, 13), f.gaps.analyzed)
}

func TestRunOnceAcrossYearBoundary(t *testing.T) {
	f := newFixture(t, time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC), Config{},
		map[int][]snowflake.ID{2024: ids(1), 2025: ids(2)})

	require.NoError(t, f.sched.RunOnce(context.Background()))
	f.clock.Advance(2 * time.Hour)
	require.NoError(t, f.sched.RunOnce(context.Background()))
	f.clock.Set(time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, f.sched.RunOnce(context.Background()))

	assert.Equal(t, []int{2024, 2024, 2025}, f.composite.years)
	assert.Equal(t, ids(1, 1, 2), f.gaps.analyzed)
}

func TestRunOnceReportsFailuresButFinishesOtherJobs(t *testing.T) {
	f := newFixture(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Config{},
		map[int][]snowflake.ID{2024: ids(1, 2, 3)})
	f.composite.fail[2] = true

	err := f.sched.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), JobRecomputeSubmissions)
	assert.Equal(t, ids(1, 2, 3), f.gaps.analyzed)
}

func TestRunOnceHonorsEnabledJobs(t *testing.T) {
	f := newFixture(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Config{EnabledJobs: []string{" Refresh_Gaps "}},
		map[int][]snowflake.ID{2024: ids(5)})

	require.NoError(t, f.sched.RunOnce(context.Background()))
	assert.Empty(t, f.composite.batches)
	assert.Equal(t, ids(5), f.gaps.analyzed)
}

func TestNewRejectsMissingDependencies(t *testing.T) {
	_, err := New(Params{Log: zap.NewNop()})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
