package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gorm.io/gorm"
)

func TestClassifySchedulerJobReason(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{name: "deadline", err: context.DeadlineExceeded, want: SchedulerJobReasonDeadlineExceeded},
		{name: "canceled", err: fmt.Errorf("wrapped: %w", context.Canceled), want: SchedulerJobReasonDeadlineExceeded},
		{name: "lock_contention", err: fmt.Errorf("gap lock: %w", ErrLockContention), want: SchedulerJobReasonLockContention},
		{name: "db_lock_timeout", err: &pgconn.PgError{Code: "55P03"}, want: SchedulerJobReasonDBLockTimeout},
		{name: "serialization_failure", err: &pgconn.PgError{Code: "40001"}, want: SchedulerJobReasonSerializationFailure},
		{name: "pg_unique", err: &pgconn.PgError{Code: "23505"}, want: SchedulerJobReasonUniqueViolation},
		{name: "gorm_unique", err: gorm.ErrDuplicatedKey, want: SchedulerJobReasonUniqueViolation},
		{name: "unknown", err: errors.New("boom"), want: SchedulerJobReasonUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifySchedulerJobReason(tc.err); got != tc.want {
				t.Fatalf("expected reason %q, got %q", tc.want, got)
			}
		})
	}
}

func TestSchedulerMetricsCountErrorsByReason(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newSchedulerMetrics(registry, Config{ServiceName: "meritscore", Environment: "test"})

	m.IncJobError("recompute_submissions", context.DeadlineExceeded)
	m.IncJobError("recompute_submissions", context.DeadlineExceeded)
	m.IncJobError("recompute_submissions", errors.New("boom"))
	m.AddBatchProcessed("recompute_submissions", "ok", 3)

	deadline := m.jobErrors.WithLabelValues("recompute_submissions", SchedulerJobReasonDeadlineExceeded)
	if got := testutil.ToFloat64(deadline); got != 2 {
		t.Fatalf("expected 2 deadline errors, got %v", got)
	}
	processed := m.batchProcessed.WithLabelValues("recompute_submissions", "ok")
	if got := testutil.ToFloat64(processed); got != 3 {
		t.Fatalf("expected 3 processed, got %v", got)
	}
}

func TestHTTPMetricsReuseRegisteredCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := newHTTPMetrics(registry, Config{})
	second := newHTTPMetrics(registry, Config{})
	if first.requests != second.requests {
		t.Fatalf("expected the already registered counter to be reused")
	}
}
