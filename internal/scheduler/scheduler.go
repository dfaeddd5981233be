package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/meritscore/internal/audit/domain"
	"github.com/smallbiznis/meritscore/internal/clock"
	compositedomain "github.com/smallbiznis/meritscore/internal/composite/domain"
	gapdomain "github.com/smallbiznis/meritscore/internal/gap/domain"
	"github.com/smallbiznis/meritscore/internal/lock"
	obscontext "github.com/smallbiznis/meritscore/internal/observability/context"
	obsmetrics "github.com/smallbiznis/meritscore/internal/observability/metrics"
	perfdomain "github.com/smallbiznis/meritscore/internal/performance/domain"
	"github.com/smallbiznis/meritscore/internal/timeline"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	JobRecomputeSubmissions = "recompute_submissions"
	JobRefreshGaps          = "refresh_gaps"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	Log          *zap.Logger
	Clock        clock.Clock
	Facts        perfdomain.FactReader
	CompositeSvc compositedomain.Service
	GapSvc       gapdomain.Service
	Locker       lock.KeyLocker
	AuditSvc     auditdomain.Service `optional:"true"`
	Config       Config              `optional:"true"`
}

type Scheduler struct {
	log          *zap.Logger
	cfg          Config
	clock        clock.Clock
	facts        perfdomain.FactReader
	compositeSvc compositedomain.Service
	gapSvc       gapdomain.Service
	locker       lock.KeyLocker
	auditSvc     auditdomain.Service
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.Facts == nil || p.CompositeSvc == nil || p.GapSvc == nil || p.Locker == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:          p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:          p.Config.withDefaults(),
		clock:        p.Clock,
		facts:        p.Facts,
		compositeSvc: p.CompositeSvc,
		gapSvc:       p.GapSvc,
		locker:       p.Locker,
		auditSvc:     p.AuditSvc,
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	year int,
	timeout time.Duration,
	fn func(ctx context.Context, year int) error,
) (err error) {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	ctx, run := s.startJobRun(ctx, name, year)
	log := s.logger(ctx).With(zap.String("job", name))
	schedMetrics := obsmetrics.Scheduler()
	schedMetrics.IncJobRun(name)

	unlock, held, err := s.acquireJobLock(ctx, name, year)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if !held {
		log.Info("job skipped, another replica holds the lock", zap.Int("performance_year", year))
		return nil
	}
	defer unlock()

	s.logJobStart(ctx, run)
	err = s.safeRun(ctx, name, year, fn)
	schedMetrics.ObserveJobDuration(name, s.clock.Now().Sub(start))
	if err != nil && run.errorCount == 0 {
		run.IncError()
	}
	s.logJobFinish(ctx, run)
	if err == nil {
		return nil
	}

	// deadline is a soft timeout; the next tick picks up the remaining work
	isTimeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
	if isTimeout {
		schedMetrics.IncJobTimeout(name)
	}
	schedMetrics.IncJobError(name, err)
	if isTimeout {
		log.Warn("job timed out",
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}

// RunOnce recomputes submissions, then refreshes gaps, for the target year.
func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error
	year := s.TargetYear()

	jobs := []struct {
		Name string
		Run  func(context.Context, int) error
	}{
		{JobRecomputeSubmissions, s.RecomputeSubmissionsJob},
		{JobRefreshGaps, s.RefreshGapsJob},
	}

	for _, job := range jobs {
		if !s.isJobEnabled(job.Name) {
			continue
		}
		err = errors.Join(err, s.runJob(parent, job.Name, year, s.cfg.JobTimeout, job.Run))
	}

	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()
	nextRun := s.clock.Now().Add(s.cfg.RunInterval)
	schedMetrics := obsmetrics.Scheduler()

	for {
		runLag := s.clock.Now().Sub(nextRun)
		if runLag > 0 {
			schedMetrics.ObserveRunLoopLag(runLag)
		}
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}
		nextRun = nextRun.Add(s.cfg.RunInterval)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// TargetYear is the configured year, or the previous year while its
// submission window is open, or the current year.
func (s *Scheduler) TargetYear() int {
	if s.cfg.PerformanceYear > 0 {
		return s.cfg.PerformanceYear
	}
	now := s.clock.Now().UTC()
	previous := now.Year() - 1
	if timeline.GetPhase(previous, now).Phase == timeline.PhaseSubmission {
		return previous
	}
	return now.Year()
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	// empty list enables every job
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(strings.TrimSpace(enabled), jobName) {
			return true
		}
	}
	return false
}

func (s *Scheduler) RecomputeSubmissionsJob(ctx context.Context, year int) error {
	run := jobRunFromContext(ctx)
	providers, err := s.facts.ProvidersWithFacts(ctx, year)
	if err != nil {
		return err
	}

	schedMetrics := obsmetrics.Scheduler()
	var (
		jobErr           error
		computed, failed int
	)
	for _, batch := range chunk(providers, s.cfg.BatchSize) {
		if err := ctx.Err(); err != nil {
			return errors.Join(jobErr, err)
		}
		result, err := s.compositeSvc.ComputeBatch(ctx, year, batch)
		computed += result.Computed
		failed += len(result.Failed)
		run.AddProcessed(result.Computed)
		schedMetrics.AddBatchProcessed(JobRecomputeSubmissions, "ok", result.Computed)
		schedMetrics.AddBatchProcessed(JobRecomputeSubmissions, "failed", len(result.Failed))
		for providerID, reason := range result.Failed {
			s.logProviderError(ctx, run, "scheduler.submission.failed", JobRecomputeSubmissions, providerID, year, errors.New(reason))
		}
		if err != nil {
			jobErr = errors.Join(jobErr, err)
		}
	}

	s.audit(ctx, "scheduler.submissions_recomputed", year, map[string]any{
		"run_id":    obscontext.RunIDFromContext(ctx),
		"providers": len(providers),
		"computed":  computed,
		"failed":    failed,
	})
	return jobErr
}

func (s *Scheduler) RefreshGapsJob(ctx context.Context, year int) error {
	run := jobRunFromContext(ctx)
	providers, err := s.facts.ProvidersWithFacts(ctx, year)
	if err != nil {
		return err
	}

	schedMetrics := obsmetrics.Scheduler()
	var jobErr error
	for _, providerID := range providers {
		if err := ctx.Err(); err != nil {
			return errors.Join(jobErr, err)
		}
		if _, err := s.gapSvc.Analyze(ctx, providerID, year); err != nil {
			s.logProviderError(ctx, run, "scheduler.gaps.failed", JobRefreshGaps, providerID.String(), year, err)
			schedMetrics.AddBatchProcessed(JobRefreshGaps, "failed", 1)
			jobErr = errors.Join(jobErr, fmt.Errorf("provider %s: %w", providerID, err))
			continue
		}
		run.AddProcessed(1)
		schedMetrics.AddBatchProcessed(JobRefreshGaps, "ok", 1)
	}
	return jobErr
}

func (s *Scheduler) audit(ctx context.Context, action string, year int, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	metadata["performance_year"] = year
	if err := s.auditSvc.AuditLog(ctx, action, "performance_year", strconv.Itoa(year), metadata); err != nil {
		s.logger(ctx).Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
	}
}

func chunk(ids []snowflake.ID, size int) [][]snowflake.ID {
	if size <= 0 {
		size = len(ids)
	}
	var out [][]snowflake.ID
	for start := 0; start < len(ids); start += size {
		out = append(out, ids[start:min(start+size, len(ids))])
	}
	return out
}
