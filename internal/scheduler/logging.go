package scheduler

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	auditdomain "github.com/smallbiznis/meritscore/internal/audit/domain"
	obscontext "github.com/smallbiznis/meritscore/internal/observability/context"
	obslogger "github.com/smallbiznis/meritscore/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/meritscore/internal/observability/metrics"
	"go.uber.org/zap"
)

type jobRun struct {
	job             string
	runID           string
	performanceYear int
	startedAt       time.Time
	processedCount  int
	errorCount      int
}

type jobRunKey struct{}

func (r *jobRun) AddProcessed(count int) {
	if r == nil || count <= 0 {
		return
	}
	r.processedCount += count
}

func (r *jobRun) IncError() {
	if r == nil {
		return
	}
	r.errorCount++
}

// startJobRun tags ctx with a fresh run; nested calls reuse the outer run.
func (s *Scheduler) startJobRun(ctx context.Context, job string, year int) (context.Context, *jobRun) {
	if existing := jobRunFromContext(ctx); existing != nil {
		return ctx, existing
	}
	run := &jobRun{
		job:             job,
		runID:           ulid.Make().String(),
		performanceYear: year,
		startedAt:       s.clock.Now(),
	}
	ctx = context.WithValue(ctx, jobRunKey{}, run)
	ctx = obscontext.WithRunID(ctx, run.runID)
	ctx = obscontext.WithActor(ctx, auditdomain.ActorSystem, "scheduler")
	return ctx, run
}

func jobRunFromContext(ctx context.Context) *jobRun {
	if ctx == nil {
		return nil
	}
	if run, ok := ctx.Value(jobRunKey{}).(*jobRun); ok {
		return run
	}
	return nil
}

func (s *Scheduler) logger(ctx context.Context) *zap.Logger {
	return obslogger.WithContext(ctx, s.log)
}

func (s *Scheduler) logJobStart(ctx context.Context, run *jobRun) {
	if run == nil {
		return
	}
	s.logger(ctx).Info("scheduler.job.start",
		zap.String("job", run.job),
		zap.Int("performance_year", run.performanceYear),
		zap.Int("batch_size", s.cfg.BatchSize),
	)
}

func (s *Scheduler) logJobFinish(ctx context.Context, run *jobRun) {
	if run == nil {
		return
	}
	fields := []zap.Field{
		zap.String("job", run.job),
		zap.Int("performance_year", run.performanceYear),
		zap.Int64("duration_ms", s.clock.Now().Sub(run.startedAt).Milliseconds()),
		zap.Int("processed_count", run.processedCount),
		zap.Int("error_count", run.errorCount),
	}
	log := s.logger(ctx)
	if run.errorCount > 0 {
		log.Warn("scheduler.job.finish", fields...)
		return
	}
	log.Info("scheduler.job.finish", fields...)
}

func (s *Scheduler) logProviderError(ctx context.Context, run *jobRun, msg, job, providerID string, year int, err error) {
	if err == nil {
		return
	}
	run.IncError()
	log := obslogger.WithScope(s.logger(ctx), providerID, year)
	log.Error(msg,
		zap.String("job", job),
		zap.String("error_type", obsmetrics.ClassifySchedulerJobReason(err)),
		zap.Error(err),
	)
}
