package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	auditdomain "github.com/smallbiznis/meritscore/internal/audit/domain"
	"github.com/smallbiznis/meritscore/internal/clock"
	"github.com/smallbiznis/meritscore/internal/composite/domain"
	"github.com/smallbiznis/meritscore/internal/config"
	obscontext "github.com/smallbiznis/meritscore/internal/observability/context"
	"github.com/smallbiznis/meritscore/internal/observability/logger"
	"github.com/smallbiznis/meritscore/internal/observability/metrics"
	"github.com/smallbiznis/meritscore/internal/observability/tracing"
	programdomain "github.com/smallbiznis/meritscore/internal/programconfig/domain"
	scoringdomain "github.com/smallbiznis/meritscore/internal/scoring/domain"
	"github.com/smallbiznis/meritscore/pkg/db/pagination"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const defaultBatchConcurrency = 8

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Programs programdomain.Resolver
	Scorers  []scoringdomain.CategoryScorer `group:"category_scorers"`
	Config   config.Config                  `optional:"true"`
	AuditSvc auditdomain.Service            `optional:"true"`
	Metrics  *metrics.Metrics               `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	programs    programdomain.Resolver
	scorers     []scoringdomain.CategoryScorer
	concurrency int
	auditSvc    auditdomain.Service
	metrics     *metrics.Metrics
	tracer      trace.Tracer
}

func New(p Params) domain.Service {
	concurrency := p.Config.Scheduler.Concurrency
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("composite.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		programs:    p.Programs,
		scorers:     p.Scorers,
		concurrency: concurrency,
		auditSvc:    p.AuditSvc,
		metrics:     p.Metrics,
		tracer:      tracing.Tracer("composite"),
	}
}

func (s *Service) Compute(ctx context.Context, providerID snowflake.ID, year int) (domain.Submission, error) {
	if providerID <= 0 {
		return domain.Submission{}, domain.ErrInvalidProvider
	}
	if !programdomain.ValidYear(year) {
		return domain.Submission{}, domain.ErrInvalidYear
	}

	ctx, span := s.tracer.Start(ctx, "composite.Compute", trace.WithAttributes(
		attribute.String("provider_id", providerID.String()),
		attribute.Int("performance_year", year),
	))
	defer span.End()

	submission, err := s.compute(ctx, providerID, year)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.Submission{}, err
	}
	span.SetAttributes(
		attribute.Float64("composite_score", submission.CompositeScore),
		attribute.Float64("payment_adjustment", submission.PaymentAdjustment),
	)
	return submission, nil
}

func (s *Service) compute(ctx context.Context, providerID snowflake.ID, year int) (domain.Submission, error) {
	log := logger.WithScope(logger.WithContext(ctx, s.log), providerID.String(), year)

	resolved, err := s.programs.Resolve(ctx, year)
	if err != nil {
		return domain.Submission{}, err
	}
	rules := resolved.Rules

	results, err := s.scoreCategories(ctx, providerID, year)
	if err != nil {
		return domain.Submission{}, err
	}

	quality := results[scoringdomain.CategoryQuality]
	pi := results[scoringdomain.CategoryPI]
	ia := results[scoringdomain.CategoryIA]
	cost := results[scoringdomain.CategoryCost]

	composite := domain.CompositeScore(
		domain.Weighted{Score: quality.Score, Weight: rules.QualityWeight},
		domain.Weighted{Score: pi.Score, Weight: rules.PIWeight},
		domain.Weighted{Score: ia.Score, Weight: rules.IAWeight},
		domain.Weighted{Score: cost.Score, Weight: rules.CostWeight},
	)
	adjustment := domain.PaymentAdjustment(composite, rules)

	facts := make(map[string]any, len(results))
	for category, result := range results {
		facts[string(category)] = map[string]any{
			"score":          result.Score,
			"data_available": result.DataAvailable,
			"facts":          result.Facts,
		}
		if !result.DataAvailable {
			log.Info("category data unavailable", zap.String("category", string(category)))
			s.metrics.RecordCategoryUnavailable(ctx, string(category))
		}
	}

	now := s.clock.Now().UTC()
	submission := domain.Submission{
		ID:                   s.genID.Generate(),
		ProviderID:           providerID,
		PerformanceYear:      year,
		QualityScore:         quality.Score,
		PIScore:              pi.Score,
		IAScore:              ia.Score,
		CostScore:            cost.Score,
		QualityWeight:        rules.QualityWeight,
		PIWeight:             rules.PIWeight,
		IAWeight:             rules.IAWeight,
		CostWeight:           rules.CostWeight,
		CompositeScore:       composite,
		PaymentAdjustment:    adjustment,
		PerformanceThreshold: rules.PerformanceThreshold,
		ConfigSource:         resolved.Source,
		CategoryFacts:        facts,
		ComputedAt:           now,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.repo.Upsert(ctx, s.db, &submission); err != nil {
		return domain.Submission{}, fmt.Errorf("upsert submission: %w", err)
	}

	log.Info("submission computed",
		zap.Float64("composite_score", composite),
		zap.Float64("payment_adjustment", adjustment),
		zap.String("config_source", resolved.Source),
	)
	s.metrics.RecordSubmission(ctx, year, composite)

	if s.auditSvc != nil {
		if err := s.auditSvc.AuditLog(ctx, "submission.computed", "provider", providerID.String(), map[string]any{
			"performance_year":   strconv.Itoa(year),
			"composite_score":    composite,
			"payment_adjustment": adjustment,
			"config_source":      resolved.Source,
		}); err != nil {
			log.Warn("audit write failed", zap.Error(err))
		}
	}

	stored, err := s.repo.FindByProviderYear(ctx, s.db, providerID, year)
	if err != nil {
		return domain.Submission{}, err
	}
	if stored == nil {
		return submission, nil
	}
	return *stored, nil
}

// scoreCategories runs every scorer concurrently and waits for all of them.
// Missing data is a zero score; any other scorer error aborts the computation.
func (s *Service) scoreCategories(ctx context.Context, providerID snowflake.ID, year int) (map[scoringdomain.Category]scoringdomain.CategoryResult, error) {
	results := make(map[scoringdomain.Category]scoringdomain.CategoryResult, len(scoringdomain.Categories))
	for _, category := range scoringdomain.Categories {
		results[category] = scoringdomain.Unavailable(category)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, scorer := range s.scorers {
		g.Go(func() error {
			category := scorer.Category()
			spanCtx, span := s.tracer.Start(gctx, "scoring."+string(category))
			defer span.End()

			result, err := scorer.Score(spanCtx, providerID, year)
			if err != nil && !errors.Is(err, scoringdomain.ErrDataUnavailable) {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return fmt.Errorf("score %s: %w", category, err)
			}
			if err != nil {
				result = scoringdomain.Unavailable(category)
			}
			result.Category = category

			mu.Lock()
			results[category] = result
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) Get(ctx context.Context, providerID snowflake.ID, year int) (domain.Submission, error) {
	if providerID <= 0 {
		return domain.Submission{}, domain.ErrInvalidProvider
	}
	if !programdomain.ValidYear(year) {
		return domain.Submission{}, domain.ErrInvalidYear
	}
	submission, err := s.repo.FindByProviderYear(ctx, s.db, providerID, year)
	if err != nil {
		return domain.Submission{}, err
	}
	if submission == nil {
		return domain.Submission{}, domain.ErrNotFound
	}
	return *submission, nil
}

func (s *Service) List(ctx context.Context, req domain.ListSubmissionsRequest) (domain.ListSubmissionsResponse, error) {
	if !programdomain.ValidYear(req.PerformanceYear) {
		return domain.ListSubmissionsResponse{}, domain.ErrInvalidYear
	}
	afterID, err := req.AfterID()
	if err != nil {
		return domain.ListSubmissionsResponse{}, err
	}
	limit := req.Limit()

	items, err := s.repo.List(ctx, s.db, req.PerformanceYear, afterID, limit+1)
	if err != nil {
		return domain.ListSubmissionsResponse{}, err
	}
	page, info := pagination.BuildCursorPage(items, limit, func(item *domain.Submission) string {
		return item.ID.String()
	})
	return domain.ListSubmissionsResponse{PageInfo: info, Submissions: page}, nil
}

// ComputeBatch recomputes submissions for many providers with bounded
// parallelism. One provider failing does not stop the others; failures are
// reported per provider and joined into the returned error.
func (s *Service) ComputeBatch(ctx context.Context, year int, providerIDs []snowflake.ID) (domain.BatchResult, error) {
	if !programdomain.ValidYear(year) {
		return domain.BatchResult{}, domain.ErrInvalidYear
	}

	runID := obscontext.RunIDFromContext(ctx)
	if runID == "" {
		runID = ulid.Make().String()
		ctx = obscontext.WithRunID(ctx, runID)
	}
	log := logger.WithContext(ctx, s.log).With(zap.String("run_id", runID), zap.Int("performance_year", year))

	result := domain.BatchResult{RunID: runID}
	var (
		mu   sync.Mutex
		errs []error
	)
	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for _, providerID := range providerIDs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			_, err := s.Compute(ctx, providerID, year)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if result.Failed == nil {
					result.Failed = map[string]string{}
				}
				result.Failed[providerID.String()] = err.Error()
				errs = append(errs, fmt.Errorf("provider %s: %w", providerID, err))
				return nil
			}
			result.Computed++
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}

	log.Info("submission batch finished",
		zap.Int("requested", len(providerIDs)),
		zap.Int("computed", result.Computed),
		zap.Int("failed", len(result.Failed)),
	)
	return result, errors.Join(errs...)
}
