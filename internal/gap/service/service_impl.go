package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/meritscore/internal/audit/domain"
	"github.com/smallbiznis/meritscore/internal/clock"
	"github.com/smallbiznis/meritscore/internal/gap/domain"
	"github.com/smallbiznis/meritscore/internal/lock"
	"github.com/smallbiznis/meritscore/internal/observability/logger"
	"github.com/smallbiznis/meritscore/internal/observability/metrics"
	"github.com/smallbiznis/meritscore/internal/observability/tracing"
	perfdomain "github.com/smallbiznis/meritscore/internal/performance/domain"
	programdomain "github.com/smallbiznis/meritscore/internal/programconfig/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Facts    perfdomain.FactReader
	Locker   lock.KeyLocker
	AuditSvc auditdomain.Service `optional:"true"`
	Metrics  *metrics.Metrics    `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	facts    perfdomain.FactReader
	locker   lock.KeyLocker
	auditSvc auditdomain.Service
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("gap.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		facts:    p.Facts,
		locker:   p.Locker,
		auditSvc: p.AuditSvc,
		metrics:  p.Metrics,
		tracer:   tracing.Tracer("gap"),
	}
}

func lockKey(providerID snowflake.ID, year int) string {
	return fmt.Sprintf("gaps:%s:%d", providerID, year)
}

func (s *Service) Analyze(ctx context.Context, providerID snowflake.ID, year int) ([]domain.DataGap, error) {
	if providerID <= 0 {
		return nil, domain.ErrInvalidProvider
	}
	if !programdomain.ValidYear(year) {
		return nil, domain.ErrInvalidYear
	}

	ctx, span := s.tracer.Start(ctx, "gap.Analyze", trace.WithAttributes(
		attribute.String("provider_id", providerID.String()),
		attribute.Int("performance_year", year),
	))
	defer span.End()

	gaps, err := s.analyze(ctx, providerID, year)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("gap_count", len(gaps)))
	return gaps, nil
}

func (s *Service) analyze(ctx context.Context, providerID snowflake.ID, year int) ([]domain.DataGap, error) {
	log := logger.WithScope(logger.WithContext(ctx, s.log), providerID.String(), year)

	unlock, err := s.locker.Lock(ctx, lockKey(providerID, year))
	if err != nil {
		return nil, fmt.Errorf("lock gaps: %w", err)
	}
	defer unlock()

	facts, err := s.loadFacts(ctx, providerID, year)
	if err != nil {
		return nil, err
	}

	gaps := domain.Derive(year, facts)
	now := s.clock.Now().UTC()
	for i := range gaps {
		gaps[i].ID = s.genID.Generate()
		gaps[i].ProviderID = providerID
		gaps[i].CreatedAt = now
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.DeleteByProviderYear(ctx, tx, providerID, year); err != nil {
			return fmt.Errorf("delete gaps: %w", err)
		}
		if err := s.repo.Insert(ctx, tx, gaps); err != nil {
			return fmt.Errorf("insert gaps: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	counts := map[[2]string]int{}
	for _, g := range gaps {
		counts[[2]string{string(g.Category), string(g.ImpactLevel)}]++
	}
	for k, n := range counts {
		s.metrics.RecordGaps(ctx, k[0], k[1], n)
	}
	log.Info("gaps analyzed", zap.Int("gap_count", len(gaps)))

	if s.auditSvc != nil {
		if err := s.auditSvc.AuditLog(ctx, "gaps.analyzed", "provider", providerID.String(), map[string]any{
			"performance_year": strconv.Itoa(year),
			"gap_count":        len(gaps),
		}); err != nil {
			log.Warn("audit write failed", zap.Error(err))
		}
	}

	if gaps == nil {
		gaps = []domain.DataGap{}
	}
	return gaps, nil
}

func (s *Service) loadFacts(ctx context.Context, providerID snowflake.ID, year int) (domain.Facts, error) {
	quality, err := s.facts.QualityFacts(ctx, providerID, year)
	if err != nil {
		return domain.Facts{}, fmt.Errorf("quality facts: %w", err)
	}
	pi, err := s.facts.PIFacts(ctx, providerID, year)
	if err != nil {
		return domain.Facts{}, fmt.Errorf("pi facts: %w", err)
	}
	ia, err := s.facts.IAFacts(ctx, providerID, year)
	if err != nil {
		return domain.Facts{}, fmt.Errorf("ia facts: %w", err)
	}
	return domain.Facts{Quality: quality, PI: pi, IA: ia}, nil
}

func (s *Service) List(ctx context.Context, providerID snowflake.ID, year int) ([]domain.DataGap, error) {
	if providerID <= 0 {
		return nil, domain.ErrInvalidProvider
	}
	if !programdomain.ValidYear(year) {
		return nil, domain.ErrInvalidYear
	}
	return s.repo.List(ctx, s.db, providerID, year)
}
