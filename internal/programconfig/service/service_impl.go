package service

import (
	"context"
	"fmt"
	"strconv"

	auditdomain "github.com/smallbiznis/meritscore/internal/audit/domain"
	"github.com/smallbiznis/meritscore/internal/clock"
	"github.com/smallbiznis/meritscore/internal/config"
	"github.com/smallbiznis/meritscore/internal/observability/metrics"
	"github.com/smallbiznis/meritscore/internal/programconfig/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Holder   *config.ProgramHolder
	Repo     domain.Repository
	AuditSvc auditdomain.Service `optional:"true"`
	Metrics  *metrics.Metrics    `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	holder   *config.ProgramHolder
	repo     domain.Repository
	auditSvc auditdomain.Service
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("programconfig.service"),
		clock:    p.Clock,
		holder:   p.Holder,
		repo:     p.Repo,
		auditSvc: p.AuditSvc,
		metrics:  p.Metrics,
	}
}

// Resolve walks database row, program file year entry, then defaults. Rejected
// or missing entries are reported and skipped; only storage errors are returned.
func (s *Service) Resolve(ctx context.Context, year int) (domain.Resolved, error) {
	if !domain.ValidYear(year) {
		return domain.Resolved{}, domain.ErrInvalidYear
	}

	row, err := s.repo.FindByYear(ctx, s.db, year)
	if err != nil {
		return domain.Resolved{}, fmt.Errorf("load program config %d: %w", year, err)
	}
	if row != nil {
		if verr := row.ProgramRules.Validate(); verr != nil {
			s.reportFallback(ctx, &domain.ConfigurationError{
				Year: year, Source: domain.SourceDatabase, Reason: "invalid_row", Err: verr,
			})
		} else {
			return domain.Resolved{Year: year, Rules: row.ProgramRules, Source: domain.SourceDatabase}, nil
		}
	}

	if rules, ok := s.holder.ForYear(year); ok {
		if verr := rules.Validate(); verr != nil {
			s.reportFallback(ctx, &domain.ConfigurationError{
				Year: year, Source: domain.SourceFile, Reason: "invalid_file_entry", Err: verr,
			})
		} else {
			return domain.Resolved{Year: year, Rules: rules, Source: domain.SourceFile}, nil
		}
	} else if row == nil {
		s.reportFallback(ctx, &domain.ConfigurationError{
			Year: year, Source: domain.SourceDefault, Reason: "no_year_config",
		})
	}

	defaults := s.holder.Defaults()
	if verr := defaults.Validate(); verr != nil {
		s.reportFallback(ctx, &domain.ConfigurationError{
			Year: year, Source: domain.SourceDefault, Reason: "invalid_defaults", Err: verr,
		})
		defaults = config.DefaultProgramRules()
	}
	return domain.Resolved{Year: year, Rules: defaults, Source: domain.SourceDefault, Fallback: true}, nil
}

func (s *Service) Upsert(ctx context.Context, req domain.UpsertRequest) (domain.ProgramYearConfig, error) {
	if !domain.ValidYear(req.PerformanceYear) {
		return domain.ProgramYearConfig{}, domain.ErrInvalidYear
	}
	if err := req.Rules.Validate(); err != nil {
		return domain.ProgramYearConfig{}, fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
	}

	row := domain.ProgramYearConfig{
		PerformanceYear: req.PerformanceYear,
		ProgramRules:    req.Rules,
		UpdatedAt:       s.clock.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, s.db, &row); err != nil {
		return domain.ProgramYearConfig{}, err
	}

	s.audit(ctx, "program_config.updated", req.PerformanceYear, map[string]any{
		"quality_weight":        req.Rules.QualityWeight,
		"pi_weight":             req.Rules.PIWeight,
		"ia_weight":             req.Rules.IAWeight,
		"cost_weight":           req.Rules.CostWeight,
		"performance_threshold": req.Rules.PerformanceThreshold,
	})
	return row, nil
}

func (s *Service) reportFallback(ctx context.Context, cfgErr *domain.ConfigurationError) {
	s.log.Warn("program config fallback",
		zap.Int("performance_year", cfgErr.Year),
		zap.String("source", cfgErr.Source),
		zap.String("reason", cfgErr.Reason),
		zap.Error(cfgErr),
	)
	s.metrics.RecordConfigFallback(ctx, cfgErr.Reason)

	metadata := map[string]any{
		"source": cfgErr.Source,
		"reason": cfgErr.Reason,
	}
	if cfgErr.Err != nil {
		metadata["error"] = cfgErr.Err.Error()
	}
	s.audit(ctx, "program_config.fallback", cfgErr.Year, metadata)
}

func (s *Service) audit(ctx context.Context, action string, year int, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.AuditLog(ctx, action, "program_config", strconv.Itoa(year), metadata); err != nil {
		s.log.Warn("audit write failed", zap.String("action", action), zap.Error(err))
	}
}
