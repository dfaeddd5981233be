package service

import (
	"context"
	"strconv"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/meritscore/internal/audit/domain"
	"github.com/smallbiznis/meritscore/internal/clock"
	"github.com/smallbiznis/meritscore/internal/eligibility/domain"
	"github.com/smallbiznis/meritscore/internal/observability/logger"
	"github.com/smallbiznis/meritscore/internal/observability/metrics"
	programdomain "github.com/smallbiznis/meritscore/internal/programconfig/domain"
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
	Programs programdomain.Resolver
	AuditSvc auditdomain.Service `optional:"true"`
	Metrics  *metrics.Metrics    `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	programs programdomain.Resolver
	auditSvc auditdomain.Service
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("eligibility.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		programs: p.Programs,
		auditSvc: p.AuditSvc,
		metrics:  p.Metrics,
	}
}

func (s *Service) Evaluate(ctx context.Context, req domain.EvaluateRequest) (domain.EligibilityRecord, error) {
	if req.ProviderID <= 0 {
		return domain.EligibilityRecord{}, domain.ErrInvalidProvider
	}
	if !programdomain.ValidYear(req.PerformanceYear) {
		return domain.EligibilityRecord{}, domain.ErrInvalidYear
	}

	resolved, err := s.programs.Resolve(ctx, req.PerformanceYear)
	if err != nil {
		return domain.EligibilityRecord{}, err
	}
	rules := resolved.Rules
	result := domain.Determine(req.VolumeFacts, rules)

	now := s.clock.Now().UTC()
	record := domain.EligibilityRecord{
		ID:                      s.genID.Generate(),
		ProviderID:              req.ProviderID,
		PerformanceYear:         req.PerformanceYear,
		Status:                  result.Status,
		Reason:                  result.Reason,
		InvalidInput:            result.InvalidInput,
		TotalPatients:           req.TotalPatients,
		ProgramPatients:         req.ProgramPatients,
		VolumePercent:           result.VolumePercent,
		PatientVolume:           result.PatientVolume,
		AllowedCharges:          req.AllowedCharges,
		VolumePercentThreshold:  rules.VolumePercentThreshold,
		PatientVolumeThreshold:  rules.PatientVolumeThreshold,
		AllowedChargesThreshold: rules.AllowedChargesThreshold,
		LowVolumePatientCeiling: rules.LowVolumePatientCeiling,
		LowVolumeChargesCeiling: rules.LowVolumeChargesCeiling,
		ConfigSource:            resolved.Source,
		EvaluatedAt:             now,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	if err := s.repo.Upsert(ctx, s.db, &record); err != nil {
		return domain.EligibilityRecord{}, err
	}

	log := logger.WithScope(logger.WithContext(ctx, s.log), req.ProviderID.String(), req.PerformanceYear)
	log.Info("eligibility evaluated",
		zap.String("status", string(record.Status)),
		zap.Bool("invalid_input", record.InvalidInput),
		zap.Float64("volume_percent", record.VolumePercent),
	)
	s.metrics.RecordEligibility(ctx, string(record.Status))

	if s.auditSvc != nil {
		if err := s.auditSvc.AuditLog(ctx, "eligibility.evaluated", "provider", req.ProviderID.String(), map[string]any{
			"performance_year": strconv.Itoa(req.PerformanceYear),
			"status":           string(record.Status),
			"invalid_input":    record.InvalidInput,
		}); err != nil {
			log.Warn("audit write failed", zap.Error(err))
		}
	}

	stored, err := s.repo.FindByProviderYear(ctx, s.db, req.ProviderID, req.PerformanceYear)
	if err != nil {
		return domain.EligibilityRecord{}, err
	}
	if stored == nil {
		return record, nil
	}
	return *stored, nil
}

func (s *Service) Get(ctx context.Context, providerID snowflake.ID, year int) (domain.EligibilityRecord, error) {
	if providerID <= 0 {
		return domain.EligibilityRecord{}, domain.ErrInvalidProvider
	}
	if !programdomain.ValidYear(year) {
		return domain.EligibilityRecord{}, domain.ErrInvalidYear
	}
	record, err := s.repo.FindByProviderYear(ctx, s.db, providerID, year)
	if err != nil {
		return domain.EligibilityRecord{}, err
	}
	if record == nil {
		return domain.EligibilityRecord{}, domain.ErrNotFound
	}
	return *record, nil
}
