package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/meritscore/internal/clock"
	measuredomain "github.com/smallbiznis/meritscore/internal/measure/domain"
	"github.com/smallbiznis/meritscore/internal/performance/domain"
	programdomain "github.com/smallbiznis/meritscore/internal/programconfig/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Catalog measuredomain.CatalogReader
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	catalog measuredomain.CatalogReader
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("performance.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		catalog: p.Catalog,
	}
}

func validateKey(providerID snowflake.ID, year int) error {
	if providerID <= 0 {
		return domain.ErrInvalidProvider
	}
	if !programdomain.ValidYear(year) {
		return domain.ErrInvalidYear
	}
	return nil
}

func (s *Service) RecordQuality(ctx context.Context, req domain.RecordQualityRequest) (domain.QualityPerformance, error) {
	if err := validateKey(req.ProviderID, req.PerformanceYear); err != nil {
		return domain.QualityPerformance{}, err
	}
	period := strings.TrimSpace(req.ReportingPeriod)
	if period == "" {
		return domain.QualityPerformance{}, domain.ErrInvalidPeriod
	}
	if req.Numerator < 0 || req.Denominator < 0 || req.Exclusions < 0 ||
		req.Exclusions > req.Denominator || req.Numerator > req.Denominator-req.Exclusions {
		return domain.QualityPerformance{}, domain.ErrInvalidCounts
	}
	if req.CompletenessPercent < 0 || req.CompletenessPercent > 100 {
		return domain.QualityPerformance{}, domain.ErrInvalidCompleteness
	}

	selections, err := s.catalog.ListSelections(ctx, req.ProviderID, req.PerformanceYear)
	if err != nil {
		return domain.QualityPerformance{}, err
	}
	var selection *measuredomain.ProviderMeasureSelection
	for i := range selections {
		if selections[i].MeasureID == req.MeasureID {
			selection = &selections[i]
			break
		}
	}
	if selection == nil {
		return domain.QualityPerformance{}, domain.ErrMeasureNotSelected
	}

	measures, err := s.catalog.QualityMeasuresByID(ctx, []snowflake.ID{req.MeasureID})
	if err != nil {
		return domain.QualityPerformance{}, err
	}
	measure, ok := measures[req.MeasureID]
	if !ok {
		return domain.QualityPerformance{}, domain.ErrUnknownMeasure
	}

	now := s.clock.Now().UTC()
	periodEnd := req.PeriodEnd.UTC()
	if req.PeriodEnd.IsZero() {
		periodEnd = now
	}
	rate := domain.QualityRate(req.Numerator, req.Denominator, req.Exclusions)
	row := domain.QualityPerformance{
		ID:                  s.genID.Generate(),
		SelectionID:         selection.ID,
		ProviderID:          req.ProviderID,
		PerformanceYear:     req.PerformanceYear,
		MeasureID:           req.MeasureID,
		ReportingPeriod:     period,
		PeriodEnd:           periodEnd,
		Numerator:           req.Numerator,
		Denominator:         req.Denominator,
		Exclusions:          req.Exclusions,
		PerformanceRate:     rate,
		MeasureScore:        domain.MeasureScore(rate),
		CompletenessPercent: req.CompletenessPercent,
		CaseMinimumMet:      req.Denominator >= measure.MinimumCases,
		RecordedAt:          now,
	}
	if err := s.repo.UpsertQuality(ctx, s.db, &row); err != nil {
		return domain.QualityPerformance{}, fmt.Errorf("record quality: %w", err)
	}
	return row, nil
}

func (s *Service) RecordPI(ctx context.Context, req domain.RecordPIRequest) (domain.PIPerformance, error) {
	if err := validateKey(req.ProviderID, req.PerformanceYear); err != nil {
		return domain.PIPerformance{}, err
	}
	switch req.AttestationStatus {
	case domain.AttestationNotStarted, domain.AttestationInProgress, domain.AttestationAttested:
	default:
		return domain.PIPerformance{}, domain.ErrInvalidStatus
	}
	if req.Numerator < 0 || req.Denominator < 0 || req.Numerator > req.Denominator {
		return domain.PIPerformance{}, domain.ErrInvalidCounts
	}

	measure, err := s.findPIMeasure(ctx, req.MeasureCode)
	if err != nil {
		return domain.PIPerformance{}, err
	}

	rate := domain.PIRate(req.Numerator, req.Denominator)
	points := 0.0
	if req.AttestationStatus == domain.AttestationAttested {
		if req.PointsEarned != nil {
			points = *req.PointsEarned
		} else {
			points = math.Round(rate/100*measure.MaxPoints*100) / 100
		}
	}
	if points < 0 || points > measure.MaxPoints {
		return domain.PIPerformance{}, domain.ErrInvalidPoints
	}

	row := domain.PIPerformance{
		ID:                s.genID.Generate(),
		ProviderID:        req.ProviderID,
		PerformanceYear:   req.PerformanceYear,
		PIMeasureID:       measure.ID,
		MeasureCode:       measure.Code,
		AttestationStatus: req.AttestationStatus,
		Numerator:         req.Numerator,
		Denominator:       req.Denominator,
		PerformanceRate:   rate,
		PointsEarned:      points,
		UpdatedAt:         s.clock.Now().UTC(),
	}
	if err := s.repo.UpsertPI(ctx, s.db, &row); err != nil {
		return domain.PIPerformance{}, fmt.Errorf("record pi: %w", err)
	}
	return row, nil
}

func (s *Service) findPIMeasure(ctx context.Context, code string) (measuredomain.PIMeasure, error) {
	code = strings.TrimSpace(code)
	measures, err := s.catalog.ListPIMeasures(ctx)
	if err != nil {
		return measuredomain.PIMeasure{}, err
	}
	for _, m := range measures {
		if m.Code == code {
			return m, nil
		}
	}
	return measuredomain.PIMeasure{}, domain.ErrUnknownMeasure
}

func (s *Service) RecordIA(ctx context.Context, req domain.RecordIARequest) (domain.IAAttestation, error) {
	if err := validateKey(req.ProviderID, req.PerformanceYear); err != nil {
		return domain.IAAttestation{}, err
	}
	switch req.Status {
	case domain.ActivityPlanned, domain.ActivityInProgress, domain.ActivityCompleted:
	default:
		return domain.IAAttestation{}, domain.ErrInvalidStatus
	}

	code := strings.TrimSpace(req.ActivityCode)
	activities, err := s.catalog.ListActivities(ctx)
	if err != nil {
		return domain.IAAttestation{}, err
	}
	var activity *measuredomain.ImprovementActivity
	for i := range activities {
		if activities[i].Code == code {
			activity = &activities[i]
			break
		}
	}
	if activity == nil {
		return domain.IAAttestation{}, domain.ErrUnknownMeasure
	}

	now := s.clock.Now().UTC()
	row := domain.IAAttestation{
		ID:              s.genID.Generate(),
		ProviderID:      req.ProviderID,
		PerformanceYear: req.PerformanceYear,
		ActivityID:      activity.ID,
		ActivityCode:    activity.Code,
		Status:          req.Status,
		StartedAt:       utcPtr(req.StartedAt),
		CompletedAt:     utcPtr(req.CompletedAt),
		UpdatedAt:       now,
	}
	if req.Status == domain.ActivityCompleted {
		row.PointsEarned = activity.Points
		if row.CompletedAt == nil {
			row.CompletedAt = &now
		}
	}
	if err := s.repo.UpsertIA(ctx, s.db, &row); err != nil {
		return domain.IAAttestation{}, fmt.Errorf("record ia: %w", err)
	}
	return row, nil
}

func (s *Service) RecordCost(ctx context.Context, req domain.RecordCostRequest) (domain.CostPerformance, error) {
	if err := validateKey(req.ProviderID, req.PerformanceYear); err != nil {
		return domain.CostPerformance{}, err
	}
	code := strings.TrimSpace(req.MeasureCode)
	if code == "" {
		return domain.CostPerformance{}, domain.ErrUnknownMeasure
	}
	if req.PerformanceScore < 0 || req.PerformanceScore > 100 {
		return domain.CostPerformance{}, domain.ErrInvalidScore
	}
	if req.EpisodeCount < 0 {
		return domain.CostPerformance{}, domain.ErrInvalidCounts
	}

	row := domain.CostPerformance{
		ID:               s.genID.Generate(),
		ProviderID:       req.ProviderID,
		PerformanceYear:  req.PerformanceYear,
		MeasureCode:      code,
		PerformanceScore: req.PerformanceScore,
		EpisodeCount:     req.EpisodeCount,
		UpdatedAt:        s.clock.Now().UTC(),
	}
	if err := s.repo.UpsertCost(ctx, s.db, &row); err != nil {
		return domain.CostPerformance{}, fmt.Errorf("record cost: %w", err)
	}
	return row, nil
}

func (s *Service) QualityFacts(ctx context.Context, providerID snowflake.ID, year int) ([]domain.QualityFact, error) {
	selections, err := s.catalog.ListSelections(ctx, providerID, year)
	if err != nil {
		return nil, err
	}
	if len(selections) == 0 {
		return nil, nil
	}

	ids := make([]snowflake.ID, 0, len(selections))
	for _, sel := range selections {
		ids = append(ids, sel.MeasureID)
	}
	measures, err := s.catalog.QualityMeasuresByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	latest, err := s.repo.LatestQuality(ctx, s.db, providerID, year)
	if err != nil {
		return nil, err
	}
	byMeasure := make(map[snowflake.ID]*domain.QualityPerformance, len(latest))
	for _, row := range latest {
		byMeasure[row.MeasureID] = row
	}

	facts := make([]domain.QualityFact, 0, len(selections))
	for _, sel := range selections {
		facts = append(facts, domain.QualityFact{
			Selection:   sel,
			Measure:     measures[sel.MeasureID],
			Performance: byMeasure[sel.MeasureID],
		})
	}
	return facts, nil
}

func (s *Service) PIFacts(ctx context.Context, providerID snowflake.ID, year int) ([]domain.PIFact, error) {
	measures, err := s.catalog.ListPIMeasures(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListPI(ctx, s.db, providerID, year)
	if err != nil {
		return nil, err
	}
	byMeasure := make(map[snowflake.ID]*domain.PIPerformance, len(rows))
	for _, row := range rows {
		byMeasure[row.PIMeasureID] = row
	}

	facts := make([]domain.PIFact, 0, len(measures))
	for _, m := range measures {
		facts = append(facts, domain.PIFact{Measure: m, Performance: byMeasure[m.ID]})
	}
	return facts, nil
}

func (s *Service) IAFacts(ctx context.Context, providerID snowflake.ID, year int) ([]domain.IAFact, error) {
	activities, err := s.catalog.ListActivities(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[snowflake.ID]measuredomain.ImprovementActivity, len(activities))
	for _, a := range activities {
		byID[a.ID] = a
	}

	rows, err := s.repo.ListIA(ctx, s.db, providerID, year)
	if err != nil {
		return nil, err
	}
	facts := make([]domain.IAFact, 0, len(rows))
	for _, row := range rows {
		facts = append(facts, domain.IAFact{Activity: byID[row.ActivityID], Attestation: *row})
	}
	return facts, nil
}

func (s *Service) CostFacts(ctx context.Context, providerID snowflake.ID, year int) ([]domain.CostPerformance, error) {
	rows, err := s.repo.ListCost(ctx, s.db, providerID, year)
	if err != nil {
		return nil, err
	}
	out := make([]domain.CostPerformance, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out, nil
}

func (s *Service) ProvidersWithFacts(ctx context.Context, year int) ([]snowflake.ID, error) {
	if !programdomain.ValidYear(year) {
		return nil, domain.ErrInvalidYear
	}
	return s.repo.ProvidersWithFacts(ctx, s.db, year)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.UTC()
	return &v
}
