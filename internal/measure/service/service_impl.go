package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/meritscore/internal/audit/domain"
	"github.com/smallbiznis/meritscore/internal/clock"
	"github.com/smallbiznis/meritscore/internal/measure/domain"
	programdomain "github.com/smallbiznis/meritscore/internal/programconfig/domain"
	providerdomain "github.com/smallbiznis/meritscore/internal/provider/domain"
	pkgrepo "github.com/smallbiznis/meritscore/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Measures   pkgrepo.Repository[domain.QualityMeasure]
	PIMeasures pkgrepo.Repository[domain.PIMeasure]
	Activities pkgrepo.Repository[domain.ImprovementActivity]
	Selections domain.SelectionRepository
	Providers  providerdomain.Service `optional:"true"`
	AuditSvc   auditdomain.Service    `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	measures   pkgrepo.Repository[domain.QualityMeasure]
	piMeasures pkgrepo.Repository[domain.PIMeasure]
	activities pkgrepo.Repository[domain.ImprovementActivity]
	selections domain.SelectionRepository
	providers  providerdomain.Service
	auditSvc   auditdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("measure.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		measures:   p.Measures,
		piMeasures: p.PIMeasures,
		activities: p.Activities,
		selections: p.Selections,
		providers:  p.Providers,
		auditSvc:   p.AuditSvc,
	}
}

func (s *Service) Validate(ctx context.Context, req domain.ValidateRequest) (domain.ValidationResult, error) {
	if req.PerformanceYear != 0 && !programdomain.ValidYear(req.PerformanceYear) {
		return domain.ValidationResult{}, domain.ErrInvalidYear
	}
	return s.validate(ctx, req.MeasureIDs, strings.TrimSpace(req.SpecialtyCode))
}

func (s *Service) validate(ctx context.Context, ids []snowflake.ID, specialty string) (domain.ValidationResult, error) {
	all, err := s.measures.Find(ctx, nil)
	if err != nil {
		return domain.ValidationResult{}, fmt.Errorf("load quality catalog: %w", err)
	}

	catalog := make(map[snowflake.ID]domain.QualityMeasure, len(all))
	offered := make([]domain.QualityMeasure, 0, len(all))
	for _, m := range all {
		catalog[m.ID] = *m
		if m.Active && m.AppliesTo(specialty) {
			offered = append(offered, *m)
		}
	}
	return domain.ValidateSelection(ids, catalog, offered, specialty), nil
}

func (s *Service) ReplaceSelections(ctx context.Context, req domain.ReplaceSelectionsRequest) (domain.ReplaceSelectionsResponse, error) {
	if req.ProviderID <= 0 {
		return domain.ReplaceSelectionsResponse{}, domain.ErrInvalidProvider
	}
	if !programdomain.ValidYear(req.PerformanceYear) {
		return domain.ReplaceSelectionsResponse{}, domain.ErrInvalidYear
	}

	specialty := strings.TrimSpace(req.SpecialtyCode)
	if specialty == "" && s.providers != nil {
		if provider, err := s.providers.GetByID(ctx, req.ProviderID); err == nil {
			specialty = provider.SpecialtyCode
		}
	}

	ids := make([]snowflake.ID, 0, len(req.Selections))
	for _, sel := range req.Selections {
		ids = append(ids, sel.MeasureID)
	}
	result, err := s.validate(ctx, ids, specialty)
	if err != nil {
		return domain.ReplaceSelectionsResponse{}, err
	}
	for _, sel := range req.Selections {
		if sel.ExpectedCompleteness != nil && (*sel.ExpectedCompleteness < 0 || *sel.ExpectedCompleteness > 100) {
			result.Violations = append(result.Violations, fmt.Sprintf("expected completeness for measure %s outside [0,100]", sel.MeasureID))
			result.Valid = false
		}
	}
	if !result.Valid {
		return domain.ReplaceSelectionsResponse{Validation: result}, &domain.SelectionError{Result: result}
	}

	catalog, err := s.QualityMeasuresByID(ctx, ids)
	if err != nil {
		return domain.ReplaceSelectionsResponse{}, err
	}

	now := s.clock.Now().UTC()
	var rows []*domain.ProviderMeasureSelection
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.selections.ListSelected(ctx, tx, req.ProviderID, req.PerformanceYear)
		if err != nil {
			return err
		}
		// retained measures keep their selection id
		kept := make(map[snowflake.ID]*domain.ProviderMeasureSelection, len(existing))
		for _, sel := range existing {
			kept[sel.MeasureID] = sel
		}

		rows = make([]*domain.ProviderMeasureSelection, 0, len(req.Selections))
		for _, sel := range req.Selections {
			expected := domain.DefaultExpectedCompleteness
			if sel.ExpectedCompleteness != nil {
				expected = *sel.ExpectedCompleteness
			}
			id, createdAt := s.genID.Generate(), now
			if prev, ok := kept[sel.MeasureID]; ok {
				id, createdAt = prev.ID, prev.CreatedAt
			}
			rows = append(rows, &domain.ProviderMeasureSelection{
				ID:                    id,
				ProviderID:            req.ProviderID,
				PerformanceYear:       req.PerformanceYear,
				MeasureID:             sel.MeasureID,
				MeasureCode:           catalog[sel.MeasureID].Code,
				SelectionStatus:       domain.SelectionSelected,
				SelectionRationale:    strings.TrimSpace(sel.Rationale),
				ExpectedCompleteness:  expected,
				TargetPerformanceRate: sel.TargetPerformanceRate,
				CreatedAt:             createdAt,
			})
		}
		return s.selections.Replace(ctx, tx, req.ProviderID, req.PerformanceYear, rows)
	})
	if err != nil {
		return domain.ReplaceSelectionsResponse{}, fmt.Errorf("replace selections: %w", err)
	}

	if s.auditSvc != nil {
		if err := s.auditSvc.AuditLog(ctx, "measure_selection.replaced", "provider", req.ProviderID.String(), map[string]any{
			"performance_year": req.PerformanceYear,
			"measures":         len(rows),
			"advisories":       result.Advisories,
		}); err != nil {
			s.log.Warn("audit write failed", zap.Error(err))
		}
	}

	selections, err := s.ListSelections(ctx, req.ProviderID, req.PerformanceYear)
	if err != nil {
		return domain.ReplaceSelectionsResponse{}, err
	}
	return domain.ReplaceSelectionsResponse{Validation: result, Selections: selections}, nil
}

func (s *Service) ListSelections(ctx context.Context, providerID snowflake.ID, year int) ([]domain.ProviderMeasureSelection, error) {
	items, err := s.selections.ListSelected(ctx, s.db, providerID, year)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ProviderMeasureSelection, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out, nil
}

func (s *Service) ListCatalog(ctx context.Context, specialty string) ([]domain.QualityMeasure, error) {
	items, err := s.measures.Find(ctx, &domain.QualityMeasure{Active: true}, pkgrepo.OrderBy("code asc"))
	if err != nil {
		return nil, err
	}
	specialty = strings.TrimSpace(specialty)
	out := make([]domain.QualityMeasure, 0, len(items))
	for _, item := range items {
		if item.Active && item.AppliesTo(specialty) {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *Service) QualityMeasuresByID(ctx context.Context, ids []snowflake.ID) (map[snowflake.ID]domain.QualityMeasure, error) {
	out := make(map[snowflake.ID]domain.QualityMeasure, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	items, err := s.measures.Find(ctx, nil, pkgrepo.WhereIn("id", ids))
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		out[item.ID] = *item
	}
	return out, nil
}

func (s *Service) ListPIMeasures(ctx context.Context) ([]domain.PIMeasure, error) {
	items, err := s.piMeasures.Find(ctx, nil, pkgrepo.OrderBy("code asc"))
	if err != nil {
		return nil, err
	}
	out := make([]domain.PIMeasure, 0, len(items))
	for _, item := range items {
		if item.Active {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (s *Service) ListActivities(ctx context.Context) ([]domain.ImprovementActivity, error) {
	items, err := s.activities.Find(ctx, nil, pkgrepo.OrderBy("code asc"))
	if err != nil {
		return nil, err
	}
	out := make([]domain.ImprovementActivity, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out, nil
}

// ImportCatalog upserts all entries by code in one transaction. Existing rows
// keep their ids so selections and facts stay attached.
func (s *Service) ImportCatalog(ctx context.Context, catalog domain.Catalog) (domain.ImportResult, error) {
	if err := validateCatalog(catalog); err != nil {
		return domain.ImportResult{}, err
	}

	now := s.clock.Now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		measures := s.measures.WithTrx(tx)
		for i := range catalog.QualityMeasures {
			m := catalog.QualityMeasures[i]
			m.ID = s.genID.Generate()
			m.Code = strings.TrimSpace(m.Code)
			m.Active = !m.Retired
			m.UpdatedAt = now
			if m.MinimumCases <= 0 {
				m.MinimumCases = domain.DefaultMinimumCases
			}
			if m.MeasureType == "" {
				m.MeasureType = "process"
			}
			sort.Strings(m.SpecialtyCodes)
			if err := measures.Upsert(ctx, &m, []string{"code"}, []string{
				"title", "measure_type", "collection_method", "specialty_codes",
				"is_high_priority", "is_outcome", "minimum_cases", "active", "updated_at",
			}); err != nil {
				return fmt.Errorf("quality measure %s: %w", m.Code, err)
			}
		}

		piMeasures := s.piMeasures.WithTrx(tx)
		for i := range catalog.PIMeasures {
			m := catalog.PIMeasures[i]
			m.ID = s.genID.Generate()
			m.Code = strings.TrimSpace(m.Code)
			m.Active = !m.Retired
			m.UpdatedAt = now
			if err := piMeasures.Upsert(ctx, &m, []string{"code"}, []string{
				"title", "objective", "required_measure", "max_points", "performance_threshold", "active", "updated_at",
			}); err != nil {
				return fmt.Errorf("pi measure %s: %w", m.Code, err)
			}
		}

		activities := s.activities.WithTrx(tx)
		for i := range catalog.Activities {
			a := catalog.Activities[i]
			a.ID = s.genID.Generate()
			a.Code = strings.TrimSpace(a.Code)
			a.Active = !a.Retired
			a.UpdatedAt = now
			if a.Points <= 0 {
				a.Points = a.Weight.DefaultPoints()
			}
			if err := activities.Upsert(ctx, &a, []string{"code"}, []string{
				"title", "weight", "points", "active", "updated_at",
			}); err != nil {
				return fmt.Errorf("improvement activity %s: %w", a.Code, err)
			}
		}
		return nil
	})
	if err != nil {
		return domain.ImportResult{}, err
	}

	result := domain.ImportResult{
		QualityMeasures: len(catalog.QualityMeasures),
		PIMeasures:      len(catalog.PIMeasures),
		Activities:      len(catalog.Activities),
	}
	s.log.Info("catalog imported",
		zap.Int("quality_measures", result.QualityMeasures),
		zap.Int("pi_measures", result.PIMeasures),
		zap.Int("improvement_activities", result.Activities),
	)
	if s.auditSvc != nil {
		if err := s.auditSvc.AuditLog(ctx, "catalog.imported", "catalog", "", map[string]any{
			"quality_measures":       result.QualityMeasures,
			"pi_measures":            result.PIMeasures,
			"improvement_activities": result.Activities,
		}); err != nil {
			s.log.Warn("audit write failed", zap.Error(err))
		}
	}
	return result, nil
}

func validateCatalog(catalog domain.Catalog) error {
	codes := map[string]struct{}{}
	check := func(kind, code, title string) error {
		code = strings.TrimSpace(code)
		if code == "" || strings.TrimSpace(title) == "" {
			return fmt.Errorf("%w: %s entry requires code and title", domain.ErrInvalidCatalog, kind)
		}
		key := kind + ":" + code
		if _, dup := codes[key]; dup {
			return fmt.Errorf("%w: duplicate %s code %s", domain.ErrInvalidCatalog, kind, code)
		}
		codes[key] = struct{}{}
		return nil
	}

	for _, m := range catalog.QualityMeasures {
		if err := check("quality", m.Code, m.Title); err != nil {
			return err
		}
	}
	for _, m := range catalog.PIMeasures {
		if err := check("pi", m.Code, m.Title); err != nil {
			return err
		}
		if m.MaxPoints <= 0 {
			return fmt.Errorf("%w: pi measure %s requires max_points > 0", domain.ErrInvalidCatalog, m.Code)
		}
	}
	for _, a := range catalog.Activities {
		if err := check("activity", a.Code, a.Title); err != nil {
			return err
		}
		if a.Weight != domain.WeightMedium && a.Weight != domain.WeightHigh {
			return fmt.Errorf("%w: activity %s weight must be medium or high", domain.ErrInvalidCatalog, a.Code)
		}
	}
	return nil
}
