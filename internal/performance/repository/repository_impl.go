package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/meritscore/internal/performance/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func onConflict(columns []string, updates []string) clause.OnConflict {
	cols := make([]clause.Column, 0, len(columns))
	for _, c := range columns {
		cols = append(cols, clause.Column{Name: c})
	}
	return clause.OnConflict{Columns: cols, DoUpdates: clause.AssignmentColumns(updates)}
}

func (r *repo) UpsertQuality(ctx context.Context, db *gorm.DB, row *domain.QualityPerformance) error {
	return db.WithContext(ctx).Clauses(onConflict(
		[]string{"selection_id", "reporting_period"},
		[]string{"period_end", "numerator", "denominator", "exclusions", "performance_rate",
			"measure_score", "completeness_percent", "case_minimum_met", "recorded_at"},
	)).Create(row).Error
}

// LatestQuality returns the most recent period per measure.
func (r *repo) LatestQuality(ctx context.Context, db *gorm.DB, providerID snowflake.ID, year int) ([]*domain.QualityPerformance, error) {
	var rows []*domain.QualityPerformance
	err := db.WithContext(ctx).Raw(
		`SELECT qp.* FROM quality_performances qp
		 WHERE qp.provider_id = ? AND qp.performance_year = ?
		   AND NOT EXISTS (
		     SELECT 1 FROM quality_performances n
		     WHERE n.provider_id = qp.provider_id
		       AND n.performance_year = qp.performance_year
		       AND n.measure_id = qp.measure_id
		       AND (n.period_end > qp.period_end OR (n.period_end = qp.period_end AND n.id > qp.id))
		   )
		 ORDER BY qp.measure_id`,
		providerID,
		year,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) UpsertPI(ctx context.Context, db *gorm.DB, row *domain.PIPerformance) error {
	return db.WithContext(ctx).Clauses(onConflict(
		[]string{"provider_id", "performance_year", "pi_measure_id"},
		[]string{"measure_code", "attestation_status", "numerator", "denominator",
			"performance_rate", "points_earned", "updated_at"},
	)).Create(row).Error
}

func (r *repo) ListPI(ctx context.Context, db *gorm.DB, providerID snowflake.ID, year int) ([]*domain.PIPerformance, error) {
	var rows []*domain.PIPerformance
	err := db.WithContext(ctx).
		Where("provider_id = ? AND performance_year = ?", providerID, year).
		Order("measure_code asc").
		Find(&rows).Error
	return rows, err
}

func (r *repo) UpsertIA(ctx context.Context, db *gorm.DB, row *domain.IAAttestation) error {
	return db.WithContext(ctx).Clauses(onConflict(
		[]string{"provider_id", "performance_year", "activity_id"},
		[]string{"activity_code", "status", "points_earned", "started_at", "completed_at", "updated_at"},
	)).Create(row).Error
}

func (r *repo) ListIA(ctx context.Context, db *gorm.DB, providerID snowflake.ID, year int) ([]*domain.IAAttestation, error) {
	var rows []*domain.IAAttestation
	err := db.WithContext(ctx).
		Where("provider_id = ? AND performance_year = ?", providerID, year).
		Order("activity_code asc").
		Find(&rows).Error
	return rows, err
}

func (r *repo) UpsertCost(ctx context.Context, db *gorm.DB, row *domain.CostPerformance) error {
	return db.WithContext(ctx).Clauses(onConflict(
		[]string{"provider_id", "performance_year", "measure_code"},
		[]string{"performance_score", "episode_count", "updated_at"},
	)).Create(row).Error
}

func (r *repo) ListCost(ctx context.Context, db *gorm.DB, providerID snowflake.ID, year int) ([]*domain.CostPerformance, error) {
	var rows []*domain.CostPerformance
	err := db.WithContext(ctx).
		Where("provider_id = ? AND performance_year = ?", providerID, year).
		Order("measure_code asc").
		Find(&rows).Error
	return rows, err
}

func (r *repo) ProvidersWithFacts(ctx context.Context, db *gorm.DB, year int) ([]snowflake.ID, error) {
	var ids []int64
	err := db.WithContext(ctx).Raw(
		`SELECT provider_id FROM provider_measure_selections WHERE performance_year = ?
		 UNION SELECT provider_id FROM pi_performances WHERE performance_year = ?
		 UNION SELECT provider_id FROM ia_attestations WHERE performance_year = ?
		 UNION SELECT provider_id FROM cost_performances WHERE performance_year = ?
		 ORDER BY provider_id`,
		year, year, year, year,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	out := make([]snowflake.ID, 0, len(ids))
	for _, id := range ids {
		out = append(out, snowflake.ID(id))
	}
	return out, nil
}
