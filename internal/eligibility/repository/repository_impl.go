package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/meritscore/internal/eligibility/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// Upsert keeps the original row id and created_at on conflict.
func (r *repo) Upsert(ctx context.Context, db *gorm.DB, record *domain.EligibilityRecord) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "provider_id"}, {Name: "performance_year"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "reason", "invalid_input",
			"total_patients", "program_patients", "volume_percent", "patient_volume", "allowed_charges",
			"volume_percent_threshold", "patient_volume_threshold", "allowed_charges_threshold",
			"low_volume_patient_ceiling", "low_volume_charges_ceiling", "config_source",
			"evaluated_at", "updated_at",
		}),
	}).Create(record).Error
}

func (r *repo) FindByProviderYear(ctx context.Context, db *gorm.DB, providerID snowflake.ID, year int) (*domain.EligibilityRecord, error) {
	var record domain.EligibilityRecord
	err := db.WithContext(ctx).
		Where("provider_id = ? AND performance_year = ?", providerID, year).
		Limit(1).
		Find(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}
