package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/meritscore/internal/measure/domain"
	"gorm.io/gorm"
)

type selectionRepo struct{}

func ProvideSelections() domain.SelectionRepository {
	return &selectionRepo{}
}

// Replace must run inside the caller's transaction.
func (r *selectionRepo) Replace(ctx context.Context, tx *gorm.DB, providerID snowflake.ID, year int, selections []*domain.ProviderMeasureSelection) error {
	if err := tx.WithContext(ctx).Exec(
		`DELETE FROM provider_measure_selections WHERE provider_id = ? AND performance_year = ?`,
		providerID,
		year,
	).Error; err != nil {
		return err
	}
	if len(selections) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(selections).Error
}

func (r *selectionRepo) ListSelected(ctx context.Context, db *gorm.DB, providerID snowflake.ID, year int) ([]*domain.ProviderMeasureSelection, error) {
	var selections []*domain.ProviderMeasureSelection
	err := db.WithContext(ctx).
		Where("provider_id = ? AND performance_year = ? AND selection_status = ?", providerID, year, domain.SelectionSelected).
		Order("measure_code asc").
		Find(&selections).Error
	if err != nil {
		return nil, err
	}
	return selections, nil
}
