package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/meritscore/internal/gap/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) DeleteByProviderYear(ctx context.Context, db *gorm.DB, providerID snowflake.ID, year int) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM data_gaps WHERE provider_id = ? AND performance_year = ?`,
		providerID, year,
	).Error
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, gaps []domain.DataGap) error {
	if len(gaps) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(gaps, 100).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, providerID snowflake.ID, year int) ([]domain.DataGap, error) {
	var gaps []domain.DataGap
	err := db.WithContext(ctx).
		Where("provider_id = ? AND performance_year = ?", providerID, year).
		Find(&gaps).Error
	if err != nil {
		return nil, err
	}
	domain.Sort(gaps)
	return gaps, nil
}
