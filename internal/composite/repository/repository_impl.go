package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/meritscore/internal/composite/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, submission *domain.Submission) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "provider_id"}, {Name: "performance_year"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"quality_score", "pi_score", "ia_score", "cost_score",
			"quality_weight", "pi_weight", "ia_weight", "cost_weight",
			"composite_score", "payment_adjustment", "performance_threshold",
			"config_source", "category_facts", "computed_at", "updated_at",
		}),
	}).Create(submission).Error
}

func (r *repo) FindByProviderYear(ctx context.Context, db *gorm.DB, providerID snowflake.ID, year int) (*domain.Submission, error) {
	var submission domain.Submission
	err := db.WithContext(ctx).
		Where("provider_id = ? AND performance_year = ?", providerID, year).
		Limit(1).
		Find(&submission).Error
	if err != nil {
		return nil, err
	}
	if submission.ID == 0 {
		return nil, nil
	}
	return &submission, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, year int, afterID int64, limit int) ([]*domain.Submission, error) {
	var items []*domain.Submission
	stmt := db.WithContext(ctx).Where("performance_year = ?", year)
	if afterID > 0 {
		stmt = stmt.Where("id > ?", afterID)
	}
	if err := stmt.Order("id ASC").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
