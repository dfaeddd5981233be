package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/meritscore/internal/programconfig/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByYear(ctx context.Context, db *gorm.DB, year int) (*domain.ProgramYearConfig, error) {
	var cfg domain.ProgramYearConfig
	err := db.WithContext(ctx).Where("performance_year = ?", year).Take(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, cfg *domain.ProgramYearConfig) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "performance_year"}},
		UpdateAll: true,
	}).Create(cfg).Error
}
