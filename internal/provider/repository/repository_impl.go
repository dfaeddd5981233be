package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/meritscore/internal/provider/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, provider *domain.Provider) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"npi", "name", "specialty_code", "specialty_name", "updated_at"}),
	}).Create(provider).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Provider, error) {
	var provider domain.Provider
	err := db.WithContext(ctx).Raw(
		`SELECT id, npi, name, specialty_code, specialty_name, created_at, updated_at
		 FROM providers WHERE id = ?`,
		id,
	).Scan(&provider).Error
	if err != nil {
		return nil, err
	}
	if provider.ID == 0 {
		return nil, nil
	}
	return &provider, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, afterID int64, limit int) ([]*domain.Provider, error) {
	var providers []*domain.Provider
	stmt := db.WithContext(ctx).Model(&domain.Provider{})
	if afterID > 0 {
		stmt = stmt.Where("id > ?", afterID)
	}
	err := stmt.Order("id asc").Limit(limit + 1).Find(&providers).Error
	if err != nil {
		return nil, err
	}
	return providers, nil
}
