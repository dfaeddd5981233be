package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByYear(ctx context.Context, db *gorm.DB, year int) (*ProgramYearConfig, error)
	Upsert(ctx context.Context, db *gorm.DB, cfg *ProgramYearConfig) error
}
