package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, record *EligibilityRecord) error
	FindByProviderYear(ctx context.Context, db *gorm.DB, providerID snowflake.ID, year int) (*EligibilityRecord, error)
}
