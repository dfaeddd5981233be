package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	UpsertQuality(ctx context.Context, db *gorm.DB, row *QualityPerformance) error
	LatestQuality(ctx context.Context, db *gorm.DB, providerID snowflake.ID, year int) ([]*QualityPerformance, error)
	UpsertPI(ctx context.Context, db *gorm.DB, row *PIPerformance) error
	ListPI(ctx context.Context, db *gorm.DB, providerID snowflake.ID, year int) ([]*PIPerformance, error)
	UpsertIA(ctx context.Context, db *gorm.DB, row *IAAttestation) error
	ListIA(ctx context.Context, db *gorm.DB, providerID snowflake.ID, year int) ([]*IAAttestation, error)
	UpsertCost(ctx context.Context, db *gorm.DB, row *CostPerformance) error
	ListCost(ctx context.Context, db *gorm.DB, providerID snowflake.ID, year int) ([]*CostPerformance, error)
	ProvidersWithFacts(ctx context.Context, db *gorm.DB, year int) ([]snowflake.ID, error)
}
