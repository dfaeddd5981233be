package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	DeleteByProviderYear(ctx context.Context, db *gorm.DB, providerID snowflake.ID, year int) error
	Insert(ctx context.Context, db *gorm.DB, gaps []DataGap) error
	List(ctx context.Context, db *gorm.DB, providerID snowflake.ID, year int) ([]DataGap, error)
}
