package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, submission *Submission) error
	FindByProviderYear(ctx context.Context, db *gorm.DB, providerID snowflake.ID, year int) (*Submission, error)
	List(ctx context.Context, db *gorm.DB, year int, afterID int64, limit int) ([]*Submission, error)
}
