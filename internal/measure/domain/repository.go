package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type SelectionRepository interface {
	Replace(ctx context.Context, tx *gorm.DB, providerID snowflake.ID, year int, selections []*ProviderMeasureSelection) error
	ListSelected(ctx context.Context, db *gorm.DB, providerID snowflake.ID, year int) ([]*ProviderMeasureSelection, error)
}
