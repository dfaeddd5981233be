package repository

import (
	"context"

	"gorm.io/gorm"
)

// Scope narrows a query; gorm scopes compose with Where/Order/Limit.
type Scope func(*gorm.DB) *gorm.DB

// Repository is a generic gorm-backed store for simple reference tables.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, scopes ...Scope) ([]*T, error)
	FindOne(ctx context.Context, query *T, scopes ...Scope) (*T, error)
	Create(ctx context.Context, resource *T) error
	Upsert(ctx context.Context, resource *T, conflictColumns []string, updateColumns []string) error
	Count(ctx context.Context, query *T) (int64, error)
}

func OrderBy(column string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(column)
	}
}

func WhereIn(column string, values any) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" IN ?", values)
	}
}
