package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Analyze(ctx context.Context, providerID snowflake.ID, year int) ([]DataGap, error)
	List(ctx context.Context, providerID snowflake.ID, year int) ([]DataGap, error)
}

var (
	ErrInvalidProvider = errors.New("invalid_provider")
	ErrInvalidYear     = errors.New("invalid_performance_year")
)
