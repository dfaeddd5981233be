package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/meritscore/internal/config"
)

const (
	MinPerformanceYear = 2017
	MaxPerformanceYear = 2100
)

type UpsertRequest struct {
	PerformanceYear int                 `json:"-"`
	Rules           config.ProgramRules `json:"rules"`
}

// Resolver is the read side used by eligibility and composite scoring.
type Resolver interface {
	Resolve(ctx context.Context, year int) (Resolved, error)
}

type Service interface {
	Resolver
	Upsert(ctx context.Context, req UpsertRequest) (ProgramYearConfig, error)
}

var (
	ErrInvalidYear   = errors.New("invalid_performance_year")
	ErrInvalidConfig = errors.New("invalid_program_config")
)

// ValidYear reports whether year is inside the supported program range.
func ValidYear(year int) bool {
	return year >= MinPerformanceYear && year <= MaxPerformanceYear
}
