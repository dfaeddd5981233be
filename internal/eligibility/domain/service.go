package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type EvaluateRequest struct {
	ProviderID      snowflake.ID `json:"-"`
	PerformanceYear int          `json:"-"`
	VolumeFacts
}

type Service interface {
	Evaluate(ctx context.Context, req EvaluateRequest) (EligibilityRecord, error)
	Get(ctx context.Context, providerID snowflake.ID, year int) (EligibilityRecord, error)
}

var (
	ErrInvalidProvider = errors.New("invalid_provider")
	ErrInvalidYear     = errors.New("invalid_performance_year")
	ErrNotFound        = errors.New("eligibility_not_found")
)
