package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/meritscore/pkg/db/pagination"
)

type ListSubmissionsRequest struct {
	PerformanceYear int `form:"year"`
	pagination.Pagination
}

type ListSubmissionsResponse struct {
	pagination.PageInfo
	Submissions []*Submission `json:"submissions"`
}

// BatchResult summarizes a ComputeBatch run. Failures are keyed by provider id.
type BatchResult struct {
	RunID    string            `json:"run_id"`
	Computed int               `json:"computed"`
	Failed   map[string]string `json:"failed,omitempty"`
}

type Service interface {
	Compute(ctx context.Context, providerID snowflake.ID, year int) (Submission, error)
	Get(ctx context.Context, providerID snowflake.ID, year int) (Submission, error)
	List(ctx context.Context, req ListSubmissionsRequest) (ListSubmissionsResponse, error)
	ComputeBatch(ctx context.Context, year int, providerIDs []snowflake.ID) (BatchResult, error)
}

var (
	ErrInvalidProvider = errors.New("invalid_provider")
	ErrInvalidYear     = errors.New("invalid_performance_year")
	ErrNotFound        = errors.New("submission_not_found")
)
