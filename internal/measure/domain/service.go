package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
)

type ValidateRequest struct {
	MeasureIDs      []snowflake.ID `json:"measure_ids"`
	PerformanceYear int            `json:"performance_year"`
	SpecialtyCode   string         `json:"specialty_code"`
}

type SelectionInput struct {
	MeasureID             snowflake.ID `json:"measure_id"`
	Rationale             string       `json:"rationale"`
	ExpectedCompleteness  *float64     `json:"expected_completeness,omitempty"`
	TargetPerformanceRate *float64     `json:"target_performance_rate,omitempty"`
}

type ReplaceSelectionsRequest struct {
	ProviderID      snowflake.ID     `json:"-"`
	PerformanceYear int              `json:"-"`
	SpecialtyCode   string           `json:"specialty_code"`
	Selections      []SelectionInput `json:"selections"`
}

type ReplaceSelectionsResponse struct {
	Validation ValidationResult           `json:"validation"`
	Selections []ProviderMeasureSelection `json:"selections"`
}

// CatalogReader is the read side shared by scorers and gap analysis.
type CatalogReader interface {
	QualityMeasuresByID(ctx context.Context, ids []snowflake.ID) (map[snowflake.ID]QualityMeasure, error)
	ListPIMeasures(ctx context.Context) ([]PIMeasure, error)
	ListActivities(ctx context.Context) ([]ImprovementActivity, error)
	ListSelections(ctx context.Context, providerID snowflake.ID, year int) ([]ProviderMeasureSelection, error)
}

type Service interface {
	CatalogReader
	Validate(ctx context.Context, req ValidateRequest) (ValidationResult, error)
	ReplaceSelections(ctx context.Context, req ReplaceSelectionsRequest) (ReplaceSelectionsResponse, error)
	ListCatalog(ctx context.Context, specialty string) ([]QualityMeasure, error)
	ImportCatalog(ctx context.Context, catalog Catalog) (ImportResult, error)
}

var (
	ErrInvalidProvider  = errors.New("invalid_provider")
	ErrInvalidYear      = errors.New("invalid_performance_year")
	ErrInvalidCatalog   = errors.New("invalid_catalog")
	ErrInvalidSelection = errors.New("invalid_selection")
)

// SelectionError carries the structured result of a rejected selection set.
type SelectionError struct {
	Result ValidationResult
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("measure selection invalid: %v", e.Result.Violations)
}

func (e *SelectionError) Unwrap() error { return ErrInvalidSelection }
