package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type RecordQualityRequest struct {
	ProviderID          snowflake.ID `json:"-"`
	PerformanceYear     int          `json:"-"`
	MeasureID           snowflake.ID `json:"measure_id"`
	ReportingPeriod     string       `json:"reporting_period"`
	PeriodEnd           time.Time    `json:"period_end"`
	Numerator           int64        `json:"numerator"`
	Denominator         int64        `json:"denominator"`
	Exclusions          int64        `json:"exclusions"`
	CompletenessPercent float64      `json:"completeness_percent"`
}

type RecordPIRequest struct {
	ProviderID        snowflake.ID      `json:"-"`
	PerformanceYear   int               `json:"-"`
	MeasureCode       string            `json:"measure_code"`
	AttestationStatus AttestationStatus `json:"attestation_status"`
	Numerator         int64             `json:"numerator"`
	Denominator       int64             `json:"denominator"`
	PointsEarned      *float64          `json:"points_earned,omitempty"`
}

type RecordIARequest struct {
	ProviderID      snowflake.ID   `json:"-"`
	PerformanceYear int            `json:"-"`
	ActivityCode    string         `json:"activity_code"`
	Status          ActivityStatus `json:"status"`
	StartedAt       *time.Time     `json:"started_at,omitempty"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
}

type RecordCostRequest struct {
	ProviderID       snowflake.ID `json:"-"`
	PerformanceYear  int          `json:"-"`
	MeasureCode      string       `json:"measure_code"`
	PerformanceScore float64      `json:"performance_score"`
	EpisodeCount     int64        `json:"episode_count"`
}

// FactReader is the read side used by scorers and gap analysis.
type FactReader interface {
	QualityFacts(ctx context.Context, providerID snowflake.ID, year int) ([]QualityFact, error)
	PIFacts(ctx context.Context, providerID snowflake.ID, year int) ([]PIFact, error)
	IAFacts(ctx context.Context, providerID snowflake.ID, year int) ([]IAFact, error)
	CostFacts(ctx context.Context, providerID snowflake.ID, year int) ([]CostPerformance, error)
	ProvidersWithFacts(ctx context.Context, year int) ([]snowflake.ID, error)
}

type Service interface {
	FactReader
	RecordQuality(ctx context.Context, req RecordQualityRequest) (QualityPerformance, error)
	RecordPI(ctx context.Context, req RecordPIRequest) (PIPerformance, error)
	RecordIA(ctx context.Context, req RecordIARequest) (IAAttestation, error)
	RecordCost(ctx context.Context, req RecordCostRequest) (CostPerformance, error)
}

var (
	ErrInvalidProvider     = errors.New("invalid_provider")
	ErrInvalidYear         = errors.New("invalid_performance_year")
	ErrInvalidCounts       = errors.New("invalid_counts")
	ErrInvalidPeriod       = errors.New("invalid_reporting_period")
	ErrInvalidCompleteness = errors.New("invalid_completeness")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidScore        = errors.New("invalid_score")
	ErrInvalidPoints       = errors.New("invalid_points")
	ErrMeasureNotSelected  = errors.New("measure_not_selected")
	ErrUnknownMeasure      = errors.New("unknown_measure")
)
