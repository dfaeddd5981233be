package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Category string

const (
	CategoryQuality Category = "quality"
	CategoryPI      Category = "pi"
	CategoryIA      Category = "ia"
)

type GapType string

const (
	GapInsufficientVolume      GapType = "insufficient_volume"
	GapIncompleteData          GapType = "incomplete_data"
	GapMissingData             GapType = "missing_data"
	GapInsufficientPerformance GapType = "insufficient_performance"
	GapInsufficientPoints      GapType = "insufficient_points"
)

type Impact string

const (
	ImpactCritical Impact = "critical"
	ImpactHigh     Impact = "high"
	ImpactMedium   Impact = "medium"
	ImpactLow      Impact = "low"
)

func (i Impact) rank() int {
	switch i {
	case ImpactCritical:
		return 0
	case ImpactHigh:
		return 1
	case ImpactMedium:
		return 2
	default:
		return 3
	}
}

// DataGap is one actionable shortfall. The full set for a provider-year is
// replaced on every analysis run.
type DataGap struct {
	ID              snowflake.ID  `gorm:"primaryKey" json:"id"`
	ProviderID      snowflake.ID  `gorm:"not null;uniqueIndex:ux_gap_provider_year_key" json:"provider_id"`
	PerformanceYear int           `gorm:"not null;uniqueIndex:ux_gap_provider_year_key" json:"performance_year"`
	GapKey          string        `gorm:"type:text;not null;uniqueIndex:ux_gap_provider_year_key" json:"gap_key"`
	Category        Category      `gorm:"type:text;not null" json:"category"`
	GapType         GapType       `gorm:"type:text;not null" json:"gap_type"`
	MeasureID       *snowflake.ID `json:"measure_id,omitempty"`
	MeasureCode     string        `gorm:"type:text" json:"measure_code,omitempty"`
	Description     string        `gorm:"type:text;not null" json:"description"`
	ImpactLevel     Impact        `gorm:"type:text;not null" json:"impact_level"`
	Remediation     string        `gorm:"type:text;not null" json:"remediation"`
	DueDate         time.Time     `gorm:"not null" json:"due_date"`
	CreatedAt       time.Time     `gorm:"not null" json:"created_at"`
}

func (DataGap) TableName() string { return "data_gaps" }
