package domain

import (
	"slices"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const DefaultMinimumCases = 20

// QualityMeasure is a catalog entry authored by the program; scoring only reads it.
type QualityMeasure struct {
	ID               snowflake.ID                `gorm:"primaryKey" json:"id"`
	Code             string                      `gorm:"type:text;not null;uniqueIndex" json:"code" yaml:"code"`
	Title            string                      `gorm:"type:text;not null" json:"title" yaml:"title"`
	MeasureType      string                      `gorm:"type:text;not null;default:'process'" json:"measure_type" yaml:"type"`
	CollectionMethod string                      `gorm:"type:text;not null;default:''" json:"collection_method" yaml:"collection_method"`
	SpecialtyCodes   datatypes.JSONSlice[string] `json:"specialty_codes" yaml:"specialties"`
	IsHighPriority   bool                        `gorm:"not null;default:false" json:"is_high_priority" yaml:"high_priority"`
	IsOutcome        bool                        `gorm:"not null;default:false" json:"is_outcome" yaml:"outcome"`
	MinimumCases     int64                       `gorm:"not null;default:20" json:"minimum_cases" yaml:"minimum_cases"`
	Active           bool                        `gorm:"not null" json:"active" yaml:"-"`
	Retired          bool                        `gorm:"-" json:"-" yaml:"retired"`
	UpdatedAt        time.Time                   `gorm:"not null" json:"updated_at" yaml:"-"`
}

func (QualityMeasure) TableName() string { return "quality_measures" }

// AppliesTo reports whether the measure is offered for a specialty. Measures
// without specialties apply to everyone.
func (m QualityMeasure) AppliesTo(specialty string) bool {
	if specialty == "" || len(m.SpecialtyCodes) == 0 {
		return true
	}
	return slices.Contains([]string(m.SpecialtyCodes), specialty)
}

type PIMeasure struct {
	ID                   snowflake.ID `gorm:"primaryKey" json:"id"`
	Code                 string       `gorm:"type:text;not null;uniqueIndex" json:"code" yaml:"code"`
	Title                string       `gorm:"type:text;not null" json:"title" yaml:"title"`
	Objective            string       `gorm:"type:text;not null;default:''" json:"objective" yaml:"objective"`
	RequiredMeasure      bool         `gorm:"not null;default:false" json:"required_measure" yaml:"required"`
	MaxPoints            float64      `gorm:"not null" json:"max_points" yaml:"max_points"`
	PerformanceThreshold float64      `gorm:"not null;default:0" json:"performance_threshold" yaml:"performance_threshold"`
	Active               bool         `gorm:"not null" json:"active" yaml:"-"`
	Retired              bool         `gorm:"-" json:"-" yaml:"retired"`
	UpdatedAt            time.Time    `gorm:"not null" json:"updated_at" yaml:"-"`
}

func (PIMeasure) TableName() string { return "pi_measures" }

type ActivityWeight string

const (
	WeightMedium ActivityWeight = "medium"
	WeightHigh   ActivityWeight = "high"
)

type ImprovementActivity struct {
	ID        snowflake.ID   `gorm:"primaryKey" json:"id"`
	Code      string         `gorm:"type:text;not null;uniqueIndex" json:"code" yaml:"code"`
	Title     string         `gorm:"type:text;not null" json:"title" yaml:"title"`
	Weight    ActivityWeight `gorm:"type:text;not null" json:"weight" yaml:"weight"`
	Points    float64        `gorm:"not null" json:"points" yaml:"points"`
	Active    bool           `gorm:"not null" json:"active" yaml:"-"`
	Retired   bool           `gorm:"-" json:"-" yaml:"retired"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at" yaml:"-"`
}

func (ImprovementActivity) TableName() string { return "improvement_activities" }

// DefaultPoints is the credit for an activity weight when the catalog omits it.
func (w ActivityWeight) DefaultPoints() float64 {
	if w == WeightHigh {
		return 20
	}
	return 10
}

type SelectionStatus string

const (
	SelectionSelected SelectionStatus = "selected"
	SelectionRemoved  SelectionStatus = "removed"
)

const DefaultExpectedCompleteness = 70.0

type ProviderMeasureSelection struct {
	ID                    snowflake.ID    `gorm:"primaryKey" json:"id"`
	ProviderID            snowflake.ID    `gorm:"not null;uniqueIndex:ux_selection_provider_year_measure" json:"provider_id"`
	PerformanceYear       int             `gorm:"not null;uniqueIndex:ux_selection_provider_year_measure" json:"performance_year"`
	MeasureID             snowflake.ID    `gorm:"not null;uniqueIndex:ux_selection_provider_year_measure" json:"measure_id"`
	MeasureCode           string          `gorm:"type:text;not null" json:"measure_code"`
	SelectionStatus       SelectionStatus `gorm:"type:text;not null" json:"selection_status"`
	SelectionRationale    string          `gorm:"type:text;not null;default:''" json:"selection_rationale"`
	ExpectedCompleteness  float64         `gorm:"not null;default:70" json:"expected_completeness"`
	TargetPerformanceRate *float64        `json:"target_performance_rate,omitempty"`
	CreatedAt             time.Time       `gorm:"not null" json:"created_at"`
}

func (ProviderMeasureSelection) TableName() string { return "provider_measure_selections" }

// Catalog is the importable bundle of all three program catalogs.
type Catalog struct {
	QualityMeasures []QualityMeasure      `yaml:"quality_measures"`
	PIMeasures      []PIMeasure           `yaml:"pi_measures"`
	Activities      []ImprovementActivity `yaml:"improvement_activities"`
}

type ImportResult struct {
	QualityMeasures int `json:"quality_measures"`
	PIMeasures      int `json:"pi_measures"`
	Activities      int `json:"improvement_activities"`
}
