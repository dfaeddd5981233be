package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	measuredomain "github.com/smallbiznis/meritscore/internal/measure/domain"
)

// QualityPerformance is one reporting period of a selected quality measure.
type QualityPerformance struct {
	ID                  snowflake.ID `gorm:"primaryKey" json:"id"`
	SelectionID         snowflake.ID `gorm:"not null;uniqueIndex:ux_quality_perf_selection_period" json:"selection_id"`
	ProviderID          snowflake.ID `gorm:"not null;index:ix_quality_perf_provider_year" json:"provider_id"`
	PerformanceYear     int          `gorm:"not null;index:ix_quality_perf_provider_year" json:"performance_year"`
	MeasureID           snowflake.ID `gorm:"not null" json:"measure_id"`
	ReportingPeriod     string       `gorm:"type:text;not null;uniqueIndex:ux_quality_perf_selection_period" json:"reporting_period"`
	PeriodEnd           time.Time    `gorm:"not null" json:"period_end"`
	Numerator           int64        `gorm:"not null" json:"numerator"`
	Denominator         int64        `gorm:"not null" json:"denominator"`
	Exclusions          int64        `gorm:"not null" json:"exclusions"`
	PerformanceRate     float64      `gorm:"not null" json:"performance_rate"`
	MeasureScore        float64      `gorm:"not null" json:"measure_score"`
	CompletenessPercent float64      `gorm:"not null" json:"completeness_percent"`
	CaseMinimumMet      bool         `gorm:"not null" json:"case_minimum_met"`
	RecordedAt          time.Time    `gorm:"not null" json:"recorded_at"`
}

func (QualityPerformance) TableName() string { return "quality_performances" }

type AttestationStatus string

const (
	AttestationNotStarted AttestationStatus = "not_started"
	AttestationInProgress AttestationStatus = "in_progress"
	AttestationAttested   AttestationStatus = "attested"
)

type PIPerformance struct {
	ID                snowflake.ID      `gorm:"primaryKey" json:"id"`
	ProviderID        snowflake.ID      `gorm:"not null;uniqueIndex:ux_pi_perf_provider_year_measure" json:"provider_id"`
	PerformanceYear   int               `gorm:"not null;uniqueIndex:ux_pi_perf_provider_year_measure" json:"performance_year"`
	PIMeasureID       snowflake.ID      `gorm:"not null;uniqueIndex:ux_pi_perf_provider_year_measure" json:"pi_measure_id"`
	MeasureCode       string            `gorm:"type:text;not null" json:"measure_code"`
	AttestationStatus AttestationStatus `gorm:"type:text;not null" json:"attestation_status"`
	Numerator         int64             `gorm:"not null" json:"numerator"`
	Denominator       int64             `gorm:"not null" json:"denominator"`
	PerformanceRate   float64           `gorm:"not null" json:"performance_rate"`
	PointsEarned      float64           `gorm:"not null" json:"points_earned"`
	UpdatedAt         time.Time         `gorm:"not null" json:"updated_at"`
}

func (PIPerformance) TableName() string { return "pi_performances" }

type ActivityStatus string

const (
	ActivityPlanned    ActivityStatus = "planned"
	ActivityInProgress ActivityStatus = "in_progress"
	ActivityCompleted  ActivityStatus = "completed"
)

type IAAttestation struct {
	ID              snowflake.ID   `gorm:"primaryKey" json:"id"`
	ProviderID      snowflake.ID   `gorm:"not null;uniqueIndex:ux_ia_attestation_provider_year_activity" json:"provider_id"`
	PerformanceYear int            `gorm:"not null;uniqueIndex:ux_ia_attestation_provider_year_activity" json:"performance_year"`
	ActivityID      snowflake.ID   `gorm:"not null;uniqueIndex:ux_ia_attestation_provider_year_activity" json:"activity_id"`
	ActivityCode    string         `gorm:"type:text;not null" json:"activity_code"`
	Status          ActivityStatus `gorm:"type:text;not null" json:"status"`
	PointsEarned    float64        `gorm:"not null" json:"points_earned"`
	StartedAt       *time.Time     `json:"started_at,omitempty"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
}

func (IAAttestation) TableName() string { return "ia_attestations" }

// CostPerformance is supplied by claims analysis outside this service.
type CostPerformance struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	ProviderID       snowflake.ID `gorm:"not null;uniqueIndex:ux_cost_perf_provider_year_measure" json:"provider_id"`
	PerformanceYear  int          `gorm:"not null;uniqueIndex:ux_cost_perf_provider_year_measure" json:"performance_year"`
	MeasureCode      string       `gorm:"type:text;not null;uniqueIndex:ux_cost_perf_provider_year_measure" json:"measure_code"`
	PerformanceScore float64      `gorm:"not null" json:"performance_score"`
	EpisodeCount     int64        `gorm:"not null" json:"episode_count"`
	UpdatedAt        time.Time    `gorm:"not null" json:"updated_at"`
}

func (CostPerformance) TableName() string { return "cost_performances" }

// QualityFact joins a selection with its catalog entry and latest period.
type QualityFact struct {
	Selection   measuredomain.ProviderMeasureSelection
	Measure     measuredomain.QualityMeasure
	Performance *QualityPerformance
}

type PIFact struct {
	Measure     measuredomain.PIMeasure
	Performance *PIPerformance
}

type IAFact struct {
	Activity    measuredomain.ImprovementActivity
	Attestation IAAttestation
}
