package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusEligible    Status = "eligible"
	StatusExempt      Status = "exempt"
	StatusNotEligible Status = "not_eligible"
)

// EligibilityRecord is the latest determination for a provider and year,
// together with the facts and thresholds it was made from.
type EligibilityRecord struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	ProviderID      snowflake.ID `gorm:"not null;uniqueIndex:ux_eligibility_provider_year" json:"provider_id"`
	PerformanceYear int          `gorm:"not null;uniqueIndex:ux_eligibility_provider_year" json:"performance_year"`
	Status          Status       `gorm:"type:text;not null" json:"status"`
	Reason          string       `gorm:"type:text;not null;default:''" json:"reason"`
	InvalidInput    bool         `gorm:"not null;default:false" json:"invalid_input"`

	TotalPatients   int64   `gorm:"not null" json:"total_patients"`
	ProgramPatients int64   `gorm:"not null" json:"program_patients"`
	VolumePercent   float64 `gorm:"not null" json:"volume_percent"`
	PatientVolume   int64   `gorm:"not null" json:"patient_volume"`
	AllowedCharges  float64 `gorm:"not null" json:"allowed_charges"`

	VolumePercentThreshold  float64 `gorm:"not null" json:"volume_percent_threshold"`
	PatientVolumeThreshold  int64   `gorm:"not null" json:"patient_volume_threshold"`
	AllowedChargesThreshold float64 `gorm:"not null" json:"allowed_charges_threshold"`
	LowVolumePatientCeiling int64   `gorm:"not null" json:"low_volume_patient_ceiling"`
	LowVolumeChargesCeiling float64 `gorm:"not null" json:"low_volume_charges_ceiling"`
	ConfigSource            string  `gorm:"type:text;not null;default:''" json:"config_source"`

	EvaluatedAt time.Time `gorm:"not null" json:"evaluated_at"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (EligibilityRecord) TableName() string { return "eligibility_records" }

// VolumeFacts are the inputs supplied by the claims data layer.
type VolumeFacts struct {
	TotalPatients   int64   `json:"total_patients"`
	ProgramPatients int64   `json:"program_patients"`
	AllowedCharges  float64 `json:"allowed_charges"`
}
