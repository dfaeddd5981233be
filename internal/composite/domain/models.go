package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Submission is the latest composite computation for a provider-year.
type Submission struct {
	ID                   snowflake.ID      `gorm:"primaryKey" json:"id"`
	ProviderID           snowflake.ID      `gorm:"not null;uniqueIndex:ux_submission_provider_year" json:"provider_id"`
	PerformanceYear      int               `gorm:"not null;uniqueIndex:ux_submission_provider_year;index" json:"performance_year"`
	QualityScore         float64           `gorm:"not null" json:"quality_score"`
	PIScore              float64           `gorm:"not null" json:"pi_score"`
	IAScore              float64           `gorm:"not null" json:"ia_score"`
	CostScore            float64           `gorm:"not null" json:"cost_score"`
	QualityWeight        float64           `gorm:"not null" json:"quality_weight"`
	PIWeight             float64           `gorm:"not null" json:"pi_weight"`
	IAWeight             float64           `gorm:"not null" json:"ia_weight"`
	CostWeight           float64           `gorm:"not null" json:"cost_weight"`
	CompositeScore       float64           `gorm:"not null" json:"composite_score"`
	PaymentAdjustment    float64           `gorm:"not null" json:"payment_adjustment"`
	PerformanceThreshold float64           `gorm:"not null" json:"performance_threshold"`
	ConfigSource         string            `gorm:"type:text;not null" json:"config_source"`
	CategoryFacts        datatypes.JSONMap `json:"category_facts"`
	ComputedAt           time.Time         `gorm:"not null" json:"computed_at"`
	CreatedAt            time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time         `gorm:"not null" json:"updated_at"`
}

func (Submission) TableName() string { return "submissions" }
