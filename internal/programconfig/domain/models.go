package domain

import (
	"fmt"
	"time"

	"github.com/smallbiznis/meritscore/internal/config"
)

const (
	SourceDatabase = "database"
	SourceFile     = "file"
	SourceDefault  = "default"
)

// ProgramYearConfig overrides program rules for one performance year.
type ProgramYearConfig struct {
	PerformanceYear     int `gorm:"primaryKey;autoIncrement:false" json:"performance_year"`
	config.ProgramRules `gorm:"embedded"`
	UpdatedAt           time.Time `gorm:"not null" json:"updated_at"`
}

func (ProgramYearConfig) TableName() string { return "program_year_configs" }

// Resolved is the effective rule set for a year and where it came from.
type Resolved struct {
	Year     int                 `json:"performance_year"`
	Rules    config.ProgramRules `json:"rules"`
	Source   string              `json:"source"`
	Fallback bool                `json:"fallback"`
}

// ConfigurationError describes a missing or rejected year configuration.
// It is reported, never returned to callers of Resolve.
type ConfigurationError struct {
	Year   int
	Source string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("program config %d (%s): %s: %v", e.Year, e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("program config %d (%s): %s", e.Year, e.Source, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
