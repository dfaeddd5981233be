package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Provider is the reference copy of a clinician kept by the surrounding app.
type Provider struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	NPI           string       `gorm:"type:text;not null;default:''" json:"npi"`
	Name          string       `gorm:"type:text;not null" json:"name"`
	SpecialtyCode string       `gorm:"type:text;not null;default:'';index" json:"specialty_code"`
	SpecialtyName string       `gorm:"type:text;not null;default:''" json:"specialty_name"`
	CreatedAt     time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null" json:"updated_at"`
}

func (Provider) TableName() string { return "providers" }
