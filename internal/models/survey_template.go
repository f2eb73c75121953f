package models

import (
	"time"

	"gorm.io/datatypes"
)

// SurveyTemplate is a stored survey definition, as exported by the editor.
// Respondent answers are never stored.
type SurveyTemplate struct {
	ID          string         `gorm:"primaryKey;size:36"`
	Title       string         `gorm:"size:255;not null"`
	Description string         `gorm:"type:text"`
	Definition  datatypes.JSON `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
