package models

import (
	"time"

	"gorm.io/datatypes"
)

// ProjectSnapshot is one successful fetch of the upstream project export.
// The dashboard renders the newest snapshot so it keeps working while the
// source is unreachable.
type ProjectSnapshot struct {
	ID           uint           `gorm:"primaryKey;autoIncrement"`
	Source       string         `gorm:"size:255"`
	FetchedAt    time.Time      `gorm:"index"`
	ProjectCount int
	Payload      datatypes.JSON `gorm:"not null"`
}
