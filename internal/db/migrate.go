package db

import (
	"encoding/json"
	"fmt"

	"github.com/zulandar/consuntivo/internal/models"
	"github.com/zulandar/consuntivo/internal/survey"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DemoTemplateID is the fixed id of the built-in survey template.
const DemoTemplateID = "00000000-0000-4000-8000-000000000001"

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.ProjectSnapshot{},
		&models.SurveyTemplate{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// SeedSurveys inserts the built-in survey template. An existing row with
// the same id is left untouched so local edits survive re-seeding.
func SeedSurveys(db *gorm.DB) error {
	demo := survey.Demo()
	def, err := json.Marshal(demo)
	if err != nil {
		return fmt.Errorf("db: marshal demo survey: %w", err)
	}
	tpl := models.SurveyTemplate{
		ID:          DemoTemplateID,
		Title:       demo.Title,
		Description: demo.Description,
		Definition:  datatypes.JSON(def),
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&tpl)
	if result.Error != nil {
		return fmt.Errorf("db: seed survey %q: %w", demo.Title, result.Error)
	}
	return nil
}
