package db

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zulandar/consuntivo/internal/effort"
	"github.com/zulandar/consuntivo/internal/models"
	"github.com/zulandar/consuntivo/internal/survey"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SaveSnapshot stores the raw payload of a fetch together with its project
// count.
func SaveSnapshot(db *gorm.DB, source string, fetchedAt time.Time, payload []byte, count int) (*models.ProjectSnapshot, error) {
	snap := models.ProjectSnapshot{
		Source:       source,
		FetchedAt:    fetchedAt.UTC(),
		ProjectCount: count,
		Payload:      datatypes.JSON(payload),
	}
	if err := db.Create(&snap).Error; err != nil {
		return nil, fmt.Errorf("db: save snapshot: %w", err)
	}
	return &snap, nil
}

// LatestSnapshot returns the most recent snapshot. It returns
// gorm.ErrRecordNotFound (wrapped) when none exists.
func LatestSnapshot(db *gorm.DB) (*models.ProjectSnapshot, error) {
	var snap models.ProjectSnapshot
	if err := db.Order("fetched_at DESC, id DESC").First(&snap).Error; err != nil {
		return nil, fmt.Errorf("db: latest snapshot: %w", err)
	}
	return &snap, nil
}

// LatestProjects decodes the projects of the most recent snapshot.
func LatestProjects(db *gorm.DB) ([]effort.Project, *models.ProjectSnapshot, error) {
	snap, err := LatestSnapshot(db)
	if err != nil {
		return nil, nil, err
	}
	projects, err := DecodeProjects(snap.Payload)
	if err != nil {
		return nil, snap, fmt.Errorf("db: decode snapshot %d: %w", snap.ID, err)
	}
	return projects, snap, nil
}

// DecodeProjects parses a snapshot payload. A JSON null decodes to an
// empty list.
func DecodeProjects(payload []byte) ([]effort.Project, error) {
	var projects []effort.Project
	if err := json.Unmarshal(payload, &projects); err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []effort.Project{}
	}
	return projects, nil
}

// PruneSnapshots deletes all but the keep most recent snapshots and returns
// how many rows were removed.
func PruneSnapshots(db *gorm.DB, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}
	var keepIDs []uint
	if err := db.Model(&models.ProjectSnapshot{}).
		Order("fetched_at DESC, id DESC").
		Limit(keep).
		Pluck("id", &keepIDs).Error; err != nil {
		return 0, fmt.Errorf("db: prune snapshots: %w", err)
	}
	if len(keepIDs) == 0 {
		return 0, nil
	}
	result := db.Where("id NOT IN ?", keepIDs).Delete(&models.ProjectSnapshot{})
	if result.Error != nil {
		return 0, fmt.Errorf("db: prune snapshots: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ListTemplates returns every survey template, most recently updated first.
func ListTemplates(db *gorm.DB) ([]models.SurveyTemplate, error) {
	var tpls []models.SurveyTemplate
	if err := db.Order("updated_at DESC, id").Find(&tpls).Error; err != nil {
		return nil, fmt.Errorf("db: list templates: %w", err)
	}
	return tpls, nil
}

// GetTemplate loads template id and decodes its survey.
func GetTemplate(db *gorm.DB, id string) (*models.SurveyTemplate, survey.Survey, error) {
	var tpl models.SurveyTemplate
	if err := db.First(&tpl, "id = ?", id).Error; err != nil {
		return nil, survey.Survey{}, fmt.Errorf("db: get template %s: %w", id, err)
	}
	s, err := survey.Parse(tpl.Definition)
	if err != nil {
		return &tpl, survey.Survey{}, fmt.Errorf("db: decode template %s: %w", id, err)
	}
	return &tpl, s, nil
}

// SaveTemplate stores s under id, creating the template when id is empty
// or unknown.
func SaveTemplate(db *gorm.DB, id string, s survey.Survey) (*models.SurveyTemplate, error) {
	def, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("db: marshal survey: %w", err)
	}
	if id == "" {
		id = uuid.NewString()
	}
	tpl := models.SurveyTemplate{ID: id}
	if err := db.Where(models.SurveyTemplate{ID: id}).
		Assign(map[string]interface{}{
			"title":       s.Title,
			"description": s.Description,
			"definition":  datatypes.JSON(def),
		}).
		FirstOrCreate(&tpl).Error; err != nil {
		return nil, fmt.Errorf("db: save template %s: %w", id, err)
	}
	return &tpl, nil
}

// DeleteTemplate removes template id. It returns gorm.ErrRecordNotFound
// (wrapped) when nothing was deleted.
func DeleteTemplate(db *gorm.DB, id string) error {
	result := db.Delete(&models.SurveyTemplate{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("db: delete template %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("db: delete template %s: %w", id, gorm.ErrRecordNotFound)
	}
	return nil
}
