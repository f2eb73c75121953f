package dashboard

import (
	"errors"
	"strings"

	"github.com/zulandar/consuntivo/internal/db"
	"github.com/zulandar/consuntivo/internal/effort"
	"github.com/zulandar/consuntivo/internal/models"
	"gorm.io/gorm"
)

// ProjectRow is an aggregated project with its completion colour.
type ProjectRow struct {
	effort.ProjectView
	Band  effort.Band `json:"fascia"`
	Color string      `json:"colore"`
}

// latestProjects returns the projects of the newest snapshot. With no
// snapshot stored yet it returns an empty list and a nil snapshot.
func latestProjects(gdb *gorm.DB) ([]effort.Project, *models.ProjectSnapshot, error) {
	projects, snap, err := db.LatestProjects(gdb)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []effort.Project{}, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return projects, snap, nil
}

// projectRows attaches the completion band to each view.
func projectRows(views []effort.ProjectView) []ProjectRow {
	rows := make([]ProjectRow, len(views))
	for i, v := range views {
		band := effort.CompletionBand(float64(v.MeanCompletion))
		rows[i] = ProjectRow{ProjectView: v, Band: band, Color: band.Hex()}
	}
	return rows
}

// excludedFrom resolves the exclude query value. Empty keeps the configured
// list, "none" disables exclusion, anything else is a comma-separated list.
func excludedFrom(raw string, configured []string) []string {
	switch strings.TrimSpace(raw) {
	case "":
		return configured
	case "none":
		return nil
	default:
		return splitList(raw)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
