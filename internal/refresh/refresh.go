// Package refresh keeps the local snapshot of the upstream projects current
// and sends the periodic activity digest.
package refresh

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/zulandar/consuntivo/internal/db"
	"github.com/zulandar/consuntivo/internal/effort"
	"github.com/zulandar/consuntivo/internal/models"
	"gorm.io/gorm"
)

// DefaultKeep is how many snapshots are retained after each refresh.
const DefaultKeep = 50

// Fetcher retrieves the upstream projects and their raw payload.
type Fetcher interface {
	Fetch(ctx context.Context) ([]effort.Project, []byte, error)
}

// Refresher fetches the upstream export and stores it as a snapshot.
type Refresher struct {
	DB     *gorm.DB
	Source Fetcher
	// Name is recorded on each snapshot, usually the source URL.
	Name string
	// Keep bounds the stored snapshots; zero selects DefaultKeep.
	Keep int
	// OnSnapshot, if set, is called after each stored snapshot.
	OnSnapshot func(*models.ProjectSnapshot)

	now func() time.Time
}

// Refresh fetches once and stores the result. On fetch failure the previous
// snapshot stays current.
func (r *Refresher) Refresh(ctx context.Context) (*models.ProjectSnapshot, error) {
	projects, raw, err := r.Source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	now := time.Now
	if r.now != nil {
		now = r.now
	}
	snap, err := db.SaveSnapshot(r.DB, r.Name, now(), raw, len(projects))
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}

	keep := r.Keep
	if keep <= 0 {
		keep = DefaultKeep
	}
	if removed, err := db.PruneSnapshots(r.DB, keep); err != nil {
		log.Printf("refresh: prune: %v", err)
	} else if removed > 0 {
		log.Printf("refresh: pruned %d old snapshots", removed)
	}

	log.Printf("refresh: stored snapshot %d with %d projects", snap.ID, snap.ProjectCount)
	if r.OnSnapshot != nil {
		r.OnSnapshot(snap)
	}
	return snap, nil
}
