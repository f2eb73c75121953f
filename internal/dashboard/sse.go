package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/consuntivo/internal/db"
	"gorm.io/gorm"
)

// Poll and heartbeat intervals of the event stream.
var (
	pollInterval      = 3 * time.Second
	heartbeatInterval = 15 * time.Second
)

// snapshotEvent announces a newly stored snapshot.
type snapshotEvent struct {
	ID           uint      `json:"id"`
	FetchedAt    time.Time `json:"fetchedAt"`
	ProjectCount int       `json:"projectCount"`
}

// handleSSE streams a snapshot event whenever a refresh stores new data.
func handleSSE(gdb *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		// Only snapshots stored after the client connected are announced.
		var lastSeenID uint
		if gdb != nil {
			if snap, err := db.LatestSnapshot(gdb); err == nil {
				lastSeenID = snap.ID
			}
		}

		writeSSE(c.Writer, "connected", map[string]string{"type": "connected"})
		c.Writer.Flush()

		if gdb == nil {
			return
		}

		ctx := c.Request.Context()
		ticker := time.NewTicker(pollInterval)
		heartbeat := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()
		defer heartbeat.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-heartbeat.C:
				writeSSE(c.Writer, "heartbeat", map[string]string{
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				})
				c.Writer.Flush()
			case <-ticker.C:
				snap, err := db.LatestSnapshot(gdb)
				if err != nil || snap.ID == lastSeenID {
					continue
				}
				lastSeenID = snap.ID
				writeSSE(c.Writer, "snapshot", snapshotEvent{
					ID:           snap.ID,
					FetchedAt:    snap.FetchedAt,
					ProjectCount: snap.ProjectCount,
				})
				c.Writer.Flush()
			}
		}
	}
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(jsonData))
}
