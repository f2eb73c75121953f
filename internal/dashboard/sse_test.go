package dashboard

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/consuntivo/internal/db"
)

func TestWriteSSE(t *testing.T) {
	var buf bytes.Buffer
	writeSSE(&buf, "snapshot", snapshotEvent{ID: 7, ProjectCount: 2})
	got := buf.String()
	if !strings.HasPrefix(got, "event: snapshot\ndata: {") || !strings.HasSuffix(got, "}\n\n") {
		t.Errorf("writeSSE = %q", got)
	}
	if !strings.Contains(got, `"projectCount":2`) {
		t.Errorf("writeSSE = %q, want projectCount", got)
	}
}

func TestSSE_NilDBSendsConnected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/events", handleSSE(nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "event: connected") {
		t.Errorf("body = %q, want connected event", w.Body.String())
	}
}

func TestSSE_AnnouncesNewSnapshot(t *testing.T) {
	oldPoll := pollInterval
	pollInterval = 10 * time.Millisecond
	defer func() { pollInterval = oldPoll }()

	gdb := testDB(t)
	withSnapshot(t, gdb)
	srv := httptest.NewServer(testRouter(t, gdb, nil))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /api/events: %v", err)
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	saved := false
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "event: connected" && !saved:
			if _, err := db.SaveSnapshot(gdb, "test", time.Now(), []byte(samplePayload), 3); err != nil {
				t.Fatalf("save snapshot: %v", err)
			}
			saved = true
		case line == "event: snapshot":
			if !scanner.Scan() || !strings.Contains(scanner.Text(), `"projectCount":3`) {
				t.Errorf("snapshot data = %q", scanner.Text())
			}
			return
		}
	}
	t.Fatalf("no snapshot event before timeout: %v", scanner.Err())
}
