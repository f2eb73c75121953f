package refresh

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/zulandar/consuntivo/internal/db"
	"github.com/zulandar/consuntivo/internal/effort"
	"github.com/zulandar/consuntivo/internal/models"
	"github.com/zulandar/consuntivo/internal/notify"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

type fakeSource struct {
	payload string
	err     error
	calls   int
}

func (f *fakeSource) Fetch(ctx context.Context) ([]effort.Project, []byte, error) {
	f.calls++
	if f.err != nil {
		return nil, nil, f.err
	}
	projects, err := db.DecodeProjects([]byte(f.payload))
	return projects, []byte(f.payload), err
}

const samplePayload = `[
  {"codice":"C1","descrizione":"Impianto","sottocommesse":[
    {"codice":1,"descrizione":"Posa","scheduledEffort":10,"actualEffort":15,"rapport":[
      {"tecnico":"Rossi","effort":"3,5","data":"06/03/2025","descrizione":"posa cavi"},
      {"tecnico":"Bianchi","effort":"2","data":"01/03/2025","descrizione":"sopralluogo"}
    ]},
    {"codice":2,"descrizione":"Collaudo","scheduledEffort":4,"actualEffort":2,"rapport":[
      {"tecnico":"Rossi","effort":"1","data":"15/01/2025"}
    ]}
  ]},
  {"codice":"C2","descrizione":"Manutenzione","sottocommesse":[]}
]`

func TestRefresh_StoresSnapshot(t *testing.T) {
	gdb := testDB(t)
	src := &fakeSource{payload: samplePayload}
	var notified *models.ProjectSnapshot
	r := &Refresher{
		DB: gdb, Source: src, Name: "http://src",
		OnSnapshot: func(s *models.ProjectSnapshot) { notified = s },
	}

	snap, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if snap.ProjectCount != 2 || snap.Source != "http://src" {
		t.Errorf("snapshot = %+v", snap)
	}
	if notified == nil || notified.ID != snap.ID {
		t.Error("OnSnapshot not called with the stored snapshot")
	}
	projects, _, err := db.LatestProjects(gdb)
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 2 {
		t.Errorf("latest projects = %d, want 2", len(projects))
	}
}

func TestRefresh_FetchErrorKeepsPrevious(t *testing.T) {
	gdb := testDB(t)
	src := &fakeSource{payload: samplePayload}
	r := &Refresher{DB: gdb, Source: src}
	first, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	src.err = errors.New("connection refused")
	if _, err := r.Refresh(context.Background()); err == nil || !strings.Contains(err.Error(), "refresh:") {
		t.Fatalf("err = %v, want prefixed refresh error", err)
	}
	latest, err := db.LatestSnapshot(gdb)
	if err != nil {
		t.Fatal(err)
	}
	if latest.ID != first.ID {
		t.Errorf("latest = %d, want %d", latest.ID, first.ID)
	}
}

func TestRefresh_Prunes(t *testing.T) {
	gdb := testDB(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	r := &Refresher{DB: gdb, Source: &fakeSource{payload: `[]`}, Keep: 2,
		now: func() time.Time { n++; return base.Add(time.Duration(n) * time.Minute) }}
	for i := 0; i < 4; i++ {
		if _, err := r.Refresh(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	var count int64
	gdb.Model(&models.ProjectSnapshot{}).Count(&count)
	if count != 2 {
		t.Errorf("snapshots = %d, want 2", count)
	}
}

func TestBuildDigest(t *testing.T) {
	projects, err := db.DecodeProjects([]byte(samplePayload))
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2025, 3, 7, 8, 0, 0, 0, time.UTC)
	d := BuildDigest(projects, now, 7, effort.Aggregator{})
	if d == nil {
		t.Fatal("expected a digest")
	}
	if !d.PeriodStart.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("PeriodStart = %v", d.PeriodStart)
	}
	if d.Summary.Totals.Activities != 2 || d.Summary.Totals.Hours != 5.5 {
		t.Errorf("totals = %+v", d.Summary.Totals)
	}
	if len(d.Overruns) != 1 || d.Overruns[0].SubTask != "Posa" || d.Overruns[0].Percent != 150 {
		t.Errorf("overruns = %+v", d.Overruns)
	}

	msg := d.Format()
	if !strings.Contains(msg.Title, "01/03/2025") || !strings.Contains(msg.Title, "07/03/2025") {
		t.Errorf("title = %q", msg.Title)
	}
	if !strings.Contains(msg.Text, "Rossi: 3.50 h") || !strings.Contains(msg.Text, "C1 / Posa") {
		t.Errorf("text = %q", msg.Text)
	}
	if msg.Color != colorWarning || len(msg.Fields) != 4 {
		t.Errorf("color = %q, fields = %d", msg.Color, len(msg.Fields))
	}
}

func TestBuildDigest_WindowUsesUTCDate(t *testing.T) {
	projects, err := db.DecodeProjects([]byte(samplePayload))
	if err != nil {
		t.Fatal(err)
	}
	// 01:00 on the 8th in UTC+3 is still the 7th in UTC.
	now := time.Date(2025, 3, 8, 1, 0, 0, 0, time.FixedZone("UTC+3", 3*3600))
	d := BuildDigest(projects, now, 7, effort.Aggregator{})
	if d == nil {
		t.Fatal("expected a digest")
	}
	if want := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC); !d.PeriodEnd.Equal(want) {
		t.Errorf("PeriodEnd = %v, want %v", d.PeriodEnd, want)
	}
	if want := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC); !d.PeriodStart.Equal(want) {
		t.Errorf("PeriodStart = %v, want %v", d.PeriodStart, want)
	}
}

func TestBuildDigest_Empty(t *testing.T) {
	projects := []effort.Project{{Code: "X", SubTasks: []effort.SubTask{{ScheduledEffort: 10, ActualEffort: effort.NumericEffort(2)}}}}
	if d := BuildDigest(projects, time.Now(), 7, effort.Aggregator{}); d != nil {
		t.Errorf("BuildDigest = %+v, want nil", d)
	}
}

func TestDigester_Send(t *testing.T) {
	gdb := testDB(t)
	if _, err := db.SaveSnapshot(gdb, "src", time.Now(), []byte(samplePayload), 2); err != nil {
		t.Fatal(err)
	}
	rec := &notify.Recorder{}
	d := &Digester{DB: gdb, Notifier: rec, WindowDays: 7,
		now: func() time.Time { return time.Date(2025, 3, 7, 8, 0, 0, 0, time.UTC) }}

	sent, err := d.Send(context.Background())
	if err != nil || !sent {
		t.Fatalf("Send = %v, %v", sent, err)
	}
	if len(rec.Messages()) != 1 {
		t.Errorf("messages = %d, want 1", len(rec.Messages()))
	}

	d.now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }
	gdb.Exec("DELETE FROM project_snapshots")
	db.SaveSnapshot(gdb, "src", time.Now(), []byte(`[]`), 0)
	sent, err = d.Send(context.Background())
	if err != nil || sent {
		t.Errorf("empty Send = %v, %v", sent, err)
	}
}

func TestDigester_NoSnapshot(t *testing.T) {
	d := &Digester{DB: testDB(t), Notifier: &notify.Recorder{}}
	if _, err := d.Send(context.Background()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestScheduler(t *testing.T) {
	s := NewScheduler(context.Background())
	if err := s.AddRefresh("", &Refresher{}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddRefresh("*/5 * * * *", &Refresher{}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddDigest("0 8 * * 1", &Digester{}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddDigest("@every", &Digester{}); err == nil {
		t.Error("expected error for bad spec")
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	s.Start()
	s.Stop()
}
