package db

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zulandar/consuntivo/internal/config"
	"github.com/zulandar/consuntivo/internal/models"
	"github.com/zulandar/consuntivo/internal/survey"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DatabaseConfig
		want string
	}{
		{
			name: "default local",
			cfg:  config.DatabaseConfig{User: "root", Host: "127.0.0.1", Port: 3306, Name: "consuntivo"},
			want: "root@tcp(127.0.0.1:3306)/consuntivo?parseTime=true",
		},
		{
			name: "password",
			cfg:  config.DatabaseConfig{User: "report", Password: "s3cret", Host: "10.0.0.5", Port: 3307, Name: "prod"},
			want: "report:s3cret@tcp(10.0.0.5:3307)/prod?parseTime=true",
		},
		{
			name: "no database",
			cfg:  config.DatabaseConfig{User: "root", Host: "db", Port: 3306},
			want: "root@tcp(db:3306)/?parseTime=true",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DSN(tt.cfg); got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDSN_IPv6Host(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{User: "root", Host: "::1", Port: 3306, Name: "x"})
	if !strings.Contains(dsn, "tcp([::1]:3306)") {
		t.Errorf("DSN = %s, want bracketed IPv6 address", dsn)
	}
}

func TestConnect_SQLite(t *testing.T) {
	db, err := Connect(config.DatabaseConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "c.db")})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	for _, m := range AllModels() {
		if !db.Migrator().HasTable(m) {
			t.Errorf("table for %T missing", m)
		}
	}
}

func TestConnect_UnknownDriver(t *testing.T) {
	_, err := Connect(config.DatabaseConfig{Driver: "oracle"})
	if err == nil || !strings.Contains(err.Error(), "oracle") {
		t.Errorf("err = %v, want unknown driver", err)
	}
}

func TestCreateDatabase_SQLiteNoop(t *testing.T) {
	if err := CreateDatabase(config.DatabaseConfig{Driver: config.DriverSQLite}); err != nil {
		t.Errorf("CreateDatabase: %v", err)
	}
}

func TestSeedSurveys_Idempotent(t *testing.T) {
	db := testDB(t)
	for i := 0; i < 2; i++ {
		if err := SeedSurveys(db); err != nil {
			t.Fatalf("SeedSurveys #%d: %v", i+1, err)
		}
	}
	var count int64
	db.Model(&models.SurveyTemplate{}).Count(&count)
	if count != 1 {
		t.Errorf("templates = %d, want 1", count)
	}
	_, s, err := GetTemplate(db, DemoTemplateID)
	if err != nil {
		t.Fatal(err)
	}
	if s.Title != "Business Happiness" || len(s.Questions) != 9 || len(s.LogicRules) != 2 {
		t.Errorf("demo = %q, %d questions, %d rules", s.Title, len(s.Questions), len(s.LogicRules))
	}
}

func TestSnapshots(t *testing.T) {
	db := testDB(t)
	if _, err := LatestSnapshot(db); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("empty LatestSnapshot err = %v", err)
	}

	base := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	payloads := []string{
		`[{"codice":"A","sottocommesse":[]}]`,
		`[{"codice":"B","sottocommesse":[]},{"codice":"C","sottocommesse":[]}]`,
		`null`,
	}
	for i, p := range payloads {
		if _, err := SaveSnapshot(db, "http://src", base.Add(time.Duration(i)*time.Hour), []byte(p), i+1); err != nil {
			t.Fatal(err)
		}
	}

	projects, snap, err := LatestProjects(db)
	if err != nil {
		t.Fatal(err)
	}
	if snap.ProjectCount != 3 || projects == nil || len(projects) != 0 {
		t.Errorf("latest = %+v, %v", snap, projects)
	}

	removed, err := PruneSnapshots(db, 2)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	var left []models.ProjectSnapshot
	db.Order("fetched_at").Find(&left)
	if len(left) != 2 || left[0].ProjectCount != 2 {
		t.Errorf("remaining = %+v", left)
	}
}

func TestDecodeProjects_Invalid(t *testing.T) {
	if _, err := DecodeProjects([]byte(`{"not":"a list"}`)); err == nil {
		t.Error("expected error for non-array payload")
	}
}

func TestTemplates_CRUD(t *testing.T) {
	db := testDB(t)
	s := survey.Survey{Title: "Prova", Description: "desc", Questions: []survey.Question{
		{ID: "a", Label: "A?", Body: survey.Text{}},
	}}
	tpl, err := SaveTemplate(db, "", s)
	if err != nil {
		t.Fatal(err)
	}
	if len(tpl.ID) != 36 {
		t.Errorf("generated id = %q", tpl.ID)
	}

	s.Title = "Prova 2"
	s.Description = ""
	if _, err := SaveTemplate(db, tpl.ID, s); err != nil {
		t.Fatal(err)
	}
	got, parsed, err := GetTemplate(db, tpl.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Prova 2" || got.Description != "" || parsed.Title != "Prova 2" || len(parsed.Questions) != 1 {
		t.Errorf("updated template = %+v / %+v", got, parsed)
	}

	list, err := ListTemplates(db)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Errorf("ListTemplates = %d, want 1", len(list))
	}

	if err := DeleteTemplate(db, tpl.ID); err != nil {
		t.Fatal(err)
	}
	if err := DeleteTemplate(db, tpl.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("second delete err = %v", err)
	}
	if _, _, err := GetTemplate(db, tpl.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("get deleted err = %v", err)
	}
}
