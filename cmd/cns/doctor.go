package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/zulandar/consuntivo/internal/config"
	"github.com/zulandar/consuntivo/internal/db"
	"github.com/zulandar/consuntivo/internal/models"
	"github.com/zulandar/consuntivo/internal/source"
	"gorm.io/gorm"
)

func newDoctorCmd() *cobra.Command {
	var (
		configPath string
		offline    bool
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, database and upstream source",
		Long:  "Runs diagnostic checks on Consuntivo: config, database, schema, latest snapshot, upstream source, survey invites and notification channels.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, configPath, offline)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().BoolVar(&offline, "offline", false, "skip the request to the upstream source")
	return cmd
}

type checkResult struct {
	name   string
	status string // "PASS", "FAIL", "WARN"
	detail string
}

func runDoctor(cmd *cobra.Command, configPath string, offline bool) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Consuntivo Doctor")
	fmt.Fprintln(out, "=================")

	var results []checkResult

	cfg, cfgResult := checkConfig(configPath)
	results = append(results, cfgResult)

	if cfg == nil {
		for _, name := range []string{"Database", "Schema", "Snapshot", "Source"} {
			results = append(results, checkResult{name, "FAIL", "skipped (no config)"})
		}
	} else {
		gormDB, dbResult := checkDatabase(cfg.Database)
		results = append(results, dbResult)
		if gormDB != nil {
			results = append(results, checkSchema(gormDB), checkSnapshot(gormDB))
		} else {
			results = append(results,
				checkResult{"Schema", "FAIL", "skipped (no database)"},
				checkResult{"Snapshot", "FAIL", "skipped (no database)"})
		}
		if offline {
			results = append(results, checkResult{"Source", "WARN", "skipped (--offline)"})
		} else {
			results = append(results, checkSource(cmd.Context(), cfg.Source))
		}
		results = append(results, checkInvites(cfg.Survey))
		results = append(results,
			checkChannel("Slack", cfg.Notify.Slack),
			checkChannel("Discord", cfg.Notify.Discord))
	}

	passed, failed, warned := 0, 0, 0
	for _, r := range results {
		printCheckResult(out, r)
		switch r.status {
		case "PASS":
			passed++
		case "FAIL":
			failed++
		case "WARN":
			warned++
		}
	}

	fmt.Fprintf(out, "\n%d passed, %d failed, %d warning\n", passed, failed, warned)

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

func printCheckResult(out io.Writer, r checkResult) {
	fmt.Fprintf(out, "[%s] %s: %s\n", r.status, r.name, r.detail)
}

func checkConfig(path string) (*config.Config, checkResult) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, checkResult{"Config file", "PASS", path}
	}
	if path == config.DefaultPath && errors.Is(err, os.ErrNotExist) {
		return config.Default(), checkResult{"Config file", "WARN", path + " not found, using defaults"}
	}
	return nil, checkResult{"Config file", "FAIL", fmt.Sprintf("%s: %v", path, err)}
}

func checkDatabase(cfg config.DatabaseConfig) (*gorm.DB, checkResult) {
	where := cfg.Path
	if cfg.Driver == config.DriverMySQL {
		where = fmt.Sprintf("%s on %s:%d", cfg.Name, cfg.Host, cfg.Port)
	}
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return nil, checkResult{"Database", "FAIL", fmt.Sprintf("%s: %v", where, err)}
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, checkResult{"Database", "FAIL", fmt.Sprintf("get sql.DB: %v", err)}
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, checkResult{"Database", "FAIL", fmt.Sprintf("%s ping failed: %v", where, err)}
	}
	return gormDB, checkResult{"Database", "PASS", where + " reachable"}
}

func checkSchema(gormDB *gorm.DB) checkResult {
	tables := db.AllModels()
	migrated := 0
	for _, m := range tables {
		if gormDB.Migrator().HasTable(m) {
			migrated++
		}
	}
	detail := fmt.Sprintf("%d/%d tables migrated", migrated, len(tables))
	if migrated < len(tables) {
		return checkResult{"Schema", "WARN", detail + " (run cns db init)"}
	}
	return checkResult{"Schema", "PASS", detail}
}

func checkSnapshot(gormDB *gorm.DB) checkResult {
	if !gormDB.Migrator().HasTable(&models.ProjectSnapshot{}) {
		return checkResult{"Snapshot", "WARN", "no snapshot table (run cns db init)"}
	}
	snap, err := db.LatestSnapshot(gormDB)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return checkResult{"Snapshot", "WARN", "none stored yet (run cns refresh)"}
	}
	if err != nil {
		return checkResult{"Snapshot", "FAIL", err.Error()}
	}
	return checkResult{"Snapshot", "PASS", fmt.Sprintf("#%d, %d projects, fetched %s",
		snap.ID, snap.ProjectCount, snap.FetchedAt.Local().Format("02/01/2006 15:04"))}
}

func checkSource(ctx context.Context, cfg config.SourceConfig) checkResult {
	if cfg.URL == "" {
		return checkResult{"Source", "FAIL", "source.url is not set"}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	projects, _, err := source.New(cfg.URL, cfg.Timeout).Fetch(ctx)
	if err != nil {
		return checkResult{"Source", "FAIL", err.Error()}
	}
	return checkResult{"Source", "PASS", fmt.Sprintf("%s returned %d projects", cfg.URL, len(projects))}
}

func checkInvites(cfg config.SurveyConfig) checkResult {
	if cfg.TokenSecret == "" {
		return checkResult{"Survey invites", "WARN", "no token_secret, surveys are open to anyone"}
	}
	return checkResult{"Survey invites", "PASS", fmt.Sprintf("required, valid for %s", cfg.TokenTTL)}
}

func checkChannel(name string, ch config.ChannelConfig) checkResult {
	switch {
	case ch.Enabled():
		return checkResult{name, "PASS", "posting to " + ch.ChannelID}
	case ch.BotToken == "" && ch.ChannelID == "":
		return checkResult{name, "WARN", "not configured"}
	case ch.BotToken == "":
		return checkResult{name, "FAIL", "channel_id set without bot_token"}
	default:
		return checkResult{name, "FAIL", "bot_token set without channel_id"}
	}
}
