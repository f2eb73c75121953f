package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/consuntivo/internal/config"
	"github.com/zulandar/consuntivo/internal/db"
	"github.com/zulandar/consuntivo/internal/effort"
	"github.com/zulandar/consuntivo/internal/notify"
	"github.com/zulandar/consuntivo/internal/refresh"
	"gorm.io/gorm"
)

func newDigester(cfg *config.Config, gormDB *gorm.DB, n notify.Notifier) *refresh.Digester {
	return &refresh.Digester{
		DB:         gormDB,
		Notifier:   n,
		WindowDays: cfg.Notify.WindowDays,
		Aggregator: effort.Aggregator{WorkdayHours: cfg.Dashboard.WorkdayHours},
	}
}

func newDigestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Activity digest commands",
	}

	cmd.AddCommand(newDigestSendCmd())
	return cmd
}

func newDigestSendCmd() *cobra.Command {
	var (
		configPath string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send the activity digest to the configured channels",
		Long:  "Builds the digest of the last window_days from the latest snapshot and posts it to Slack and Discord. With --dry-run the digest is printed instead.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigestSend(cmd, configPath, dryRun)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the digest instead of sending it")
	return cmd
}

func runDigestSend(cmd *cobra.Command, configPath string, dryRun bool) error {
	out := cmd.OutOrStdout()
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	if dryRun {
		projects, _, err := db.LatestProjects(gormDB)
		if err != nil {
			return err
		}
		d := refresh.BuildDigest(projects, time.Now(), cfg.Notify.WindowDays, effort.Aggregator{WorkdayHours: cfg.Dashboard.WorkdayHours})
		if d == nil {
			fmt.Fprintln(out, "Nothing to report")
			return nil
		}
		printMessage(out, d.Format())
		return nil
	}

	fanout, err := buildNotifier(cfg.Notify)
	if err != nil {
		return err
	}
	if len(fanout) == 0 {
		return fmt.Errorf("no notification channel configured")
	}
	sent, err := newDigester(cfg, gormDB, fanout).Send(context.Background())
	if err != nil {
		return err
	}
	if !sent {
		fmt.Fprintln(out, "Nothing to report")
		return nil
	}
	fmt.Fprintf(out, "Digest sent to %d channel(s)\n", len(fanout))
	return nil
}
