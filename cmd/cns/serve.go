package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zulandar/consuntivo/internal/dashboard"
	"github.com/zulandar/consuntivo/internal/db"
	"github.com/zulandar/consuntivo/internal/invite"
	"github.com/zulandar/consuntivo/internal/models"
	"github.com/zulandar/consuntivo/internal/refresh"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
		noRefresh  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web dashboard and the scheduled jobs",
		Long:  "Serves the dashboard and surveys, refreshes the project snapshot and sends the digest on their cron schedules.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port, noRefresh)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default from config)")
	cmd.Flags().BoolVar(&noRefresh, "no-refresh", false, "skip the refresh at startup")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int, noRefresh bool) error {
	out := cmd.OutOrStdout()
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if err := db.SeedSurveys(gormDB); err != nil {
		return err
	}
	if port <= 0 {
		port = cfg.Dashboard.Port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(out, "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	refresher := newRefresher(cfg, gormDB)
	refresher.OnSnapshot = func(snap *models.ProjectSnapshot) {
		fmt.Fprintf(out, "Snapshot %d: %d projects\n", snap.ID, snap.ProjectCount)
	}
	if !noRefresh {
		go func() {
			if _, err := refresher.Refresh(ctx); err != nil {
				log.Printf("serve: initial refresh: %v", err)
			}
		}()
	}

	sched := refresh.NewScheduler(ctx)
	if err := sched.AddRefresh(cfg.Source.Refresh, refresher); err != nil {
		return err
	}
	fanout, err := buildNotifier(cfg.Notify)
	if err != nil {
		return err
	}
	if len(fanout) > 0 {
		if err := sched.AddDigest(cfg.Notify.Digest, newDigester(cfg, gormDB, fanout)); err != nil {
			return err
		}
	}
	sched.Start()
	defer sched.Stop()
	fmt.Fprintf(out, "Scheduled %d job(s)\n", sched.Len())

	return dashboard.Start(ctx, dashboard.StartOpts{
		DB:      gormDB,
		Config:  cfg,
		Invites: invite.NewManager(cfg.Survey.TokenSecret, cfg.Survey.TokenTTL),
		Port:    port,
		Out:     out,
	})
}
