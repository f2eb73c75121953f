package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zulandar/consuntivo/internal/config"
	"github.com/zulandar/consuntivo/internal/refresh"
	"github.com/zulandar/consuntivo/internal/source"
	"gorm.io/gorm"
)

func newRefresher(cfg *config.Config, gormDB *gorm.DB) *refresh.Refresher {
	return &refresh.Refresher{
		DB:     gormDB,
		Source: source.New(cfg.Source.URL, cfg.Source.Timeout),
		Name:   cfg.Source.URL,
	}
}

func newRefreshCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the project export once and store a snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			snap, err := newRefresher(cfg, gormDB).Refresh(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored snapshot %d: %d projects from %s\n", snap.ID, snap.ProjectCount, snap.Source)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}
