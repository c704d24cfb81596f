/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/friendsincode/nzuri_tv/internal/db"
	"github.com/friendsincode/nzuri_tv/internal/models"
	"github.com/friendsincode/nzuri_tv/internal/schedule"
	"github.com/friendsincode/nzuri_tv/internal/seed"
	"github.com/friendsincode/nzuri_tv/internal/store"
)

var seedChannelSlug string

var seedCmd = &cobra.Command{
	Use:   "seed-schedule",
	Short: "Seed a demo schedule grid",
	Long: `Populate a channel with a back-to-back block of demo programs,
starting at the next top of the hour. Occupied slots are skipped.

Examples:
  # Seed the default channel
  nzuritv seed-schedule

  # Seed a specific channel by slug
  nzuritv seed-schedule --channel mining-tv
`,
	RunE: runSeedSchedule,
}

func init() {
	seedCmd.Flags().StringVar(&seedChannelSlug, "channel", "", "Channel slug to seed (default: configured default channel)")
	rootCmd.AddCommand(seedCmd)
}

func runSeedSchedule(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	database, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close(database) }()

	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	ctx := context.Background()
	slug := seedChannelSlug
	if slug == "" {
		slug = cfg.DefaultChannelSlug
	}

	var channel models.Channel
	err = database.WithContext(ctx).First(&channel, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		created, err := seed.EnsureDefaultChannel(ctx, database, cfg.DefaultChannelName, slug, logger)
		if err != nil {
			return err
		}
		channel = *created
	} else if err != nil {
		return fmt.Errorf("find channel %q: %w", slug, err)
	}

	svc := schedule.NewService(store.New(database, cfg.StoreTimeout, logger), logger)
	if err := seed.SeedDailySchedule(ctx, database, svc, channel.ID, time.Now(), logger); err != nil {
		return err
	}

	logger.Info().Str("channel", slug).Msg("demo schedule seeded")
	return nil
}
