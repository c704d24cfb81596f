/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package seed bootstraps first-run data: the default channel and,
// on demand, a demo schedule grid for development environments.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/nzuri_tv/internal/models"
	"github.com/friendsincode/nzuri_tv/internal/schedule"
)

// EnsureDefaultChannel creates the default channel when missing and returns
// it. Idempotent across restarts.
func EnsureDefaultChannel(ctx context.Context, db *gorm.DB, name, slug string, logger zerolog.Logger) (*models.Channel, error) {
	var channel models.Channel
	err := db.WithContext(ctx).First(&channel, "slug = ?", slug).Error
	if err == nil {
		return &channel, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	channel = models.Channel{
		ID:   uuid.NewString(),
		Name: name,
		Slug: slug,
	}
	if err := db.WithContext(ctx).Create(&channel).Error; err != nil {
		return nil, fmt.Errorf("create default channel: %w", err)
	}
	logger.Info().Str("channel_id", channel.ID).Str("slug", slug).Msg("default channel created")
	return &channel, nil
}

// demoPrograms are the slots laid down by SeedDailySchedule, in order.
var demoPrograms = []struct {
	title    string
	kind     models.ContentType
	duration time.Duration
}{
	{"Morning Market Brief", models.ContentVideo, time.Hour},
	{"Mining Africa Live", models.ContentLive, 2 * time.Hour},
	{"Midday News", models.ContentVideo, time.Hour},
	{"Commodities Roundtable", models.ContentPlaylist, 90 * time.Minute},
	{"Operator Spotlight", models.ContentVideo, 90 * time.Minute},
	{"Evening Wrap", models.ContentVideo, time.Hour},
}

// SeedDailySchedule creates a block of back-to-back programs for channelID
// starting at the next top of the hour. Slots go through the schedule
// service so conflicts with existing items are skipped, not overwritten.
func SeedDailySchedule(ctx context.Context, db *gorm.DB, svc *schedule.Service, channelID string, now time.Time, logger zerolog.Logger) error {
	cursor := now.UTC().Truncate(time.Hour).Add(time.Hour)

	for _, p := range demoPrograms {
		program := models.Program{
			ID:          uuid.NewString(),
			ChannelID:   channelID,
			Title:       p.title,
			ContentType: p.kind,
		}
		if err := db.WithContext(ctx).Create(&program).Error; err != nil {
			return fmt.Errorf("create demo program %q: %w", p.title, err)
		}

		_, err := svc.CreateItem(ctx, schedule.CreateRequest{
			ProgramID: program.ID,
			ChannelID: channelID,
			StartTime: cursor,
			EndTime:   cursor.Add(p.duration),
			IsLive:    p.kind == models.ContentLive,
		})
		switch {
		case errors.Is(err, schedule.ErrConflict):
			logger.Warn().Str("title", p.title).Time("start", cursor).Msg("slot already occupied, skipping")
		case err != nil:
			return fmt.Errorf("schedule demo program %q: %w", p.title, err)
		default:
			logger.Info().Str("title", p.title).Time("start", cursor).Msg("demo slot scheduled")
		}
		cursor = cursor.Add(p.duration)
	}
	return nil
}
