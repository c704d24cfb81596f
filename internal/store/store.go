/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package store is the persistence boundary for the scheduling core. All
// reads and writes go through a single gorm handle so either SQL backend is
// swappable without touching callers, and every call is bounded by a store
// level timeout.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/nzuri_tv/internal/models"
)

// DefaultTimeout bounds store operations when no override is configured.
const DefaultTimeout = 5 * time.Second

// Store wraps the database handle for schedule, program, and ticker access.
type Store struct {
	db      *gorm.DB
	timeout time.Duration
	logger  zerolog.Logger
}

// New constructs a Store.
func New(db *gorm.DB, timeout time.Duration, logger zerolog.Logger) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Store{
		db:      db,
		timeout: timeout,
		logger:  logger.With().Str("component", "store").Logger(),
	}
}

// DB exposes the underlying handle for the CRUD surface.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// WithTx runs fn inside a single transaction. The Store passed to fn shares
// the transaction handle, so a conflict check and the subsequent insert
// cannot interleave with a concurrent writer.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, timeout: s.timeout, logger: s.logger})
	})
}

func (s *Store) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// FindOverlapping returns items on channelID whose [start_time, end_time)
// interval intersects [start, end). End times are exclusive: boundary touches
// do not match. An empty statuses slice matches every status.
func (s *Store) FindOverlapping(ctx context.Context, channelID string, start, end time.Time, statuses []models.ItemStatus, excludeID string) ([]models.ScheduleItem, error) {
	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	query := s.db.WithContext(opCtx).
		Where("channel_id = ?", channelID).
		Where("start_time < ? AND end_time > ?", end.UTC(), start.UTC())
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var items []models.ScheduleItem
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// MarkRunning advances every scheduled item whose window contains now to
// running. Idempotent: an item already running no longer matches.
func (s *Store) MarkRunning(ctx context.Context, now time.Time) (int64, error) {
	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	now = now.UTC()
	result := s.db.WithContext(opCtx).
		Model(&models.ScheduleItem{}).
		Where("status = ?", models.StatusScheduled).
		Where("start_time <= ? AND end_time > ?", now, now).
		Updates(map[string]any{"status": models.StatusRunning, "updated_at": now})
	return result.RowsAffected, result.Error
}

// MarkCompleted advances every running item whose window has elapsed to
// completed.
func (s *Store) MarkCompleted(ctx context.Context, now time.Time) (int64, error) {
	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	now = now.UTC()
	result := s.db.WithContext(opCtx).
		Model(&models.ScheduleItem{}).
		Where("status = ?", models.StatusRunning).
		Where("end_time <= ?", now).
		Updates(map[string]any{"status": models.StatusCompleted, "updated_at": now})
	return result.RowsAffected, result.Error
}

// FindCurrent returns the item airing on channelID at now, or nil when
// nothing airs. Current-ness is computed from timestamps; status only
// excludes cancelled/completed items so the resolver survives lifecycle lag.
// When overlapping items exist the latest start_time wins.
func (s *Store) FindCurrent(ctx context.Context, channelID string, now time.Time) (*models.ScheduleItem, error) {
	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	now = now.UTC()
	var item models.ScheduleItem
	err := s.db.WithContext(opCtx).
		Where("channel_id = ?", channelID).
		Where("start_time <= ? AND end_time > ?", now, now).
		Where("status IN ?", models.ActiveStatuses()).
		Order("start_time DESC").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindNext returns the earliest upcoming scheduled item for channelID, or nil.
func (s *Store) FindNext(ctx context.Context, channelID string, now time.Time) (*models.ScheduleItem, error) {
	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	var item models.ScheduleItem
	err := s.db.WithContext(opCtx).
		Where("channel_id = ?", channelID).
		Where("start_time > ?", now.UTC()).
		Where("status = ?", models.StatusScheduled).
		Order("start_time ASC").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetItem fetches a schedule item by id, nil when absent.
func (s *Store) GetItem(ctx context.Context, id string) (*models.ScheduleItem, error) {
	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	var item models.ScheduleItem
	err := s.db.WithContext(opCtx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateItem inserts a schedule item, normalizing timestamps to UTC.
func (s *Store) CreateItem(ctx context.Context, item *models.ScheduleItem) error {
	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	item.StartTime = item.StartTime.UTC()
	item.EndTime = item.EndTime.UTC()
	return s.db.WithContext(opCtx).Create(item).Error
}

// UpdateItemFields applies a partial update to a schedule item.
func (s *Store) UpdateItemFields(ctx context.Context, id string, fields map[string]any) error {
	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	return s.db.WithContext(opCtx).
		Model(&models.ScheduleItem{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// DeleteItem removes a schedule item unconditionally, regardless of status.
func (s *Store) DeleteItem(ctx context.Context, id string) (bool, error) {
	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	result := s.db.WithContext(opCtx).Delete(&models.ScheduleItem{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

// ListSchedule returns items ordered by start time, optionally scoped to a
// channel.
func (s *Store) ListSchedule(ctx context.Context, channelID string) ([]models.ScheduleItem, error) {
	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	query := s.db.WithContext(opCtx).Order("start_time ASC")
	if channelID != "" {
		query = query.Where("channel_id = ?", channelID)
	}

	var items []models.ScheduleItem
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetProgram fetches a program by id. A missing program is nil, not an
// error: schedule items may carry dangling references after program deletion.
func (s *Store) GetProgram(ctx context.Context, id string) (*models.Program, error) {
	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	var program models.Program
	err := s.db.WithContext(opCtx).First(&program, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &program, nil
}

// GetChannel fetches a channel by id, nil when absent.
func (s *Store) GetChannel(ctx context.Context, id string) (*models.Channel, error) {
	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	var channel models.Channel
	err := s.db.WithContext(opCtx).First(&channel, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &channel, nil
}

// ListActiveTickers returns active tickers sorted by priority ascending
// (lower priority value sorts first).
func (s *Store) ListActiveTickers(ctx context.Context) ([]models.Ticker, error) {
	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	var tickers []models.Ticker
	err := s.db.WithContext(opCtx).
		Where("active = ?", true).
		Order("priority ASC").
		Find(&tickers).Error
	if err != nil {
		return nil, err
	}
	return tickers, nil
}

// ListActiveAds returns active ads sorted by priority ascending.
func (s *Store) ListActiveAds(ctx context.Context) ([]models.Ad, error) {
	opCtx, cancel := s.opCtx(ctx)
	defer cancel()

	var ads []models.Ad
	err := s.db.WithContext(opCtx).
		Where("active = ?", true).
		Order("priority ASC").
		Find(&ads).Error
	if err != nil {
		return nil, err
	}
	return ads, nil
}
