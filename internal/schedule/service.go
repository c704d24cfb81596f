/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package schedule implements slot placement with conflict detection. Two
// items on the same channel conflict when their half-open [start, end)
// intervals intersect; items touching at a boundary are fine.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/friendsincode/nzuri_tv/internal/models"
	"github.com/friendsincode/nzuri_tv/internal/store"
)

// Service validates and persists schedule items.
type Service struct {
	store  *store.Store
	logger zerolog.Logger
}

// NewService constructs the schedule service.
func NewService(st *store.Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  st,
		logger: logger.With().Str("component", "schedule").Logger(),
	}
}

// CreateRequest carries the fields for a new schedule item.
type CreateRequest struct {
	ProgramID string    `json:"program_id"`
	ChannelID string    `json:"channel_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	IsLive    bool      `json:"is_live"`
}

// UpdateRequest carries a partial update. Nil fields are left untouched.
type UpdateRequest struct {
	ProgramID *string    `json:"program_id"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	IsLive    *bool      `json:"is_live"`
	Status    *string    `json:"status"`
}

func validateWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start_time and end_time are required", ErrValidation)
	}
	if !end.After(start) {
		return fmt.Errorf("%w: end_time must be after start_time", ErrValidation)
	}
	return nil
}

// CreateItem places a new item on the channel's timeline. The conflict check
// and the insert run in one transaction so two concurrent requests for the
// same slot cannot both pass the check.
func (s *Service) CreateItem(ctx context.Context, req CreateRequest) (*models.ScheduleItem, error) {
	if req.ProgramID == "" || req.ChannelID == "" {
		return nil, fmt.Errorf("%w: program_id and channel_id are required", ErrValidation)
	}
	if err := validateWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	item := &models.ScheduleItem{
		ID:        uuid.NewString(),
		ProgramID: req.ProgramID,
		ChannelID: req.ChannelID,
		StartTime: req.StartTime.UTC(),
		EndTime:   req.EndTime.UTC(),
		IsLive:    req.IsLive,
		Status:    models.StatusScheduled,
	}

	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		overlaps, err := tx.FindOverlapping(ctx, item.ChannelID, item.StartTime, item.EndTime, models.ActiveStatuses(), "")
		if err != nil {
			return err
		}
		if len(overlaps) > 0 {
			return fmt.Errorf("%w: %s overlaps %s", ErrConflict, item.StartTime.Format(time.RFC3339), overlaps[0].ID)
		}
		return tx.CreateItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("item_id", item.ID).
		Str("channel_id", item.ChannelID).
		Time("start", item.StartTime).
		Time("end", item.EndTime).
		Msg("schedule item created")
	return item, nil
}

// UpdateItem applies a partial update. Moving the time window re-runs the
// conflict check against everything except the item itself. The only status
// value accepted from outside is cancelled; the lifecycle engine owns the
// rest of the state machine.
func (s *Service) UpdateItem(ctx context.Context, id string, req UpdateRequest) (*models.ScheduleItem, error) {
	if req.Status != nil && models.ItemStatus(*req.Status) != models.StatusCancelled {
		return nil, fmt.Errorf("%w: only status %q may be set directly", ErrValidation, models.StatusCancelled)
	}

	var updated *models.ScheduleItem
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		item, err := tx.GetItem(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrNotFound
		}

		start, end := item.StartTime, item.EndTime
		if req.StartTime != nil {
			start = req.StartTime.UTC()
		}
		if req.EndTime != nil {
			end = req.EndTime.UTC()
		}
		if err := validateWindow(start, end); err != nil {
			return err
		}

		if req.StartTime != nil || req.EndTime != nil {
			overlaps, err := tx.FindOverlapping(ctx, item.ChannelID, start, end, models.ActiveStatuses(), item.ID)
			if err != nil {
				return err
			}
			if len(overlaps) > 0 {
				return fmt.Errorf("%w: moved window overlaps %s", ErrConflict, overlaps[0].ID)
			}
		}

		fields := map[string]any{"start_time": start, "end_time": end}
		item.StartTime, item.EndTime = start, end
		if req.ProgramID != nil {
			fields["program_id"] = *req.ProgramID
			item.ProgramID = *req.ProgramID
		}
		if req.IsLive != nil {
			fields["is_live"] = *req.IsLive
			item.IsLive = *req.IsLive
		}
		if req.Status != nil {
			fields["status"] = models.StatusCancelled
			item.Status = models.StatusCancelled
		}

		if err := tx.UpdateItemFields(ctx, id, fields); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CancelItem marks an item cancelled, freeing its slot. Cancellation is a
// sink state: completed items cannot be cancelled.
func (s *Service) CancelItem(ctx context.Context, id string) (*models.ScheduleItem, error) {
	var cancelled *models.ScheduleItem
	err := s.store.WithTx(ctx, func(tx *store.Store) error {
		item, err := tx.GetItem(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return ErrNotFound
		}
		if item.Status == models.StatusCompleted {
			return fmt.Errorf("%w: completed items cannot be cancelled", ErrValidation)
		}
		if item.Status != models.StatusCancelled {
			if err := tx.UpdateItemFields(ctx, id, map[string]any{"status": models.StatusCancelled}); err != nil {
				return err
			}
			item.Status = models.StatusCancelled
		}
		cancelled = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("item_id", id).Msg("schedule item cancelled")
	return cancelled, nil
}

// DeleteItem removes an item regardless of status.
func (s *Service) DeleteItem(ctx context.Context, id string) error {
	deleted, err := s.store.DeleteItem(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	s.logger.Info().Str("item_id", id).Msg("schedule item deleted")
	return nil
}

// GetItem fetches a single item.
func (s *Service) GetItem(ctx context.Context, id string) (*models.ScheduleItem, error) {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

// List returns the schedule ordered by start time, optionally scoped to a
// channel.
func (s *Service) List(ctx context.Context, channelID string) ([]models.ScheduleItem, error) {
	return s.store.ListSchedule(ctx, channelID)
}
