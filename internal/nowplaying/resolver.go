/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package nowplaying answers "what is on air right now" for a channel. The
// answer is derived from schedule timestamps, not item status, so it stays
// correct even when the lifecycle engine lags behind wall-clock time.
package nowplaying

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/nzuri_tv/internal/cache"
	"github.com/friendsincode/nzuri_tv/internal/clock"
	"github.com/friendsincode/nzuri_tv/internal/models"
)

// ScheduleReader is the slice of the store the resolver needs.
type ScheduleReader interface {
	FindCurrent(ctx context.Context, channelID string, now time.Time) (*models.ScheduleItem, error)
	FindNext(ctx context.Context, channelID string, now time.Time) (*models.ScheduleItem, error)
	GetProgram(ctx context.Context, id string) (*models.Program, error)
}

// View is the resolved on-air state for a channel. Program and
// NextProgram are nil when the slot is absent or references a deleted
// program.
type View struct {
	Item        *models.ScheduleItem `json:"item"`
	Program     *models.Program      `json:"program"`
	Next        *models.ScheduleItem `json:"next"`
	NextProgram *models.Program      `json:"next_program"`
	Timestamp   time.Time            `json:"timestamp"`
}

// OnAir reports whether something is currently airing.
func (v View) OnAir() bool {
	return v.Item != nil
}

// ProgramID returns the airing item's program id, or empty.
func (v View) ProgramID() string {
	if v.Item == nil {
		return ""
	}
	return v.Item.ProgramID
}

// Resolver resolves the current on-air view.
type Resolver struct {
	store  ScheduleReader
	clock  clock.Clock
	cache  *cache.Cache
	logger zerolog.Logger
}

// New constructs a resolver. cache may be nil.
func New(store ScheduleReader, clk clock.Clock, c *cache.Cache, logger zerolog.Logger) *Resolver {
	return &Resolver{
		store:  store,
		clock:  clk,
		cache:  c,
		logger: logger.With().Str("component", "nowplaying").Logger(),
	}
}

// Resolve returns the current view for channelID. The short-TTL cache
// absorbs polling traffic; a miss reads through to the store.
func (r *Resolver) Resolve(ctx context.Context, channelID string) (View, error) {
	cacheKey := cache.KeyNowPlaying + channelID
	var cached View
	if r.cache.GetJSON(ctx, cacheKey, &cached) {
		return cached, nil
	}

	view, err := r.resolve(ctx, channelID)
	if err != nil {
		return View{}, err
	}

	r.cache.SetJSON(ctx, cacheKey, view, r.cache.NowPlayingTTL())
	return view, nil
}

func (r *Resolver) resolve(ctx context.Context, channelID string) (View, error) {
	now := r.clock.Now()
	view := View{Timestamp: now}

	item, err := r.store.FindCurrent(ctx, channelID, now)
	if err != nil {
		return View{}, err
	}
	view.Item = item

	if item != nil {
		program, err := r.lookupProgram(ctx, item, "current")
		if err != nil {
			return View{}, err
		}
		view.Program = program
	}

	next, err := r.store.FindNext(ctx, channelID, now)
	if err != nil {
		return View{}, err
	}
	view.Next = next

	if next != nil {
		program, err := r.lookupProgram(ctx, next, "next")
		if err != nil {
			return View{}, err
		}
		view.NextProgram = program
	}

	return view, nil
}

func (r *Resolver) lookupProgram(ctx context.Context, item *models.ScheduleItem, slot string) (*models.Program, error) {
	program, err := r.store.GetProgram(ctx, item.ProgramID)
	if err != nil {
		return nil, err
	}
	if program == nil {
		r.logger.Warn().
			Str("slot", slot).
			Str("item_id", item.ID).
			Str("program_id", item.ProgramID).
			Msg("schedule item references missing program")
	}
	return program, nil
}
