/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package lifecycle drives schedule items through their status lifecycle:
// scheduled -> running -> completed. Each sweep is a pair of bulk updates
// keyed off wall-clock time, so a missed tick is healed by the next one.
package lifecycle

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/nzuri_tv/internal/clock"
	"github.com/friendsincode/nzuri_tv/internal/telemetry"
)

// Sweeper is the slice of the store the engine needs.
type Sweeper interface {
	MarkRunning(ctx context.Context, now time.Time) (int64, error)
	MarkCompleted(ctx context.Context, now time.Time) (int64, error)
}

// Engine periodically advances schedule item statuses.
type Engine struct {
	store    Sweeper
	clock    clock.Clock
	interval time.Duration
	logger   zerolog.Logger
}

// New constructs the lifecycle engine.
func New(store Sweeper, clk clock.Clock, interval time.Duration, logger zerolog.Logger) *Engine {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Engine{
		store:    store,
		clock:    clk,
		interval: interval,
		logger:   logger.With().Str("component", "lifecycle").Logger(),
	}
}

// Run executes the sweep loop until the context is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.logger.Info().Dur("interval", e.interval).Msg("lifecycle engine started")
	for {
		select {
		case <-ctx.Done():
			e.logger.Info().Msg("lifecycle engine stopped")
			return ctx.Err()
		case <-ticker.C:
			e.Tick(ctx)
		}
	}
}

// Tick runs one sweep: start due items, then complete elapsed ones. Errors
// are logged and swallowed; the next sweep retries naturally.
func (e *Engine) Tick(ctx context.Context) {
	telemetry.LifecycleTicksTotal.Inc()
	now := e.clock.Now()

	started, err := e.store.MarkRunning(ctx, now)
	if err != nil {
		e.logger.Error().Err(err).Msg("lifecycle start sweep failed")
		telemetry.LifecycleErrorsTotal.WithLabelValues("start").Inc()
	} else if started > 0 {
		telemetry.LifecycleTransitionsTotal.WithLabelValues("running").Add(float64(started))
		e.logger.Info().Int64("items", started).Msg("schedule items started")
	}

	completed, err := e.store.MarkCompleted(ctx, now)
	if err != nil {
		e.logger.Error().Err(err).Msg("lifecycle completion sweep failed")
		telemetry.LifecycleErrorsTotal.WithLabelValues("complete").Inc()
	} else if completed > 0 {
		telemetry.LifecycleTransitionsTotal.WithLabelValues("completed").Add(float64(completed))
		e.logger.Info().Int64("items", completed).Msg("schedule items completed")
	}
}
