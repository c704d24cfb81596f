/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/friendsincode/nzuri_tv/internal/clock"
	"github.com/friendsincode/nzuri_tv/internal/db"
	"github.com/friendsincode/nzuri_tv/internal/models"
	"github.com/friendsincode/nzuri_tv/internal/store"
)

func newTestEngine(t *testing.T) (*Engine, *store.Store, *clock.Fake) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	st := store.New(gdb, 5*time.Second, zerolog.Nop())
	clk := clock.NewFake(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	return New(st, clk, 10*time.Second, zerolog.Nop()), st, clk
}

func seedItem(t *testing.T, st *store.Store, start, end time.Time) *models.ScheduleItem {
	t.Helper()
	item := &models.ScheduleItem{
		ID:        uuid.NewString(),
		ProgramID: uuid.NewString(),
		ChannelID: uuid.NewString(),
		StartTime: start,
		EndTime:   end,
		Status:    models.StatusScheduled,
	}
	if err := st.CreateItem(context.Background(), item); err != nil {
		t.Fatalf("create item: %v", err)
	}
	return item
}

func itemStatus(t *testing.T, st *store.Store, id string) models.ItemStatus {
	t.Helper()
	item, err := st.GetItem(context.Background(), id)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	return item.Status
}

func TestEngineAdvancesLifecycle(t *testing.T) {
	engine, st, clk := newTestEngine(t)
	ctx := context.Background()

	start := clk.Now().Add(30 * time.Minute)
	item := seedItem(t, st, start, start.Add(time.Hour))

	// Before the window opens nothing moves.
	engine.Tick(ctx)
	if got := itemStatus(t, st, item.ID); got != models.StatusScheduled {
		t.Fatalf("status = %s, want scheduled", got)
	}

	// Inside the window the item starts.
	clk.Advance(45 * time.Minute)
	engine.Tick(ctx)
	if got := itemStatus(t, st, item.ID); got != models.StatusRunning {
		t.Fatalf("status = %s, want running", got)
	}

	// Repeating the sweep is idempotent.
	engine.Tick(ctx)
	if got := itemStatus(t, st, item.ID); got != models.StatusRunning {
		t.Fatalf("status after repeat sweep = %s, want running", got)
	}

	// Past the window the item completes.
	clk.Advance(2 * time.Hour)
	engine.Tick(ctx)
	if got := itemStatus(t, st, item.ID); got != models.StatusCompleted {
		t.Fatalf("status = %s, want completed", got)
	}
}

func TestEngineCatchesUpAfterMissedTicks(t *testing.T) {
	engine, st, clk := newTestEngine(t)
	ctx := context.Background()

	start := clk.Now().Add(10 * time.Minute)
	item := seedItem(t, st, start, start.Add(20*time.Minute))

	// The whole window elapses with the engine down. The next sweep starts
	// the item and the one after completes it.
	clk.Advance(26 * time.Minute)
	engine.Tick(ctx)
	if got := itemStatus(t, st, item.ID); got != models.StatusRunning {
		t.Fatalf("status = %s, want running", got)
	}

	clk.Advance(10 * time.Minute)
	engine.Tick(ctx)
	if got := itemStatus(t, st, item.ID); got != models.StatusCompleted {
		t.Fatalf("status = %s, want completed", got)
	}
}

func TestEngineSkipsCancelledItems(t *testing.T) {
	engine, st, clk := newTestEngine(t)
	ctx := context.Background()

	item := seedItem(t, st, clk.Now().Add(-time.Minute), clk.Now().Add(time.Hour))
	if err := st.UpdateItemFields(ctx, item.ID, map[string]any{"status": models.StatusCancelled}); err != nil {
		t.Fatalf("cancel item: %v", err)
	}

	engine.Tick(ctx)
	if got := itemStatus(t, st, item.ID); got != models.StatusCancelled {
		t.Fatalf("status = %s, want cancelled", got)
	}
}

type failingSweeper struct{ err error }

func (f failingSweeper) MarkRunning(context.Context, time.Time) (int64, error)   { return 0, f.err }
func (f failingSweeper) MarkCompleted(context.Context, time.Time) (int64, error) { return 0, f.err }

func TestEngineSwallowsSweepErrors(t *testing.T) {
	engine := New(failingSweeper{err: errors.New("db down")}, clock.NewFake(time.Now()), time.Second, zerolog.Nop())
	// Tick must not panic or propagate the error.
	engine.Tick(context.Background())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
