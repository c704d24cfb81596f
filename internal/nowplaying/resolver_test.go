/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package nowplaying

import (
	"context"
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

func newTestResolver(t *testing.T) (*Resolver, *store.Store, *clock.Fake) {
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
	clk := clock.NewFake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return New(st, clk, nil, zerolog.Nop()), st, clk
}

func createProgram(t *testing.T, st *store.Store, channelID, title string) *models.Program {
	t.Helper()
	program := &models.Program{
		ID:          uuid.NewString(),
		ChannelID:   channelID,
		Title:       title,
		ContentType: models.ContentVideo,
	}
	if err := st.DB().Create(program).Error; err != nil {
		t.Fatalf("create program: %v", err)
	}
	return program
}

func createSlot(t *testing.T, st *store.Store, channelID, programID string, start, end time.Time, status models.ItemStatus) *models.ScheduleItem {
	t.Helper()
	item := &models.ScheduleItem{
		ID:        uuid.NewString(),
		ProgramID: programID,
		ChannelID: channelID,
		StartTime: start,
		EndTime:   end,
		Status:    status,
	}
	if err := st.CreateItem(context.Background(), item); err != nil {
		t.Fatalf("create item: %v", err)
	}
	return item
}

func TestResolveNothingAiring(t *testing.T) {
	r, st, clk := newTestResolver(t)
	channelID := uuid.NewString()
	program := createProgram(t, st, channelID, "Evening Show")
	upcoming := createSlot(t, st, channelID, program.ID, clk.Now().Add(time.Hour), clk.Now().Add(2*time.Hour), models.StatusScheduled)

	view, err := r.Resolve(context.Background(), channelID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if view.OnAir() {
		t.Fatalf("expected off-air, got item %+v", view.Item)
	}
	if view.Program != nil {
		t.Fatalf("expected nil program, got %+v", view.Program)
	}
	if view.Next == nil || view.Next.ID != upcoming.ID {
		t.Fatalf("expected next item %s, got %+v", upcoming.ID, view.Next)
	}
	if view.NextProgram == nil || view.NextProgram.Title != "Evening Show" {
		t.Fatalf("expected next program Evening Show, got %+v", view.NextProgram)
	}
}

func TestResolveNextProgram(t *testing.T) {
	r, st, clk := newTestResolver(t)
	channelID := uuid.NewString()
	current := createProgram(t, st, channelID, "Midday News")
	upcoming := createProgram(t, st, channelID, "Afternoon Drive")
	createSlot(t, st, channelID, current.ID, clk.Now().Add(-30*time.Minute), clk.Now().Add(30*time.Minute), models.StatusRunning)
	createSlot(t, st, channelID, upcoming.ID, clk.Now().Add(30*time.Minute), clk.Now().Add(90*time.Minute), models.StatusScheduled)

	view, err := r.Resolve(context.Background(), channelID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if view.Program == nil || view.Program.ID != current.ID {
		t.Fatalf("expected current program %s, got %+v", current.ID, view.Program)
	}
	if view.NextProgram == nil || view.NextProgram.ID != upcoming.ID {
		t.Fatalf("expected next program %s, got %+v", upcoming.ID, view.NextProgram)
	}
}

func TestResolveCurrentWithProgram(t *testing.T) {
	r, st, clk := newTestResolver(t)
	channelID := uuid.NewString()
	program := createProgram(t, st, channelID, "Morning News")
	item := createSlot(t, st, channelID, program.ID, clk.Now().Add(-30*time.Minute), clk.Now().Add(30*time.Minute), models.StatusRunning)

	view, err := r.Resolve(context.Background(), channelID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !view.OnAir() || view.Item.ID != item.ID {
		t.Fatalf("expected item %s on air, got %+v", item.ID, view.Item)
	}
	if view.Program == nil || view.Program.Title != "Morning News" {
		t.Fatalf("expected program Morning News, got %+v", view.Program)
	}
}

func TestResolveStatusIndependent(t *testing.T) {
	// An item still marked scheduled whose window already opened must be
	// reported as airing: the engine may not have swept yet.
	r, st, clk := newTestResolver(t)
	channelID := uuid.NewString()
	program := createProgram(t, st, channelID, "Lagging Show")
	item := createSlot(t, st, channelID, program.ID, clk.Now().Add(-time.Minute), clk.Now().Add(time.Hour), models.StatusScheduled)

	view, err := r.Resolve(context.Background(), channelID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !view.OnAir() || view.Item.ID != item.ID {
		t.Fatalf("expected scheduled-but-due item on air, got %+v", view.Item)
	}
}

func TestResolveLatestStartWins(t *testing.T) {
	r, st, clk := newTestResolver(t)
	channelID := uuid.NewString()
	early := createProgram(t, st, channelID, "Long Block")
	late := createProgram(t, st, channelID, "Breaking In")
	createSlot(t, st, channelID, early.ID, clk.Now().Add(-2*time.Hour), clk.Now().Add(time.Hour), models.StatusRunning)
	override := createSlot(t, st, channelID, late.ID, clk.Now().Add(-10*time.Minute), clk.Now().Add(20*time.Minute), models.StatusRunning)

	view, err := r.Resolve(context.Background(), channelID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if view.Item == nil || view.Item.ID != override.ID {
		t.Fatalf("expected latest-start item %s, got %+v", override.ID, view.Item)
	}
}

func TestResolveDanglingProgram(t *testing.T) {
	r, st, clk := newTestResolver(t)
	channelID := uuid.NewString()
	item := createSlot(t, st, channelID, uuid.NewString(), clk.Now().Add(-time.Minute), clk.Now().Add(time.Hour), models.StatusRunning)

	view, err := r.Resolve(context.Background(), channelID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if view.Item == nil || view.Item.ID != item.ID {
		t.Fatalf("expected item %s, got %+v", item.ID, view.Item)
	}
	if view.Program != nil {
		t.Fatalf("expected nil program for dangling reference, got %+v", view.Program)
	}

	next := createSlot(t, st, channelID, uuid.NewString(), clk.Now().Add(2*time.Hour), clk.Now().Add(3*time.Hour), models.StatusScheduled)
	view, err = r.Resolve(context.Background(), channelID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if view.Next == nil || view.Next.ID != next.ID {
		t.Fatalf("expected next item %s, got %+v", next.ID, view.Next)
	}
	if view.NextProgram != nil {
		t.Fatalf("expected nil next program for dangling reference, got %+v", view.NextProgram)
	}
}

func TestResolveIgnoresCancelled(t *testing.T) {
	r, st, clk := newTestResolver(t)
	channelID := uuid.NewString()
	program := createProgram(t, st, channelID, "Pulled Show")
	createSlot(t, st, channelID, program.ID, clk.Now().Add(-time.Minute), clk.Now().Add(time.Hour), models.StatusCancelled)

	view, err := r.Resolve(context.Background(), channelID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if view.OnAir() {
		t.Fatalf("cancelled item must not air, got %+v", view.Item)
	}
}
