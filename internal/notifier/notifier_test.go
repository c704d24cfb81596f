/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package notifier

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
	"github.com/friendsincode/nzuri_tv/internal/events"
	"github.com/friendsincode/nzuri_tv/internal/models"
	"github.com/friendsincode/nzuri_tv/internal/nowplaying"
	"github.com/friendsincode/nzuri_tv/internal/store"
)

type fixture struct {
	notifier *Notifier
	store    *store.Store
	clock    *clock.Fake
	bus      *events.Bus
}

func newFixture(t *testing.T) *fixture {
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
	resolver := nowplaying.New(st, clk, nil, zerolog.Nop())
	bus := events.NewBus()
	return &fixture{
		notifier: New(resolver, st, bus, 5*time.Second, zerolog.Nop()),
		store:    st,
		clock:    clk,
		bus:      bus,
	}
}

func (f *fixture) scheduleProgram(t *testing.T, channelID string, start, end time.Time) string {
	t.Helper()
	programID := uuid.NewString()
	item := &models.ScheduleItem{
		ID:        uuid.NewString(),
		ProgramID: programID,
		ChannelID: channelID,
		StartTime: start,
		EndTime:   end,
		Status:    models.StatusScheduled,
	}
	if err := f.store.CreateItem(context.Background(), item); err != nil {
		t.Fatalf("create item: %v", err)
	}
	return programID
}

func drain(sub events.Subscriber) []events.Payload {
	var got []events.Payload
	for {
		select {
		case p := <-sub:
			got = append(got, p)
		default:
			return got
		}
	}
}

func TestNowPlayingEmittedOncePerChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	channelID := uuid.NewString()

	first := f.scheduleProgram(t, channelID, f.clock.Now().Add(-time.Hour), f.clock.Now().Add(time.Hour))
	second := f.scheduleProgram(t, channelID, f.clock.Now().Add(time.Hour), f.clock.Now().Add(2*time.Hour))

	sub := f.bus.Subscribe(events.EventNowPlaying)
	defer f.bus.Unsubscribe(events.EventNowPlaying, sub)

	f.notifier.Watch(channelID)
	defer f.notifier.Unwatch(channelID)

	// First poll emits the initial state.
	f.notifier.Poll(ctx)
	got := drain(sub)
	if len(got) != 1 {
		t.Fatalf("first poll emitted %d now_playing events, want 1", len(got))
	}
	if view := got[0]["view"].(nowplaying.View); view.ProgramID() != first {
		t.Fatalf("emitted program %s, want %s", view.ProgramID(), first)
	}

	// Unchanged state stays quiet across repeated polls.
	f.notifier.Poll(ctx)
	f.notifier.Poll(ctx)
	if got := drain(sub); len(got) != 0 {
		t.Fatalf("unchanged state emitted %d events, want 0", len(got))
	}

	// Crossing into the next item emits exactly one event.
	f.clock.Advance(90 * time.Minute)
	f.notifier.Poll(ctx)
	f.notifier.Poll(ctx)
	got = drain(sub)
	if len(got) != 1 {
		t.Fatalf("program change emitted %d events, want 1", len(got))
	}
	if view := got[0]["view"].(nowplaying.View); view.ProgramID() != second {
		t.Fatalf("emitted program %s, want %s", view.ProgramID(), second)
	}
}

func TestOffAirTransitionEmits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	channelID := uuid.NewString()
	f.scheduleProgram(t, channelID, f.clock.Now().Add(-time.Hour), f.clock.Now().Add(10*time.Minute))

	sub := f.bus.Subscribe(events.EventNowPlaying)
	defer f.bus.Unsubscribe(events.EventNowPlaying, sub)

	f.notifier.Watch(channelID)
	defer f.notifier.Unwatch(channelID)

	f.notifier.Poll(ctx)
	drain(sub)

	// Channel goes dark: one event with no airing item.
	f.clock.Advance(30 * time.Minute)
	f.notifier.Poll(ctx)
	got := drain(sub)
	if len(got) != 1 {
		t.Fatalf("off-air transition emitted %d events, want 1", len(got))
	}
	if view := got[0]["view"].(nowplaying.View); view.OnAir() {
		t.Fatalf("expected off-air view, got %+v", view.Item)
	}

	f.notifier.Poll(ctx)
	if got := drain(sub); len(got) != 0 {
		t.Fatalf("steady off-air state emitted %d events, want 0", len(got))
	}
}

func TestInitialOffAirStateEmits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	channelID := uuid.NewString()

	sub := f.bus.Subscribe(events.EventNowPlaying)
	defer f.bus.Unsubscribe(events.EventNowPlaying, sub)

	f.notifier.Watch(channelID)
	defer f.notifier.Unwatch(channelID)

	f.notifier.Poll(ctx)
	if got := drain(sub); len(got) != 1 {
		t.Fatalf("first poll on idle channel emitted %d events, want 1", len(got))
	}
}

func TestTickerEventEveryPoll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	channelID := uuid.NewString()

	tk := models.Ticker{ID: uuid.NewString(), Text: "headline", Priority: 1, Active: true}
	if err := f.store.DB().Create(&tk).Error; err != nil {
		t.Fatalf("create ticker: %v", err)
	}

	sub := f.bus.Subscribe(events.EventTicker)
	defer f.bus.Unsubscribe(events.EventTicker, sub)

	f.notifier.Watch(channelID)
	defer f.notifier.Unwatch(channelID)

	f.notifier.Poll(ctx)
	f.notifier.Poll(ctx)
	got := drain(sub)
	if len(got) != 2 {
		t.Fatalf("two polls emitted %d ticker events, want 2", len(got))
	}
	tickers := got[0]["tickers"].([]models.Ticker)
	if len(tickers) != 1 || tickers[0].Text != "headline" {
		t.Fatalf("unexpected ticker payload: %+v", tickers)
	}
}

func TestUnwatchedChannelNotPolled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	channelID := uuid.NewString()
	f.scheduleProgram(t, channelID, f.clock.Now().Add(-time.Hour), f.clock.Now().Add(time.Hour))

	sub := f.bus.Subscribe(events.EventNowPlaying)
	defer f.bus.Unsubscribe(events.EventNowPlaying, sub)

	f.notifier.Poll(ctx)
	if got := drain(sub); len(got) != 0 {
		t.Fatalf("unwatched channel emitted %d events, want 0", len(got))
	}

	f.notifier.Watch(channelID)
	f.notifier.Unwatch(channelID)
	f.notifier.Poll(ctx)
	if got := drain(sub); len(got) != 0 {
		t.Fatalf("channel with no remaining watchers emitted %d events, want 0", len(got))
	}
}
