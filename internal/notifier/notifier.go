/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package notifier feeds connected clients a stream of channel updates. It
// polls the resolver and ticker store rather than hooking writes, so every
// mutation path (API, lifecycle engine, direct SQL) is picked up the same
// way.
package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/nzuri_tv/internal/events"
	"github.com/friendsincode/nzuri_tv/internal/models"
	"github.com/friendsincode/nzuri_tv/internal/nowplaying"
	"github.com/friendsincode/nzuri_tv/internal/telemetry"
)

// TickerReader is the slice of the store the notifier needs beyond the
// resolver.
type TickerReader interface {
	ListActiveTickers(ctx context.Context) ([]models.Ticker, error)
}

// Notifier polls on-air state per channel and publishes events on the bus.
// A now_playing event fires only when the airing program changes; a ticker
// event fires every poll so clients can refresh rotations without extra
// requests.
type Notifier struct {
	resolver *nowplaying.Resolver
	tickers  TickerReader
	bus      *events.Bus
	interval time.Duration
	logger   zerolog.Logger

	mu       sync.Mutex
	channels map[string]*channelState
}

type channelState struct {
	// lastProgramID is nil until the first poll so the initial state is
	// always emitted, even when nothing airs.
	lastProgramID *string
	subscribers   int
}

// New constructs the notifier.
func New(resolver *nowplaying.Resolver, tickers TickerReader, bus *events.Bus, interval time.Duration, logger zerolog.Logger) *Notifier {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Notifier{
		resolver: resolver,
		tickers:  tickers,
		bus:      bus,
		interval: interval,
		logger:   logger.With().Str("component", "notifier").Logger(),
		channels: make(map[string]*channelState),
	}
}

// Watch registers interest in channelID. Polling for a channel starts with
// its first watcher and stops with its last.
func (n *Notifier) Watch(channelID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	state, ok := n.channels[channelID]
	if !ok {
		state = &channelState{}
		n.channels[channelID] = state
	}
	state.subscribers++
	telemetry.NotifierSubscribers.Inc()
}

// Unwatch drops one watcher from channelID.
func (n *Notifier) Unwatch(channelID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	state, ok := n.channels[channelID]
	if !ok {
		return
	}
	state.subscribers--
	telemetry.NotifierSubscribers.Dec()
	if state.subscribers <= 0 {
		delete(n.channels, channelID)
	}
}

// Run executes the poll loop until the context is cancelled.
func (n *Notifier) Run(ctx context.Context) error {
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	n.logger.Info().Dur("interval", n.interval).Msg("update notifier started")
	for {
		select {
		case <-ctx.Done():
			n.logger.Info().Msg("update notifier stopped")
			return ctx.Err()
		case <-ticker.C:
			n.Poll(ctx)
		}
	}
}

// Poll runs one poll cycle over every watched channel. The now_playing
// event, when due, is published before the ticker event.
func (n *Notifier) Poll(ctx context.Context) {
	for _, channelID := range n.watchedChannels() {
		n.pollChannel(ctx, channelID)
	}
}

func (n *Notifier) watchedChannels() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	ids := make([]string, 0, len(n.channels))
	for id := range n.channels {
		ids = append(ids, id)
	}
	return ids
}

func (n *Notifier) pollChannel(ctx context.Context, channelID string) {
	view, err := n.resolver.Resolve(ctx, channelID)
	if err != nil {
		n.logger.Warn().Err(err).Str("channel_id", channelID).Msg("now-playing poll failed")
	} else if n.shouldEmit(channelID, view) {
		n.bus.Publish(events.EventNowPlaying, events.Payload{
			"channel_id": channelID,
			"view":       view,
		})
		telemetry.NotifierEventsTotal.WithLabelValues(string(events.EventNowPlaying)).Inc()
	}

	tickers, err := n.tickers.ListActiveTickers(ctx)
	if err != nil {
		n.logger.Warn().Err(err).Msg("ticker poll failed")
		return
	}
	n.bus.Publish(events.EventTicker, events.Payload{
		"channel_id": channelID,
		"tickers":    tickers,
	})
	telemetry.NotifierEventsTotal.WithLabelValues(string(events.EventTicker)).Inc()
}

// shouldEmit reports whether the view's program differs from the last one
// emitted for channelID, and records it. The first poll always emits.
func (n *Notifier) shouldEmit(channelID string, view nowplaying.View) bool {
	programID := view.ProgramID()

	n.mu.Lock()
	defer n.mu.Unlock()
	state, ok := n.channels[channelID]
	if !ok {
		// Last watcher left between the snapshot and now.
		return false
	}
	if state.lastProgramID != nil && *state.lastProgramID == programID {
		return false
	}
	state.lastProgramID = &programID
	return true
}
