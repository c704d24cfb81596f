/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	ws "nhooyr.io/websocket"

	"github.com/friendsincode/nzuri_tv/internal/events"
)

func parseEventTypes(raw string) []events.EventType {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]events.EventType, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		out = append(out, events.EventType(strings.TrimSpace(part)))
	}
	return out
}

func (a *API) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	channelID := r.URL.Query().Get("channel_id")
	if channelID == "" {
		writeError(w, http.StatusBadRequest, "channel_id_required")
		return
	}

	conn, err := ws.Accept(w, r, &ws.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		a.logger.Error().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.Close(ws.StatusInternalError, "server error")

	eventTypes := parseEventTypes(r.URL.Query().Get("types"))
	if len(eventTypes) == 0 {
		eventTypes = []events.EventType{events.EventNowPlaying, events.EventTicker, events.EventScheduleUpdate}
	}

	subscribers := make([]events.Subscriber, 0, len(eventTypes))
	for _, eventType := range eventTypes {
		subscribers = append(subscribers, a.bus.Subscribe(eventType))
	}
	defer func() {
		for i, eventType := range eventTypes {
			a.bus.Unsubscribe(eventType, subscribers[i])
		}
	}()

	// The notifier only polls channels someone is watching.
	a.notifier.Watch(channelID)
	defer a.notifier.Unwatch(channelID)

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.Close(ws.StatusNormalClosure, "context cancelled")
			return
		case <-ticker.C:
			if err := conn.Write(ctx, ws.MessageText, []byte(`{"type":"ping"}`)); err != nil {
				a.logger.Error().Err(err).Msg("websocket ping failed")
				conn.Close(ws.StatusInternalError, "write failed")
				return
			}
		default:
			sent := false
			for i, sub := range subscribers {
				select {
				case payload := <-sub:
					if !payloadForChannel(payload, channelID) {
						continue
					}
					if err := a.writeEvent(ctx, conn, eventTypes[i], payload); err != nil {
						a.logger.Error().Err(err).Msg("websocket write failed")
						conn.Close(ws.StatusInternalError, "write failed")
						return
					}
					sent = true
				default:
				}
			}
			if !sent {
				time.Sleep(100 * time.Millisecond)
			}
		}
	}
}

// payloadForChannel reports whether payload belongs to channelID. Payloads
// without a channel_id are broadcast to everyone.
func payloadForChannel(payload events.Payload, channelID string) bool {
	id, ok := payload["channel_id"].(string)
	return !ok || id == "" || id == channelID
}

func (a *API) writeEvent(ctx context.Context, conn *ws.Conn, eventType events.EventType, payload events.Payload) error {
	data := map[string]any{
		"type":    eventType,
		"payload": payload,
	}
	bytes, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return conn.Write(ctx, ws.MessageText, bytes)
}
