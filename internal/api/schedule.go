/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/friendsincode/nzuri_tv/internal/events"
	"github.com/friendsincode/nzuri_tv/internal/schedule"
)

func (a *API) scheduleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, schedule.ErrConflict):
		writeError(w, http.StatusConflict, "schedule_conflict")
	case errors.Is(err, schedule.ErrNotFound):
		writeError(w, http.StatusNotFound, "schedule_item_not_found")
	case errors.Is(err, schedule.ErrValidation):
		writeError(w, http.StatusBadRequest, "invalid_schedule_request")
	default:
		a.logger.Error().Err(err).Msg("schedule operation failed")
		writeError(w, http.StatusInternalServerError, "db_error")
	}
}

func (a *API) publishScheduleUpdate(channelID string) {
	a.bus.Publish(events.EventScheduleUpdate, events.Payload{"channel_id": channelID})
	a.cache.InvalidateNowPlaying(context.Background(), channelID)
}

func (a *API) handleScheduleList(w http.ResponseWriter, r *http.Request) {
	items, err := a.schedule.List(r.Context(), r.URL.Query().Get("channel_id"))
	if err != nil {
		a.scheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) handleScheduleGet(w http.ResponseWriter, r *http.Request) {
	item, err := a.schedule.GetItem(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		a.scheduleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (a *API) handleScheduleCreate(w http.ResponseWriter, r *http.Request) {
	var req schedule.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	item, err := a.schedule.CreateItem(r.Context(), req)
	if err != nil {
		a.scheduleError(w, err)
		return
	}

	a.publishScheduleUpdate(item.ChannelID)
	writeJSON(w, http.StatusCreated, item)
}

func (a *API) handleScheduleUpdate(w http.ResponseWriter, r *http.Request) {
	var req schedule.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	item, err := a.schedule.UpdateItem(r.Context(), chi.URLParam(r, "itemID"), req)
	if err != nil {
		a.scheduleError(w, err)
		return
	}

	a.publishScheduleUpdate(item.ChannelID)
	writeJSON(w, http.StatusOK, item)
}

func (a *API) handleScheduleCancel(w http.ResponseWriter, r *http.Request) {
	item, err := a.schedule.CancelItem(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		a.scheduleError(w, err)
		return
	}

	a.publishScheduleUpdate(item.ChannelID)
	writeJSON(w, http.StatusOK, item)
}

func (a *API) handleScheduleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "itemID")
	item, err := a.schedule.GetItem(r.Context(), id)
	if err != nil {
		a.scheduleError(w, err)
		return
	}

	if err := a.schedule.DeleteItem(r.Context(), id); err != nil {
		a.scheduleError(w, err)
		return
	}

	a.publishScheduleUpdate(item.ChannelID)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleNowPlaying(w http.ResponseWriter, r *http.Request) {
	channelID := r.URL.Query().Get("channel_id")
	if channelID == "" {
		writeError(w, http.StatusBadRequest, "channel_id_required")
		return
	}

	view, err := a.resolver.Resolve(r.Context(), channelID)
	if err != nil {
		a.logger.Error().Err(err).Str("channel_id", channelID).Msg("now-playing resolve failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, view)
}
