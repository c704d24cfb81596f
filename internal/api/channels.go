/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/friendsincode/nzuri_tv/internal/cache"
	"github.com/friendsincode/nzuri_tv/internal/events"
	"github.com/friendsincode/nzuri_tv/internal/models"
)

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	return strings.Trim(slug, "-")
}

func (a *API) handleChannelsList(w http.ResponseWriter, r *http.Request) {
	var channels []models.Channel
	if a.cache.GetJSON(r.Context(), cache.KeyChannelList, &channels) {
		writeJSON(w, http.StatusOK, channels)
		return
	}

	if err := a.db.WithContext(r.Context()).Order("name ASC").Find(&channels).Error; err != nil {
		a.logger.Error().Err(err).Msg("list channels failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.cache.SetJSON(r.Context(), cache.KeyChannelList, channels, cache.DefaultChannelListTTL)
	writeJSON(w, http.StatusOK, channels)
}

func (a *API) handleChannelsGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "channelID")

	var channel models.Channel
	err := a.db.WithContext(r.Context()).First(&channel, "id = ? OR slug = ?", id, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "channel_not_found")
		return
	}
	if err != nil {
		a.logger.Error().Err(err).Msg("get channel failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, channel)
}

func (a *API) handleChannelsCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string `json:"name"`
		Slug            string `json:"slug"`
		Description     string `json:"description"`
		DefaultEmbedURL string `json:"default_embed_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name_required")
		return
	}
	if req.Slug == "" {
		req.Slug = slugify(req.Name)
	}

	channel := models.Channel{
		ID:              uuid.NewString(),
		Name:            req.Name,
		Slug:            req.Slug,
		Description:     req.Description,
		DefaultEmbedURL: req.DefaultEmbedURL,
	}
	if err := a.db.WithContext(r.Context()).Create(&channel).Error; err != nil {
		a.logger.Error().Err(err).Msg("create channel failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.cache.InvalidateChannels(r.Context())
	a.bus.Publish(events.EventChannelUpdated, events.Payload{"channel_id": channel.ID})
	writeJSON(w, http.StatusCreated, channel)
}

func (a *API) handleChannelsUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "channelID")

	var channel models.Channel
	err := a.db.WithContext(r.Context()).First(&channel, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "channel_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	var req struct {
		Name            *string `json:"name"`
		Description     *string `json:"description"`
		DefaultEmbedURL *string `json:"default_embed_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	if req.Name != nil {
		channel.Name = *req.Name
	}
	if req.Description != nil {
		channel.Description = *req.Description
	}
	if req.DefaultEmbedURL != nil {
		channel.DefaultEmbedURL = *req.DefaultEmbedURL
	}

	if err := a.db.WithContext(r.Context()).Save(&channel).Error; err != nil {
		a.logger.Error().Err(err).Msg("update channel failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.cache.InvalidateChannels(r.Context())
	a.bus.Publish(events.EventChannelUpdated, events.Payload{"channel_id": channel.ID})
	writeJSON(w, http.StatusOK, channel)
}
