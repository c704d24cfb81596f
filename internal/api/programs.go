/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/friendsincode/nzuri_tv/internal/auth"
	"github.com/friendsincode/nzuri_tv/internal/events"
	"github.com/friendsincode/nzuri_tv/internal/models"
)

func (a *API) handleProgramsList(w http.ResponseWriter, r *http.Request) {
	query := a.db.WithContext(r.Context()).Order("created_at DESC")
	if channelID := r.URL.Query().Get("channel_id"); channelID != "" {
		query = query.Where("channel_id = ?", channelID)
	}
	if contentType := r.URL.Query().Get("content_type"); contentType != "" {
		query = query.Where("content_type = ?", contentType)
	}

	var programs []models.Program
	if err := query.Find(&programs).Error; err != nil {
		a.logger.Error().Err(err).Msg("list programs failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, programs)
}

func (a *API) handleProgramsGet(w http.ResponseWriter, r *http.Request) {
	var program models.Program
	err := a.db.WithContext(r.Context()).First(&program, "id = ?", chi.URLParam(r, "programID")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "program_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, program)
}

func (a *API) handleProgramsCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChannelID       string `json:"channel_id"`
		Title           string `json:"title"`
		Description     string `json:"description"`
		Tags            string `json:"tags"`
		ContentType     string `json:"content_type"`
		MediaURL        string `json:"media_url"`
		UploadedPath    string `json:"uploaded_path"`
		DurationSeconds int    `json:"duration_seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Title == "" || req.ChannelID == "" {
		writeError(w, http.StatusBadRequest, "title_and_channel_required")
		return
	}

	contentType := models.ContentType(req.ContentType)
	switch contentType {
	case models.ContentVideo, models.ContentLive, models.ContentPlaylist:
	case "":
		contentType = models.ContentVideo
	default:
		writeError(w, http.StatusBadRequest, "unknown_content_type")
		return
	}

	var createdBy string
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		createdBy = claims.UserID
	}

	program := models.Program{
		ID:              uuid.NewString(),
		ChannelID:       req.ChannelID,
		Title:           req.Title,
		Description:     req.Description,
		Tags:            req.Tags,
		ContentType:     contentType,
		MediaURL:        req.MediaURL,
		UploadedPath:    req.UploadedPath,
		DurationSeconds: req.DurationSeconds,
		CreatedBy:       createdBy,
	}
	if err := a.db.WithContext(r.Context()).Create(&program).Error; err != nil {
		a.logger.Error().Err(err).Msg("create program failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.bus.Publish(events.EventProgramUpdated, events.Payload{"program_id": program.ID})
	writeJSON(w, http.StatusCreated, program)
}

func (a *API) handleProgramsUpdate(w http.ResponseWriter, r *http.Request) {
	var program models.Program
	err := a.db.WithContext(r.Context()).First(&program, "id = ?", chi.URLParam(r, "programID")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "program_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	var req struct {
		Title           *string `json:"title"`
		Description     *string `json:"description"`
		Tags            *string `json:"tags"`
		MediaURL        *string `json:"media_url"`
		DurationSeconds *int    `json:"duration_seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	if req.Title != nil {
		program.Title = *req.Title
	}
	if req.Description != nil {
		program.Description = *req.Description
	}
	if req.Tags != nil {
		program.Tags = *req.Tags
	}
	if req.MediaURL != nil {
		program.MediaURL = *req.MediaURL
	}
	if req.DurationSeconds != nil {
		program.DurationSeconds = *req.DurationSeconds
	}

	if err := a.db.WithContext(r.Context()).Save(&program).Error; err != nil {
		a.logger.Error().Err(err).Msg("update program failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.bus.Publish(events.EventProgramUpdated, events.Payload{"program_id": program.ID})
	writeJSON(w, http.StatusOK, program)
}

// handleProgramsDelete removes a program. Schedule items keep their
// program_id; the now-playing resolver reports a nil program for them.
func (a *API) handleProgramsDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "programID")

	result := a.db.WithContext(r.Context()).Delete(&models.Program{}, "id = ?", id)
	if result.Error != nil {
		a.logger.Error().Err(result.Error).Msg("delete program failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if result.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "program_not_found")
		return
	}

	a.bus.Publish(events.EventProgramUpdated, events.Payload{"program_id": id})
	w.WriteHeader(http.StatusNoContent)
}
