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
	"github.com/friendsincode/nzuri_tv/internal/news"
)

func (a *API) handleTickersList(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("all") == "true" {
		var tickers []models.Ticker
		if err := a.db.WithContext(r.Context()).Order("priority ASC").Find(&tickers).Error; err != nil {
			a.logger.Error().Err(err).Msg("list tickers failed")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		writeJSON(w, http.StatusOK, tickers)
		return
	}

	var tickers []models.Ticker
	if a.cache.GetJSON(r.Context(), cache.KeyTickerList, &tickers) {
		writeJSON(w, http.StatusOK, tickers)
		return
	}

	tickers, err := a.store.ListActiveTickers(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("list tickers failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.cache.SetJSON(r.Context(), cache.KeyTickerList, tickers, cache.DefaultTickerListTTL)
	writeJSON(w, http.StatusOK, tickers)
}

func (a *API) handleTickersCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text     string `json:"text"`
		Priority int    `json:"priority"`
		Active   *bool  `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text_required")
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	ticker := models.Ticker{
		ID:       uuid.NewString(),
		Text:     req.Text,
		Priority: req.Priority,
		Active:   active,
	}
	if err := a.db.WithContext(r.Context()).Create(&ticker).Error; err != nil {
		a.logger.Error().Err(err).Msg("create ticker failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.cache.InvalidateTickers(r.Context())
	a.bus.Publish(events.EventTickerUpdated, events.Payload{"ticker_id": ticker.ID})
	writeJSON(w, http.StatusCreated, ticker)
}

func (a *API) handleTickersUpdate(w http.ResponseWriter, r *http.Request) {
	var ticker models.Ticker
	err := a.db.WithContext(r.Context()).First(&ticker, "id = ?", chi.URLParam(r, "tickerID")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "ticker_not_found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	var req struct {
		Text     *string `json:"text"`
		Priority *int    `json:"priority"`
		Active   *bool   `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	if req.Text != nil {
		ticker.Text = *req.Text
	}
	if req.Priority != nil {
		ticker.Priority = *req.Priority
	}
	if req.Active != nil {
		ticker.Active = *req.Active
	}

	if err := a.db.WithContext(r.Context()).Save(&ticker).Error; err != nil {
		a.logger.Error().Err(err).Msg("update ticker failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.cache.InvalidateTickers(r.Context())
	a.bus.Publish(events.EventTickerUpdated, events.Payload{"ticker_id": ticker.ID})
	writeJSON(w, http.StatusOK, ticker)
}

func (a *API) handleTickersDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tickerID")
	result := a.db.WithContext(r.Context()).Delete(&models.Ticker{}, "id = ?", id)
	if result.Error != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if result.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "ticker_not_found")
		return
	}

	a.cache.InvalidateTickers(r.Context())
	a.bus.Publish(events.EventTickerUpdated, events.Payload{"ticker_id": id})
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleAdsList(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("all") == "true" {
		var ads []models.Ad
		if err := a.db.WithContext(r.Context()).Order("priority ASC").Find(&ads).Error; err != nil {
			a.logger.Error().Err(err).Msg("list ads failed")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		writeJSON(w, http.StatusOK, ads)
		return
	}

	ads, err := a.store.ListActiveAds(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("list ads failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, ads)
}

func (a *API) handleAdsCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string `json:"title"`
		ImageURL string `json:"image_url"`
		ClickURL string `json:"click_url"`
		Priority int    `json:"priority"`
		Active   *bool  `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Title == "" || req.ImageURL == "" {
		writeError(w, http.StatusBadRequest, "title_and_image_required")
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	ad := models.Ad{
		ID:       uuid.NewString(),
		Title:    req.Title,
		ImageURL: req.ImageURL,
		ClickURL: req.ClickURL,
		Priority: req.Priority,
		Active:   active,
	}
	if err := a.db.WithContext(r.Context()).Create(&ad).Error; err != nil {
		a.logger.Error().Err(err).Msg("create ad failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusCreated, ad)
}

func (a *API) handleAdsDelete(w http.ResponseWriter, r *http.Request) {
	result := a.db.WithContext(r.Context()).Delete(&models.Ad{}, "id = ?", chi.URLParam(r, "adID"))
	if result.Error != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if result.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "ad_not_found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleNews(w http.ResponseWriter, r *http.Request) {
	headlines := a.news.Headlines(r.Context())
	if headlines == nil {
		headlines = []news.Headline{}
	}
	writeJSON(w, http.StatusOK, headlines)
}

func (a *API) handleContactCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Email == "" || strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "email_and_message_required")
		return
	}

	msg := models.ContactMessage{
		ID:      uuid.NewString(),
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	}
	if err := a.db.WithContext(r.Context()).Create(&msg).Error; err != nil {
		a.logger.Error().Err(err).Msg("create contact message failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (a *API) handleContactList(w http.ResponseWriter, r *http.Request) {
	var messages []models.ContactMessage
	if err := a.db.WithContext(r.Context()).Order("created_at DESC").Find(&messages).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, messages)
}
