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

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/friendsincode/nzuri_tv/internal/auth"
	"github.com/friendsincode/nzuri_tv/internal/models"
)

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email_and_password_required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password_too_short")
		return
	}

	var existing models.User
	err := a.db.WithContext(r.Context()).First(&existing, "email = ?", req.Email).Error
	if err == nil {
		writeError(w, http.StatusConflict, "email_taken")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		a.logger.Error().Err(err).Msg("register lookup failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		a.logger.Error().Err(err).Msg("password hash failed")
		writeError(w, http.StatusInternalServerError, "hash_error")
		return
	}

	user := models.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleEditor,
	}
	if err := a.db.WithContext(r.Context()).Create(&user).Error; err != nil {
		a.logger.Error().Err(err).Msg("create user failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	a.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("user registered")
	writeJSON(w, http.StatusCreated, user)
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	var user models.User
	err := a.db.WithContext(r.Context()).First(&user, "email = ?", strings.ToLower(strings.TrimSpace(req.Email))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !auth.CheckPassword(user.PasswordHash, req.Password)) {
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}
	if err != nil {
		a.logger.Error().Err(err).Msg("login lookup failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	token, err := auth.Issue(a.jwtSecret, auth.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	}, a.tokenTTL)
	if err != nil {
		a.logger.Error().Err(err).Msg("token issue failed")
		writeError(w, http.StatusInternalServerError, "token_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}
