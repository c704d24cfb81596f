/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/nzuri_tv/internal/auth"
	"github.com/friendsincode/nzuri_tv/internal/cache"
	"github.com/friendsincode/nzuri_tv/internal/events"
	"github.com/friendsincode/nzuri_tv/internal/models"
	"github.com/friendsincode/nzuri_tv/internal/news"
	"github.com/friendsincode/nzuri_tv/internal/notifier"
	"github.com/friendsincode/nzuri_tv/internal/nowplaying"
	"github.com/friendsincode/nzuri_tv/internal/schedule"
	"github.com/friendsincode/nzuri_tv/internal/store"
)

// API exposes HTTP handlers.
type API struct {
	db        *gorm.DB
	store     *store.Store
	jwtSecret []byte
	tokenTTL  time.Duration
	schedule  *schedule.Service
	resolver  *nowplaying.Resolver
	notifier  *notifier.Notifier
	news      *news.Service
	cache     *cache.Cache
	bus       *events.Bus
	logger    zerolog.Logger
}

// New creates the API router wrapper.
func New(db *gorm.DB, st *store.Store, jwtSecret []byte, tokenTTL time.Duration, scheduleSvc *schedule.Service, resolver *nowplaying.Resolver, notif *notifier.Notifier, newsSvc *news.Service, c *cache.Cache, bus *events.Bus, logger zerolog.Logger) *API {
	return &API{
		db:        db,
		store:     st,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		schedule:  scheduleSvc,
		resolver:  resolver,
		notifier:  notif,
		news:      newsSvc,
		cache:     c,
		bus:       bus,
		logger:    logger,
	}
}

// Routes registers all API endpoints.
func (a *API) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", a.handleHealth)

		// Public endpoints (no auth required)
		r.Post("/auth/register", a.handleRegister)
		r.Post("/auth/login", a.handleLogin)
		r.Get("/channels", a.handleChannelsList)
		r.Get("/channels/{channelID}", a.handleChannelsGet)
		r.Get("/programs", a.handleProgramsList)
		r.Get("/programs/{programID}", a.handleProgramsGet)
		r.Get("/schedule", a.handleScheduleList)
		r.Get("/schedule/now-playing", a.handleNowPlaying)
		r.Get("/schedule/{itemID}", a.handleScheduleGet)
		r.Get("/tickers", a.handleTickersList)
		r.Get("/ads", a.handleAdsList)
		r.Get("/news", a.handleNews)
		r.Post("/contact", a.handleContactCreate)

		r.Group(func(pr chi.Router) {
			pr.Use(a.authMiddleware())

			pr.Route("/channels", func(r chi.Router) {
				r.With(a.requireRoles(models.RoleAdmin)).Post("/", a.handleChannelsCreate)
				r.With(a.requireRoles(models.RoleAdmin)).Patch("/{channelID}", a.handleChannelsUpdate)
			})

			pr.Route("/programs", func(r chi.Router) {
				r.Post("/", a.handleProgramsCreate)
				r.Patch("/{programID}", a.handleProgramsUpdate)
				r.With(a.requireRoles(models.RoleAdmin)).Delete("/{programID}", a.handleProgramsDelete)
			})

			pr.Route("/schedule", func(r chi.Router) {
				r.Post("/", a.handleScheduleCreate)
				r.Patch("/{itemID}", a.handleScheduleUpdate)
				r.Post("/{itemID}/cancel", a.handleScheduleCancel)
				r.With(a.requireRoles(models.RoleAdmin)).Delete("/{itemID}", a.handleScheduleDelete)
			})

			pr.Route("/tickers", func(r chi.Router) {
				r.Post("/", a.handleTickersCreate)
				r.Patch("/{tickerID}", a.handleTickersUpdate)
				r.Delete("/{tickerID}", a.handleTickersDelete)
			})

			pr.Route("/ads", func(r chi.Router) {
				r.Post("/", a.handleAdsCreate)
				r.Delete("/{adID}", a.handleAdsDelete)
			})

			pr.With(a.requireRoles(models.RoleAdmin)).Get("/contact", a.handleContactList)

			pr.Get("/events", a.handleEvents)
		})
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) authMiddleware() func(http.Handler) http.Handler {
	return auth.Middleware(a.jwtSecret)
}

func (a *API) requireRoles(allowed ...models.RoleName) func(http.Handler) http.Handler {
	roles := make([]string, len(allowed))
	for i, role := range allowed {
		roles[i] = string(role)
	}
	return auth.RequireRole(roles...)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
