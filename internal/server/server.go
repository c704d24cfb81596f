/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package server wires configuration, storage, the scheduling core, and
// the HTTP surface into a runnable service.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/nzuri_tv/internal/api"
	"github.com/friendsincode/nzuri_tv/internal/cache"
	"github.com/friendsincode/nzuri_tv/internal/clock"
	"github.com/friendsincode/nzuri_tv/internal/config"
	"github.com/friendsincode/nzuri_tv/internal/db"
	"github.com/friendsincode/nzuri_tv/internal/events"
	"github.com/friendsincode/nzuri_tv/internal/lifecycle"
	"github.com/friendsincode/nzuri_tv/internal/news"
	"github.com/friendsincode/nzuri_tv/internal/notifier"
	"github.com/friendsincode/nzuri_tv/internal/nowplaying"
	"github.com/friendsincode/nzuri_tv/internal/schedule"
	"github.com/friendsincode/nzuri_tv/internal/seed"
	"github.com/friendsincode/nzuri_tv/internal/store"
	"github.com/friendsincode/nzuri_tv/internal/telemetry"
)

// Server owns the HTTP stack and background workers.
type Server struct {
	cfg    *config.Config
	logger zerolog.Logger
	router chi.Router

	db        *gorm.DB
	store     *store.Store
	schedule  *schedule.Service
	lifecycle *lifecycle.Engine
	resolver  *nowplaying.Resolver
	notifier  *notifier.Notifier
	news      *news.Service
	cache     *cache.Cache
	bus       *events.Bus
	api       *api.API

	httpServer *http.Server
	closers    []func() error
	bgCancel   context.CancelFunc
	bgWG       sync.WaitGroup
}

// New constructs the server and wires dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(telemetry.MetricsMiddleware)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	// Skip timeout for WebSocket upgrade requests
	router.Use(func(next http.Handler) http.Handler {
		timeout := middleware.Timeout(60 * time.Second)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Upgrade") == "websocket" {
				next.ServeHTTP(w, r)
				return
			}
			timeout(next).ServeHTTP(w, r)
		})
	})

	srv := &Server{
		cfg:    cfg,
		logger: logger,
		router: router,
		bus:    events.NewBus(),
	}

	if err := srv.initDependencies(); err != nil {
		return nil, err
	}

	srv.configureRoutes()
	srv.startBackgroundWorkers()

	addr := fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort)
	srv.httpServer = &http.Server{
		Addr:              addr,
		Handler:           srv.router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       0,
		// WriteTimeout 0 so the events WebSocket is not cut off; the
		// middleware timeout covers plain routes.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	return srv, nil
}

func (s *Server) initDependencies() error {
	database, err := db.Connect(s.cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(database); err != nil {
		return err
	}
	s.db = database
	s.DeferClose(func() error { return db.Close(database) })

	if s.cfg.CacheEnabled {
		cacheCfg := cache.DefaultConfig()
		cacheCfg.RedisAddr = s.cfg.RedisAddr
		cacheCfg.RedisPassword = s.cfg.RedisPassword
		cacheCfg.RedisDB = s.cfg.RedisDB
		entityCache, err := cache.New(cacheCfg, s.logger)
		if err != nil {
			s.logger.Warn().Err(err).Msg("cache initialization failed, continuing without cache")
		} else {
			s.cache = entityCache
			s.DeferClose(func() error { return s.cache.Close() })
		}
	}

	clk := clock.System()
	s.store = store.New(database, s.cfg.StoreTimeout, s.logger)
	s.schedule = schedule.NewService(s.store, s.logger)
	s.lifecycle = lifecycle.New(s.store, clk, s.cfg.EngineTickInterval, s.logger)
	s.resolver = nowplaying.New(s.store, clk, s.cache, s.logger)
	s.notifier = notifier.New(s.resolver, s.store, s.bus, s.cfg.NotifierPollInterval, s.logger)
	s.news = news.New(s.cfg.NewsFeeds, 5*time.Minute, s.logger)

	if _, err := seed.EnsureDefaultChannel(context.Background(), database, s.cfg.DefaultChannelName, s.cfg.DefaultChannelSlug, s.logger); err != nil {
		return fmt.Errorf("ensure default channel: %w", err)
	}

	s.api = api.New(database, s.store, []byte(s.cfg.JWTSigningKey), s.cfg.JWTTokenTTL, s.schedule, s.resolver, s.notifier, s.news, s.cache, s.bus, s.logger)
	return nil
}

func (s *Server) configureRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	s.router.Handle("/metrics", telemetry.Handler())

	s.api.Routes(s.router)
}

func (s *Server) startBackgroundWorkers() {
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		if err := s.lifecycle.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error().Err(err).Msg("lifecycle engine exited")
		}
	}()

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		if err := s.notifier.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error().Err(err).Msg("update notifier exited")
		}
	}()
}

func (s *Server) stopBackgroundWorkers() {
	if s.bgCancel != nil {
		s.bgCancel()
	}
	s.bgWG.Wait()
}

// HTTPServer returns the configured HTTP server for lifecycle control.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// DB exposes the database handle for maintenance commands.
func (s *Server) DB() *gorm.DB {
	return s.db
}

// Schedule exposes the schedule service for maintenance commands.
func (s *Server) Schedule() *schedule.Service {
	return s.schedule
}

// DeferClose registers a cleanup hook.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Close releases owned resources in reverse order.
func (s *Server) Close() error {
	s.stopBackgroundWorkers()
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
