/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/mealclock/internal/api"
	"github.com/friendsincode/mealclock/internal/audit"
	"github.com/friendsincode/mealclock/internal/cache"
	"github.com/friendsincode/mealclock/internal/catalog"
	"github.com/friendsincode/mealclock/internal/config"
	"github.com/friendsincode/mealclock/internal/db"
	"github.com/friendsincode/mealclock/internal/events"
	"github.com/friendsincode/mealclock/internal/integrity"
	"github.com/friendsincode/mealclock/internal/logbuffer"
	"github.com/friendsincode/mealclock/internal/planner"
	"github.com/friendsincode/mealclock/internal/telemetry"
	"github.com/friendsincode/mealclock/internal/version"
)

// dbMetricsInterval is how often connection pool gauges are refreshed.
const dbMetricsInterval = 15 * time.Second

// Server bundles HTTP and supporting services.
type Server struct {
	cfg        *config.Config
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
	closers    []func() error

	db        *gorm.DB
	cache     *cache.Cache
	bus       *events.Bus
	catalog   *catalog.Service
	planner   *planner.Service
	auditSvc  *audit.Service
	integrity *integrity.Service
	logBuffer *logbuffer.Buffer
	api       *api.API
	updates   *version.Checker

	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup
}

// New constructs the server and wires dependencies. logBuf may be nil, in
// which case the system log endpoints report 503.
func New(cfg *config.Config, logBuf *logbuffer.Buffer, logger zerolog.Logger) (*Server, error) {
	for _, warn := range cfg.LegacyEnvWarnings {
		logger.Warn().Msg(warn)
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(securityHeadersMiddleware)
	router.Use(telemetry.TracingMiddleware)
	router.Use(telemetry.MetricsMiddleware)
	router.Use(middleware.Timeout(30 * time.Second))

	srv := &Server{
		cfg:       cfg,
		logger:    logger,
		router:    router,
		bus:       events.NewBus(),
		logBuffer: logBuf,
	}

	if err := srv.initDependencies(); err != nil {
		_ = srv.Close()
		return nil, err
	}

	srv.configureRoutes()
	srv.startBackgroundWorkers()

	srv.httpServer = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return srv, nil
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'; base-uri 'none'")

		// Only advertise HSTS for requests served over HTTPS.
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) initDependencies() error {
	database, err := db.Connect(s.cfg)
	if err != nil {
		return err
	}
	s.db = database
	s.DeferClose(func() error { return db.Close(database) })

	if err := db.Migrate(database); err != nil {
		return err
	}

	if s.cfg.CacheEnabled() {
		cacheCfg := cache.DefaultConfig()
		cacheCfg.RedisAddr = s.cfg.RedisAddr
		cacheCfg.RedisPassword = s.cfg.RedisPassword
		cacheCfg.RedisDB = s.cfg.RedisDB
		cacheCfg.FoodTTL = s.cfg.CacheTTL
		foodCache, err := cache.New(cacheCfg, s.logger)
		if err != nil {
			s.logger.Warn().Err(err).Msg("cache initialization failed, continuing without cache")
		} else {
			s.cache = foodCache
			s.DeferClose(func() error { return foodCache.Close() })
		}
	}

	s.catalog = catalog.NewService(database, s.cache, s.bus, s.logger)
	s.planner = planner.NewService(planner.CatalogResolver{Catalog: s.catalog}, s.logger)
	s.auditSvc = audit.NewService(database, s.bus, s.logger)
	s.integrity = integrity.NewService(database, s.logger)
	s.api = api.New(database, []byte(s.cfg.JWTSigningKey), s.catalog, s.planner, s.auditSvc, s.logger)
	s.api.SetIntegrity(s.integrity)
	s.api.SetLogBuffer(s.logBuffer)

	if s.cfg.UpdateCheck {
		s.updates = version.NewChecker(s.logger)
	}

	return nil
}

// HTTPServer exposes the underlying net/http server.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
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
	s.closers = nil
	return firstErr
}

// DeferClose registers a cleanup hook.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

func (s *Server) startBackgroundWorkers() {
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel

	auditDone := s.auditSvc.Listen(ctx)
	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		<-auditDone
	}()

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		s.runDBMetrics(ctx)
	}()

	if s.updates != nil {
		s.bgWG.Add(1)
		go func() {
			defer s.bgWG.Done()
			s.updates.Run(ctx)
		}()
	}
}

// runDBMetrics refreshes the connection pool gauges until ctx is done.
func (s *Server) runDBMetrics(ctx context.Context) {
	ticker := time.NewTicker(dbMetricsInterval)
	defer ticker.Stop()

	db.UpdateConnectionMetrics(s.db)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			db.UpdateConnectionMetrics(s.db)
		}
	}
}

func (s *Server) stopBackgroundWorkers() {
	if s.bgCancel == nil {
		return
	}
	s.bgCancel()
	s.bgWG.Wait()
	s.bgCancel = nil
}

type healthResponse struct {
	Status   string              `json:"status"`
	Version  string              `json:"version"`
	Database string              `json:"database"`
	Cache    string              `json:"cache"`
	Update   *version.UpdateInfo `json:"update,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:   "ok",
		Version:  version.Version,
		Database: "ok",
		Cache:    "disabled",
	}
	status := http.StatusOK

	if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(r.Context()) != nil {
		resp.Status = "degraded"
		resp.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}
	if s.cache.IsAvailable() {
		resp.Cache = "ok"
	}
	if s.updates != nil {
		info := s.updates.Info()
		resp.Update = &info
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) configureRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", telemetry.Handler())

	s.api.Routes(s.router)
}
