package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/friendsincode/mealclock/internal/audit"
	"github.com/friendsincode/mealclock/internal/catalog"
	"github.com/friendsincode/mealclock/internal/config"
	"github.com/friendsincode/mealclock/internal/db"
	"github.com/friendsincode/mealclock/internal/events"
	"github.com/friendsincode/mealclock/internal/logbuffer"
	"github.com/friendsincode/mealclock/internal/logging"
	"github.com/friendsincode/mealclock/internal/server"
	"github.com/friendsincode/mealclock/internal/telemetry"
	"github.com/friendsincode/mealclock/internal/version"
)

// cliActor is recorded in the audit log for changes made from the command line.
const cliActor = "cli"

var (
	logger zerolog.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "mealclock",
	Short: "Mealclock - meal block planner",
	Long:  "Mealclock keeps a catalog of foods and recipes and fits them into timed meal blocks.",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Mealclock API server",
	Long:  "Start the HTTP API server for the food catalog and block planner",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called by commands that need it)
func loadConfig() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger = logging.Setup(cfg.Environment)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	// Tee JSON log lines into memory for the admin log endpoints.
	logBuf := logbuffer.New(cfg.LogBufferSize)
	logger = logging.SetupWithWriter(cfg.Environment, os.Stderr, logbuffer.NewWriter(logBuf, nil))

	logger.Info().Str("version", version.Version).Msg("Mealclock starting")

	tracerProvider, err := telemetry.InitTracer(context.Background(), telemetry.TracerConfig{
		ServiceName:    "mealclock",
		ServiceVersion: version.Version,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TracingEnabled,
		SampleRate:     cfg.TracingSampleRate,
	}, logger)
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown tracer provider")
		}
	}()

	srv, err := server.New(cfg, logBuf, logger)
	if err != nil {
		return fmt.Errorf("initialize server: %w", err)
	}

	httpServer := srv.HTTPServer()

	go func() {
		logger.Info().Str("addr", cfg.Addr()).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down gracefully...")

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(timeoutCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	if err := srv.Close(); err != nil {
		logger.Error().Err(err).Msg("shutdown cleanup failed")
	}

	logger.Info().Msg("Mealclock stopped")
	return nil
}

// initDatabase connects to the configured database and applies migrations.
func initDatabase() (*gorm.DB, error) {
	database, err := db.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(database); err != nil {
		_ = db.Close(database)
		return nil, err
	}
	return database, nil
}

// workspace bundles what catalog and credential commands need. Changes
// published on bus are written to the audit log before close returns.
type workspace struct {
	db      *gorm.DB
	bus     *events.Bus
	catalog *catalog.Service
	audit   *audit.Service

	stopAudit context.CancelFunc
	auditDone <-chan struct{}
}

func openWorkspace() (*workspace, error) {
	if err := loadConfig(); err != nil {
		return nil, err
	}
	database, err := initDatabase()
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	bus := events.NewBus()
	auditCtx, stop := context.WithCancel(context.Background())
	ws := &workspace{
		db:        database,
		bus:       bus,
		catalog:   catalog.NewService(database, nil, bus, logger),
		stopAudit: stop,
	}
	ws.audit = audit.NewService(database, bus, logger)
	ws.auditDone = ws.audit.Listen(auditCtx)
	return ws, nil
}

func (w *workspace) close() {
	w.stopAudit()
	<-w.auditDone
	if err := db.Close(w.db); err != nil {
		logger.Error().Err(err).Msg("close database")
	}
}
