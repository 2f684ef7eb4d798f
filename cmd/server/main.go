/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payroll engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, flags)
  2. Build the logger
  3. Open the store (sqlite, postgres or memory)
  4. Create the payroll service and API handler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PAYROLL_ADDR)
  -db      SQLite database path (overrides PAYROLL_SQLITE_PATH)
           Use ":memory:" for in-memory database

ENVIRONMENT:
  See config/config.go. The most common ones:
  PAYROLL_STORE, PAYROLL_SQLITE_PATH, DATABASE_URL, LOG_LEVEL

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the store

EXAMPLES:
  # Run with file database
  ./server -db="./data/payroll.db"

  # Run against PostgreSQL
  PAYROLL_STORE=postgres DATABASE_URL=postgres://... ./server

SEE ALSO:
  - api/server.go: Router configuration
  - payroll/service.go: Service wiring
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/payroll-engine/api"
	"github.com/warp/payroll-engine/config"
	"github.com/warp/payroll-engine/logging"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/payroll/store"
	"github.com/warp/payroll-engine/store/postgres"
	"github.com/warp/payroll-engine/store/sqlite"
)

// backend is what every store implementation offers.
type backend interface {
	payroll.TxStore
	api.Backend
}

func main() {
	cfg := config.Load()

	// Flags
	port := flag.Int("port", 0, "HTTP server port (overrides PAYROLL_ADDR)")
	dbPath := flag.String("db", "", "SQLite database path (overrides PAYROLL_SQLITE_PATH)")
	flag.Parse()
	if *port != 0 {
		cfg.Addr = fmt.Sprintf(":%d", *port)
	}
	if *dbPath != "" {
		cfg.SQLitePath = *dbPath
	}

	logger := logging.New(os.Stdout, logging.Options{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ReplaceAttr: api.LogReplaceAttr,
	}).With(slog.String("app", "payroll-engine"), slog.String("env", cfg.Environment))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize store", "store", cfg.Store, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	svc := payroll.NewService(db, payroll.Options{
		Lifecycle:   payroll.Lifecycle{Strict: cfg.StrictLifecycle},
		Directory:   db,
		BulkWorkers: cfg.BulkWorkers,
		Logger:      logger,
	})

	handler := api.NewHandler(svc, db, logger)
	router := api.NewRouter(handler, api.RouterOptions{
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			"addr", cfg.Addr,
			"store", cfg.Store,
			"lifecycle", svc.Engine.Lifecycle().String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

// openStore opens the configured backend and returns a matching close func.
func openStore(ctx context.Context, cfg config.Config) (backend, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, func() { pg.Close() }, nil
	case config.StoreMemory:
		return store.NewMemory(), func() {}, nil
	default:
		lite, err := sqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return lite, func() { lite.Close() }, nil
	}
}
