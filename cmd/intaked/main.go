// Command intaked runs the insurance-application intake HTTP service.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	app "github.com/brokerdesk/intake/internal/app"
	"github.com/brokerdesk/intake/internal/app/httpapi"
	"github.com/brokerdesk/intake/internal/app/storage/csvfile"
	"github.com/brokerdesk/intake/internal/app/storage/postgres"
	"github.com/brokerdesk/intake/internal/config"
	"github.com/brokerdesk/intake/pkg/logger"
)

func main() {
	configFile := flag.String("config", "", "Optional YAML config file overlaying the environment")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *configFile != "" {
		cfg, err = config.LoadFile(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, cleanup, err := buildStores(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("configure stores")
	}
	defer cleanup()

	application := app.New(stores, log)
	handler := httpapi.NewHandler(application, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).WithField("backend", cfg.Storage.Backend).Info("intake service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		log.WithError(err).Error("http server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("shutdown incomplete")
	}
}

// buildStores constructs the record store for the configured backend and the
// reference dataset reader. The returned cleanup releases any database
// handle.
func buildStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (app.Stores, func(), error) {
	reference := csvfile.NewReferenceDataset(cfg.Storage.ReferenceFile)
	cleanup := func() {}

	switch cfg.Storage.Backend {
	case "postgres":
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return app.Stores{}, cleanup, fmt.Errorf("open database: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			db.Close()
			return app.Stores{}, cleanup, fmt.Errorf("ping database: %w", err)
		}

		store := postgres.New(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return app.Stores{}, cleanup, err
		}
		cleanup = func() {
			if err := db.Close(); err != nil {
				log.WithError(err).Warn("error closing database connection")
			}
		}
		return app.Stores{Applications: store, Reference: reference}, cleanup, nil

	case "csv":
		if err := csvfile.Bootstrap(cfg.Storage.RecordsFile); err != nil {
			return app.Stores{}, cleanup, err
		}
		return app.Stores{Applications: csvfile.New(cfg.Storage.RecordsFile), Reference: reference}, cleanup, nil

	default:
		return app.Stores{}, cleanup, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
