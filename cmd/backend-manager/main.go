// Command backend-manager serves the database-administration API: project
// imports, dynamic table CRUD, schema introspection, CSV export, mock data,
// raw queries, and optimization suggestions.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pranshu05/BackendManager-sub003/internal/config"
	"github.com/pranshu05/BackendManager-sub003/internal/crud"
	"github.com/pranshu05/BackendManager-sub003/internal/dbconn"
	"github.com/pranshu05/BackendManager-sub003/internal/export"
	"github.com/pranshu05/BackendManager-sub003/internal/logger"
	"github.com/pranshu05/BackendManager-sub003/internal/mockdata"
	"github.com/pranshu05/BackendManager-sub003/internal/optimize"
	"github.com/pranshu05/BackendManager-sub003/internal/project"
	"github.com/pranshu05/BackendManager-sub003/internal/query"
	"github.com/pranshu05/BackendManager-sub003/internal/server"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.New(nil).Fatalf("failed to load configuration: %v", err)
	}

	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})

	if err := run(cfg, log); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Registry.DSN == "" {
		return errors.New("registry dsn is required (BM_REGISTRY_DSN)")
	}

	if cfg.Registry.WaitForReady {
		if err := dbconn.WaitForReady(ctx, cfg.Registry.DSN,
			dbconn.DefaultReadyAttempts, dbconn.DefaultReadyDelay, dbconn.PgxDialer); err != nil {
			return err
		}
	}

	appPool, err := dbconn.PgxDialer(ctx, cfg.Registry.DSN, dbconn.RegistryPoolConfig())
	if err != nil {
		return err
	}
	defer appPool.Close()

	store := project.NewStore(appPool, log)
	if err := store.Init(ctx); err != nil {
		return err
	}

	registry := dbconn.NewRegistry(log)
	defer registry.Shutdown()

	archiver, err := export.NewArchiver(ctx, cfg.Export, log)
	if err != nil {
		return err
	}

	thresholds := optimize.Thresholds{
		RowThreshold:   cfg.Optimizer.RowThreshold,
		ScanRatio:      cfg.Optimizer.ScanRatio,
		MaxSuggestions: cfg.Optimizer.MaxSuggestions,
	}
	optimizer := optimize.NewService(
		optimize.NewAdvisor(cfg.Optimizer.AdvisorURL, cfg.Optimizer.AdvisorTimeout, log),
		optimize.NewAnalyzer(thresholds, log),
		optimize.NewApplier(log),
		log,
	)

	srv := server.New(server.Deps{
		Log:      log,
		Registry: registry,
		Store:    store,
		Importer: project.NewImporter(store, registry, log),
		Executor: query.NewExecutor(log),
		CRUD:     crud.NewEngine(log),
		Optimize: optimizer,
		Mock:     mockdata.NewGenerator(0),
		Archiver: archiver,
	})

	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
