// airpass - baggage fees and passenger rights for air travellers.
// Copyright (c) 2025 opensource.finance
// Licensed under the Apache License 2.0

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

	"github.com/airpass/airpass/internal/api"
	"github.com/airpass/airpass/internal/baggage"
	"github.com/airpass/airpass/internal/bus"
	"github.com/airpass/airpass/internal/cache"
	"github.com/airpass/airpass/internal/complaint"
	"github.com/airpass/airpass/internal/config"
	"github.com/airpass/airpass/internal/domain"
	"github.com/airpass/airpass/internal/repository"
	"github.com/airpass/airpass/internal/rights"
	"github.com/airpass/airpass/internal/schema"
	"github.com/airpass/airpass/internal/worker"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default $AIRPASS_CONFIG)")
	flag.Parse()

	// Bootstrap logger until the configured level is known
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load(config.ResolvePath(*configPath))
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logLevel := config.LogLevel(cfg)
	if os.Getenv("AIRPASS_DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	slog.Info("starting airpass",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)
	slog.Info("configuration loaded",
		"repository", cfg.Repository.Driver,
		"cache", cfg.Cache.Type,
		"eventbus", cfg.EventBus.Type,
		"two_phase_cache", cfg.Cache.EnableTwoPhase,
	)

	if err := run(cfg); err != nil {
		slog.Error("airpass stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *domain.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize Repository
	repo, err := repository.New(cfg.Repository)
	if err != nil {
		return fmt.Errorf("failed to initialize repository: %w", err)
	}
	defer repo.Close()
	slog.Info("repository initialized", "driver", cfg.Repository.Driver)

	if !cfg.SkipSeed {
		n, err := repository.SeedAirlines(ctx, repo, domain.DefaultAirlines())
		if err != nil {
			return fmt.Errorf("failed to seed airlines: %w", err)
		}
		slog.Info("airlines seeded", "inserted", n)
	}

	// Initialize Cache
	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	defer cacheImpl.Close()
	slog.Info("cache initialized", "type", cfg.Cache.Type)

	// Initialize EventBus
	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize event bus: %w", err)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	ruleResolver := baggage.NewResolver(repo, cacheImpl, cfg.Cache.RuleTTL)

	rightsResolver, err := loadRights(cfg.Rights)
	if err != nil {
		return err
	}

	validator, err := schema.NewValidator()
	if err != nil {
		return fmt.Errorf("failed to compile request schemas: %w", err)
	}

	// Keep cached rule lookups in step with admin writes on any replica
	invalidation := worker.NewWorker(busImpl, ruleResolver)
	if err := invalidation.Start(); err != nil {
		return fmt.Errorf("failed to start invalidation worker: %w", err)
	}

	srv := api.NewServer(cfg.Server, api.Deps{
		Repo:       repo,
		Cache:      cacheImpl,
		Bus:        busImpl,
		Rules:      ruleResolver,
		Rights:     rightsResolver,
		Complaints: complaint.NewAssembler(),
		Validator:  validator,
		AdminToken: cfg.Admin.Token,
		Version:    Version,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	slog.Info("airpass is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"admin_token", cfg.Admin.Token != "",
	)

	printBanner(cfg, Version)

	var serveErr error
	select {
	case <-ctx.Done():
		slog.Info("shutting down...")
	case serveErr = <-errCh:
		slog.Error("server failed", "error", serveErr)
	}

	if err := invalidation.Stop(); err != nil {
		slog.Error("failed to stop invalidation worker", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	stats := invalidation.GetStats()
	slog.Info("airpass shutdown complete",
		"invalidations_processed", stats.Processed,
		"invalidations_failed", stats.Failed,
	)
	return serveErr
}

// loadRights builds the rights resolver from the configured table file or the built-in table.
func loadRights(cfg domain.RightsConfig) (*rights.Resolver, error) {
	table := rights.DefaultTable()
	source := "builtin"
	if cfg.TablePath != "" {
		loaded, err := rights.LoadTable(cfg.TablePath)
		if err != nil {
			return nil, err
		}
		table = loaded
		source = cfg.TablePath
	}

	resolver, err := rights.NewResolver(table)
	if err != nil {
		return nil, fmt.Errorf("invalid rights table %s: %w", source, err)
	}
	slog.Info("rights table loaded", "source", source, "issue_types", len(table.Issues))
	return resolver, nil
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  airpass - baggage fees and passenger rights")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Storage:  %s\n", cfg.Repository.Driver)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST   /baggage/calculate          - Excess baggage fees")
	fmt.Println("    GET    /baggage/rules/{airline}    - Current baggage rules")
	fmt.Println("    POST   /rights/calculate           - Passenger rights")
	fmt.Println("    POST   /complaints/email           - Complaint e-mail text")
	fmt.Println("    POST   /complaints/pdf             - Complaint letter PDF")
	fmt.Println("    GET    /airlines                   - List airlines")
	fmt.Println("    GET    /admin/rules                - List baggage rules")
	fmt.Println("    POST   /admin/rules                - Create a baggage rule")
	fmt.Println("    PUT    /admin/rules/{id}           - Replace a baggage rule")
	fmt.Println("    DELETE /admin/rules/{id}           - Delete a baggage rule")
	fmt.Println("    PUT    /admin/airlines/{code}      - Create or update an airline")
	fmt.Println("    GET    /health                     - Health check")
	fmt.Println()
}
