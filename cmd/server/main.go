// Package main is the entry point for the portfolio analytics service.
// It wires the data providers, the profile store and the analysis services
// together and serves the analytics API over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/miowsis/analytics/internal/config"
	"github.com/miowsis/analytics/internal/database"
	"github.com/miowsis/analytics/internal/modules/allocation"
	"github.com/miowsis/analytics/internal/modules/analytics"
	"github.com/miowsis/analytics/internal/modules/esg"
	"github.com/miowsis/analytics/internal/modules/performance"
	"github.com/miowsis/analytics/internal/modules/profile"
	"github.com/miowsis/analytics/internal/modules/rebalancing"
	"github.com/miowsis/analytics/internal/modules/risk"
	"github.com/miowsis/analytics/internal/modules/stress"
	"github.com/miowsis/analytics/internal/providers"
	"github.com/miowsis/analytics/internal/server"
	"github.com/miowsis/analytics/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().
		Int("port", cfg.Port).
		Str("data_dir", cfg.DataDir).
		Str("benchmark", cfg.BenchmarkSymbol).
		Msg("Starting analytics service")

	db, err := database.New(cfg.DatabasePath())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open profiles database")
	}
	defer func() { _ = db.Close() }()

	// The in-memory provider stands in for the surrounding platform until
	// a real data backend is attached.
	store := providers.NewMemory()

	profiles := profile.NewRepository(db.Conn(), log)

	allocationSvc := allocation.NewService(log)
	performanceSvc := performance.NewService(store, store, cfg.BenchmarkSymbol, cfg.RiskFreeRatePct, log)
	esgSvc := esg.NewService(log)
	riskSvc := risk.NewService(store, store, profiles, cfg.BenchmarkSymbol, log)
	stressSvc := stress.NewService(store, nil, cfg.Simulations, log)
	rebalancingSvc := rebalancing.NewService(store, store, profiles, log)
	analyticsSvc := analytics.NewService(store, allocationSvc, performanceSvc, esgSvc, riskSvc, stressSvc, rebalancingSvc, log)

	srv := server.New(server.Config{
		Log:         log,
		Port:        cfg.Port,
		DevMode:     cfg.DevMode,
		DB:          db,
		Profiles:    profiles,
		Analytics:   analyticsSvc,
		Risk:        riskSvc,
		Stress:      stressSvc,
		Rebalancing: rebalancingSvc,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("Analytics service stopped")
}
