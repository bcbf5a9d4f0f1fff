package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/schemedesk/schemedesk-backend/internal/catalog"
	"github.com/schemedesk/schemedesk-backend/internal/payout"
	"github.com/schemedesk/schemedesk-backend/internal/resolver"
	"github.com/schemedesk/schemedesk-backend/internal/settlement"
	"github.com/schemedesk/schemedesk-backend/internal/targets"
	"github.com/schemedesk/schemedesk-backend/pkg/config"
	"github.com/schemedesk/schemedesk-backend/pkg/db"
	"github.com/schemedesk/schemedesk-backend/pkg/logger"
	"github.com/schemedesk/schemedesk-backend/pkg/metrics"
	"github.com/schemedesk/schemedesk-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "target-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "target-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	catalogRepo := catalog.NewRepository(dbClient.DB())

	resolverService, err := resolver.NewService(resolver.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create resolver service", err)
		os.Exit(1)
	}

	tracker, err := targets.NewTracker(targets.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create target tracker", err)
		os.Exit(1)
	}

	settlementService, err := settlement.NewService(settlement.Params{
		Repo:     settlement.NewRepository(dbClient.DB()),
		DBClient: dbClient,
		Products: catalogRepo,
		Resolver: resolverService,
		Calc:     payout.NewCalculator(cfg.Settlement.GST()),
		Tracker:  tracker,
		Logger:   logg,
		Metrics:  metrics.NewSettlementMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create settlement service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":           cfg.App.Env,
		"poll_interval": cfg.TargetWorker.PollInterval.String(),
		"batch_size":    cfg.TargetWorker.BatchSize,
	})
	logg.Info(ctx, "starting target worker")

	if err := run(ctx, logg, settlementService, cfg.TargetWorker); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "target worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "target worker shutting down gracefully")
}

// run drains failed target progress updates until the context ends.
func run(ctx context.Context, logg *logger.Logger, svc settlement.Service, cfg config.TargetWorkerConfig) error {
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	for {
		resolved, err := svc.RetryTargetFailures(ctx, cfg.BatchSize, cfg.MaxAttempts)
		if err != nil {
			logg.Error(ctx, "retry pass failed", err)
		} else if resolved > 0 {
			passCtx := logg.WithField(ctx, "resolved", resolved)
			logg.Info(passCtx, "target retry pass complete")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
