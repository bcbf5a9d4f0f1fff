package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/schemedesk/schemedesk-backend/api/routes"
	"github.com/schemedesk/schemedesk-backend/internal/approval"
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
	"github.com/schemedesk/schemedesk-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	catalogRepo := catalog.NewRepository(dbClient.DB())
	catalogService, err := catalog.NewService(catalogRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	approvalService, err := approval.NewService(approval.NewRepository(dbClient.DB()), dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create approval service", err)
		os.Exit(1)
	}

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

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, catalogService, approvalService, settlementService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
