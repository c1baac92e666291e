package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/storeopshq/storeops-backend/api/controllers"
	"github.com/storeopshq/storeops-backend/api/routes"
	"github.com/storeopshq/storeops-backend/internal/analytics"
	"github.com/storeopshq/storeops-backend/internal/followup"
	"github.com/storeopshq/storeops-backend/internal/sales"
	"github.com/storeopshq/storeops-backend/internal/stockin"
	"github.com/storeopshq/storeops-backend/internal/stockout"
	"github.com/storeopshq/storeops-backend/internal/udhar"
	"github.com/storeopshq/storeops-backend/pkg/config"
	"github.com/storeopshq/storeops-backend/pkg/db"
	"github.com/storeopshq/storeops-backend/pkg/erp"
	"github.com/storeopshq/storeops-backend/pkg/logger"
	"github.com/storeopshq/storeops-backend/pkg/metrics"
	"github.com/storeopshq/storeops-backend/pkg/migrate"
	"github.com/storeopshq/storeops-backend/pkg/redis"
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

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	stagingMetrics := metrics.NewStagingMetrics(registry)

	erpClient, err := erp.NewClient(cfg.ERP, erp.WithMetrics(stagingMetrics))
	if err != nil {
		logg.Error(context.Background(), "failed to create erp client", err)
		os.Exit(1)
	}

	stockInService, err := stockin.NewService(erpClient, logg, stagingMetrics, cfg.Staging.SessionTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create stock-in service", err)
		os.Exit(1)
	}

	stockOutService, err := stockout.NewService(erpClient, logg, stagingMetrics, cfg.Staging.SessionTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create stock-out service", err)
		os.Exit(1)
	}

	udharService, err := udhar.NewService(udhar.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create udhar service", err)
		os.Exit(1)
	}

	followupService, err := followup.NewService(followup.NewRepository(dbClient.DB()), dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create follow-up service", err)
		os.Exit(1)
	}

	salesService, err := sales.NewService(erpClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create sales service", err)
		os.Exit(1)
	}

	analyticsService, err := analytics.NewService(erpClient, redisClient, cfg.Analytics.CacheTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create analytics service", err)
		os.Exit(1)
	}

	readiness := map[string]controllers.ReadinessPinger{
		"postgres": dbClient,
		"redis":    redisClient,
		"erp":      erpClient,
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
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			readiness,
			registry,
			stockInService,
			stockOutService,
			udharService,
			followupService,
			salesService,
			analyticsService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
