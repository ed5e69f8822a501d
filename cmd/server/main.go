package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/stockcast/internal/api"
	"github.com/andresuchdata/stockcast/internal/cache"
	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/andresuchdata/stockcast/internal/repository"
	"github.com/andresuchdata/stockcast/internal/repository/postgres"
	"github.com/andresuchdata/stockcast/internal/service"
	"github.com/andresuchdata/stockcast/internal/storage"
	"github.com/andresuchdata/stockcast/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.Configure(cfg.App.LogLevel, cfg.App.LogJSON)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The planning endpoints that take history inline work without a
	// database, so a connection failure only disables the stored-data routes.
	var repo repository.PlanningRepository
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Database unavailable, stored-data endpoints disabled")
	} else {
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to apply schema")
		}
		repo = postgres.NewPlanningRepository(db)
	}

	forecastCache, err := cache.NewForecastCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Forecast cache unavailable, continuing without it")
		forecastCache = cache.NewNoopForecastCache()
	}

	var store storage.ObjectStorage
	if cfg.Storage.Enabled {
		client, err := storage.NewMinioClient(ctx, storage.MinioConfig{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Object storage unavailable, plan reports will not be exported")
		} else {
			store = client
		}
	}

	forecastParams, err := cfg.Forecast.Parameters()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Invalid forecast configuration")
	}

	planning := service.NewPlanningService(repo, forecastCache, store,
		service.NewAPIKeyGate(cfg.Server.APIKey, service.OpForecast),
		service.Options{
			Forecast:     forecastParams,
			Optimizer:    cfg.Optimizer.Parameters(),
			HorizonDays:  cfg.Forecast.HorizonDays,
			HistoryDays:  cfg.Optimizer.HistoryDays,
			BatchWorkers: cfg.Optimizer.BatchWorkers,
			ReportPrefix: cfg.Storage.Prefix,
		})

	router := api.NewRouter(&api.Services{Planning: planning}, api.RouterConfig{
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		RequestsPerSecond: cfg.Server.RateLimitRPS,
		Burst:             cfg.Server.RateLimitBurst,
	})
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("Server forced to shutdown")
		os.Exit(1)
	}

	logger.Log.Info().Msg("Server exiting")
}
