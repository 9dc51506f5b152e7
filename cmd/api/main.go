package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/opsdash/backend-go/internal/api"
	"github.com/opsdash/backend-go/internal/cache"
	"github.com/opsdash/backend-go/internal/config"
	"github.com/opsdash/backend-go/internal/repository/postgres"
	"github.com/opsdash/backend-go/internal/report"
	"github.com/opsdash/backend-go/internal/service"
	"github.com/opsdash/backend-go/pkg/logger"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	cfg := config.Load()
	logger.SetLevel(os.Getenv("LOG_LEVEL"))

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}

	// Initialize Repositories
	componentRepo := postgres.NewComponentRepository(db)
	stockRepo := postgres.NewStockRepository(db)
	poRepo := postgres.NewPORepository(db)
	orderRepo := postgres.NewOrderHistoryRepository(db)
	bomRepo := postgres.NewBOMRepository(db)

	// Initialize forecast cache (noop when disabled)
	forecastCache, err := cache.NewForecastCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("forecast cache unavailable, falling back to noop")
		forecastCache = cache.NewNoopForecastCache()
	}

	// Initialize Services
	stockService := service.NewStockService(stockRepo, componentRepo, forecastCache)
	poService := service.NewPOService(poRepo, componentRepo, forecastCache)
	forecastService := service.NewForecastService(
		componentRepo, stockRepo, orderRepo, bomRepo, forecastCache,
		cfg.Forecast.WindowDays, cfg.Forecast.TargetCoverDays,
	)

	var archiver *report.Archiver
	if cfg.Storage.Enabled {
		storage, err := report.NewMinioStorage(cfg.Storage)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize report storage")
		}
		archiver = report.NewArchiver(storage)
	}

	router := api.NewRouter(&api.Services{
		Components:      componentRepo,
		StockService:    stockService,
		POService:       poService,
		ForecastService: forecastService,
		Archiver:        archiver,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
