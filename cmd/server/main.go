// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/api"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/cache"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/config"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/forecast"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/repository"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/repository/postgres"
	"github.com/saas-management-techmomentum/nova-ware-sub000/internal/service"
	"github.com/saas-management-techmomentum/nova-ware-sub000/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database. Without it only inline evaluation is served.
	var repo repository.SnapshotRepository
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("database unavailable, stored snapshot endpoints disabled")
	} else {
		defer db.Close()
		repo = repository.NewSnapshotRepository(db)
	}

	forecastCache, err := cache.NewForecastCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("forecast cache disabled")
		forecastCache = cache.NewNoopForecastCache()
	}

	engine := forecast.NewEngine(
		forecast.ConfigFromSettings(cfg.Forecast),
		forecast.WithLogger(logger.Log),
	)

	// Initialize services
	services := &api.Services{
		ForecastService: service.NewForecastService(repo, forecastCache, engine),
	}

	// Initialize HTTP server
	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
