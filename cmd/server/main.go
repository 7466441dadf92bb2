package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"rideshare/internal/app"
	"rideshare/internal/auth"
	"rideshare/internal/config"
	"rideshare/internal/handler"
	"rideshare/internal/logger"
	internalRedis "rideshare/internal/redis"
	"rideshare/internal/repository"
	"rideshare/internal/repository/memory"
	"rideshare/internal/repository/postgres"
	"rideshare/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	logCloser := logger.Setup(cfg.Log)
	defer logCloser.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			logrus.WithError(err).Warn("failed to initialize New Relic")
		} else {
			logrus.WithField("app", cfg.NewRelic.AppName).Info("New Relic enabled")
		}
	}

	var db *sql.DB
	if cfg.Store.Backend != "memory" {
		db, err = app.NewDatabase(ctx, cfg.Database, nrApp)
		if err != nil {
			logrus.WithError(err).Fatal("failed to connect to database")
		}
		defer db.Close()
		logrus.Info("Connected to PostgreSQL")
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = app.NewRedisClient(ctx, cfg.Redis, nrApp)
		if err != nil {
			logrus.WithError(err).Fatal("failed to connect to redis")
		}
		defer redisClient.Close()
		logrus.Info("Connected to Redis")
	}

	server := wireServer(db, redisClient, nrApp, cfg)

	// Start server in goroutine.
	go func() {
		logrus.WithFields(logrus.Fields{
			"port":  cfg.Server.Port,
			"store": cfg.Store.Backend,
		}).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("server forced to shutdown")
	}
	if nrApp != nil {
		nrApp.Shutdown(cfg.Server.ShutdownTimeout)
	}

	logrus.Info("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server. db is nil
// for the memory backend and redisClient is nil when Redis is disabled.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	// Initialize repositories.
	var (
		userRepo repository.UserRepository
		rideRepo repository.RideRepository
	)
	if db != nil {
		userRepo = postgres.NewUserRepository(db)
		rideRepo = postgres.NewRideRepository(db)
	} else {
		userRepo = memory.NewUserRepository()
		rideRepo = memory.NewRideRepository()
	}

	if redisClient != nil {
		cacheStore := internalRedis.NewCacheStore(redisClient, cfg.Redis.RideCacheTTL)
		rideRepo = internalRedis.NewCachedRideRepository(rideRepo, cacheStore)
	}

	// Initialize services.
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	notificationService := service.NewNotificationService(logrus.StandardLogger())
	authService := service.NewAuthService(userRepo, tokens)
	rideService := service.NewRideService(rideRepo, notificationService, service.ParseCompletePolicy(cfg.Ride.CompletePolicy))

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		AuthHandler:   handler.NewAuthHandler(authService),
		RideHandler:   handler.NewRideHandler(rideService),
		TokenVerifier: tokens,
		UserRepo:      userRepo,
		RedisClient:   redisClient,
		NewRelicApp:   nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
