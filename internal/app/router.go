package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"rideshare/internal/domain"
	"rideshare/internal/handler"
	"rideshare/internal/middleware"
	"rideshare/internal/repository"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	AuthHandler   *handler.AuthHandler
	RideHandler   *handler.RideHandler
	TokenVerifier middleware.TokenVerifier
	UserRepo      repository.UserRepository
	// RedisClient is optional. Without it Idempotency-Key headers are ignored.
	RedisClient *redis.Client
	NewRelicApp *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(logrus.StandardLogger().WriterLevel(logrus.InfoLevel)))
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
		router.Use(middleware.NewRelicAttributes())
	}

	if deps.RedisClient != nil {
		router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))
	}

	// Renders errors recorded by the auth middleware. Sits inside the
	// idempotency middleware so replays see the rendered body.
	router.Use(handler.ErrorRenderer())

	router.NoRoute(handler.NotFound)

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public auth routes.
	authRoutes := router.Group("/api/auth")
	{
		authRoutes.POST("/register", deps.AuthHandler.Register)
		authRoutes.POST("/login", deps.AuthHandler.Login)
	}

	// API v1 routes, all authenticated.
	v1 := router.Group("/api/v1")
	v1.Use(middleware.Authenticate(deps.TokenVerifier, deps.UserRepo))
	{
		passenger := middleware.RequireRole(domain.RolePassenger)
		driver := middleware.RequireRole(domain.RoleDriver)

		// Ride routes.
		v1.POST("/rides", passenger, deps.RideHandler.CreateRide)
		v1.POST("/rides/:id/complete", deps.RideHandler.CompleteRide)

		// Passenger routes.
		v1.GET("/user/rides", passenger, deps.RideHandler.ListMine)

		// Driver routes.
		drivers := v1.Group("/driver", driver)
		{
			drivers.GET("/rides/requests", deps.RideHandler.ListPending)
			drivers.POST("/rides/:id/accept", deps.RideHandler.AcceptRide)
		}
	}

	return router
}
