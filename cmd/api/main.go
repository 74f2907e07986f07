package main

import (
	"fmt"
	"net/http"
	"os"

	"traveldesk/internal/cache"
	"traveldesk/internal/config"
	"traveldesk/internal/database"
	"traveldesk/internal/handlers"
	"traveldesk/internal/ibge"
	"traveldesk/internal/logger"
	"traveldesk/internal/middleware"
	"traveldesk/internal/services"
	"traveldesk/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "traveldesk/internal/docs" // Import swagger docs
)

// @title           Traveldesk API
// @version         1.0
// @description     Traveldesk is a travel request approval workflow: employees submit travel requests, administrators approve or cancel them, and every mutation is recorded to an audit trail.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	validator.Register()

	// Initialize database
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Pick the cache backend: Redis when configured, in-process otherwise.
	var locationCache cache.Cache
	if appConfig.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(appConfig.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		defer redisCache.Close()
		locationCache = redisCache
		log.Info("Using Redis cache")
	} else {
		locationCache = cache.NewMemoryCache()
		log.Info("REDIS_URL not set, using in-process cache")
	}

	// Initialize services
	db := dbManager.DB()
	activityService := services.NewActivityService(db)
	notifier := services.NewSMTPNotifier(appConfig)
	userService := services.NewUserService(db, activityService)
	travelRequestService := services.NewTravelRequestService(db, activityService, notifier)
	ibgeClient := ibge.NewClient(appConfig.IBGEBaseURL)
	locationService := services.NewLocationService(db, ibgeClient, locationCache, appConfig.Debug)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, notifier)
	userHandler := handlers.NewUserHandler(userService)
	travelRequestHandler := handlers.NewTravelRequestHandler(travelRequestService)
	activityLogHandler := handlers.NewActivityLogHandler(activityService)
	locationHandler := handlers.NewLocationHandler(locationService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	v1.POST("/register", authHandler.Register)
	v1.POST("/login", authHandler.Login)
	v1.POST("/refresh", authHandler.Refresh)
	v1.POST("/forgot-password", authHandler.ForgotPassword)
	v1.POST("/reset-password", authHandler.ResetPassword)
	v1.GET("/locations/destinations", locationHandler.GetDestinations)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(userService))

	protected.GET("/me", authHandler.Me)
	protected.POST("/logout", authHandler.Logout)

	travelRequests := protected.Group("/travel-requests")
	travelRequests.GET("", travelRequestHandler.List)
	travelRequests.POST("", travelRequestHandler.Create)
	travelRequests.GET("/:id", travelRequestHandler.Get)
	travelRequests.PUT("/:id", travelRequestHandler.Update)
	travelRequests.DELETE("/:id", travelRequestHandler.Delete)
	travelRequests.PATCH("/:id/status", travelRequestHandler.UpdateStatus)
	travelRequests.PATCH("/:id/cancel", travelRequestHandler.Cancel)

	protected.GET("/users/:id", userHandler.GetUser)
	protected.GET("/locations/cities", locationHandler.GetCities)

	// Admin routes
	admin := v1.Group("/")
	admin.Use(middleware.AuthMiddleware(userService), middleware.AdminOnly())
	admin.GET("/users", userHandler.ListUsers)
	admin.PUT("/users/:id", userHandler.UpdateUser)
	admin.DELETE("/users/:id", userHandler.DeleteUser)
	admin.GET("/activity-logs", activityLogHandler.List)

	log.Infof("Starting traveldesk API server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
