package main

import (
	"flag"
	"os"
	"time"

	"github.com/daybox-app/daybox/pkg/daybox/auth"
	"github.com/daybox-app/daybox/pkg/daybox/calendar"
	"github.com/daybox-app/daybox/pkg/daybox/config"
	"github.com/daybox-app/daybox/pkg/daybox/database"
	"github.com/daybox-app/daybox/pkg/daybox/folders"
	"github.com/daybox-app/daybox/pkg/daybox/ideas"
	"github.com/daybox-app/daybox/pkg/daybox/importexport"
	"github.com/daybox-app/daybox/pkg/daybox/models"
	"github.com/daybox-app/daybox/pkg/daybox/oauth"
	"github.com/daybox-app/daybox/pkg/daybox/preview"
	"github.com/daybox-app/daybox/pkg/daybox/tags"
	"github.com/daybox-app/daybox/pkg/daybox/tasks"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	if *configPath == "" {
		if _, err := os.Stat("daybox.yaml"); err == nil {
			*configPath = "daybox.yaml"
		}
	}
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", *configPath))
	}

	auth.Configure(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	// Connect to database
	if err := database.Connect(cfg.Database.Path); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	db := database.GetDB()

	// Run auto-migrations
	if err := models.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	logger.Info("Database migrations completed")

	// Background link-preview workers; requests only ever enqueue
	enricher := preview.NewEnricher(db, logger, preview.Options{
		Workers:   cfg.Preview.Workers,
		QueueSize: cfg.Preview.QueueSize,
		Timeout:   time.Duration(cfg.Preview.TimeoutSeconds) * time.Second,
	})
	defer enricher.Close()

	// Set up Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"service": "daybox",
			})
		})

		// Auth routes (public)
		authHandler := auth.NewHandler(db)
		authGroup := api.Group("/auth")
		authHandler.RegisterRoutes(authGroup)

		// OAuth login routes (public; providers from startup config)
		oauthHandler := oauth.NewHandler(db, logger, cfg.Server.BaseURL, cfg.OAuth)
		oauthHandler.RegisterRoutes(authGroup)

		// Everything below requires an authenticated principal
		protected := api.Group("", auth.AuthMiddleware())

		foldersHandler := folders.NewHandler(db)
		foldersHandler.RegisterRoutes(protected)

		tagsHandler := tags.NewHandler(db)
		tagsHandler.RegisterRoutes(protected)

		ideasHandler := ideas.NewHandler(db, enricher)
		ideasHandler.RegisterRoutes(protected)

		tasksHandler := tasks.NewHandler(db)
		tasksHandler.RegisterRoutes(protected)

		calendarHandler := calendar.NewHandler(db)
		calendarHandler.RegisterRoutes(protected)

		importExportHandler := importexport.NewHandler(db)
		importExportHandler.RegisterRoutes(protected)
	}

	logger.Info("Starting daybox server", zap.String("port", cfg.Server.Port))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
