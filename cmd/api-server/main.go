package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"sitterhub/database"
	"sitterhub/internal/config"
	"sitterhub/internal/httpapi/cache"
	"sitterhub/internal/httpapi/handler"
	"sitterhub/internal/httpapi/middleware"
	"sitterhub/internal/httpapi/repository"
	"sitterhub/internal/httpapi/service"
)

func main() {
	// 1. Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	logger := newLogger(cfg)

	// 2. Connect to the database
	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("could not get database handle", "error", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	// 3. Review cache (optional; nil cache degrades to DB reads)
	var reviewCache *cache.ReviewCache
	if cfg.RedisAddr != "" {
		reviewCache, err = cache.NewReviewCache(cfg.RedisAddr, cfg.RedisPassword, time.Duration(cfg.CacheTTL)*time.Second)
		if err != nil {
			logger.Warn("redis unavailable, serving reviews from the database only", "error", err)
			reviewCache = nil
		}
	}

	// 4. Repositories
	userRepo := repository.NewUserRepository(db)
	sitterRepo := repository.NewSitterRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// 5. Services
	authService := service.NewAuthService(db, userRepo, sitterRepo, refreshTokenRepo, cfg)
	reviewService := service.NewReviewService(db, reviewRepo, taskRepo, sitterRepo, userRepo, notificationRepo, reviewCache, logger)
	notificationService := service.NewNotificationService(notificationRepo)

	// 6. Handlers
	authHandler := handler.NewAuthHandler(authService, int64(cfg.AccessTokenTTL.Seconds()))
	reviewHandler := handler.NewReviewHandler(reviewService)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	// 7. Setup Gin
	if cfg.GoEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/check-conn", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"message": "API is alive and database connected",
		})
	})

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	v1 := r.Group("/api/v1")
	v1.Use(rateLimiter.Middleware())
	{
		authHandler.RegisterRoutes(v1)

		// Public per-user review listings
		reviewHandler.RegisterListingRoutes(v1)

		// Bearer-protected routes
		tasks := v1.Group("/tasks", middleware.AuthMiddleware(authService))
		reviewHandler.RegisterTaskRoutes(tasks)

		protected := v1.Group("", middleware.AuthMiddleware(authService))
		notificationHandler.RegisterRoutes(protected)
	}

	httpServer := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("🚀 Server running", "addr", httpServer)
	if err := r.Run(httpServer); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
