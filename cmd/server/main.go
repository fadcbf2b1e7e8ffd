// Package main runs the event platform HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eventpulse/backend/config"
	"github.com/eventpulse/backend/internal/admin"
	"github.com/eventpulse/backend/internal/auth"
	"github.com/eventpulse/backend/internal/events"
	"github.com/eventpulse/backend/internal/middleware"
	"github.com/eventpulse/backend/internal/rsvps"
	"github.com/eventpulse/backend/internal/stats"
	"github.com/eventpulse/backend/pkg/database"
	"github.com/eventpulse/backend/pkg/redis"
	"github.com/eventpulse/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	// Redis only backs the stats cache, so a missing Redis degrades to
	// uncached rollups instead of refusing to start.
	var statsCache stats.Cache
	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Warn("redis disabled, stats cache off", zap.Error(err))
	} else {
		defer rdb.Close()
		statsCache = rdb
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	// Auth
	authRepo := auth.NewRepository(pool)
	authHandler := auth.NewHandler(authRepo, jwtService, logger)

	// Events
	eventRepo := events.NewRepository(pool)
	eventHandler := events.NewHandler(eventRepo, logger)

	// RSVPs and check-in
	rsvpRepo := rsvps.NewRepository(pool)
	rsvpHandler := rsvps.NewHandler(rsvpRepo, eventRepo, logger)

	// Admin moderation
	adminRepo := admin.NewRepository(pool)
	adminHandler := admin.NewHandler(adminRepo, logger)

	// Stats rollup
	statsRepo := stats.NewRepository(pool)
	statsTTL := time.Duration(cfg.Stats.CacheTTLSeconds) * time.Second
	statsHandler := stats.NewHandler(statsRepo, statsCache, statsTTL, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Auth (public)
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// Public discovery
	router.GET("/events", eventHandler.List)
	router.GET("/events/:id", eventHandler.GetByID)

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		api.POST("/events", eventHandler.Create)
		api.GET("/events/my", eventHandler.MyEvents)
		api.PUT("/events/:id", eventHandler.Update)
		api.DELETE("/events/:id", eventHandler.Delete)

		api.POST("/rsvp", rsvpHandler.Create)
		api.GET("/rsvp/check/:eventId", rsvpHandler.Check)
		api.POST("/rsvp/check-in", rsvpHandler.CheckIn)
	}

	// Admin (JWT + role re-checked against the store)
	adminGroup := router.Group("/admin")
	adminGroup.Use(middleware.JWT(jwtService), middleware.RequireAdmin(authRepo))
	{
		adminGroup.GET("/users", adminHandler.ListUsers)
		adminGroup.PATCH("/users/:id/role", adminHandler.UpdateRole)
		adminGroup.PATCH("/users/:id/status", adminHandler.UpdateStatus)
		adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)
		adminGroup.GET("/events", adminHandler.ListEvents)
		adminGroup.DELETE("/events/:id", adminHandler.DeleteEvent)
		adminGroup.GET("/stats", statsHandler.Get)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
