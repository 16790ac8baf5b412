// Package router assembles the gin engine: middleware chain, public auth
// endpoints, and the authenticated task API.
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskify/internal/config"
	"taskify/internal/handlers"
	"taskify/internal/middleware"
	"taskify/internal/services"
)

// New builds the HTTP router. Auth endpoints are public and rate limited;
// everything under /api/v1/tasks requires a valid access token.
func New(cfg *config.Config, db *gorm.DB, logger *zap.Logger,
	taskService services.TaskService, authService services.AuthService) *gin.Engine {

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.RecoveryWithLog(logger))
	r.Use(middleware.RequestLog(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status})
	})

	authHandler := handlers.NewAuthHandler(db, authService)
	taskHandler := handlers.NewTaskHandler(db, taskService)

	auth := r.Group("/api/v1/auth")
	if cfg.RateLimit.Enabled {
		auth.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerMin: cfg.RateLimit.RequestsPerMin,
			BurstSize:      cfg.RateLimit.BurstSize,
		}))
	}
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)

	tasks := r.Group("/api/v1/tasks")
	tasks.Use(middleware.Authz(middleware.AuthzConfig{
		SignKey: []byte(cfg.Auth.JWTSecret),
		Logger:  logger,
	}))
	tasks.POST("", taskHandler.CreateTask)
	tasks.GET("", taskHandler.GetTasks)
	tasks.GET("/:id", taskHandler.GetTaskByID)
	tasks.PATCH("/:id", taskHandler.UpdateTask)
	tasks.DELETE("/:id", taskHandler.DeleteTask)

	return r
}
