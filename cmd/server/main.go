// Command taskify-server starts the multi-user task backend.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskify/internal/config"
	"taskify/internal/database"
	"taskify/internal/router"
	"taskify/internal/services"
	"taskify/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	var logger *zap.Logger
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting",
		zap.String("addr", cfg.GetServerAddr()),
		zap.String("environment", cfg.Server.Environment),
	)

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("database connect", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("database migrate", zap.Error(err))
	}

	taskService := services.NewTaskService()
	authService := services.NewAuthService(
		[]byte(cfg.Auth.JWTSecret),
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := startWorker(cfg, db, authService, logger)
	defer w.Stop()

	engine := router.New(cfg, db, logger, taskService, authService)
	srv := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}

	logger.Info("shutdown complete")
}

func startWorker(cfg *config.Config, db *gorm.DB, authService services.AuthService, logger *zap.Logger) *worker.Worker {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})

	w := worker.New(worker.Config{
		RedisClient: client,
		Logger:      logger,
		Queue:       cfg.Worker.Queue,
	})
	w.RegisterHandler(worker.JobTypeTokenCleanup, func(ctx context.Context, job *worker.Job) error {
		purged, err := authService.PurgeExpiredTokens(db.WithContext(ctx))
		if err != nil {
			return err
		}
		if purged > 0 {
			logger.Info("purged expired refresh tokens", zap.Int64("count", purged))
		}
		return nil
	})
	w.Start(cfg.Worker.Concurrency)
	w.StartScheduler(cfg.Worker.CleanupInterval)
	return w
}
