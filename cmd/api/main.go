package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/macrolog/backend/config"
	"github.com/pageza/macrolog/backend/internal/database"
	"github.com/pageza/macrolog/backend/internal/logger"
	"github.com/pageza/macrolog/backend/internal/server"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.New(logger.Config{}).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// run owns every resource it opens, so deferred cleanup happens before main exits
func run(cfg *config.Config, log *logger.Logger) error {
	log.Info("starting macrolog api", "environment", config.GetEnvironment())

	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)

	if cfg.DBDriver == "sqlite" {
		if err := database.RunMigrations(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Search still works without Redis, only uncached and unthrottled
	var redisClient *redis.Client
	if client, err := database.NewRedisClient(cfg, log); err != nil {
		log.Warn("redis unavailable, continuing without search cache and rate limiting", "error", err)
	} else {
		redisClient = client
		defer redisClient.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, db, redisClient, log)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
