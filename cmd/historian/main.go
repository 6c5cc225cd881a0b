// cmd/historian/main.go is an asynchronous historian service that pops finished game records
// from a Redis queue and persists them to PostgreSQL.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jason-s-yu/sweeper/internal/cache"
	"github.com/jason-s-yu/sweeper/internal/config"
	"github.com/jason-s-yu/sweeper/internal/database"
	"github.com/jason-s-yu/sweeper/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)

	if !cfg.DatabaseEnabled {
		logger.Fatal("historian requires DATABASE_URL or PG_HOST")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.ConnectDB(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close()

	rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("failed to connect to redis: %v", err)
	}
	defer rdb.Close()

	svc := historian.New(cache.NewRecordQueue(rdb, cfg.QueueName), database.History{}, historian.Config{
		BatchSize:  cfg.HistorianBatchSize,
		FlushDelay: cfg.HistorianFlush,
	}, logger)

	if err := svc.Run(ctx); err != nil {
		logger.Errorf("historian stopped: %v", err)
	}
}
