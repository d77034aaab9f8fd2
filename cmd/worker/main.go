package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pnab-cultura/engine/internal/queue/tasks"
	"github.com/pnab-cultura/engine/internal/repository"
	"github.com/pnab-cultura/engine/internal/services"
	"github.com/pnab-cultura/engine/pkg/config"
	"github.com/pnab-cultura/engine/pkg/database"
	"github.com/pnab-cultura/engine/pkg/logger"
)

func main() {
	cfg := config.MustLoad()
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}
	_ = rdb.Close()

	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL, database.Options{
		Verbose:  !cfg.IsProduction(),
		MaxConns: cfg.AsynqConcurrency + 2,
	})
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	}

	// Recompute tasks enqueued by the workflow itself go back through Redis.
	client := asynq.NewClient(redisOpt)
	defer client.Close()

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     cfg.AsynqConcurrency,
		ShutdownTimeout: cfg.ShutdownTimeout,
		Logger:          logger.Named("asynq").Sugar(),
	})

	workflow := services.NewProposalService(repository.NewStore(db), client)

	mux := asynq.NewServeMux()
	tasks.NewProjectTaskHandler(workflow).Register(mux)

	log.Info("asynq worker starting", zap.Int("concurrency", cfg.AsynqConcurrency))
	if err := srv.Start(mux); err != nil {
		log.Fatal("worker failed to start", zap.Error(err))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutdown signal received", zap.String("signal", sig.String()))

	// Allow in-flight tasks to finish gracefully
	srv.Shutdown()
}
