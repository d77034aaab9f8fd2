package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pnab-cultura/engine/internal/api"
	"github.com/pnab-cultura/engine/internal/api/handlers"
	"github.com/pnab-cultura/engine/internal/repository"
	"github.com/pnab-cultura/engine/internal/services"
	"github.com/pnab-cultura/engine/pkg/config"
	"github.com/pnab-cultura/engine/pkg/database"
	"github.com/pnab-cultura/engine/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	// Initialize logger
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("starting PNAB engine API",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Connect to database
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL, database.Options{Verbose: !cfg.IsProduction()})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("failed to access sql pool", zap.Error(err))
	}
	defer sqlDB.Close()
	log.Info("database connected")

	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	queue := asynq.NewClient(redisOpt)
	defer queue.Close()
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer rdb.Close()

	jwtSecret := []byte(cfg.JWTSecret)
	if len(jwtSecret) == 0 {
		log.Warn("JWT_SECRET not set, using development default")
		jwtSecret = []byte("change-me-in-production-please")
	}

	store := repository.NewStore(db)
	authSvc := services.NewAuthService(store.Users(), jwtSecret, cfg.JWTTTL)
	proponentSvc := services.NewProponentService(store.Proponents())
	noticeSvc := services.NewNoticeService(store.Notices())
	proposalSvc := services.NewProposalService(store, queue)

	router := api.NewRouter(ctx, api.Dependencies{
		HMACSecret:     jwtSecret,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		HealthHandler: handlers.NewHealthHandler(map[string]handlers.Pinger{
			"postgres": handlers.PingFunc(sqlDB.PingContext),
			"redis":    handlers.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		}),
		AuthHandler:        handlers.NewAuthHandler(authSvc, cfg.JWTTTL),
		ProponentsHandler:  handlers.NewProponentsHandler(proponentSvc),
		NoticesHandler:     handlers.NewNoticesHandler(noticeSvc),
		ProjectsHandler:    handlers.NewProjectsHandler(proposalSvc),
		EvaluationsHandler: handlers.NewEvaluationsHandler(proposalSvc),
		DocumentsHandler:   handlers.NewDocumentsHandler(proposalSvc),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
}
