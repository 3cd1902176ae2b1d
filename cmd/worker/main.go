package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/projectledger/projectledger/internal/app"
	"github.com/projectledger/projectledger/internal/bookings"
	"github.com/projectledger/projectledger/internal/ledger"
	"github.com/projectledger/projectledger/internal/metrics"
	"github.com/projectledger/projectledger/internal/platform/db"
	"github.com/projectledger/projectledger/internal/projects"
	"github.com/projectledger/projectledger/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	projectsRepo := projects.NewRepository(pool)
	projectsService := projects.NewService(projectsRepo, logger)

	ledgerRepo := ledger.NewRepository(pool)
	bookingsRepo := bookings.NewRepository(pool)

	metricsCache := metrics.NewCache(redisClient, cfg.CacheTTL)
	calculator := metrics.NewCalculator(ledgerRepo, ledgerRepo, bookingsRepo, ledgerRepo)
	metricsRepo := metrics.NewRepository(pool)
	metricsService := metrics.NewService(calculator, metricsRepo, projectsService, metricsCache, logger)

	snapshotJob := jobs.NewMetricsSnapshotJob(metricsService, projectsService, logger)

	snapshotTask, err := jobs.NewMetricsSnapshotTask(jobs.MetricsSnapshotPayload{RunID: "cron"})
	if err != nil {
		logger.Error("build snapshot task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskMetricsSnapshot, Handler: snapshotJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.SnapshotCron, Task: snapshotTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
