package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/projectledger/projectledger/internal/analytics"
	"github.com/projectledger/projectledger/internal/app"
	"github.com/projectledger/projectledger/internal/bookings"
	"github.com/projectledger/projectledger/internal/commission"
	"github.com/projectledger/projectledger/internal/ledger"
	"github.com/projectledger/projectledger/internal/metrics"
	"github.com/projectledger/projectledger/internal/observability"
	"github.com/projectledger/projectledger/internal/platform/db"
	"github.com/projectledger/projectledger/internal/projects"
	"github.com/projectledger/projectledger/internal/tasks"
	"github.com/projectledger/projectledger/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	projectsRepo := projects.NewRepository(pool)
	projectsService := projects.NewService(projectsRepo, logger)
	projectsHandler := projects.NewHandler(logger, projectsService)

	commissionRepo := commission.NewRepository(pool)
	commissionService := commission.NewService(commissionRepo, logger)
	commissionHandler := commission.NewHandler(logger, commissionService)
	rateResolver := commission.NewResolver(commissionRepo, logger)

	bookingsRepo := bookings.NewRepository(pool)
	bookingsService := bookings.NewService(pool, bookingsRepo, projectsService, rateResolver, logger)
	bookingsHandler := bookings.NewHandler(logger, bookingsService)

	ledgerRepo := ledger.NewRepository(pool)
	ledgerService := ledger.NewService(ledgerRepo, projectsService, logger)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	tasksRepo := tasks.NewRepository(pool)
	tasksService := tasks.NewService(tasksRepo, projectsService, logger)
	tasksHandler := tasks.NewHandler(logger, tasksService)

	analyticsRepo := analytics.NewRepository(pool)
	analyticsService := analytics.NewService(analyticsRepo, projectsService, logger)
	analyticsHandler := analytics.NewHandler(logger, analyticsService)

	metricsCache := metrics.NewCache(redisClient, cfg.CacheTTL)
	calculator := metrics.NewCalculator(ledgerRepo, ledgerRepo, bookingsRepo, ledgerRepo)
	metricsRepo := metrics.NewRepository(pool)
	metricsService := metrics.NewService(calculator, metricsRepo, projectsService, metricsCache, logger)
	metricsHandler := metrics.NewHandler(logger, metricsService)

	obs := observability.NewMetrics()

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		ProjectsHandler:   projectsHandler,
		BookingsHandler:   bookingsHandler,
		CommissionHandler: commissionHandler,
		LedgerHandler:     ledgerHandler,
		MetricsHandler:    metricsHandler,
		TasksHandler:      tasksHandler,
		AnalyticsHandler:  analyticsHandler,
		JobHandler:        jobHandler,
		Invalidator:       metricsService,
		Metrics:           obs,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
