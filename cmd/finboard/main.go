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

	"github.com/finboard/finboard/internal/app"
	"github.com/finboard/finboard/internal/generator"
	generatorhttp "github.com/finboard/finboard/internal/generator/http"
	"github.com/finboard/finboard/internal/observability"
	"github.com/finboard/finboard/internal/platform/cache"
	"github.com/finboard/finboard/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		os.Exit(runJobsCommand(os.Args[2:]))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	// Redis backs the metric cache and job queue. The dashboard works
	// without it; every metric is computable locally.
	var redisClient *redis.Client
	if cfg.CacheEnabled() {
		redisClient, err = cache.New(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("redis unavailable, serving uncached", slog.Any("error", err))
			redisClient = nil
		}
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metricCache := generator.NewCache(redisClient, cfg.MetricCacheTTL)
	if err := metricCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	pool := generator.NewComputePool(cfg.GeneratorWorkers)

	metrics := observability.NewMetrics()
	generatorMetrics := observability.NewGeneratorMetrics(metrics.Registerer())

	service := generator.NewService(pool, metricCache, generatorMetrics, generator.Settings{
		MetricCost:  cfg.GeneratorMetricCost,
		MaxRows:     cfg.GeneratorMaxRows,
		DefaultRows: cfg.GeneratorDefaultRows,
	})
	generatorHandler := generatorhttp.NewHandler(logger, service)

	var jobHandler *jobs.Handler
	if redisClient != nil {
		inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobHandler = jobs.NewHandler(inspector, logger)

		// Warm the cache right away instead of waiting for the first
		// cron tick.
		enqueueStartupWarmup(ctx, logger, cfg)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		GeneratorHandler: generatorHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server",
			slog.String("addr", cfg.AppAddr),
			slog.Bool("cache", metricCache.Enabled()),
		)
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
	// In-flight computations finish before the process exits.
	pool.Close()
}

func enqueueStartupWarmup(ctx context.Context, logger *slog.Logger, cfg *app.Config) {
	client, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Warn("warmup client", slog.Any("error", err))
		return
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("warmup client close", slog.Any("error", err))
		}
	}()
	if _, err := client.EnqueueMetricsWarmup(ctx, jobs.MetricsWarmupPayload{}); err != nil {
		logger.Warn("enqueue startup warmup", slog.Any("error", err))
		return
	}
	logger.Info("startup warmup enqueued")
}
