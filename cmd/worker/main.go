package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/finboard/finboard/internal/app"
	"github.com/finboard/finboard/internal/generator"
	"github.com/finboard/finboard/internal/observability"
	"github.com/finboard/finboard/jobs"
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

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	// The warmup handler needs the same cache the server reads. With
	// caching off we still register the handler; it logs and skips.
	var metricCache *generator.Cache
	if cfg.CacheEnabled() {
		metricCache = generator.NewCache(redisClient, cfg.MetricCacheTTL)
	}

	pool := generator.NewComputePool(cfg.GeneratorWorkers)
	defer pool.Close()

	service := generator.NewService(pool, metricCache, observability.NewGeneratorMetrics(nil), generator.Settings{
		MetricCost:  cfg.GeneratorMetricCost,
		MaxRows:     cfg.GeneratorMaxRows,
		DefaultRows: cfg.GeneratorDefaultRows,
	})

	warmupJob := jobs.NewMetricsWarmupJob(service, metricCache, logger, nil)

	warmupTask, err := jobs.NewMetricsWarmupTask(jobs.MetricsWarmupPayload{Refresh: true})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskMetricsWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/10 * * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
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
