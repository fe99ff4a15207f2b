package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/finboard/finboard/internal/generator"
	jobmetrics "github.com/finboard/finboard/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// MetricsWarmupJob pre-computes dashboard metrics into the Redis cache
// so interactive requests land on warm entries instead of burning a
// compute slot.
type MetricsWarmupJob struct {
	Generator *generator.Service
	Cache     *generator.Cache
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewMetricsWarmupJob wires dependencies for the warmup handler.
func NewMetricsWarmupJob(svc *generator.Service, cache *generator.Cache, logger *slog.Logger, metrics *jobmetrics.Metrics) *MetricsWarmupJob {
	return &MetricsWarmupJob{
		Generator: svc,
		Cache:     cache,
		Logger:    logger,
		Metrics:   metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes metrics warmup tasks.
func (j *MetricsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("metrics warmup: handler not configured")
	}
	var payload MetricsWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	// Without a cache there is nothing to warm; computed values would
	// be thrown away.
	if j.Cache == nil {
		j.logger().Info("metric cache disabled, skipping warmup")
		return nil
	}

	tracker := j.metrics().Track(TaskMetricsWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Bool("refresh", payload.Refresh))
	logger.Info("starting metrics warmup")

	cats := j.resolveCategories(payload.Categories, logger)
	if len(cats) == 0 {
		logger.Info("no categories selected for warmup")
		return resultErr
	}

	if payload.Refresh {
		if err := j.Cache.Bump(ctx); err != nil {
			resultErr = err
			logger.Error("bump cache version", slog.Any("error", err))
			return resultErr
		}
	}

	start := j.now()
	warmed := 0
	for _, cat := range cats {
		if err := j.warmCategory(ctx, cat); err != nil {
			resultErr = err
			logger.Error("warm metric", slog.String("category", cat.String()), slog.Any("error", err))
			return resultErr
		}
		warmed++
	}

	logger.Info("completed metrics warmup", slog.Int("categories", warmed), slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *MetricsWarmupJob) warmCategory(ctx context.Context, cat generator.MetricCategory) error {
	if j.Generator == nil {
		return nil
	}
	// Bound each category so one stuck computation cannot pin the job.
	catCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if _, err := j.Generator.MetricValue(catCtx, cat); err != nil {
		return err
	}
	j.metrics().AddWarmed(cat.String(), 1)
	return nil
}

// resolveCategories maps payload names onto known categories. Unknown
// names are logged and skipped rather than failing the whole job.
func (j *MetricsWarmupJob) resolveCategories(names []string, logger *slog.Logger) []generator.MetricCategory {
	if len(names) == 0 {
		return generator.MetricCategories()
	}
	out := make([]generator.MetricCategory, 0, len(names))
	for _, name := range names {
		cat, ok := generator.ParseMetricCategory(name)
		if !ok {
			logger.Warn("unknown metric category", slog.String("category", name))
			continue
		}
		out = append(out, cat)
	}
	return out
}

func (j *MetricsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskMetricsWarmup))
	}
	return slog.Default().With(slog.String("job", TaskMetricsWarmup))
}

func (j *MetricsWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *MetricsWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
