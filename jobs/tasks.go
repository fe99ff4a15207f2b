package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskMetricsWarmup pre-computes dashboard metrics into the cache.
	TaskMetricsWarmup = "metrics:warmup"
)

// MetricsWarmupPayload selects which metric categories to warm. An
// empty list means all of them. Refresh invalidates existing cache
// entries first so the warm values are freshly computed.
type MetricsWarmupPayload struct {
	Categories []string `json:"categories,omitempty"`
	Refresh    bool     `json:"refresh"`
}

// NewMetricsWarmupTask constructs an Asynq task.
func NewMetricsWarmupTask(payload MetricsWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMetricsWarmup, data), nil
}
