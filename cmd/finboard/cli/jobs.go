package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/finboard/finboard/internal/generator"
	"github.com/finboard/finboard/jobs"
)

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type queueInspector interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// JobsCLI wraps manual management helpers for the warmup queue.
type JobsCLI struct {
	client    enqueuer
	inspector queueInspector
	closers   []func() error
}

// NewJobsCLI initialises the CLI helpers using the provided Redis address.
func NewJobsCLI(redisAddr string) (*JobsCLI, error) {
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: redisAddr})
	return &JobsCLI{
		client:    client,
		inspector: inspector,
		closers:   []func() error{client.Close, inspector.Close},
	}, nil
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var err error
	for _, closeFn := range c.closers {
		if closeErr := closeFn(); closeErr != nil {
			err = closeErr
		}
	}
	return err
}

// WarmupOptions defines available flags for the warmup command.
type WarmupOptions struct {
	Categories []string
	Refresh    bool
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// WarmupSummary describes the JSON response for a triggered warmup.
type WarmupSummary struct {
	TaskID     string   `json:"task_id"`
	Queue      string   `json:"queue"`
	Categories []string `json:"categories,omitempty"`
	Refresh    bool     `json:"refresh"`
}

// WarmupCommand enqueues a metrics warmup and prints the outcome.
func (c *JobsCLI) WarmupCommand(ctx context.Context, opts WarmupOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if c == nil || c.client == nil {
		_, _ = fmt.Fprintln(opts.Stderr, "jobs warmup: client not configured")
		return 1
	}
	for _, name := range opts.Categories {
		if _, ok := generator.ParseMetricCategory(name); !ok {
			_, _ = fmt.Fprintf(opts.Stderr, "jobs warmup: unknown metric category %q\n", name)
			return 1
		}
	}

	task, err := jobs.NewMetricsWarmupTask(jobs.MetricsWarmupPayload{
		Categories: opts.Categories,
		Refresh:    opts.Refresh,
	})
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "jobs warmup: %v\n", err)
		return 1
	}
	info, err := c.client.EnqueueContext(ctx, task, asynq.Queue(jobs.QueueDefault), asynq.MaxRetry(3))
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "jobs warmup: enqueue: %v\n", err)
		return 1
	}

	if opts.JSONOutput {
		summary := WarmupSummary{
			TaskID:     info.ID,
			Queue:      info.Queue,
			Categories: opts.Categories,
			Refresh:    opts.Refresh,
		}
		if err := json.NewEncoder(opts.Stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "jobs warmup: encode json: %v\n", err)
			return 1
		}
		return 0
	}

	target := "all categories"
	if len(opts.Categories) > 0 {
		target = strings.Join(opts.Categories, ", ")
	}
	_, _ = fmt.Fprintf(opts.Stdout, "warmup enqueued for %s (task %s, queue %s)\n", target, info.ID, info.Queue)
	return 0
}

// StatsOptions defines available flags for the stats command.
type StatsOptions struct {
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string `json:"queue"`
	Pending   int    `json:"pending"`
	Active    int    `json:"active"`
	Scheduled int    `json:"scheduled"`
	Retry     int    `json:"retry"`
}

// StatsCommand reports queue metrics for the default queue.
func (c *JobsCLI) StatsCommand(ctx context.Context, opts StatsOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	stats, err := c.inspectQueue()
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "jobs stats: %v\n", err)
		return 1
	}
	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(stats); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "jobs stats: encode json: %v\n", err)
			return 1
		}
		return 0
	}
	_, _ = fmt.Fprintf(opts.Stdout, "queue %s: %d pending, %d active, %d scheduled, %d retry\n",
		stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
	return 0
}

func (c *JobsCLI) inspectQueue() (QueueStats, error) {
	if c == nil || c.inspector == nil {
		return QueueStats{}, errors.New("inspector not configured")
	}
	info, err := c.inspector.GetQueueInfo(jobs.QueueDefault)
	if err != nil {
		return QueueStats{}, err
	}
	stats := QueueStats{Queue: jobs.QueueDefault}
	if info != nil {
		stats.Queue = info.Queue
		stats.Pending = int(info.Pending)
		stats.Active = int(info.Active)
		stats.Scheduled = int(info.Scheduled)
		stats.Retry = int(info.Retry)
	}
	return stats, nil
}
