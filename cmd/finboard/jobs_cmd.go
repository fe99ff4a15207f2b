package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/finboard/finboard/cmd/finboard/cli"
	"github.com/finboard/finboard/internal/app"
)

const jobsUsage = "usage: finboard jobs <warmup|stats> [flags]"

// runJobsCommand handles the "jobs" subcommand tree and returns the
// process exit code.
func runJobsCommand(args []string) int {
	if len(args) == 0 {
		_, _ = fmt.Fprintln(os.Stderr, jobsUsage)
		return 2
	}

	cfg, err := app.LoadConfig()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "jobs: load config: %v\n", err)
		return 1
	}

	sub, rest := args[0], args[1:]
	fs := flag.NewFlagSet("jobs "+sub, flag.ContinueOnError)
	redisAddr := fs.String("redis", cfg.RedisAddr, "redis address")
	jsonOut := fs.Bool("json", false, "print machine readable output")

	switch sub {
	case "warmup":
		categories := fs.String("categories", "", "comma separated metric categories (default: all)")
		refresh := fs.Bool("refresh", false, "invalidate cached values before warming")
		if err := fs.Parse(rest); err != nil {
			return 2
		}
		ops, err := cli.NewJobsCLI(*redisAddr)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "jobs warmup: %v\n", err)
			return 1
		}
		defer func() { _ = ops.Close() }()
		return ops.WarmupCommand(context.Background(), cli.WarmupOptions{
			Categories: splitCategories(*categories),
			Refresh:    *refresh,
			JSONOutput: *jsonOut,
		})

	case "stats":
		if err := fs.Parse(rest); err != nil {
			return 2
		}
		ops, err := cli.NewJobsCLI(*redisAddr)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "jobs stats: %v\n", err)
			return 1
		}
		defer func() { _ = ops.Close() }()
		return ops.StatsCommand(context.Background(), cli.StatsOptions{JSONOutput: *jsonOut})

	default:
		_, _ = fmt.Fprintln(os.Stderr, jobsUsage)
		return 2
	}
}

func splitCategories(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
