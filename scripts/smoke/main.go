// Command smoke exercises a running dataset server the way the
// dashboard does: every metric concurrently, then the first page of
// each collection. Exit status is non-zero on any failure, so it slots
// into deploy pipelines as a health gate.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/finboard/finboard/internal/dashboard"
	"github.com/finboard/finboard/internal/generator"
)

func main() {
	server := flag.String("server", getenv("FINBOARD_SERVER", "http://127.0.0.1:8080"), "base URL of the dataset server")
	rows := flag.Int("rows", 50, "rows to request per collection")
	timeout := flag.Duration("timeout", 30*time.Second, "per-request timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*(*timeout))
	defer cancel()

	client := dashboard.NewClient(*server, *timeout)

	fmt.Println("→ Checking metrics...")
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for _, cat := range generator.MetricCategories() {
		g.Go(func() error {
			v, err := client.Metric(gctx, cat)
			if err != nil {
				return fmt.Errorf("metric %s: %w", cat, err)
			}
			fmt.Printf("   %-10s %.2f\n", cat, v)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("metrics check failed: %v", err)
	}
	fmt.Printf("   all metrics in %s\n", time.Since(start).Round(time.Millisecond))

	fmt.Println("→ Checking rows...")
	for _, cat := range generator.RowCategories() {
		records, err := client.Rows(ctx, cat, *rows)
		if err != nil {
			log.Fatalf("rows %s: %v", cat, err)
		}
		if len(records) == 0 {
			log.Fatalf("rows %s: server returned no records", cat)
		}
		fmt.Printf("   %-12s %d records\n", cat, len(records))
	}

	fmt.Println("smoke check passed")
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
