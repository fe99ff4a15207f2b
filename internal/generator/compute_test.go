package generator

import (
	"context"
	"errors"
	"testing"
)

func TestComputeMetricDeterministic(t *testing.T) {
	ctx := context.Background()
	first, err := computeMetric(ctx, MetricDeposits, 100_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := computeMetric(ctx, MetricDeposits, 100_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("same inputs produced %v and %v", first, second)
	}
	if first <= 0 {
		t.Fatalf("expected a positive amount, got %v", first)
	}

	other, err := computeMetric(ctx, MetricGains, 100_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if other == first {
		t.Fatalf("categories should not collide, both produced %v", first)
	}
}

func TestComputeMetricHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := computeMetric(ctx, MetricDividends, 50_000_000)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestComputeMetricZeroCost(t *testing.T) {
	v, err := computeMetric(context.Background(), MetricGains, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 0 {
		t.Fatalf("zero cost should produce zero, got %v", v)
	}
}
