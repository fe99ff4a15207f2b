package dashboard

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/finboard/finboard/internal/generator"
)

// MetricSlot is the outcome of loading a single metric: a value, or the
// error that prevented one.
type MetricSlot struct {
	Value float64
	Err   error
}

// MetricsSnapshot carries the outcome of one LoadMetrics round. Slots
// fail independently; one bad metric never blanks the others.
type MetricsSnapshot struct {
	Slots map[generator.MetricCategory]MetricSlot
}

// Complete reports whether every category loaded successfully.
func (s MetricsSnapshot) Complete() bool {
	for _, cat := range generator.MetricCategories() {
		slot, ok := s.Slots[cat]
		if !ok || slot.Err != nil {
			return false
		}
	}
	return true
}

// Failed lists the categories whose slot carries an error.
func (s MetricsSnapshot) Failed() []generator.MetricCategory {
	var out []generator.MetricCategory
	for _, cat := range generator.MetricCategories() {
		if slot, ok := s.Slots[cat]; !ok || slot.Err != nil {
			out = append(out, cat)
		}
	}
	return out
}

// LoadMetrics fetches every metric category at once, so wall time
// tracks the slowest request rather than the sum. Each slot records its
// own outcome and a failure in one never cancels the others. A busy
// overlay covers the metric cards for the joined duration.
func (e *Engine) LoadMetrics(ctx context.Context) MetricsSnapshot {
	overlay := e.showOverlay(RegionMetrics)
	defer e.overlay.Dismiss(overlay)

	snap := MetricsSnapshot{Slots: make(map[generator.MetricCategory]MetricSlot, 3)}
	var mu sync.Mutex
	var g errgroup.Group
	for _, cat := range generator.MetricCategories() {
		g.Go(func() error {
			value, err := e.metricOnce(ctx, cat)
			if err != nil {
				e.logWarn("metric load failed", cat.String(), err)
			}
			mu.Lock()
			snap.Slots[cat] = MetricSlot{Value: value, Err: err}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return snap
}

// metricOnce coalesces concurrent fetches of the same category into a
// single request.
func (e *Engine) metricOnce(ctx context.Context, cat generator.MetricCategory) (float64, error) {
	ch := e.flight.DoChan("metric:"+cat.String(), func() (interface{}, error) {
		fetchCtx, cancel := e.fetchContext(ctx)
		defer cancel()
		return e.source.Metric(fetchCtx, cat)
	})
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(float64), nil
	}
}
