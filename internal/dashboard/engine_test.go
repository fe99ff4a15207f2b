package dashboard

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/finboard/finboard/internal/generator"
)

type fakeContainer struct {
	mu      sync.Mutex
	batches int
	rows    int
}

func (c *fakeContainer) AppendBatch(batch []Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches++
	c.rows += len(batch)
}

func (c *fakeContainer) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rows
}

// fakeOverlayElement records whether the view still shows it.
type fakeOverlayElement struct {
	at       Rect
	detached int
}

type fakeView struct {
	mu        sync.Mutex
	created   int
	mounts    int
	mounted   map[generator.RowCategory]*fakeContainer
	rectCalls int
	rectErr   error
	attaches  int
	detaches  int
	visible   map[*fakeOverlayElement]bool
}

func newFakeView() *fakeView {
	return &fakeView{
		mounted: make(map[generator.RowCategory]*fakeContainer),
		visible: make(map[*fakeOverlayElement]bool),
	}
}

func (v *fakeView) NewContainer(cat generator.RowCategory) Container {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.created++
	return &fakeContainer{}
}

func (v *fakeView) MountContainer(cat generator.RowCategory, c Container) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mounts++
	v.mounted[cat] = c.(*fakeContainer)
}

func (v *fakeView) ViewportRect(region Region) (Rect, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rectCalls++
	if v.rectErr != nil {
		return Rect{}, v.rectErr
	}
	if region == RegionMetrics {
		return Rect{Top: 1, Left: 0, Width: 80, Height: 3}, nil
	}
	return Rect{Top: 4, Left: 0, Width: 80, Height: 20}, nil
}

func (v *fakeView) AttachOverlay(at Rect) (OverlayElement, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.attaches++
	el := &fakeOverlayElement{at: at}
	v.visible[el] = true
	return el, nil
}

func (v *fakeView) DetachOverlay(el OverlayElement) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.detaches++
	fake, ok := el.(*fakeOverlayElement)
	if !ok {
		return
	}
	fake.detached++
	delete(v.visible, fake)
}

func (v *fakeView) visibleOverlays() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.visible)
}

// fakeSource serves deterministic rows capped at serverMax and metrics
// with optional per-category delays, errors and gates.
type fakeSource struct {
	mu          sync.Mutex
	serverMax   int
	metricDelay time.Duration
	metricErrs  map[generator.MetricCategory]error
	metricCalls map[generator.MetricCategory]int
	metricGate  chan struct{}

	rowsErr     error
	rowsCalls   int
	blockCat    generator.RowCategory
	rowsGate    chan struct{}
	rowsEntered chan struct{}
}

func newFakeSource(serverMax int) *fakeSource {
	return &fakeSource{
		serverMax:   serverMax,
		metricErrs:  make(map[generator.MetricCategory]error),
		metricCalls: make(map[generator.MetricCategory]int),
	}
}

func (s *fakeSource) Metric(ctx context.Context, cat generator.MetricCategory) (float64, error) {
	s.mu.Lock()
	s.metricCalls[cat]++
	err := s.metricErrs[cat]
	gate := s.metricGate
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if s.metricDelay > 0 {
		select {
		case <-time.After(s.metricDelay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	if err != nil {
		return 0, err
	}
	return 100 + float64(len(cat)), nil
}

func (s *fakeSource) Rows(ctx context.Context, cat generator.RowCategory, rows int) ([]Record, error) {
	s.mu.Lock()
	s.rowsCalls++
	err := s.rowsErr
	gated := s.blockCat == cat && s.rowsGate != nil
	gate := s.rowsGate
	entered := s.rowsEntered
	s.mu.Unlock()

	if gated {
		if entered != nil {
			entered <- struct{}{}
		}
		<-gate
	}
	if err != nil {
		return nil, err
	}
	n := rows
	if n > s.serverMax {
		n = s.serverMax
	}
	out := make([]Record, n)
	for i := range out {
		out[i] = Record{"id": fmt.Sprintf("%s-%d", cat, i)}
	}
	return out, nil
}

func newTestEngine(source DataSource, view View, cfg Config) *Engine {
	return NewEngine(nil, source, view, cfg)
}

func TestEngineDefaults(t *testing.T) {
	e := newTestEngine(newFakeSource(500), newFakeView(), Config{})
	if e.pageSize != defaultPageSize {
		t.Fatalf("expected page size %d, got %d", defaultPageSize, e.pageSize)
	}
	if e.maxRows != defaultMaxRows {
		t.Fatalf("expected ceiling %d, got %d", defaultMaxRows, e.maxRows)
	}
	for _, cat := range generator.RowCategories() {
		status := e.TableStatus(cat)
		if status.Phase != PhaseEmpty || status.Rendered != 0 {
			t.Fatalf("%s: expected pristine table, got %+v", cat, status)
		}
	}
}
