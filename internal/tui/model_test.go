package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finboard/finboard/internal/dashboard"
	"github.com/finboard/finboard/internal/generator"
)

type stubSource struct {
	mu         sync.Mutex
	total      int
	rowsErr    error
	metricVals map[generator.MetricCategory]float64
	metricErrs map[generator.MetricCategory]error
}

func newStubSource(total int) *stubSource {
	return &stubSource{
		total: total,
		metricVals: map[generator.MetricCategory]float64{
			generator.MetricDeposits:  120500.75,
			generator.MetricDividends: 980.25,
			generator.MetricGains:     -150.10,
		},
		metricErrs: map[generator.MetricCategory]error{},
	}
}

func (s *stubSource) Metric(_ context.Context, cat generator.MetricCategory) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.metricErrs[cat]; err != nil {
		return 0, err
	}
	return s.metricVals[cat], nil
}

func (s *stubSource) Rows(_ context.Context, cat generator.RowCategory, rows int) ([]dashboard.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rowsErr != nil {
		return nil, s.rowsErr
	}
	if rows > s.total {
		rows = s.total
	}
	out := make([]dashboard.Record, rows)
	for i := range out {
		out[i] = dashboard.Record{
			"date":        "2025-12-01",
			"description": fmt.Sprintf("entry %d", i),
			"category":    "payment",
			"amount":      "12.50",
			"currency":    "EUR",
			"status":      "settled",
			"name":        fmt.Sprintf("user %d", i),
			"email":       fmt.Sprintf("user%d@example.net", i),
			"country":     "DE",
			"joined_at":   "2025-01-01",
			"balance":     "99.00",
			"active":      true,
		}
	}
	return out, nil
}

func (s *stubSource) setRowsErr(err error) {
	s.mu.Lock()
	s.rowsErr = err
	s.mu.Unlock()
}

func (s *stubSource) setMetricErr(cat generator.MetricCategory, err error) {
	s.mu.Lock()
	s.metricErrs[cat] = err
	s.mu.Unlock()
}

func newTestModel(src *stubSource) (Model, *Screen) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	screen := NewScreen()
	engine := dashboard.NewEngine(logger, src, screen, dashboard.Config{PageSize: 5, MaxRows: 10})
	return NewModel(engine, screen), screen
}

// drain executes a command tree synchronously and feeds every resulting
// message back into the model.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, sub := range batch {
			m = drain(t, m, sub)
		}
		return m
	}
	switch msg.(type) {
	case MetricsLoadedMsg, TableLoadedMsg:
		next, followUp := m.Update(msg)
		return drain(t, next.(Model), followUp)
	}
	return m
}

// sized sends the first window size, which also fires the initial
// loads. 110x22 leaves a five-row window per table.
func sized(t *testing.T, m Model) Model {
	t.Helper()
	next, cmd := m.Update(tea.WindowSizeMsg{Width: 110, Height: 22})
	return drain(t, next.(Model), cmd)
}

func TestModelLoadsEverythingOnFirstSize(t *testing.T) {
	src := newStubSource(1000)
	m, screen := newTestModel(src)

	m = sized(t, m)

	assert.True(t, m.hasMetrics)
	for _, cat := range generator.MetricCategories() {
		slot, ok := m.metrics.Slots[cat]
		require.True(t, ok, "missing slot for %s", cat)
		require.NoError(t, slot.Err)
	}
	for _, cat := range generator.RowCategories() {
		assert.False(t, m.loading[cat])
		assert.Equal(t, 5, screen.RowCount(cat))
		assert.Equal(t, dashboard.PhaseLoaded, m.engine.TableStatus(cat).Phase)
	}
	assert.Zero(t, screen.OverlayCount(), "overlays should be dismissed after loads settle")
}

func TestModelLoadMoreGrowsFocusedTable(t *testing.T) {
	src := newStubSource(1000)
	m, screen := newTestModel(src)
	m = sized(t, m)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	m = drain(t, next.(Model), cmd)

	cat := m.focusedCategory()
	assert.Equal(t, 10, screen.RowCount(cat))
	assert.Equal(t, dashboard.PhaseExhausted, m.engine.TableStatus(cat).Phase)

	// Exhausted collections ignore further loads.
	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	m = drain(t, next.(Model), cmd)
	assert.Equal(t, 10, screen.RowCount(cat))
}

func TestModelFocusCycles(t *testing.T) {
	src := newStubSource(100)
	m, _ := newTestModel(src)
	m = sized(t, m)

	assert.Equal(t, generator.RowsOperations, m.focusedCategory())
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	assert.Equal(t, generator.RowsUsers, m.focusedCategory())
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	assert.Equal(t, generator.RowsOperations, m.focusedCategory())
}

func TestModelRefreshResetsScroll(t *testing.T) {
	src := newStubSource(1000)
	m, screen := newTestModel(src)
	m = sized(t, m)

	// Grow, then scroll down a little.
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	m = drain(t, next.(Model), cmd)
	cat := m.focusedCategory()
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m = next.(Model)
	require.Equal(t, 1, m.scroll[cat])

	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m = drain(t, next.(Model), cmd)

	assert.Equal(t, 0, m.scroll[cat])
	assert.Equal(t, 5, screen.RowCount(cat), "refresh starts over with the first page")
}

func TestModelShowsFetchFailure(t *testing.T) {
	src := newStubSource(1000)
	m, _ := newTestModel(src)
	m = sized(t, m)

	src.setRowsErr(errors.New("connection refused"))
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	m = drain(t, next.(Model), cmd)

	cat := m.focusedCategory()
	require.Error(t, m.lastErr[cat])
	assert.Contains(t, m.View(), "load failed")
	assert.False(t, m.loading[cat], "a failed load must release the table")

	// Recovery clears the error banner.
	src.setRowsErr(nil)
	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	m = drain(t, next.(Model), cmd)
	assert.NoError(t, m.lastErr[cat])
}

func TestModelMetricFailureRendersUnavailable(t *testing.T) {
	src := newStubSource(100)
	src.setMetricErr(generator.MetricGains, errors.New("boom"))
	m, _ := newTestModel(src)
	m = sized(t, m)

	view := m.View()
	assert.Contains(t, view, "unavailable")
	assert.Contains(t, view, formatNumber(120500.75), "healthy slots keep their values")
}

func TestModelMetricsReload(t *testing.T) {
	src := newStubSource(100)
	m, _ := newTestModel(src)
	m = sized(t, m)

	src.mu.Lock()
	src.metricVals[generator.MetricDeposits] = 99.50
	src.mu.Unlock()

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'m'}})
	m = drain(t, next.(Model), cmd)

	assert.InDelta(t, 99.50, m.metrics.Slots[generator.MetricDeposits].Value, 0.001)
}

func TestModelQuit(t *testing.T) {
	src := newStubSource(10)
	m, _ := newTestModel(src)
	m = sized(t, m)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestModelRendersBusyOverlay(t *testing.T) {
	src := newStubSource(100)
	m, screen := newTestModel(src)
	m = sized(t, m)

	// Pin an overlay over the metric strip the way an in-flight load
	// would and make sure the renderer swaps the cards for the box.
	el, err := screen.AttachOverlay(m.metricsRect)
	require.NoError(t, err)
	assert.Contains(t, m.View(), "computing metrics")

	screen.DetachOverlay(el)
	assert.NotContains(t, m.View(), "computing metrics")
}

func TestModelScrollClampsToWindow(t *testing.T) {
	src := newStubSource(1000)
	m, _ := newTestModel(src)
	m = sized(t, m)

	// Ten rows against a five-row window leaves real scroll room.
	next0, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'l'}})
	m = drain(t, next0.(Model), cmd)

	cat := m.focusedCategory()
	for i := 0; i < 50; i++ {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
		m = next.(Model)
	}
	assert.Equal(t, m.maxScroll(cat), m.scroll[cat])
	assert.Positive(t, m.scroll[cat])

	for i := 0; i < 50; i++ {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
		m = next.(Model)
	}
	assert.Equal(t, 0, m.scroll[cat])
}

func TestModelViewListsRows(t *testing.T) {
	src := newStubSource(100)
	m, _ := newTestModel(src)
	m = sized(t, m)

	view := m.View()
	assert.Contains(t, view, "Operations")
	assert.Contains(t, view, "Users")
	assert.Contains(t, view, "entry 0")
	assert.True(t, strings.Contains(view, "load more"), "footer lists key help")
}
