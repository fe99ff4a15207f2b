// Package dashboard keeps rendered dashboard state in step with the
// dataset server: concurrent metric loading, per-collection pagination
// and wholesale refresh.
package dashboard

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/finboard/finboard/internal/generator"
)

const (
	defaultPageSize     = 100
	defaultMaxRows      = 500
	defaultFetchTimeout = 15 * time.Second
)

// DataSource is the fetch contract the engine drives. *Client satisfies
// it against a live server; tests substitute their own.
type DataSource interface {
	Metric(ctx context.Context, cat generator.MetricCategory) (float64, error)
	Rows(ctx context.Context, cat generator.RowCategory, rows int) ([]Record, error)
}

// Config bounds the engine's paging and fetching.
type Config struct {
	// PageSize is how many rows one LoadMore adds.
	PageSize int
	// MaxRows mirrors the server ceiling so exhaustion is detected
	// without a wasted round trip.
	MaxRows int
	// FetchTimeout caps each fetch issued by the engine. Metric
	// computations run for seconds server-side, so the default is a
	// generous 15s.
	FetchTimeout time.Duration
}

// Engine owns the client side of the dashboard: metric slots and one
// paginated table per collection. All methods are safe for concurrent
// use, and collections never block each other.
type Engine struct {
	logger  *slog.Logger
	source  DataSource
	view    View
	overlay *OverlayManager
	flight  singleflight.Group

	pageSize     int
	maxRows      int
	fetchTimeout time.Duration
	tables       map[generator.RowCategory]*tableState
}

// NewEngine wires a sync engine over the given source and view.
func NewEngine(logger *slog.Logger, source DataSource, view View, cfg Config) *Engine {
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = defaultMaxRows
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	tables := make(map[generator.RowCategory]*tableState, 2)
	for _, cat := range generator.RowCategories() {
		tables[cat] = &tableState{}
	}
	return &Engine{
		logger:       logger,
		source:       source,
		view:         view,
		overlay:      NewOverlayManager(view),
		pageSize:     cfg.PageSize,
		maxRows:      cfg.MaxRows,
		fetchTimeout: cfg.FetchTimeout,
		tables:       tables,
	}
}

// fetchContext bounds one network-facing operation.
func (e *Engine) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.fetchTimeout)
}

// showOverlay presents a busy overlay, tolerating view trouble: a
// region that cannot be measured simply loads without an indicator.
func (e *Engine) showOverlay(region Region) *OverlayHandle {
	h, err := e.overlay.Show(region)
	if err != nil {
		e.logWarn("overlay show failed", string(region), err)
		return nil
	}
	return h
}

func (e *Engine) logWarn(msg string, subject string, err error) {
	if e.logger != nil {
		e.logger.Warn(msg, slog.String("subject", subject), slog.Any("error", err))
	}
}
