package tui

import (
	"github.com/finboard/finboard/internal/dashboard"
	"github.com/finboard/finboard/internal/generator"
)

// MetricsLoadedMsg signals that a metric round finished. The snapshot
// carries per-slot outcomes; partial failure is normal.
type MetricsLoadedMsg struct {
	Snapshot dashboard.MetricsSnapshot
}

// TableLoadedMsg signals that a page load or refresh on one collection
// finished.
type TableLoadedMsg struct {
	Category generator.RowCategory
	Err      error
}
