package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/finboard/finboard/internal/dashboard"
	"github.com/finboard/finboard/internal/generator"
)

// Command factories for engine operations. The engine bounds every
// fetch with its own timeout, so commands run on a background context.

// LoadMetricsCmd loads all metric cards in one concurrent round.
func LoadMetricsCmd(engine *dashboard.Engine) tea.Cmd {
	return func() tea.Msg {
		return MetricsLoadedMsg{Snapshot: engine.LoadMetrics(context.Background())}
	}
}

// LoadMoreCmd grows one collection by a page.
func LoadMoreCmd(engine *dashboard.Engine, cat generator.RowCategory) tea.Cmd {
	return func() tea.Msg {
		return TableLoadedMsg{Category: cat, Err: engine.LoadMore(context.Background(), cat)}
	}
}

// RefreshCmd reloads one collection from scratch.
func RefreshCmd(engine *dashboard.Engine, cat generator.RowCategory) tea.Cmd {
	return func() tea.Msg {
		return TableLoadedMsg{Category: cat, Err: engine.Refresh(context.Background(), cat)}
	}
}
