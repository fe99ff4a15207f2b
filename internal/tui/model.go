// Package tui renders the finance dashboard in the terminal: metric
// cards on top, the paginated collections below, busy overlays pinned
// over whichever region is loading.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/finboard/finboard/internal/dashboard"
	"github.com/finboard/finboard/internal/generator"
)

const (
	titleHeight  = 1
	cardsHeight  = 4
	footerHeight = 1
	// title + header + status around each table body
	tableChrome = 3
)

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	engine *dashboard.Engine
	screen *Screen
	keys   KeyMap
	spin   spinner.Model

	width  int
	height int
	ready  bool

	metrics    dashboard.MetricsSnapshot
	hasMetrics bool

	focus   int
	scroll  map[generator.RowCategory]int
	loading map[generator.RowCategory]bool
	lastErr map[generator.RowCategory]error

	tableRects  map[generator.RowCategory]dashboard.Rect
	metricsRect dashboard.Rect
	visibleRows map[generator.RowCategory]int

	quitting bool
}

// NewModel builds the dashboard model over an engine and the screen the
// engine renders into. Both must share the same Screen instance.
func NewModel(engine *dashboard.Engine, screen *Screen) Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(loadingStyle))
	return Model{
		engine:      engine,
		screen:      screen,
		keys:        DefaultKeyMap(),
		spin:        sp,
		scroll:      make(map[generator.RowCategory]int),
		loading:     make(map[generator.RowCategory]bool),
		lastErr:     make(map[generator.RowCategory]error),
		tableRects:  make(map[generator.RowCategory]dashboard.Rect),
		visibleRows: make(map[generator.RowCategory]int),
	}
}

// Init starts the spinner. Data loads kick off on the first window
// size, once the screen has geometry for the overlays.
func (m Model) Init() tea.Cmd {
	return m.spin.Tick
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.computeLayout()
		if !m.ready {
			m.ready = true
			return m, m.initialLoads()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case MetricsLoadedMsg:
		m.metrics = msg.Snapshot
		m.hasMetrics = true
		return m, nil

	case TableLoadedMsg:
		// A rejected re-entrant load belongs to the operation already
		// in flight; its own completion clears the flag.
		if errors.Is(msg.Err, dashboard.ErrLoadInFlight) {
			return m, nil
		}
		m.loading[msg.Category] = false
		m.lastErr[msg.Category] = msg.Err
		m.clampScroll(msg.Category)
		return m, nil
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Focus):
		m.focus = (m.focus + 1) % len(generator.RowCategories())
		return m, nil

	case key.Matches(msg, m.keys.Down):
		cat := m.focusedCategory()
		if m.scroll[cat] < m.maxScroll(cat) {
			m.scroll[cat]++
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		cat := m.focusedCategory()
		if m.scroll[cat] > 0 {
			m.scroll[cat]--
		}
		return m, nil

	case key.Matches(msg, m.keys.LoadMore):
		cat := m.focusedCategory()
		if m.loading[cat] {
			return m, nil
		}
		m.loading[cat] = true
		return m, LoadMoreCmd(m.engine, cat)

	case key.Matches(msg, m.keys.Refresh):
		cat := m.focusedCategory()
		if m.loading[cat] {
			return m, nil
		}
		m.loading[cat] = true
		m.scroll[cat] = 0
		return m, RefreshCmd(m.engine, cat)

	case key.Matches(msg, m.keys.Metrics):
		return m, LoadMetricsCmd(m.engine)
	}

	return m, nil
}

func (m Model) focusedCategory() generator.RowCategory {
	cats := generator.RowCategories()
	return cats[m.focus%len(cats)]
}

// initialLoads fires the first metric round and the first page of each
// collection at once.
func (m *Model) initialLoads() tea.Cmd {
	cmds := []tea.Cmd{LoadMetricsCmd(m.engine)}
	for _, cat := range generator.RowCategories() {
		m.loading[cat] = true
		cmds = append(cmds, LoadMoreCmd(m.engine, cat))
	}
	return tea.Batch(cmds...)
}

// computeLayout splits the window into the card strip and one block per
// collection, then publishes the region geometry to the screen so
// overlay placement sees the same rects the renderer uses.
func (m *Model) computeLayout() {
	cats := generator.RowCategories()
	budget := m.height - titleHeight - cardsHeight - footerHeight - len(cats)*tableChrome
	if budget < len(cats) {
		budget = len(cats)
	}
	per := budget / len(cats)
	rest := budget - per*(len(cats)-1)

	m.metricsRect = dashboard.Rect{Top: titleHeight, Left: 0, Width: m.width, Height: cardsHeight}
	layout := map[dashboard.Region]dashboard.Rect{
		dashboard.RegionMetrics: m.metricsRect,
	}

	top := titleHeight + cardsHeight
	for i, cat := range cats {
		rows := per
		if i == len(cats)-1 {
			rows = rest
		}
		// region spans header, rows and status under the table title
		rect := dashboard.Rect{Top: top + 1, Left: 0, Width: m.width, Height: rows + 2}
		m.tableRects[cat] = rect
		m.visibleRows[cat] = rows
		layout[dashboard.TableRegion(cat)] = rect
		top += tableChrome + rows
		m.clampScroll(cat)
	}
	m.screen.SetLayout(layout)
}

func (m *Model) maxScroll(cat generator.RowCategory) int {
	max := m.screen.RowCount(cat) - m.visibleRows[cat]
	if max < 0 {
		max = 0
	}
	return max
}

func (m *Model) clampScroll(cat generator.RowCategory) {
	if m.scroll[cat] > m.maxScroll(cat) {
		m.scroll[cat] = m.maxScroll(cat)
	}
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return loadingStyle.Render(m.spin.View() + " starting dashboard")
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("finboard"))
	sb.WriteString("\n")
	sb.WriteString(m.renderCards())
	sb.WriteString("\n")
	for i, cat := range generator.RowCategories() {
		sb.WriteString(m.renderTable(cat, i == m.focus))
	}
	sb.WriteString(m.renderFooter())
	return sb.String()
}

// renderCards renders the metric strip, or the busy overlay while a
// metric round covers it.
func (m Model) renderCards() string {
	if m.screen.OverlayCovering(m.metricsRect) {
		box := overlayBoxStyle.Render(m.spin.View() + " computing metrics")
		return lipgloss.Place(m.width, cardsHeight, lipgloss.Center, lipgloss.Center, box)
	}

	cats := generator.MetricCategories()
	cardWidth := m.width/len(cats) - 2
	if cardWidth < 12 {
		cardWidth = 12
	}
	cards := make([]string, 0, len(cats))
	for _, cat := range cats {
		label := cardLabelStyle.Render(strings.ToUpper(cat.String()))
		value := statusStyle.Render("-")
		if m.hasMetrics {
			if slot, ok := m.metrics.Slots[cat]; ok {
				if slot.Err != nil {
					value = cardErrorStyle.Render("unavailable")
				} else {
					value = cardValueStyle.Render(formatNumber(slot.Value))
				}
			}
		}
		cards = append(cards, cardStyle.Width(cardWidth).Render(label+"\n"+value))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// renderTable renders one collection block: title, column header, the
// visible row window and a status line.
func (m Model) renderTable(cat generator.RowCategory, focused bool) string {
	var sb strings.Builder

	title := collectionTitle(cat)
	style := tableTitleStyle
	if focused {
		style = tableTitleFocusStyle
		title = "» " + title
	}
	status := m.engine.TableStatus(cat)
	sb.WriteString(style.Render(title))
	sb.WriteString(statusStyle.Render(fmt.Sprintf("  %d rows", status.Rendered)))
	sb.WriteString("\n")

	rows := m.visibleRows[cat]
	rect := m.tableRects[cat]
	if m.screen.OverlayCovering(rect) {
		box := overlayBoxStyle.Render(m.spin.View() + " loading " + cat.String())
		sb.WriteString(lipgloss.Place(m.width, rows+2, lipgloss.Center, lipgloss.Center, box))
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString(tableHeaderStyle.Render(tableHeader(cat)))
	sb.WriteString("\n")
	window := m.screen.RowWindow(cat, m.scroll[cat], rows)
	for _, line := range window {
		sb.WriteString(tableRowStyle.Render(truncate(line, m.width)))
		sb.WriteString("\n")
	}
	for i := len(window); i < rows; i++ {
		sb.WriteString("\n")
	}
	sb.WriteString(m.renderTableStatus(cat, status))
	sb.WriteString("\n")
	return sb.String()
}

func (m Model) renderTableStatus(cat generator.RowCategory, status dashboard.TableStatus) string {
	if err := m.lastErr[cat]; err != nil {
		line := errorStyle.Render(fmt.Sprintf("load failed: %v", err))
		if dashboard.IsRetriable(err) {
			line += statusStyle.Render("  l to retry")
		}
		return line
	}
	switch status.Phase {
	case dashboard.PhaseLoading:
		return loadingStyle.Render(m.spin.View() + " loading")
	case dashboard.PhaseExhausted:
		return statusStyle.Render(fmt.Sprintf("all %d rows loaded", status.Rendered))
	case dashboard.PhaseLoaded:
		return statusStyle.Render(fmt.Sprintf("%d rows  l for more", status.Rendered))
	default:
		return statusStyle.Render("no rows yet")
	}
}

// renderFooter renders the key help line.
func (m Model) renderFooter() string {
	parts := make([]string, 0, 8)
	for _, b := range m.keys.helpBindings() {
		parts = append(parts, b.Help().Key+" "+b.Help().Desc)
	}
	return footerStyle.Render(truncate(strings.Join(parts, "  ·  "), m.width))
}

func collectionTitle(cat generator.RowCategory) string {
	switch cat {
	case generator.RowsUsers:
		return "Users"
	default:
		return "Operations"
	}
}
