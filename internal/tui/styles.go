package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	colorAccent  = lipgloss.Color("#E5A00D")
	colorMuted   = lipgloss.Color("#6B7280")
	colorFaint   = lipgloss.Color("#4B5563")
	colorText    = lipgloss.Color("#F9FAFB")
	colorGood    = lipgloss.Color("#10B981")
	colorBad     = lipgloss.Color("#EF4444")
	colorLoading = lipgloss.Color("#3B82F6")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorFaint).
			Padding(0, 2)

	cardLabelStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	cardValueStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	cardErrorStyle = lipgloss.NewStyle().
			Foreground(colorBad)

	tableTitleStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Bold(true)

	tableTitleFocusStyle = tableTitleStyle.
				Foreground(colorAccent)

	tableHeaderStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Underline(true)

	tableRowStyle = lipgloss.NewStyle().
			Foreground(colorText)

	statusStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorBad)

	loadingStyle = lipgloss.NewStyle().
			Foreground(colorLoading)

	overlayBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorLoading).
			Padding(0, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)
