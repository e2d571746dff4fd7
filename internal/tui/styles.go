package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/engadmin/internal/api"
	"github.com/kingrea/engadmin/internal/engineers"
	"github.com/kingrea/engadmin/internal/logbook"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B")).MarginBottom(1)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).MarginTop(1)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#F7B801")).
			Padding(0, 1)

	statusStyles = map[api.Status]lipgloss.Style{
		api.StatusPending:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true),
		api.StatusApproved: lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true),
		api.StatusRejected: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		api.StatusVerified: lipgloss.NewStyle().Foreground(lipgloss.Color("#00BCD4")).Bold(true),
	}
	holdStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF9800")).Bold(true)
)

func statusBadge(status api.Status) string {
	style, ok := statusStyles[status]
	if !ok {
		style = statusStyles[api.StatusPending]
	}
	return style.Render(engineers.StatusLabel(status))
}

func levelBadge(level logbook.Level) string {
	switch level {
	case logbook.LevelError:
		return errorStyle.Render(string(level))
	case logbook.LevelWarn:
		return holdStyle.Render(string(level))
	}
	return mutedStyle.Render(string(level))
}
