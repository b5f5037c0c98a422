package display

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/couchcryptid/weather-alert-feed/internal/domain"
)

var (
	colorPrimary = lipgloss.Color("#00BFFF")
	colorRed     = lipgloss.Color("#FF6B6B")
	colorOrange  = lipgloss.Color("#FF8C42")
	colorYellow  = lipgloss.Color("#FFD93D")
	colorMuted   = lipgloss.Color("#6C757D")
	colorBorder  = lipgloss.Color("#4A90E2")

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Padding(0, 1)

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))

	regionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(1, 1, 0, 1)

	badgeStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("#000000"))
)

// severityBadge renders the severity as a coloured label.
func severityBadge(s domain.Severity) string {
	switch s {
	case domain.SeverityRed:
		return badgeStyle.Background(colorRed).Render(s.String())
	case domain.SeverityOrange:
		return badgeStyle.Background(colorOrange).Render(s.String())
	case domain.SeverityYellow:
		return badgeStyle.Background(colorYellow).Render(s.String())
	default:
		return mutedStyle.Render(s.String())
	}
}

// paneBorder picks the border colour for the displayed alert.
func paneBorder(s domain.Severity) lipgloss.Style {
	switch s {
	case domain.SeverityRed:
		return paneStyle.BorderForeground(colorRed)
	case domain.SeverityOrange:
		return paneStyle.BorderForeground(colorOrange)
	case domain.SeverityYellow:
		return paneStyle.BorderForeground(colorYellow)
	default:
		return paneStyle
	}
}
