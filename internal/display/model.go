// Package display renders the alert rotation in a terminal.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/couchcryptid/weather-alert-feed/internal/domain"
)

// Phase is what the screen is showing.
type Phase int

const (
	PhaseWaiting Phase = iota // no cycle accepted yet
	PhaseEmpty                // cycle accepted, nothing to show
	PhaseShowing              // rotating through alerts
)

// Model is the bubbletea model for the rotation screen.
type Model struct {
	feed    *Feed
	refresh func()
	lang    string

	phase   Phase
	frame   domain.Frame
	cycle   domain.Cycle
	spinner spinner.Model
	width   int

	showFetchErrors bool
}

// NewModel creates a Model that reads events from feed. refresh is called when
// the user presses "r"; it may be nil.
func NewModel(feed *Feed, lang string, refresh func()) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	return Model{
		feed:    feed,
		refresh: refresh,
		lang:    lang,
		spinner: s,
	}
}

// WithFetchErrors returns a copy of m that notes unavailable regions under the
// status line. By default a failed poll leaves the screen blank.
func (m Model) WithFetchErrors(show bool) Model {
	m.showFetchErrors = show
	return m
}

// Phase reports the current screen phase.
func (m Model) Phase() Phase { return m.phase }

// Init starts the spinner and the event subscription.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.feed.next())
}

// Update handles feed events, key presses, and window resizes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			if m.refresh != nil {
				m.refresh()
			}
		}
		return m, nil

	case frameMsg:
		m.phase = PhaseShowing
		m.frame = msg.frame
		return m, m.feed.next()

	case clearedMsg:
		m.phase = PhaseEmpty
		m.frame = domain.Frame{}
		return m, m.feed.next()

	case cycleMsg:
		m.cycle = msg.cycle
		if len(msg.cycle.Alerts) == 0 {
			m.phase = PhaseEmpty
		}
		return m, m.feed.next()

	case spinner.TickMsg:
		if m.phase != PhaseWaiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the screen.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.text("Weather alerts", "Alertes météo")))
	b.WriteString("\n\n")

	switch m.phase {
	case PhaseWaiting:
		b.WriteString(fmt.Sprintf(" %s %s\n", m.spinner.View(), m.text("Waiting for first update...", "En attente de la première mise à jour...")))
	case PhaseEmpty:
		// Nothing to show; the screen stays blank.
	case PhaseShowing:
		b.WriteString(m.renderFrame())
		b.WriteString("\n")
	}

	if status := m.status(); status != "" {
		b.WriteString(mutedStyle.Render(" " + status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.text("r refresh • q quit", "r actualiser • q quitter")))
	return b.String()
}

func (m Model) renderFrame() string {
	a := m.frame.Alert
	text := a.Display(m.lang)

	lines := []string{
		severityBadge(a.Severity) + " " + titleStyle.Render(text.Title),
	}
	if text.Region != "" {
		lines = append(lines, regionStyle.Render(text.Region))
	}
	if text.Issued != "" {
		lines = append(lines, mutedStyle.Render(text.Issued))
	}
	if m.frame.Total > 1 {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("%d/%d", m.frame.Index+1, m.frame.Total)))
	}

	style := paneBorder(a.Severity)
	if m.width > 4 {
		style = style.Width(m.width - 4)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) status() string {
	if m.cycle.ID == "" {
		return ""
	}
	s := m.text("Updated ", "Mis à jour ") + domain.RelativeTime(m.cycle.CompletedAt, m.lang)
	if m.showFetchErrors && m.cycle.Failed > 0 {
		s += fmt.Sprintf(m.text(" (%d of %d regions unavailable)", " (%d sur %d régions indisponibles)"), m.cycle.Failed, m.cycle.Regions)
	}
	return s
}

func (m Model) text(en, fr string) string {
	if domain.IsFrench(m.lang) {
		return fr
	}
	return en
}
