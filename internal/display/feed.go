package display

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/couchcryptid/weather-alert-feed/internal/domain"
)

type frameMsg struct{ frame domain.Frame }

type clearedMsg struct{}

type cycleMsg struct{ cycle domain.Cycle }

// Feed bridges the pipeline and rotation controller into the bubbletea event
// loop. It implements rotation.Display and pipeline.Sink. Events are dropped
// when the UI falls more than eventBuffer events behind.
type Feed struct {
	events chan tea.Msg
}

const eventBuffer = 64

// NewFeed creates an empty Feed.
func NewFeed() *Feed {
	return &Feed{events: make(chan tea.Msg, eventBuffer)}
}

// Show queues a rotation frame.
func (f *Feed) Show(frame domain.Frame) { f.push(frameMsg{frame: frame}) }

// Clear queues the cleared signal.
func (f *Feed) Clear() { f.push(clearedMsg{}) }

// PublishCycle queues cycle metadata for the status line.
func (f *Feed) PublishCycle(_ context.Context, cycle domain.Cycle) error {
	f.push(cycleMsg{cycle: cycle})
	return nil
}

func (f *Feed) push(msg tea.Msg) {
	select {
	case f.events <- msg:
	default:
	}
}

// next returns a command that waits for the next queued event.
func (f *Feed) next() tea.Cmd {
	return func() tea.Msg {
		return <-f.events
	}
}
