package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/adanyl0v/studyboard/internal/events"
	"github.com/adanyl0v/studyboard/internal/state"
)

type toastMsg struct {
	text string
}

// waitForToast delivers the next toast published on ch.
func waitForToast(ch chan events.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		if t, ok := e.Payload.(state.Toast); ok {
			return toastMsg{text: t.Message}
		}
		return toastMsg{text: string(e.Topic)}
	}
}
