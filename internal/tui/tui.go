package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"example.com/grind/internal/api"
	"example.com/grind/internal/client"
	"example.com/grind/internal/mirror"
)

// RunTimerTUI opens the full-screen countdown bound to the mirror.
func RunTimerTUI(m *mirror.Mirror, c *client.Client) error {
	p := tea.NewProgram(NewTimerModel(m, c), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	if tm, ok := finalModel.(TimerModel); ok && tm.finalMessage != "" {
		fmt.Println(tm.finalMessage)
	}
	return nil
}

// RunNewSessionTUI opens the create-session form and returns the created
// session, or nil when the user cancelled.
func RunNewSessionTUI(c *client.Client, prefilled map[string]string) (*api.SessionView, error) {
	p := tea.NewProgram(NewSessionForm(c, prefilled), tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	m, ok := finalModel.(NewSessionModel)
	if !ok {
		return nil, nil
	}
	if m.cancelled {
		fmt.Println("Session creation cancelled.")
		return nil, nil
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.created != nil {
		fmt.Printf("%s (id: %s)\n", m.message, m.created.ID)
	}
	return m.created, nil
}
