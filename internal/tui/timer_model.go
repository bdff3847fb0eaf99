package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"example.com/grind/internal/client"
	"example.com/grind/internal/mirror"
)

// TimerModel is the full-screen countdown bound to the local timer mirror.
// Every second it re-reads the mirror snapshot; the mirror itself owns the
// ticking so closing the UI never stops the countdown.
type TimerModel struct {
	width  int
	height int

	mirror *mirror.Mirror
	api    *client.Client
	snap   mirror.Snapshot

	statusText string
	errText    string

	// Set when a stop or abandon round-trip finished and the UI should close.
	finalMessage string
	exiting      bool
}

// timerTickMsg is sent every second to refresh the snapshot
type timerTickMsg struct{}

// actionDoneMsg carries the result of a server round-trip
type actionDoneMsg struct {
	action  string
	message string
	err     error
}

// NewTimerModel creates a timer model bound to the given mirror.
func NewTimerModel(m *mirror.Mirror, api *client.Client) TimerModel {
	return TimerModel{
		mirror: m,
		api:    api,
		snap:   m.Snapshot(),
	}
}

// Init starts the snapshot refresh ticker.
func (m TimerModel) Init() tea.Cmd {
	return tickOnce()
}

func tickOnce() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg{}
	})
}

// Update handles messages
func (m TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case timerTickMsg:
		m.snap = m.mirror.Snapshot()
		if m.exiting {
			return m, nil
		}
		return m, tickOnce()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.errText = msg.err.Error()
			m.snap = m.mirror.Snapshot()
			return m, nil
		}
		m.errText = ""
		m.statusText = msg.message
		if msg.action == "stop" || msg.action == "abandon" {
			m.finalMessage = msg.message
			m.exiting = true
			return m, tea.Quit
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m TimerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc", "q":
		// Leave the UI running-state untouched; the mirror keeps ticking.
		m.exiting = true
		return m, tea.Quit

	case " ", "p":
		if m.snap.SessionID == "" {
			m.errText = "no session selected, create one with 'grindtimer new'"
			return m, nil
		}
		if m.snap.Running {
			m.mirror.Pause()
			m.snap = m.mirror.Snapshot()
			return m, m.serverAction("pause")
		}
		m.mirror.Start(context.Background(), m.snap.SessionID)
		m.snap = m.mirror.Snapshot()
		m.statusText = "Timer started"
		return m, nil

	case "s":
		if m.snap.SessionID == "" {
			m.errText = "no session selected"
			return m, nil
		}
		m.mirror.Pause()
		m.snap = m.mirror.Snapshot()
		return m, m.serverAction("stop")

	case "a":
		if m.snap.SessionID == "" {
			m.errText = "no session selected"
			return m, nil
		}
		m.mirror.Pause()
		m.snap = m.mirror.Snapshot()
		return m, m.serverAction("abandon")

	case "b":
		if m.snap.Mode == mirror.ModeBreak {
			m.mirror.SetMode(mirror.ModeFocus)
		} else {
			m.mirror.SetMode(mirror.ModeBreak)
		}
		m.snap = m.mirror.Snapshot()
		return m, nil
	}

	return m, nil
}

// serverAction performs the pause/stop/abandon round-trip off the UI loop.
func (m TimerModel) serverAction(action string) tea.Cmd {
	id := m.snap.SessionID
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var message string
		var err error
		switch action {
		case "pause":
			_, message, err = api.PauseTimer(ctx, id)
		case "stop":
			_, message, err = api.StopTimer(ctx, id)
		case "abandon":
			_, message, err = api.AbandonTimer(ctx, id)
		}
		return actionDoneMsg{action: action, message: message, err: err}
	}
}

// View renders the timer TUI
func (m TimerModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	panel := m.renderTimerPanel(m.width, m.height-2)
	helpBar := m.renderHelpBar()

	return lipgloss.JoinVertical(
		lipgloss.Left,
		panel,
		helpBar,
	)
}

func (m TimerModel) renderTimerPanel(width, height int) string {
	var components []string

	headerText := "GRIND SESSION"
	if m.snap.Mode == mirror.ModeBreak {
		headerText = "BREAK"
	}
	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentBright)).
		Bold(true).
		Align(lipgloss.Center).
		Width(width)
	components = append(components, headerStyle.Render(headerText))
	components = append(components, "")

	if m.snap.SessionTitle != "" {
		titleStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorPrimaryText)).
			Bold(true).
			Align(lipgloss.Center).
			Width(width)
		components = append(components, titleStyle.Render(m.snap.SessionTitle))
	}
	if m.snap.SessionSubject != "" {
		subjectStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondaryText)).
			Align(lipgloss.Center).
			Width(width)
		components = append(components, subjectStyle.Render(m.snap.SessionSubject))
	}
	components = append(components, "")

	clockColor := ColorSecondaryText
	if m.snap.Running {
		clockColor = ColorAccentBright
	}
	clockStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(clockColor)).
		Bold(true).
		Align(lipgloss.Center).
		Width(width)
	components = append(components, clockStyle.Render(formatClock(m.snap.SecondsLeft)))

	stateText := "paused"
	if m.snap.Running {
		stateText = "running"
	}
	stateStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorSecondaryText)).
		Align(lipgloss.Center).
		Width(width)
	components = append(components, stateStyle.Render(stateText))

	if m.errText != "" {
		errStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorError)).
			Align(lipgloss.Center).
			Width(width)
		components = append(components, "", errStyle.Render(m.errText))
	} else if m.statusText != "" {
		statusStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSuccess)).
			Align(lipgloss.Center).
			Width(width)
		components = append(components, "", statusStyle.Render(m.statusText))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, components...)

	panelStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center)

	return panelStyle.Render(content)
}

func (m TimerModel) renderHelpBar() string {
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Width(m.width).
		Align(lipgloss.Center)

	return helpStyle.Render("space pause/resume • s stop • a abandon • b break • q quit")
}

// formatClock renders whole seconds as mm:ss, rolling into h:mm:ss past an
// hour.
func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	if seconds >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
