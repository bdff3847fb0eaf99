package tui

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"example.com/grind/internal/api"
	"example.com/grind/internal/client"
)

const (
	fieldTitle = iota
	fieldSubject
	fieldNotes
	fieldDuration
	fieldCount
)

// NewSessionModel is the interactive form for creating a grind session.
type NewSessionModel struct {
	inputs     []textinput.Model
	focusIndex int
	width      int
	height     int

	api *client.Client

	submitting    bool
	validationErr string
	err           error
	cancelled     bool
	created       *api.SessionView
	message       string
}

// sessionCreatedMsg carries the server response of the create call
type sessionCreatedMsg struct {
	session *api.SessionView
	message string
	err     error
}

// NewSessionForm creates the form model, optionally pre-filled from flags.
func NewSessionForm(api *client.Client, prefilled map[string]string) NewSessionModel {
	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Width = 50
		inputs[i].TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
		inputs[i].PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPlaceholder))
		inputs[i].Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
	}

	inputs[fieldTitle].Placeholder = "What are you grinding? (required)"
	inputs[fieldTitle].Focus()
	inputs[fieldTitle].CharLimit = 200

	inputs[fieldSubject].Placeholder = "Subject, e.g. calculus (required)"
	inputs[fieldSubject].CharLimit = 100

	inputs[fieldNotes].Placeholder = "Notes (Enter to skip)"
	inputs[fieldNotes].CharLimit = 500

	inputs[fieldDuration].Placeholder = "Planned minutes, e.g. 25 (Enter to skip)"
	inputs[fieldDuration].CharLimit = 5

	m := NewSessionModel{inputs: inputs, api: api}

	if v, ok := prefilled["title"]; ok {
		m.inputs[fieldTitle].SetValue(v)
	}
	if v, ok := prefilled["subject"]; ok {
		m.inputs[fieldSubject].SetValue(v)
	}
	if v, ok := prefilled["notes"]; ok {
		m.inputs[fieldNotes].SetValue(v)
	}
	return m
}

// Init implements tea.Model.
func (m NewSessionModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m NewSessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case sessionCreatedMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.created = msg.session
		m.message = msg.message
		return m, tea.Quit

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit

		case "enter":
			if m.focusIndex < fieldCount-1 {
				return m.focusField(m.focusIndex + 1)
			}
			return m.submit()

		case "tab", "down":
			return m.focusField((m.focusIndex + 1) % fieldCount)

		case "shift+tab", "up":
			return m.focusField((m.focusIndex + fieldCount - 1) % fieldCount)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m NewSessionModel) focusField(index int) (tea.Model, tea.Cmd) {
	m.inputs[m.focusIndex].Blur()
	m.focusIndex = index
	return m, m.inputs[m.focusIndex].Focus()
}

func (m NewSessionModel) submit() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(m.inputs[fieldTitle].Value())
	subject := strings.TrimSpace(m.inputs[fieldSubject].Value())
	if title == "" || subject == "" {
		m.validationErr = "Title and subject are required"
		return m.focusField(fieldTitle)
	}

	duration := 0
	if raw := strings.TrimSpace(m.inputs[fieldDuration].Value()); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes < 0 {
			m.validationErr = "Planned minutes must be a number"
			return m.focusField(fieldDuration)
		}
		duration = minutes * 60
	}

	req := api.CreateSessionRequest{
		Title:    title,
		Subject:  subject,
		Notes:    strings.TrimSpace(m.inputs[fieldNotes].Value()),
		Duration: duration,
	}

	m.validationErr = ""
	m.submitting = true
	apiClient := m.api
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		session, message, err := apiClient.CreateSession(ctx, req)
		return sessionCreatedMsg{session: session, message: message, err: err}
	}
}

// View renders the form
func (m NewSessionModel) View() string {
	labels := []string{"Title", "Subject", "Notes", "Planned minutes"}

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorSecondaryText)).
		Bold(true)
	activeLabelStyle := labelStyle.
		Foreground(lipgloss.Color(ColorAccentBright))

	var rows []string
	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentBright)).
		Bold(true)
	rows = append(rows, headerStyle.Render("NEW GRIND SESSION"), "")

	for i, input := range m.inputs {
		style := labelStyle
		if i == m.focusIndex {
			style = activeLabelStyle
		}
		rows = append(rows, style.Render(labels[i]), input.View(), "")
	}

	if m.validationErr != "" {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError))
		rows = append(rows, errStyle.Render(m.validationErr), "")
	}
	if m.submitting {
		rows = append(rows, lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWarning)).Render("Saving..."), "")
	}

	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText))
	rows = append(rows, helpStyle.Render("enter next/save • tab move • esc cancel"))

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)

	panelStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorBorder)).
		Padding(1, 2)

	return panelStyle.Render(form)
}
