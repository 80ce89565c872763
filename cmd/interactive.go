package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/adamgarcia4/goLearning/cqlsession/logger"
	"github.com/adamgarcia4/goLearning/cqlsession/session"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Start interactive session manager",
	Long: `Start an interactive terminal UI for activating and deactivating a session.

Keyboard shortcuts:
  A - Activate the session
  D - Deactivate the session
  Enter - Repeat the last command
  Q - Quit (deactivates first)

Examples:
  cqlsession interactive --contact-points=127.0.0.1`,
	RunE: runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
	addSessionFlags(interactiveCmd)
}

const (
	logLines  = 15
	maxScroll = 100
)

type model struct {
	manager     *session.Manager
	props       session.Properties
	busy        bool
	err         error
	logBuffer   *logger.LogBuffer
	logScroll   int
	width       int
	height      int
	lastCommand string
}

func initialModel(props session.Properties) model {
	// Initialize logger for interactive mode (no stdout, only log buffer)
	logBuffer := logger.GetGlobalLogBuffer()
	logger.Init("", false)
	logger.AddOutput(logger.NewLogBufferWriter(logBuffer))

	return model{
		manager:   session.NewManager(),
		props:     props,
		logBuffer: logBuffer,
	}
}

type tickMsg struct{}

type activatedMsg struct {
	err error
}

type deactivatedMsg struct{}

type shutdownCompleteMsg struct{}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func activate(m *session.Manager, props session.Properties) tea.Cmd {
	return func() tea.Msg {
		return activatedMsg{err: m.Activate(context.Background(), props)}
	}
}

func deactivate(m *session.Manager) tea.Cmd {
	return func() tea.Msg {
		m.Deactivate()
		return deactivatedMsg{}
	}
}

// shutdown closes the session and sends a message when complete
func shutdown(m *session.Manager) tea.Cmd {
	return func() tea.Msg {
		m.Deactivate()
		return shutdownCompleteMsg{}
	}
}

func (m model) Init() tea.Cmd {
	return tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tick()

	case activatedMsg:
		m.busy = false
		m.err = msg.err
		return m, nil

	case deactivatedMsg:
		m.busy = false
		return m, nil

	case shutdownCompleteMsg:
		return m, tea.Quit
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "enter" {
		key = m.lastCommand
	}

	switch key {
	case "q", "ctrl+c":
		// Close the session before quitting
		return m, shutdown(m.manager)

	case "a", "A":
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.err = nil
		m.lastCommand = "a"
		return m, activate(m.manager, m.props)

	case "d", "D":
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.err = nil
		m.lastCommand = "d"
		return m, deactivate(m.manager)

	case "up", "k":
		// Scroll logs up (show older logs)
		limit := m.logBuffer.Len() - logLines
		if limit > maxScroll {
			limit = maxScroll
		}
		if m.logScroll < limit {
			m.logScroll++
		}
		return m, nil

	case "down", "j":
		if m.logScroll > 0 {
			m.logScroll--
		}
		return m, nil
	}
	return m, nil
}

var stateColors = map[session.State]lipgloss.Color{
	session.Disabled:   lipgloss.Color("240"),
	session.Connecting: lipgloss.Color("214"),
	session.Connected:  lipgloss.Color("42"),
}

func (m model) View() string {
	var s strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("62")).
		Padding(1, 2)
	s.WriteString(titleStyle.Render("Cassandra Session Manager"))
	s.WriteString("\n\n")

	state := m.manager.State()
	stateStyle := lipgloss.NewStyle().Bold(true).Foreground(stateColors[state])
	s.WriteString("  State: " + stateStyle.Render(state.String()) + "\n\n")

	if m.err != nil {
		errorStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString("\n\n")
	}

	if sess, err := m.manager.Session(); err == nil {
		fmt.Fprintf(&s, "  Cluster:      %s\n", sess.ClusterName())
		fmt.Fprintf(&s, "  Endpoints:    %s\n", session.FormatContactPoints(sess.Endpoints()))
		fmt.Fprintf(&s, "  Keyspace:     %s\n", sess.Keyspace())
		fmt.Fprintf(&s, "  Consistency:  %s (per request)\n", sess.Consistency())
		fmt.Fprintf(&s, "  Compression:  %s (advisory)\n", sess.Compression())
		fmt.Fprintf(&s, "  Connected at: %s\n\n", sess.ConnectedAt().Format(time.RFC3339))
	} else {
		fmt.Fprintf(&s, "  Contact points: %s\n\n", m.props.ContactPoints)
	}

	s.WriteString(m.renderLogs())
	s.WriteString("\n\n")

	instructionsStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true).
		PaddingTop(1)

	instructionText := "Press A to activate | D to deactivate"
	if m.lastCommand != "" {
		instructionText += fmt.Sprintf(" | Enter to repeat (%s)", strings.ToUpper(m.lastCommand))
	}
	instructionText += " | ↑/↓/j/k to scroll logs | Q to quit"
	s.WriteString(instructionsStyle.Render(instructionText))

	return s.String()
}

// renderLogs shows the newest entries first; logScroll moves the window
// back in time.
func (m model) renderLogs() string {
	entries := m.logBuffer.GetAll()

	var lines []string
	if len(entries) == 0 {
		lines = []string{"     | (no logs yet)"}
	} else {
		end := len(entries) - m.logScroll
		if end < 0 {
			end = 0
		}
		start := end - logLines
		if start < 0 {
			start = 0
		}
		for i := end - 1; i >= start; i-- {
			// Most recent entry is line 0
			lineNumber := len(entries) - 1 - i
			lines = append(lines, fmt.Sprintf("%4d | %s", lineNumber, logger.FormatLogEntry(entries[i])))
		}
	}

	boxWidth := 100
	if m.width > 0 {
		boxWidth = m.width - 4 // Leave some margin
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Height(logLines - 2).
		Width(boxWidth)

	return logStyle.Render("Logs:\n" + strings.Join(lines, "\n"))
}

func runInteractive(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	props, err := settings.Properties()
	if err != nil {
		return err
	}

	p := tea.NewProgram(initialModel(props))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running interactive mode: %w", err)
	}
	return nil
}
