package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dpetkov/comsniff/internal/model"
)

// maxScrollback bounds the number of packet lines kept in the viewport.
const maxScrollback = 5000

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))

	connectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	disconnectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	pausedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// packetMsg carries one captured packet into the program.
type packetMsg struct {
	ev model.PacketEvent
}

// statusMsg carries a channel lifecycle change into the program.
type statusMsg struct {
	ev model.StatusEvent
}

// sessionDoneMsg signals that the monitoring session has ended.
type sessionDoneMsg struct {
	err error
}

// channelState is the last known status of one channel.
type channelState struct {
	label     string
	connected bool
	message   string
}

// Model is the bubbletea model for the monitor view.
type Model struct {
	viewport viewport.Model
	ready    bool

	lines    []string
	channels []channelState
	paused   bool

	err  error
	done bool
}

// NewModel creates the monitor view for the given channel set.
func NewModel(channels []model.ChannelConfig) Model {
	var states []channelState
	for i := range channels {
		if !channels[i].Enabled {
			continue
		}
		states = append(states, channelState{
			label:   channels[i].Label,
			message: "connecting...",
		})
	}
	return Model{channels: states}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "c":
			m.lines = nil
			m.refreshContent()
		case "s":
			m.paused = !m.paused
		}

	case tea.WindowSizeMsg:
		headerHeight := 1
		footerHeight := 2
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.refreshContent()

	case packetMsg:
		if !m.paused {
			line := strings.TrimSuffix(msg.ev.Line(), "\n")
			if msg.ev.LRCError {
				line += "  " + disconnectedStyle.Render("LRC mismatch")
			}
			m.appendLine(line)
		}

	case statusMsg:
		for i := range m.channels {
			if m.channels[i].label == msg.ev.Channel {
				m.channels[i].connected = msg.ev.Connected
				m.channels[i].message = msg.ev.Message
			}
		}

	case sessionDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("comsniff"))
	if m.paused {
		b.WriteString("  ")
		b.WriteString(pausedStyle.Render("[PAUSED]"))
	}
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("q quit · c clear · s pause/resume"))
	return b.String()
}

// Err returns the session error carried by the final sessionDoneMsg.
func (m Model) Err() error {
	return m.err
}

func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > maxScrollback {
		m.lines = m.lines[len(m.lines)-maxScrollback:]
	}
	atBottom := m.viewport.AtBottom()
	m.refreshContent()
	if atBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) refreshContent() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
}

func (m Model) statusLine() string {
	var parts []string
	for _, c := range m.channels {
		style := disconnectedStyle
		dot := "○"
		if c.connected {
			style = connectedStyle
			dot = "●"
		}
		parts = append(parts, style.Render(fmt.Sprintf("%s %s %s", dot, c.label, c.message)))
	}
	return strings.Join(parts, "   ")
}
