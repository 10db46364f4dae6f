// Package tui renders the planner chat in the terminal. It implements
// chat.Surface on top of a bubbletea program: the controller goroutine calls
// the surface, which forwards every mutation into the update loop via
// Program.Send.
package tui

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/worraphat/jarvis/chat"
)

var (
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	pendingStyle   = lipgloss.NewStyle().Faint(true)
	chipStyle      = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8"))
	chipFocusStyle = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("12")).Foreground(lipgloss.Color("12"))
	helpStyle      = lipgloss.NewStyle().Faint(true)
)

type showUserMsg struct{ text string }

type showPlaceholderMsg struct{ id chat.MessageID }

type replaceMsg struct {
	id   chat.MessageID
	text string
}

type suggestionsMsg struct{ chips []string }

type clearInputMsg struct{}

// Surface bridges the controller and the bubbletea program. It is created
// detached; Attach binds it to a running program.
type Surface struct {
	mu     sync.RWMutex
	prog   *tea.Program
	nextID atomic.Int64
}

func NewSurface() *Surface {
	return &Surface{}
}

// Attach binds the surface to the program that will consume its messages.
func (s *Surface) Attach(p *tea.Program) {
	s.mu.Lock()
	s.prog = p
	s.mu.Unlock()
}

func (s *Surface) send(msg tea.Msg) {
	s.mu.RLock()
	p := s.prog
	s.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

func (s *Surface) ShowUserMessage(text string) {
	s.send(showUserMsg{text: text})
}

func (s *Surface) ShowPlaceholder() chat.MessageID {
	id := chat.MessageID(s.nextID.Add(1))
	s.send(showPlaceholderMsg{id: id})
	return id
}

func (s *Surface) ReplaceMessage(id chat.MessageID, text string) {
	s.send(replaceMsg{id: id, text: text})
}

func (s *Surface) SetSuggestions(chips []string) {
	s.send(suggestionsMsg{chips: chips})
}

func (s *Surface) ClearInput() {
	s.send(clearInputMsg{})
}

var _ chat.Surface = (*Surface)(nil)

type message struct {
	id      chat.MessageID // zero for user messages
	role    string
	text    string
	pending bool
}

// Model is the bubbletea model for the chat session.
type Model struct {
	controller *chat.Controller

	viewport viewport.Model
	input    textinput.Model

	messages []message
	chips    []string
	focused  int // -1 = input, otherwise chip index

	width  int
	height int
	ready  bool
}

func NewModel(controller *chat.Controller, starters []string) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about a delayed or missing product…"
	ti.Prompt = "> "
	ti.CharLimit = 500
	ti.Focus()

	return Model{
		controller: controller,
		input:      ti,
		chips:      starters,
		focused:    -1,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		chrome := 6 // input, chips, help
		if !m.ready {
			m.viewport = viewport.New(msg.Width, max(msg.Height-chrome, 3))
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = max(msg.Height-chrome, 3)
		}
		m.refreshTranscript()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.cycleFocus(1)
			return m, nil
		case "shift+tab":
			m.cycleFocus(-1)
			return m, nil
		case "left":
			if m.focused >= 0 {
				m.cycleFocus(-1)
				return m, nil
			}
		case "right":
			if m.focused >= 0 {
				m.cycleFocus(1)
				return m, nil
			}
		case "enter":
			if m.focused >= 0 && m.focused < len(m.chips) {
				m.controller.ActivateSuggestion(m.chips[m.focused])
			} else {
				m.controller.Submit(m.input.Value())
			}
			return m, nil
		}

	case showUserMsg:
		m.messages = append(m.messages, message{role: "you", text: msg.text})
		m.refreshTranscript()
		return m, nil

	case showPlaceholderMsg:
		m.messages = append(m.messages, message{id: msg.id, role: "jarvis", text: chat.PlaceholderText, pending: true})
		m.refreshTranscript()
		return m, nil

	case replaceMsg:
		for i := range m.messages {
			if m.messages[i].id == msg.id && m.messages[i].id != 0 {
				m.messages[i].text = msg.text
				m.messages[i].pending = false
				break
			}
		}
		m.refreshTranscript()
		return m, nil

	case suggestionsMsg:
		m.chips = msg.chips
		if m.focused >= len(m.chips) {
			m.focused = -1
		}
		return m, nil

	case clearInputMsg:
		m.input.SetValue("")
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	if m.focused == -1 {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) cycleFocus(dir int) {
	if len(m.chips) == 0 {
		m.focused = -1
		m.input.Focus()
		return
	}
	m.focused += dir
	if m.focused >= len(m.chips) {
		m.focused = -1
	}
	if m.focused < -1 {
		m.focused = len(m.chips) - 1
	}
	if m.focused == -1 {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	var b strings.Builder
	for _, msg := range m.messages {
		switch {
		case msg.role == "you":
			b.WriteString(userStyle.Render("you") + ": " + msg.text)
		case msg.pending:
			b.WriteString(assistantStyle.Render("jarvis") + ": " + pendingStyle.Render(msg.text))
		default:
			b.WriteString(assistantStyle.Render("jarvis") + ": " + msg.text)
		}
		b.WriteString("\n\n")
	}
	m.viewport.SetContent(lipgloss.NewStyle().Width(m.viewport.Width).Render(b.String()))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if !m.ready {
		return "starting…"
	}

	var chips string
	if len(m.chips) > 0 {
		rendered := make([]string, 0, len(m.chips))
		for i, c := range m.chips {
			style := chipStyle
			if i == m.focused {
				style = chipFocusStyle
			}
			rendered = append(rendered, style.Render(c))
		}
		chips = lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	}

	help := helpStyle.Render("enter send · tab chips · esc quit")

	return fmt.Sprintf("%s\n%s\n%s\n%s", m.viewport.View(), m.input.View(), chips, help)
}

// Run starts the chat UI against the given planner URL and blocks until the
// user quits.
func Run(plannerURL string, starters []string) error {
	client, err := chat.NewHTTPPlannerClient(plannerURL)
	if err != nil {
		return err
	}

	surface := NewSurface()
	controller := chat.NewController(client, surface, chat.NewTranscript())

	p := tea.NewProgram(NewModel(controller, starters), tea.WithAltScreen())
	surface.Attach(p)

	_, err = p.Run()
	return err
}
