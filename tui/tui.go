// Package tui runs a layout session in the terminal with bubbletea.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/TFMV/kolgraph/physics"
	"github.com/TFMV/kolgraph/render"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4285F4"))

	kolStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F5C518"))

	nodeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34A853"))

	edgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	tooltipStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#F5C518")).
			Padding(0, 1)
)

// gridTop is the terminal row of the grid's top border; chromeHeight is
// every row that is not grid (title, status, help).
const (
	gridTop      = 1
	chromeHeight = 3
	minCols      = 20
	minRows      = 10
)

type keyMap struct {
	Pause  key.Binding
	Jitter key.Binding
	Help   key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Pause: key.NewBinding(
		key.WithKeys("p", " "),
		key.WithHelp("p", "pause"),
	),
	Jitter: key.NewBinding(
		key.WithKeys("j"),
		key.WithHelp("j", "toggle jitter"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Jitter, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Jitter},
		{k.Help, k.Quit},
	}
}

// Options configures the terminal view
type Options struct {
	Title  string
	FPS    int
	Jitter physics.Perturber // installed and removed by the jitter key
}

// Model is the bubbletea model. It owns the state; every step and
// interaction happens inside Update.
type Model struct {
	state    *physics.State
	title    string
	interval time.Duration
	jitter   physics.Perturber

	keys keyMap
	help help.Model

	cols, rows int
	paused     bool
	quitting   bool
	hover      *physics.HoverInfo
	dragging   string
}

type tickMsg time.Time

// New creates a model over state
func New(state *physics.State, opts Options) Model {
	fps := opts.FPS
	if fps <= 0 {
		fps = 30
	}
	return Model{
		state:    state,
		title:    opts.Title,
		interval: time.Second / time.Duration(fps),
		jitter:   opts.Jitter,
		keys:     keys,
		help:     help.New(),
		cols:     80,
		rows:     24 - chromeHeight,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the frame chain
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles frames, keys and the mouse
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.quitting {
			return m, nil
		}
		if !m.paused {
			m.state.Step()
			if m.dragging == "" && m.hover != nil {
				m.hover, _ = m.state.Hover(m.hover.PointerX, m.hover.PointerY)
			}
		}
		return m, m.tick()

	case tea.WindowSizeMsg:
		m.cols = max(msg.Width, minCols)
		m.rows = max(msg.Height-chromeHeight, minRows)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			m.paused = !m.paused
		case key.Matches(msg, m.keys.Jitter):
			if m.state.Perturber() != nil {
				m.state.SetPerturber(nil)
			} else {
				m.state.SetPerturber(m.jitter)
			}
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case tea.MouseMsg:
		return m.mouse(msg), nil
	}

	return m, nil
}

func (m Model) mouse(msg tea.MouseMsg) Model {
	x, y, inside := m.viewport(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !inside {
			return m
		}
		if id, ok := m.state.HitTest(x, y); ok {
			m.dragging = id
			m.state.Pin(id, x, y)
		}

	case tea.MouseActionMotion:
		if m.dragging != "" {
			m.state.Pin(m.dragging, x, y)
		}
		if inside {
			m.hover, _ = m.state.Hover(x, y)
		} else {
			m.hover = nil
		}

	case tea.MouseActionRelease:
		if m.dragging != "" {
			m.state.Unpin(m.dragging)
			m.dragging = ""
		}
	}
	return m
}

// viewport maps a terminal cell to the center of the matching viewport
// region, the inverse of render.Cell
func (m Model) viewport(col, row int) (float64, float64, bool) {
	width, height := m.state.Size()
	gx, gy := col, row-gridTop
	inside := gx >= 1 && gx <= m.cols-2 && gy >= 1 && gy <= m.rows-2

	x := (float64(gx-1) + 0.5) * width / float64(m.cols-2)
	y := (float64(gy-1) + 0.5) * height / float64(m.rows-2)
	return x, y, inside
}

// View draws the title, the network grid, status and help
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	frame := m.state.Snapshot()
	grid := render.Grid(frame, m.cols, m.rows)

	var b strings.Builder
	title := m.title
	if title == "" {
		title = "HCP Influence Network"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	for _, row := range grid {
		for _, c := range row {
			switch c {
			case render.GlyphKOL:
				b.WriteString(kolStyle.Render(string(c)))
			case render.GlyphNode:
				b.WriteString(nodeStyle.Render(string(c)))
			case render.GlyphEdge:
				b.WriteString(edgeStyle.Render(string(c)))
			default:
				b.WriteRune(c)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(statusStyle.Render(m.status(frame)))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	if m.hover != nil {
		b.WriteString("\n")
		b.WriteString(tooltipStyle.Render(tooltip(m.hover)))
	}
	return b.String()
}

func (m Model) status(frame *physics.Frame) string {
	state := "running"
	if m.paused {
		state = "paused"
	}
	jitter := "off"
	if m.state.Perturber() != nil {
		jitter = "on"
	}
	s := fmt.Sprintf("tick %d | %s | jitter %s | %d nodes, %d edges",
		frame.Tick, state, jitter, len(frame.Nodes), len(frame.Edges))
	if m.dragging != "" {
		s += " | dragging " + m.dragging
	}
	return s
}

func tooltip(h *physics.HoverInfo) string {
	lines := []string{
		h.Name,
		h.Category,
		fmt.Sprintf("Influence: %g", h.InfluenceScore),
		fmt.Sprintf("Connections: %d", len(h.Connections)),
	}
	if h.KOL {
		lines = append(lines, kolStyle.Render("Key Opinion Leader"))
	}
	return strings.Join(lines, "\n")
}

// Run shows state until the user quits or ctx is cancelled
func Run(ctx context.Context, state *physics.State, opts Options) error {
	p := tea.NewProgram(New(state, opts),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx))

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
