// Package tui provides the Bubble Tea terminal display for trackdl.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	report "github.com/handiism/trackdl/internal/progress"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))
)

// finishedShown is how many terminal lines stay on screen.
const finishedShown = 10

// Message types
type (
	addMsg struct {
		id    int
		label string
		total int64
	}

	totalMsg struct {
		id    int
		total int64
	}

	positionMsg struct {
		id  int
		pos int64
	}

	messageMsg struct {
		id      int
		message string
	}

	finishMsg struct {
		id      int
		message string
	}

	// doneMsg ends the program once every pipeline has returned.
	doneMsg struct{}
)

type barState struct {
	label   string
	message string
	final   string
	total   int64
	pos     int64
}

func (b *barState) percent() float64 {
	if b.total <= 0 {
		return 0
	}
	p := float64(b.pos) / float64(b.total)
	if p > 1 {
		return 1
	}
	return p
}

// Model is the Bubble Tea model of a running batch.
type Model struct {
	title    string
	spinner  spinner.Model
	progress progress.Model
	cancel   context.CancelFunc

	bars     map[int]*barState
	order    []int
	finished []int

	cancelling bool
	quitting   bool
	width      int
}

// NewModel creates a model. cancel is called when the user interrupts.
func NewModel(title string, cancel context.CancelFunc) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	return Model{
		title:    title,
		spinner:  sp,
		progress: prog,
		cancel:   cancel,
		bars:     make(map[int]*barState),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			if m.cancelling {
				return m, tea.Quit
			}
			m.cancelling = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case addMsg:
		m.bars[msg.id] = &barState{label: msg.label, message: msg.label, total: msg.total}
		m.order = append(m.order, msg.id)

	case totalMsg:
		if b, ok := m.bars[msg.id]; ok {
			b.total = msg.total
		}

	case positionMsg:
		if b, ok := m.bars[msg.id]; ok {
			b.pos = msg.pos
		}

	case messageMsg:
		if b, ok := m.bars[msg.id]; ok && b.final == "" {
			b.message = msg.message
		}

	case finishMsg:
		if b, ok := m.bars[msg.id]; ok && b.final == "" {
			b.final = msg.message
			m.finished = append(m.finished, msg.id)
		}

	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("♪ " + m.title))
	b.WriteString("\n")

	var received int64
	for _, id := range m.order {
		received += m.bars[id].pos
	}

	var percent float64
	if len(m.order) > 0 {
		percent = float64(len(m.finished)) / float64(len(m.order))
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Tracks: %d/%d | Received: %s",
		len(m.finished),
		len(m.order),
		report.FormatBytes(received, 0),
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderFinished())

	if !m.quitting {
		for _, id := range m.order {
			bar := m.bars[id]
			if bar.final != "" {
				continue
			}
			b.WriteString(m.spinner.View())
			b.WriteString(" ")
			b.WriteString(subtitleStyle.Render(bar.message))
			if bar.total > 0 {
				b.WriteString(dimStyle.Render(fmt.Sprintf(" %3.0f%%", bar.percent()*100)))
			}
			b.WriteString("\n")
		}
	}

	if m.cancelling && !m.quitting {
		b.WriteString("\n")
		b.WriteString(warningStyle.Render("Cancelling, waiting for running tracks..."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderFinished() string {
	var b strings.Builder

	shown := m.finished
	if !m.quitting && len(shown) > finishedShown {
		shown = shown[len(shown)-finishedShown:]
	}
	for _, id := range shown {
		msg := m.bars[id].final
		b.WriteString(report.Style(msg).Render(report.Prefix(msg) + msg))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch {
	case m.quitting:
		return ""
	case m.cancelling:
		return "ctrl+c: quit now"
	default:
		return "ctrl+c: cancel"
	}
}

// Display is a progress.Reporter rendering every track as a line of a
// Bubble Tea program. Bars are safe for concurrent use; updates are
// delivered to the program as messages.
type Display struct {
	program *tea.Program
	nextID  atomic.Int64

	once sync.Once
	done chan struct{}
	err  error
}

// NewDisplay creates a display. Start must be called before Add.
func NewDisplay(title string, cancel context.CancelFunc, opts ...tea.ProgramOption) *Display {
	return &Display{
		program: tea.NewProgram(NewModel(title, cancel), opts...),
		done:    make(chan struct{}),
	}
}

// Start runs the program in the background.
func (d *Display) Start() {
	d.once.Do(func() {
		go func() {
			defer close(d.done)
			_, d.err = d.program.Run()
		}()
	})
}

// Stop renders the final frame and waits for the program to exit.
func (d *Display) Stop() error {
	d.Start()
	d.program.Send(doneMsg{})
	<-d.done
	return d.err
}

// Add registers a bar for one track.
func (d *Display) Add(label string, total int64) report.Bar {
	id := int(d.nextID.Add(1))
	d.program.Send(addMsg{id: id, label: label, total: total})
	return &displayBar{program: d.program, id: id}
}

type displayBar struct {
	program  *tea.Program
	id       int
	finished atomic.Bool
}

func (b *displayBar) SetTotal(total int64) {
	b.program.Send(totalMsg{id: b.id, total: total})
}

func (b *displayBar) SetPosition(pos int64) {
	b.program.Send(positionMsg{id: b.id, pos: pos})
}

func (b *displayBar) SetMessage(msg string) {
	b.program.Send(messageMsg{id: b.id, message: msg})
}

func (b *displayBar) Finish(msg string) {
	if b.finished.Swap(true) {
		return
	}
	b.program.Send(finishMsg{id: b.id, message: msg})
}
