package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#95E1A3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C757D"))
)

// Plain writes one line per message change and per terminal state.
// Position updates are folded into the terminal line as a byte count.
//
// It is the renderer used when output is not an interactive terminal.
type Plain struct {
	mu  sync.Mutex
	out io.Writer
}

// NewPlain creates a Plain reporter writing to out.
func NewPlain(out io.Writer) *Plain {
	return &Plain{out: out}
}

// Add registers a bar and prints its label.
func (p *Plain) Add(label string, total int64) Bar {
	b := &plainBar{parent: p, total: total, message: label}
	p.println(dimStyle.Render("• " + label))
	return b
}

func (p *Plain) println(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, line)
}

type plainBar struct {
	parent *Plain

	mu       sync.Mutex
	total    int64
	pos      int64
	message  string
	finished bool
}

func (b *plainBar) SetTotal(total int64) {
	b.mu.Lock()
	b.total = total
	b.mu.Unlock()
}

func (b *plainBar) SetPosition(pos int64) {
	b.mu.Lock()
	b.pos = pos
	b.mu.Unlock()
}

func (b *plainBar) SetMessage(msg string) {
	b.mu.Lock()
	if b.finished || msg == b.message {
		b.mu.Unlock()
		return
	}
	b.message = msg
	b.mu.Unlock()

	b.parent.println(dimStyle.Render("  " + msg))
}

func (b *plainBar) Finish(msg string) {
	b.mu.Lock()
	if b.finished {
		b.mu.Unlock()
		return
	}
	b.finished = true
	pos, total := b.pos, b.total
	b.mu.Unlock()

	line := msg
	if pos > 0 {
		line += fmt.Sprintf(" (%s)", FormatBytes(pos, total))
	}
	b.parent.println(Style(msg).Render(Prefix(msg) + line))
}

// Classify derives the level of a terminal message from its leading word.
func Classify(msg string) Level {
	switch {
	case strings.HasPrefix(msg, "Failed"):
		return LevelError
	case strings.HasPrefix(msg, "Skipped"):
		return LevelWarning
	case strings.HasPrefix(msg, "Completed"), strings.HasPrefix(msg, "Downloaded"):
		return LevelSuccess
	default:
		return LevelInfo
	}
}

// Style returns the lipgloss style for a terminal message.
func Style(msg string) lipgloss.Style {
	switch Classify(msg) {
	case LevelError:
		return errorStyle
	case LevelWarning:
		return warningStyle
	case LevelSuccess:
		return successStyle
	default:
		return dimStyle
	}
}

// Prefix returns the status glyph for a terminal message.
func Prefix(msg string) string {
	switch Classify(msg) {
	case LevelError:
		return "✗ "
	case LevelWarning:
		return "! "
	case LevelSuccess:
		return "✓ "
	default:
		return "› "
	}
}

// FormatBytes renders "pos/total" in MiB, or just pos when total is unknown.
func FormatBytes(pos, total int64) string {
	const mib = 1024 * 1024
	if total <= 0 {
		return fmt.Sprintf("%.2f MB", float64(pos)/mib)
	}
	return fmt.Sprintf("%.2f/%.2f MB", float64(pos)/mib, float64(total)/mib)
}
