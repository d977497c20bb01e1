package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type promptModel struct {
	label     string
	input     textinput.Model
	submitted bool
}

func newPromptModel(label, placeholder string) promptModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 60

	return promptModel{label: label, input: ti}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			m.submitted = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.submitted {
		return ""
	}
	return subtitleStyle.Render(m.label) + "\n\n" + m.input.View() + "\n\n" + dimStyle.Render("enter: start • esc: quit") + "\n"
}

// value is the trimmed answer, empty when the prompt was dismissed.
func (m promptModel) value() string {
	if !m.submitted {
		return ""
	}
	return strings.TrimSpace(m.input.Value())
}

// Prompt asks for a single line of input. A dismissed prompt returns an
// empty string.
func Prompt(label, placeholder string, opts ...tea.ProgramOption) (string, error) {
	final, err := tea.NewProgram(newPromptModel(label, placeholder), opts...).Run()
	if err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}
	return final.(promptModel).value(), nil
}
