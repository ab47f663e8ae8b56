package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// form is a column of labelled text inputs with one focused field
type form struct {
	labels []string
	fields []textinput.Model
	focus  int
}

type formField struct {
	label       string
	placeholder string
	value       string
	width       int
}

func newForm(specs ...formField) *form {
	f := &form{}
	for _, s := range specs {
		in := textinput.New()
		in.Placeholder = s.placeholder
		in.CharLimit = 200
		in.Width = s.width
		in.SetValue(s.value)
		f.labels = append(f.labels, s.label)
		f.fields = append(f.fields, in)
	}
	return f
}

func (f *form) value(i int) string {
	return f.fields[i].Value()
}

func (f *form) onLast() bool {
	return f.focus == len(f.fields)-1
}

func (f *form) start() tea.Cmd {
	f.focus = 0
	return f.fields[0].Focus()
}

func (f *form) move(delta int) tea.Cmd {
	f.fields[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	return f.fields[f.focus].Focus()
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.fields[f.focus], cmd = f.fields[f.focus].Update(msg)
	return cmd
}

func (f *form) view() string {
	var s string
	for i, label := range f.labels {
		indicator := "  "
		labelStyle := subtitleStyle
		if i == f.focus {
			indicator = "> "
			labelStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
		}
		s += fmt.Sprintf("%s%s\n  %s\n\n", indicator, labelStyle.Render(label), f.fields[i].View())
	}
	return s
}

const formHelp = "  tab/shift+tab: navigate fields  ctrl+s: save  enter: next/save  esc: cancel"

// handleFormKey applies the shared form navigation. It reports submit when
// the form should be saved and cancel when it was dismissed.
func handleFormKey(f *form, msg tea.KeyMsg) (cmd tea.Cmd, submit, cancel bool) {
	switch msg.String() {
	case "esc":
		return nil, false, true
	case "tab", "down":
		return f.move(1), false, false
	case "shift+tab", "up":
		return f.move(-1), false, false
	case "enter":
		if f.onLast() {
			return nil, true, false
		}
		return f.move(1), false, false
	case "ctrl+s":
		return nil, true, false
	}
	return f.update(msg), false, false
}
