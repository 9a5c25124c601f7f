package components

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizwhiz/internal/ui/theme"
)

// NoteField is a single-line free-text box with a character counter,
// used for the optional note on a question report.
type NoteField struct {
	input textinput.Model
	limit int
}

// NewNoteField returns a focused field. A limit of 0 means unlimited.
func NewNoteField(placeholder string, limit int) NoteField {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = "> "
	in.CharLimit = max(limit, 0)
	in.Focus()
	return NoteField{input: in, limit: max(limit, 0)}
}

func (f NoteField) Init() tea.Cmd {
	return f.input.Focus()
}

func (f NoteField) Update(msg tea.Msg) (NoteField, tea.Cmd) {
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd
}

// Value is the typed text with surrounding whitespace removed.
func (f NoteField) Value() string {
	return strings.TrimSpace(f.input.Value())
}

// Remaining is how many more characters fit, or -1 when unlimited.
func (f NoteField) Remaining() int {
	if f.limit == 0 {
		return -1
	}
	return f.limit - utf8.RuneCountInString(f.input.Value())
}

func (f NoteField) View() string {
	line := f.input.View()
	if f.limit == 0 {
		return line
	}
	counter := theme.Hint.Render(fmt.Sprintf("%d/%d", f.limit-f.Remaining(), f.limit))
	return lipgloss.JoinVertical(lipgloss.Right, line, counter)
}
