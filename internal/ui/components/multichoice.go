package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizwhiz/internal/ui/theme"
)

// OptionLabels prefix the options of a question.
var OptionLabels = []string{"A", "B", "C", "D"}

// MultiChoice is a multiple-choice selector. It only tracks the cursor
// and the choice; scoring happens elsewhere and is shown with Reveal.
type MultiChoice struct {
	Options  []string
	Selected int
	Chosen   int

	revealed bool
	correct  int
}

// NewMultiChoice creates a selector over options with nothing chosen.
func NewMultiChoice(options []string) MultiChoice {
	return MultiChoice{Options: options, Chosen: -1}
}

// Update moves the cursor and records a choice on Enter, a digit or a
// letter. It reports whether a choice was made by this message.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, bool) {
	if m.Chosen >= 0 {
		return m, false
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, false
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
		return m, false
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
		return m, false
	case "enter":
		m.Chosen = m.Selected
		return m, true
	}

	if i, ok := optionIndex(key, len(m.Options)); ok {
		m.Selected = i
		m.Chosen = i
		return m, true
	}
	return m, false
}

func optionIndex(key string, n int) (int, bool) {
	if len(key) != 1 {
		return 0, false
	}
	c := key[0]
	switch {
	case c >= '1' && c <= '9':
		i := int(c - '1')
		return i, i < n
	case c >= 'a' && c <= 'z':
		i := int(c - 'a')
		return i, i < n && i < len(OptionLabels)
	}
	return 0, false
}

// Value returns the chosen option text, or "" before a choice.
func (m MultiChoice) Value() string {
	if m.Chosen < 0 || m.Chosen >= len(m.Options) {
		return ""
	}
	return m.Options[m.Chosen]
}

// Reset clears the choice so the learner can try again.
func (m *MultiChoice) Reset() {
	m.Chosen = -1
}

// Reveal marks the option at index correct for display. A negative index
// reveals without highlighting any option.
func (m *MultiChoice) Reveal(correct int) {
	m.revealed = true
	m.correct = correct
}

// View renders the options.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		label := fmt.Sprintf("%d", i+1)
		if i < len(OptionLabels) {
			label = OptionLabels[i]
		}
		prefix := "  "
		if i == m.Selected && !m.revealed {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s)  %s", prefix, label, opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case m.revealed && i == m.correct:
			style = lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
		case m.revealed && i == m.Chosen:
			style = lipgloss.NewStyle().Foreground(theme.Error).Bold(true)
		case m.revealed:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Selected:
			style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
