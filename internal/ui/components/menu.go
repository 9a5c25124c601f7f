package components

import (
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizwhiz/internal/ui/theme"
)

// MenuItem is one pickable row. Hint is shown dimmed after the label.
type MenuItem struct {
	Label    string
	Hint     string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical picker. The cursor wraps at both ends and skips
// disabled items; digits 1-9 pick an item directly.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu puts the cursor on the first enabled item.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	m.move(1)
	return m
}

// Update handles navigation and returns the picked item's command.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return m, nil
	}

	switch key := kmsg.String(); key {
	case "up", "k", "shift+tab":
		m.move(-1)
	case "down", "j", "tab":
		m.move(1)
	case "enter", "space":
		return m, m.pick(m.Selected)
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(m.Items) {
			return m, m.pick(n - 1)
		}
	}
	return m, nil
}

// move steps the cursor by dir, wrapping, until it lands on an enabled
// item. With nothing enabled the cursor stays where it is.
func (m *Menu) move(dir int) {
	n := len(m.Items)
	for step := 1; step <= n; step++ {
		i := ((m.Selected+dir*step)%n + n) % n
		if !m.Items[i].Disabled {
			m.Selected = i
			return
		}
	}
}

func (m *Menu) pick(i int) tea.Cmd {
	if i < 0 || i >= len(m.Items) || m.Items[i].Disabled {
		return nil
	}
	m.Selected = i
	if m.Items[i].Action == nil {
		return nil
	}
	return m.Items[i].Action()
}

// View renders one line per item, numbered when the menu is short enough
// for digit shortcuts.
func (m Menu) View() string {
	cursor := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	normal := lipgloss.NewStyle().Foreground(theme.Text)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	var b strings.Builder
	for i, item := range m.Items {
		label := item.Label
		if len(m.Items) <= 9 {
			label = strconv.Itoa(i+1) + ". " + label
		}
		switch {
		case item.Disabled:
			b.WriteString(dim.Strikethrough(true).Render("    " + label))
		case i == m.Selected:
			b.WriteString(cursor.Render("  ▸ " + label))
		default:
			b.WriteString(normal.Render("    " + label))
		}
		if item.Hint != "" {
			b.WriteString(dim.Render("  " + item.Hint))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
