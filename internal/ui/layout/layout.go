// Package layout draws the frame around every screen: header, footer and
// the helpers screens use to center their content.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizwhiz/internal/ui/theme"
)

// Minimum terminal size the quiz can be drawn in.
const (
	MinWidth  = 80
	MinHeight = 24
)

// KeyHint is one "key description" pair in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// Status is the quiz state shown on the right of the header. Nothing is
// drawn unless Active is set.
type Status struct {
	Active           bool
	Streak           int
	BestStreak       int
	SecondsRemaining int

	// Level is the tier index and LevelName its label; Window counts the
	// answers given at this tier out of WindowSize.
	Level      int
	LevelName  string
	Window     int
	WindowSize int
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the user to enlarge the terminal.
func RenderMinSizeMessage(width, height int) string {
	text := fmt.Sprintf("This terminal is %d × %d.\n\nQuizWhiz needs at least %d × %d.\nMake the window a bit bigger!",
		width, height, MinWidth, MinHeight)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Text).Align(lipgloss.Center).Render(text))
}

// FormatClock renders whole seconds as m:ss. Negative values show 0:00.
func FormatClock(seconds int) string {
	seconds = max(seconds, 0)
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// Pips draws filled of total dots, e.g. ●●○○○.
func Pips(filled, total int) string {
	filled = min(max(filled, 0), total)
	return strings.Repeat("●", filled) + strings.Repeat("○", total-filled)
}

func (s Status) render() string {
	if !s.Active {
		return ""
	}
	var parts []string
	if s.LevelName != "" {
		level := theme.Badge(s.Level, s.LevelName)
		if s.WindowSize > 0 {
			level += " " + lipgloss.NewStyle().Foreground(theme.LevelColor(s.Level)).Render(Pips(s.Window, s.WindowSize))
		}
		parts = append(parts, level)
	}
	parts = append(parts,
		lipgloss.NewStyle().Foreground(theme.Accent).Render(fmt.Sprintf("🔥 %d (best %d)", s.Streak, s.BestStreak)),
		theme.Timer(s.SecondsRemaining).Render("⏱ "+FormatClock(s.SecondsRemaining)),
	)
	return strings.Join(parts, "   ")
}

// RenderHeader draws the app name on the left, title centered and the
// quiz status on the right.
func RenderHeader(title string, status Status, width int) string {
	left := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(" QuizWhiz")
	center := lipgloss.NewStyle().Foreground(theme.Text).Render(title)
	right := status.render()

	inner := max(width-4, 0)
	lw, cw, rw := lipgloss.Width(left), lipgloss.Width(center), lipgloss.Width(right)

	// Center the title on the full bar, but never let it overlap the sides.
	gapL := max((inner-cw)/2-lw, 1)
	gapR := max(inner-lw-gapL-cw-rw, 1)

	line := left + strings.Repeat(" ", gapL) + center + strings.Repeat(" ", gapR) + right
	return theme.Bar.Width(width).Render(line)
}

// RenderFooter lists key hints.
func RenderFooter(hints []KeyHint, width int) string {
	key := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	desc := lipgloss.NewStyle().Foreground(theme.TextDim)

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = key.Render(h.Key) + " " + desc.Render(h.Description)
	}
	return theme.Bar.Width(width).Render(" " + strings.Join(parts, "   "))
}

// RenderFrame stacks header, content and footer, giving the content
// whatever height is left.
func RenderFrame(header, content, footer string, width, height int) string {
	body := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().Width(width).Height(body).MaxHeight(body).Render(content),
		footer,
	)
}

// Centered renders text centered across width in style.
func Centered(style lipgloss.Style, width int, text string) string {
	return style.Width(width).Align(lipgloss.Center).Render(text)
}
