// Package theme holds the palette and shared styles of the TUI.
package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// High-contrast palette on a dark background, sized for young readers.
var (
	Primary   = lipgloss.Color("#8B5CF6")
	Secondary = lipgloss.Color("#14B8A6")
	Accent    = lipgloss.Color("#F97316")
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgCard    = lipgloss.Color("#1E293B")
	Border    = lipgloss.Color("#334155")
)

var (
	Title    = lipgloss.NewStyle().Bold(true).Foreground(Primary).Align(lipgloss.Center)
	Subtitle = lipgloss.NewStyle().Foreground(TextDim).Align(lipgloss.Center)
	Body     = lipgloss.NewStyle().Foreground(Text)
	Hint     = lipgloss.NewStyle().Foreground(TextDim).Italic(true)

	Selected  = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Correct   = lipgloss.NewStyle().Foreground(Success).Bold(true)
	Incorrect = lipgloss.NewStyle().Foreground(Error).Bold(true)

	// Bar is the frame of the header and footer.
	Bar = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border)

	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// levelColors run cool to warm, very easy to hard.
var levelColors = [...]color.Color{Secondary, Success, Primary, Accent, Error}

// LevelColor returns the badge color for a difficulty tier index.
func LevelColor(level int) color.Color {
	if level < 0 || level >= len(levelColors) {
		return TextDim
	}
	return levelColors[level]
}

// Badge renders label on the tier's color.
func Badge(level int, label string) string {
	return lipgloss.NewStyle().
		Foreground(BgCard).
		Background(LevelColor(level)).
		Bold(true).
		Padding(0, 1).
		Render(label)
}

// Timer styles the countdown; the last minute turns red.
func Timer(remainingSeconds int) lipgloss.Style {
	if remainingSeconds <= 60 {
		return lipgloss.NewStyle().Foreground(Error).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(Accent)
}
