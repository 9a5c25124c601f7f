package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizwhiz/internal/ui/theme"
)

// partials are left-aligned eighth blocks, index = eighths filled.
var partials = []string{"", "▏", "▎", "▍", "▌", "▋", "▊", "▉"}

// ProgressBar is a one-line bar with an optional label and percentage.
// Percent is a fraction in [0,1]; values outside are clamped. A bar whose
// Percent falls below Warn is drawn in the error color.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
	Warn        float64
}

func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{Label: label, Percent: percent, ShowPercent: showPercent, Width: width}
}

func (p ProgressBar) View() string {
	frac := min(max(p.Percent, 0), 1)

	var prefix, suffix string
	if p.Label != "" {
		prefix = lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label) + "  "
	}
	if p.ShowPercent {
		suffix = lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf(" %3d%%", int(frac*100+0.5)))
	}

	cells := max(p.Width-lipgloss.Width(prefix)-lipgloss.Width(suffix), 4)

	fill := theme.Secondary
	if frac < p.Warn {
		fill = theme.Error
	}
	bar := lipgloss.NewStyle().Foreground(fill).Background(theme.Border).Render(barCells(frac, cells))
	return prefix + bar + suffix
}

// barCells renders frac of cells using full and eighth blocks, padded
// with spaces to exactly cells runes.
func barCells(frac float64, cells int) string {
	eighths := int(frac*float64(cells*8) + 0.5)
	full, rem := eighths/8, eighths%8

	var b strings.Builder
	b.WriteString(strings.Repeat("█", full))
	used := full
	if rem > 0 && used < cells {
		b.WriteString(partials[rem])
		used++
	}
	b.WriteString(strings.Repeat(" ", cells-used))
	return b.String()
}
