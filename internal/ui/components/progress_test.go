package components

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestBarCells(t *testing.T) {
	tests := []struct {
		name  string
		frac  float64
		cells int
		want  string
	}{
		{"empty", 0, 4, "    "},
		{"full", 1, 4, "████"},
		{"half", 0.5, 4, "██  "},
		{"eighth of a cell", 1.0 / 32, 4, "▏   "},
		{"three and a half", 0.875, 4, "███▌"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := barCells(tt.frac, tt.cells)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.cells, utf8.RuneCountInString(got))
		})
	}
}

func TestProgressBar_View(t *testing.T) {
	bar := NewProgressBar("Fractions  2/3", 2.0/3, true, 40)
	view := bar.View()
	assert.Contains(t, view, "Fractions  2/3")
	assert.Contains(t, view, "67%")

	over := NewProgressBar("", 1.7, true, 20).View()
	assert.Contains(t, over, "100%", "percent is clamped")
}
