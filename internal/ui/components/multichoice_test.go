package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func key(r rune) tea.KeyPressMsg { return tea.KeyPressMsg{Code: r, Text: string(r)} }

func TestMultiChoice_ArrowsAndEnter(t *testing.T) {
	m := NewMultiChoice([]string{"5", "6", "7", "8"})

	m, chosen := m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if chosen {
		t.Fatal("moving the cursor should not choose")
	}
	m, chosen = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !chosen {
		t.Fatal("expected a choice on Enter")
	}
	if m.Value() != "6" {
		t.Errorf("Value = %q, want %q", m.Value(), "6")
	}

	// Further keys are ignored until Reset.
	m, chosen = m.Update(key('1'))
	if chosen || m.Value() != "6" {
		t.Errorf("expected choice to stick, got %q", m.Value())
	}
	m.Reset()
	if m.Value() != "" {
		t.Errorf("expected no choice after Reset, got %q", m.Value())
	}
}

func TestMultiChoice_Shortcuts(t *testing.T) {
	tests := []struct {
		key  rune
		want string
		ok   bool
	}{
		{'1', "5", true},
		{'4', "8", true},
		{'5', "", false},
		{'c', "7", true},
		{'e', "", false},
		{'?', "", false},
	}
	for _, tt := range tests {
		m := NewMultiChoice([]string{"5", "6", "7", "8"})
		m, chosen := m.Update(key(tt.key))
		if chosen != tt.ok || m.Value() != tt.want {
			t.Errorf("key %q: chosen=%v value=%q, want %v %q", tt.key, chosen, m.Value(), tt.ok, tt.want)
		}
	}
}

func TestMultiChoice_View(t *testing.T) {
	m := NewMultiChoice([]string{"5", "6", "7", "8"})
	view := m.View()
	for _, want := range []string{"A)", "B)", "C)", "D)", "▸"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m, _ = m.Update(key('1'))
	m.Reveal(1)
	if strings.Contains(m.View(), "▸") {
		t.Error("cursor should be hidden once revealed")
	}
}

func TestMultiChoice_RevealByIndex(t *testing.T) {
	m := NewMultiChoice([]string{"5", "6", "7", "8"})
	m, _ = m.Update(key('1'))
	m.Reveal(1)
	if !m.revealed || m.correct != 1 {
		t.Fatalf("revealed=%v correct=%d, want true 1", m.revealed, m.correct)
	}
	if m.Value() != "5" {
		t.Errorf("Value() = %q, reveal must not change the choice", m.Value())
	}

	m = NewMultiChoice([]string{"5", "6"})
	m.Reveal(-1)
	if got := strings.Count(m.View(), "\n"); got != 2 {
		t.Errorf("view has %d lines, want 2", got)
	}
}
