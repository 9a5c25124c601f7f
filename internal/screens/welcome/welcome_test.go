package welcome

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizwhiz/internal/router"
	"github.com/abhisek/quizwhiz/internal/screen"
)

type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                          { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                   { return "setup" }
func (s *stubScreen) Title() string                          { return "New Quiz" }

func newSplash() (*WelcomeScreen, *int) {
	built := 0
	return New(func() screen.Screen {
		built++
		return &stubScreen{}
	}), &built
}

// advance feeds n ticks and returns the last command.
func advance(w *WelcomeScreen, n int) tea.Cmd {
	var cmd tea.Cmd
	for range n {
		_, cmd = w.Update(tickMsg(time.Now()))
	}
	return cmd
}

func TestStages(t *testing.T) {
	w, _ := newSplash()
	assert.Equal(t, stageMascot, w.stage())
	assert.NotContains(t, w.View(80, 30), "Ready, set, quiz!")

	advance(w, 6)
	assert.Equal(t, stageBanner, w.stage())
	view := w.View(80, 30)
	assert.Contains(t, view, "Ready, set, quiz!")
	assert.NotContains(t, view, "press any key")

	advance(w, 12)
	assert.Equal(t, stageReady, w.stage())
	assert.Contains(t, w.View(80, 30), "press any key to start")
}

func TestKeyPressLeaves(t *testing.T) {
	w, built := newSplash()
	advance(w, 3)

	_, cmd := w.Update(tea.KeyPressMsg{Code: ' '})
	require.NotNil(t, cmd)
	msg, ok := cmd().(router.ReplaceScreenMsg)
	require.True(t, ok)
	assert.NotNil(t, msg.Screen)
	assert.Equal(t, 1, *built)

	_, cmd = w.Update(tea.KeyPressMsg{Code: 'b'})
	assert.Nil(t, cmd, "the splash is replaced only once")
	assert.Nil(t, advance(w, 1), "ticks stop after leaving")
	assert.Equal(t, 1, *built)
}

func TestAutoAdvance(t *testing.T) {
	w, built := newSplash()

	cmd := advance(w, int(autoAdvance/tickInterval)-1)
	require.NotNil(t, cmd)
	assert.Zero(t, *built, "still animating")

	cmd = advance(w, 1)
	require.NotNil(t, cmd)
	_, ok := cmd().(router.ReplaceScreenMsg)
	assert.True(t, ok)
	assert.Equal(t, 1, *built)
}

func TestStripScrolls(t *testing.T) {
	w, _ := newSplash()
	first := w.renderStrip()
	advance(w, 1)
	assert.NotEqual(t, first, w.renderStrip())
	assert.Equal(t, 15, len([]rune(stripANSI(w.renderStrip()))))
}

func TestRenderBannerCompact(t *testing.T) {
	assert.Contains(t, RenderBanner(40), "Q U I Z W H I Z")
	assert.NotContains(t, RenderBanner(100), "Q U I Z W H I Z")
}

func stripANSI(s string) string {
	var b strings.Builder
	skip := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			skip = true
		case skip && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			skip = false
		case !skip:
			b.WriteRune(r)
		}
	}
	return b.String()
}
