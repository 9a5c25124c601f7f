package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizwhiz/internal/router"
	"github.com/abhisek/quizwhiz/internal/screen"
	"github.com/abhisek/quizwhiz/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	// autoAdvance hands over to setup when nobody presses a key.
	autoAdvance = 8 * time.Second
)

type stage int

const (
	stageMascot stage = iota
	stageBanner
	stageReady
)

// stageStart is when each stage begins.
var stageStart = [...]time.Duration{
	stageMascot: 0,
	stageBanner: 600 * time.Millisecond,
	stageReady:  1800 * time.Millisecond,
}

var mascot = []string{
	"╭─────────╮",
	"│  ◉   ◉  │",
	"│    ▿    │",
	"│  ╰───╯  │",
	"╰────┬────╯",
	"   ╭─┴─╮   ",
	"   │ ? │   ",
	"   ╰───╯   ",
}

// blink replaces the eye row every few seconds.
const blinkRow = "│  ─   ─  │"

// symbols drift along a strip under the mascot.
const symbols = "+ − × ÷ = A B C D ? "

type tickMsg time.Time

// WelcomeScreen is the splash shown before quiz setup.
type WelcomeScreen struct {
	next    func() screen.Screen
	elapsed time.Duration
	ticks   int
	done    bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates the splash. next builds the screen that replaces it.
func New(next func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{next: next}
}

func (w *WelcomeScreen) Title() string { return "" }

func (w *WelcomeScreen) Init() tea.Cmd { return tick() }

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.done {
			return w, nil
		}
		w.ticks++
		w.elapsed += tickInterval
		if w.elapsed >= autoAdvance {
			return w, w.leave()
		}
		return w, tick()
	case tea.KeyPressMsg:
		return w, w.leave()
	}
	return w, nil
}

// leave replaces the splash exactly once.
func (w *WelcomeScreen) leave() tea.Cmd {
	if w.done {
		return nil
	}
	w.done = true
	next := w.next()
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (w *WelcomeScreen) stage() stage {
	s := stageMascot
	for i, start := range stageStart {
		if w.elapsed >= start {
			s = stage(i)
		}
	}
	return s
}

func (w *WelcomeScreen) View(width, height int) string {
	parts := []string{w.renderMascot(), w.renderStrip()}

	if w.stage() >= stageBanner {
		tagline := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("Ready, set, quiz!")
		parts = append(parts, "", RenderBanner(width), "", tagline)
	}
	if w.stage() >= stageReady {
		hint := lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("press any key to start")
		parts = append(parts, "", hint)
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(parts, "\n"))
}

func (w *WelcomeScreen) renderMascot() string {
	lines := append([]string(nil), mascot...)
	// Blink for one tick in every thirty.
	if w.ticks%30 == 29 {
		lines[1] = blinkRow
	}
	return lipgloss.NewStyle().Foreground(theme.Primary).Render(strings.Join(lines, "\n"))
}

// renderStrip shows a window of the symbol loop shifted by one rune per
// tick.
func (w *WelcomeScreen) renderStrip() string {
	loop := []rune(symbols)
	const visible = 15
	out := make([]rune, visible)
	for i := range out {
		out[i] = loop[(w.ticks+i)%len(loop)]
	}
	return lipgloss.NewStyle().Foreground(theme.Secondary).Render(string(out))
}
