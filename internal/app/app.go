// Package app is the terminal front end: a Bubble Tea model that frames
// whatever screen the router has on top with a header and a footer.
package app

import (
	"errors"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizwhiz/internal/curriculum"
	"github.com/abhisek/quizwhiz/internal/quiz"
	"github.com/abhisek/quizwhiz/internal/router"
	"github.com/abhisek/quizwhiz/internal/screen"
	quizscreen "github.com/abhisek/quizwhiz/internal/screens/quiz"
	"github.com/abhisek/quizwhiz/internal/screens/setup"
	"github.com/abhisek/quizwhiz/internal/screens/welcome"
	"github.com/abhisek/quizwhiz/internal/ui/layout"
)

type Options struct {
	Manager *quiz.Manager
	Catalog *curriculum.Catalog

	// Minutes is the quiz length offered on the setup screen.
	Minutes int

	// With both Subject and Grade set the app skips the splash and setup
	// and opens the quiz directly.
	Subject curriculum.Subject
	Grade   int
}

var quitHint = layout.KeyHint{Key: "Ctrl+C", Description: "Quit"}

// Model is the root tea.Model.
type Model struct {
	router        *router.Router
	width, height int
}

func newModel(opts Options, started *quiz.Session) Model {
	if started != nil {
		return Model{router: router.New(quizscreen.New(started, opts.Catalog))}
	}
	next := setup.New(opts.Catalog, opts.Manager.Start, opts.Minutes)
	return Model{router: router.New(welcome.New(func() screen.Screen { return next }))}
}

func (m Model) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			m.router.CloseAll()
			return m, tea.Quit
		}
	}
	return m, m.router.Update(msg)
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	switch {
	case m.width == 0 || m.height == 0:
		// No size yet.
	case layout.IsTooSmall(m.width, m.height):
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
	default:
		v.SetContent(m.frame())
	}
	return v
}

// frame draws header, active screen and footer. The screen gets whatever
// height the header and footer leave.
func (m Model) frame() string {
	active := m.router.Active()

	var status layout.Status
	if sp, ok := active.(screen.StatusProvider); ok {
		status = sp.Status()
	}
	hints := []layout.KeyHint{quitHint}
	if kp, ok := active.(screen.KeyHintProvider); ok && len(kp.KeyHints()) > 0 {
		hints = kp.KeyHints()
	}

	header := layout.RenderHeader(active.Title(), status, m.width)
	footer := layout.RenderFooter(hints, m.width)
	body := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)

	return layout.RenderFrame(header, m.router.View(m.width, body), footer, m.width, m.height)
}

// Run blocks until the learner quits. A quiz is started up front when
// opts names both a subject and a grade.
func Run(opts Options) error {
	if opts.Manager == nil {
		return errors.New("app: no quiz manager")
	}
	if opts.Catalog == nil {
		opts.Catalog = curriculum.Default()
	}

	var started *quiz.Session
	if opts.Subject != "" && opts.Grade != 0 {
		s, err := opts.Manager.Start(opts.Subject, opts.Grade)
		if err != nil {
			return err
		}
		started = s
	}

	_, err := tea.NewProgram(newModel(opts, started)).Run()
	return err
}
