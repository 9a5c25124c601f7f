// Package setup lets the learner pick a grade and subject before a quiz.
package setup

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizwhiz/internal/curriculum"
	qz "github.com/abhisek/quizwhiz/internal/quiz"
	"github.com/abhisek/quizwhiz/internal/router"
	"github.com/abhisek/quizwhiz/internal/screen"
	quizscreen "github.com/abhisek/quizwhiz/internal/screens/quiz"
	"github.com/abhisek/quizwhiz/internal/ui/components"
	"github.com/abhisek/quizwhiz/internal/ui/layout"
	"github.com/abhisek/quizwhiz/internal/ui/theme"
)

// Starter begins a quiz session. *quiz.Manager.Start satisfies it.
type Starter func(subject curriculum.Subject, grade int) (*qz.Session, error)

type step int

const (
	stepGrade step = iota
	stepSubject
)

// SetupScreen picks the grade, then the subject, then starts the quiz.
type SetupScreen struct {
	catalog *curriculum.Catalog
	start   Starter
	minutes int

	step   step
	grade  int
	menu   components.Menu
	errMsg string
}

var _ screen.Screen = (*SetupScreen)(nil)
var _ screen.KeyHintProvider = (*SetupScreen)(nil)

// Menu actions report the pick as a message so the menu is never
// replaced while it is updating.
type gradePickedMsg struct{ Grade int }

type subjectPickedMsg struct{ Subject curriculum.Subject }

// startedMsg carries a freshly started session.
type startedMsg struct {
	Session *qz.Session
	Err     error
}

// New creates a SetupScreen. minutes is shown to the learner.
func New(catalog *curriculum.Catalog, start Starter, minutes int) *SetupScreen {
	if catalog == nil {
		catalog = curriculum.Default()
	}
	s := &SetupScreen{catalog: catalog, start: start, minutes: minutes}
	s.showGrades()
	return s
}

func (s *SetupScreen) showGrades() {
	grades := s.catalog.GradeList()
	items := make([]components.MenuItem, 0, len(grades)+1)
	for _, g := range grades {
		var names []string
		for _, subj := range s.catalog.Subjects(g) {
			names = append(names, string(subj))
		}
		items = append(items, components.MenuItem{
			Label: fmt.Sprintf("Grade %d", g),
			Hint:  strings.Join(names, ", "),
			Action: func() tea.Cmd {
				return func() tea.Msg { return gradePickedMsg{Grade: g} }
			},
		})
	}
	items = append(items, components.MenuItem{Label: "Exit", Action: func() tea.Cmd { return tea.Quit }})
	s.step = stepGrade
	s.menu = components.NewMenu(items)
}

func (s *SetupScreen) showSubjects() {
	subjects := s.catalog.Subjects(s.grade)
	items := make([]components.MenuItem, 0, len(subjects))
	for _, subj := range subjects {
		items = append(items, components.MenuItem{
			Label: titleCase(string(subj)),
			Action: func() tea.Cmd {
				return func() tea.Msg { return subjectPickedMsg{Subject: subj} }
			},
		})
	}
	s.step = stepSubject
	s.menu = components.NewMenu(items)
}

func (s *SetupScreen) startQuiz(subject curriculum.Subject) tea.Cmd {
	start, grade := s.start, s.grade
	return func() tea.Msg {
		sess, err := start(subject, grade)
		return startedMsg{Session: sess, Err: err}
	}
}

func (s *SetupScreen) Init() tea.Cmd {
	return nil
}

func (s *SetupScreen) Title() string {
	return "New Quiz"
}

func (s *SetupScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter/1-9", Description: "Select"},
	}
	if s.step == stepSubject {
		hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

func (s *SetupScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case gradePickedMsg:
		s.grade = msg.Grade
		s.showSubjects()
		return s, nil

	case subjectPickedMsg:
		return s, s.startQuiz(msg.Subject)

	case startedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.showGrades()
		next := quizscreen.New(msg.Session, s.catalog)
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }

	case tea.KeyMsg:
		if msg.String() == "esc" && s.step == stepSubject {
			s.showGrades()
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *SetupScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString("\n")
	prompt := "Which grade are you in?"
	if s.step == stepSubject {
		prompt = fmt.Sprintf("Grade %d: what do you want to practice?", s.grade)
	}
	b.WriteString(layout.Centered(theme.Title, width, prompt))
	b.WriteString("\n")
	if s.minutes > 0 {
		b.WriteString(layout.Centered(theme.Subtitle, width,
			fmt.Sprintf("You'll have %d minutes. Get 5 in a row right to level up!", s.minutes)))
	}
	b.WriteString("\n\n")

	menu := theme.Card.Width(min(width-8, 52)).Render(strings.TrimRight(s.menu.View(), "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, menu))

	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.Error), width, s.errMsg))
	}
	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
