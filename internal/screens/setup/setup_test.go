package setup

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizwhiz/internal/curriculum"
	"github.com/abhisek/quizwhiz/internal/problemgen"
	qz "github.com/abhisek/quizwhiz/internal/quiz"
	"github.com/abhisek/quizwhiz/internal/router"
)

type nopAcquirer struct{}

func (nopAcquirer) Acquire(context.Context, problemgen.AcquireInput) (*problemgen.Question, error) {
	return nil, errors.New("unused")
}

func enter() tea.KeyPressMsg { return tea.KeyPressMsg{Code: tea.KeyEnter} }
func down() tea.KeyPressMsg  { return tea.KeyPressMsg{Code: tea.KeyDown} }

// press sends a key and feeds the menu's pick back into the screen.
func press(t *testing.T, s *SetupScreen, k tea.KeyPressMsg) tea.Cmd {
	t.Helper()
	_, cmd := s.Update(k)
	if cmd == nil {
		t.Fatal("expected a menu command")
	}
	_, cmd = s.Update(cmd())
	return cmd
}

func TestSetupScreen_StartsQuiz(t *testing.T) {
	var gotSubject curriculum.Subject
	var gotGrade int
	m := qz.NewManager(qz.Deps{Acquirer: nopAcquirer{}}, qz.Config{Duration: time.Hour})
	defer m.Close(context.Background())

	start := func(subject curriculum.Subject, grade int) (*qz.Session, error) {
		gotSubject, gotGrade = subject, grade
		return m.Start(subject, grade)
	}
	s := New(nil, start, 15)

	// Grade 1 is first; move to grade 3.
	s.Update(down())
	s.Update(down())
	press(t, s, enter())
	if s.step != stepSubject || s.grade != 3 {
		t.Fatalf("step=%v grade=%d, want subject step for grade 3", s.step, s.grade)
	}
	if !strings.Contains(s.View(80, 24), "Grade 3") {
		t.Error("view should name the chosen grade")
	}

	cmd := press(t, s, enter())
	if cmd == nil {
		t.Fatal("expected start command")
	}
	_, cmd = s.Update(cmd())
	if gotGrade != 3 || gotSubject != curriculum.English {
		t.Errorf("started %s grade %d, want english grade 3", gotSubject, gotGrade)
	}
	if cmd == nil {
		t.Fatal("expected push command")
	}
	if _, ok := cmd().(router.PushScreenMsg); !ok {
		t.Error("expected PushScreenMsg")
	}
	if s.step != stepGrade {
		t.Error("setup should reset to grade selection")
	}
}

func TestSetupScreen_EscGoesBack(t *testing.T) {
	s := New(nil, nil, 15)
	press(t, s, enter())
	if s.step != stepSubject {
		t.Fatal("expected subject step")
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if s.step != stepGrade {
		t.Error("esc should return to grade step")
	}
}

func TestSetupScreen_StartError(t *testing.T) {
	s := New(nil, nil, 15)
	s.Update(startedMsg{Err: errors.New("no curriculum")})
	if !strings.Contains(s.View(80, 24), "no curriculum") {
		t.Error("expected error in view")
	}
}
