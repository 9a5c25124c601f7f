package quiz

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizwhiz/internal/screen"
	"github.com/abhisek/quizwhiz/internal/store"
	"github.com/abhisek/quizwhiz/internal/ui/components"
)

// openReport shows the issue picker for the question on display.
func (s *QuizScreen) openReport() tea.Cmd {
	if s.session.CurrentQuestion() == nil {
		return nil
	}
	items := make([]components.MenuItem, 0, len(store.FeedbackTags()))
	for _, tag := range store.FeedbackTags() {
		items = append(items, components.MenuItem{
			Label: tag.Label(),
			Action: func() tea.Cmd {
				return func() tea.Msg { return tagPickedMsg{Tag: tag} }
			},
		})
	}
	s.tagMenu = components.NewMenu(items)
	s.tagChosen = ""
	s.note = components.NewNoteField("Tell us more (optional)", 200)
	s.prevMode = s.mode
	s.mode = modeReport
	return nil
}

// tagPickedMsg is produced by the issue menu.
type tagPickedMsg struct {
	Tag store.FeedbackTag
}

func (s *QuizScreen) handleReportKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if msg.String() == "esc" {
		s.mode = s.prevMode
		return s, nil
	}

	if s.tagChosen == "" {
		var cmd tea.Cmd
		s.tagMenu, cmd = s.tagMenu.Update(msg)
		if cmd == nil {
			return s, nil
		}
		if picked, ok := cmd().(tagPickedMsg); ok {
			s.tagChosen = picked.Tag
			return s, s.note.Init()
		}
		return s, nil
	}

	if msg.String() == "enter" {
		tag, note := s.tagChosen, s.note.Value()
		sess := s.session
		s.mode = s.prevMode
		return s, func() tea.Msg {
			return feedbackSavedMsg{Err: sess.SubmitFeedback(context.Background(), tag, note)}
		}
	}

	var cmd tea.Cmd
	s.note, cmd = s.note.Update(msg)
	return s, cmd
}
