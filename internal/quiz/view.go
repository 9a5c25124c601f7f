package quiz

import (
	"github.com/abhisek/quizwhiz/internal/curriculum"
	"github.com/abhisek/quizwhiz/internal/problemgen"
	"github.com/abhisek/quizwhiz/internal/progression"
)

// QuestionView is a question as shown before it is answered; the answer
// and explanation are withheld.
type QuestionView struct {
	ID      string           `json:"id"`
	Text    string           `json:"questionText"`
	Options []string         `json:"options"`
	Topic   string           `json:"topic"`
	Level   curriculum.Level `json:"level"`
	HasHint bool             `json:"hasHint"`
}

// NewQuestionView strips the answer fields from q.
func NewQuestionView(q *problemgen.Question) *QuestionView {
	if q == nil {
		return nil
	}
	return &QuestionView{
		ID:      q.ID,
		Text:    q.Text,
		Options: append([]string(nil), q.Options...),
		Topic:   q.Topic,
		Level:   q.Level,
		HasHint: q.Hint != "",
	}
}

// View is a read-only snapshot of a session for transports.
type View struct {
	ID               string             `json:"id"`
	Subject          curriculum.Subject `json:"subject"`
	Grade            int                `json:"grade"`
	Phase            string             `json:"phase"`
	TopicName        string             `json:"topicName"`
	State            progression.State  `json:"progression"`
	SecondsRemaining int                `json:"secondsRemaining"`
	Question         *QuestionView      `json:"question,omitempty"`
	LastResult       *AnswerResult      `json:"lastResult,omitempty"`
}

// View snapshots the session.
func (s *Session) View() View {
	s.mu.Lock()
	state := s.machine.State()
	v := View{
		ID:         s.id,
		Subject:    s.subject,
		Grade:      s.grade,
		Phase:      s.phase.String(),
		TopicName:  s.deps.Catalog.DisplayName(s.grade, s.subject, state.Topic),
		State:      state,
		Question:   NewQuestionView(s.current),
		LastResult: s.last,
	}
	s.mu.Unlock()

	v.SecondsRemaining = int(s.TimeRemaining().Seconds())
	return v
}
