package quiz

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizwhiz/internal/curriculum"
	"github.com/abhisek/quizwhiz/internal/progression"
	qz "github.com/abhisek/quizwhiz/internal/quiz"
	"github.com/abhisek/quizwhiz/internal/router"
	"github.com/abhisek/quizwhiz/internal/screen"
	"github.com/abhisek/quizwhiz/internal/screens/summary"
	"github.com/abhisek/quizwhiz/internal/store"
	"github.com/abhisek/quizwhiz/internal/topicintro"
	"github.com/abhisek/quizwhiz/internal/ui/components"
	"github.com/abhisek/quizwhiz/internal/ui/layout"
)

type mode int

const (
	modeIntroLoading mode = iota
	modeIntro
	modeLoading
	modeQuestion
	modeFeedback
	modeReport // Tagging a problem with the question
	modeQuitConfirm
	modeError
)

// QuizScreen runs one timed quiz session.
type QuizScreen struct {
	session *qz.Session
	catalog *curriculum.Catalog

	mode     mode
	prevMode mode
	intro    *topicintro.Detail
	choice   components.MultiChoice
	result   *qz.AnswerResult
	hint     string
	notice   string
	errMsg   string
	finished bool

	tagMenu   components.Menu
	tagChosen store.FeedbackTag
	note      components.NoteField

	// ctx scopes intro and question requests to the screen's lifetime.
	ctx    context.Context
	cancel context.CancelFunc
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.StatusProvider = (*QuizScreen)(nil)
var _ screen.Closer = (*QuizScreen)(nil)

// New creates a screen driving an already started session.
func New(session *qz.Session, catalog *curriculum.Catalog) *QuizScreen {
	if catalog == nil {
		catalog = curriculum.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &QuizScreen{session: session, catalog: catalog, ctx: ctx, cancel: cancel}
}

// Close abandons any request still waiting on the model.
func (s *QuizScreen) Close() { s.cancel() }

func (s *QuizScreen) Init() tea.Cmd {
	return tea.Batch(s.loadIntro(), s.waitDone(), tickCmd())
}

func (s *QuizScreen) Title() string {
	v := s.session.View()
	return v.TopicName
}

func (s *QuizScreen) Status() layout.Status {
	st := s.session.State()
	return layout.Status{
		Active:           !s.finished,
		Streak:           st.CurrentStreak,
		BestStreak:       st.BestStreak,
		SecondsRemaining: int(s.session.TimeRemaining().Seconds()),
		Level:            int(st.Level),
		LevelName:        st.Level.Label(),
		Window:           st.QuestionsInLevel,
		WindowSize:       progression.WindowSize,
	}
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch s.mode {
	case modeQuitConfirm:
		return []layout.KeyHint{
			{Key: "Y", Description: "Finish quiz"},
			{Key: "N", Description: "Keep going"},
		}
	case modeIntro, modeFeedback:
		return []layout.KeyHint{
			{Key: "any key", Description: "Continue"},
			{Key: "F", Description: "Report a problem"},
		}
	case modeReport:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Pick issue"},
			{Key: "Enter", Description: "Send"},
			{Key: "Esc", Description: "Cancel"},
		}
	case modeQuestion:
		return []layout.KeyHint{
			{Key: "A-D / 1-4", Description: "Answer"},
			{Key: "H", Description: "Hint"},
			{Key: "F", Description: "Report a problem"},
			{Key: "Esc", Description: "Finish"},
		}
	case modeError:
		return []layout.KeyHint{
			{Key: "R", Description: "Try again"},
			{Key: "Esc", Description: "Finish"},
		}
	}
	return []layout.KeyHint{{Key: "Esc", Description: "Finish"}}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case introMsg:
		return s.handleIntro(msg)

	case questionMsg:
		return s.handleQuestion(msg)

	case feedbackSavedMsg:
		if msg.Err != nil {
			s.notice = "Could not save your report."
		} else {
			s.notice = "Thanks! We'll take a look."
		}
		return s, nil

	case endedMsg:
		return s.finish()

	case tickMsg:
		if s.finished {
			return s, nil
		}
		return s, tickCmd()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.mode == modeReport {
		var cmd tea.Cmd
		s.note, cmd = s.note.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *QuizScreen) handleIntro(msg introMsg) (screen.Screen, tea.Cmd) {
	if s.finished {
		return s, nil
	}
	// An introduction is optional; a failure goes straight to questions.
	if msg.Err != nil || msg.Detail == nil {
		return s, s.requestQuestion()
	}
	s.intro = msg.Detail
	s.show(modeIntro)
	return s, nil
}

func (s *QuizScreen) handleQuestion(msg questionMsg) (screen.Screen, tea.Cmd) {
	if s.finished {
		return s, nil
	}
	switch {
	case msg.Err == nil:
		s.choice = components.NewMultiChoice(msg.Question.Options)
		s.result = nil
		s.hint = ""
		s.notice = ""
		s.show(modeQuestion)
		return s, nil
	case qz.Ended(msg.Err):
		return s.finish()
	case errors.Is(msg.Err, qz.ErrSuperseded):
		return s, nil
	}
	s.errMsg = "Couldn't generate a question, try again."
	s.show(modeError)
	return s, nil
}

// show switches to m once a result arrives. An open quit prompt stays up
// and returns to m when dismissed.
func (s *QuizScreen) show(m mode) {
	if s.mode == modeQuitConfirm {
		s.prevMode = m
		return
	}
	s.mode = m
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch s.mode {
	case modeQuitConfirm:
		switch key {
		case "y", "Y":
			return s.finish()
		case "n", "N", "esc":
			s.mode = s.prevMode
		}
		return s, nil

	case modeReport:
		return s.handleReportKey(msg)

	case modeIntroLoading, modeLoading:
		if key == "esc" {
			s.confirmQuit()
		}
		return s, nil

	case modeIntro:
		switch key {
		case "esc":
			s.confirmQuit()
			return s, nil
		}
		s.intro = nil
		return s, s.requestQuestion()

	case modeError:
		switch key {
		case "r", "R":
			return s, s.requestQuestion()
		case "esc":
			s.confirmQuit()
		}
		return s, nil

	case modeFeedback:
		switch key {
		case "esc":
			s.confirmQuit()
			return s, nil
		case "f", "F":
			return s, s.openReport()
		}
		return s, s.advance()

	case modeQuestion:
		switch key {
		case "esc":
			s.confirmQuit()
			return s, nil
		case "h", "H":
			hint, err := s.session.UseHint()
			if err != nil {
				return s, s.checkEnded(err)
			}
			s.hint = hint
			return s, nil
		case "f", "F":
			return s, s.openReport()
		}
		var chosen bool
		s.choice, chosen = s.choice.Update(msg)
		if chosen {
			return s.submit()
		}
	}
	return s, nil
}

func (s *QuizScreen) submit() (screen.Screen, tea.Cmd) {
	q := s.session.CurrentQuestion()
	res, err := s.session.SubmitAnswer(s.choice.Value())
	if err != nil {
		if errors.Is(err, qz.ErrInvalidAnswer) {
			s.choice.Reset()
			return s, nil
		}
		return s, s.checkEnded(err)
	}
	s.result = res
	correct := -1
	if q != nil {
		correct = q.OptionIndex()
	}
	s.choice.Reveal(correct)
	s.mode = modeFeedback
	return s, nil
}

// advance moves on after feedback: a new topic gets its introduction
// first.
func (s *QuizScreen) advance() tea.Cmd {
	if s.result != nil && s.result.Trigger == progression.TriggerTopicAdvance {
		s.mode = modeIntroLoading
		return s.loadIntro()
	}
	return s.requestQuestion()
}

func (s *QuizScreen) confirmQuit() {
	s.prevMode = s.mode
	s.mode = modeQuitConfirm
}

func (s *QuizScreen) checkEnded(err error) tea.Cmd {
	if qz.Ended(err) {
		return func() tea.Msg { return endedMsg{} }
	}
	s.notice = err.Error()
	return nil
}

// finish freezes the report and swaps in the summary.
func (s *QuizScreen) finish() (screen.Screen, tea.Cmd) {
	if s.finished {
		return s, nil
	}
	s.finished = true
	r := s.session.FinalizeReport(context.Background())
	sum := summary.New(r, s.catalog, s.session.Err())
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: sum} }
}

func (s *QuizScreen) loadIntro() tea.Cmd {
	s.show(modeIntroLoading)
	sess, ctx := s.session, s.ctx
	return func() tea.Msg {
		d, err := sess.TopicIntro(ctx)
		return introMsg{Detail: d, Err: err}
	}
}

func (s *QuizScreen) requestQuestion() tea.Cmd {
	s.show(modeLoading)
	sess, ctx := s.session, s.ctx
	return func() tea.Msg {
		q, err := sess.RequestNextQuestion(ctx)
		return questionMsg{Question: q, Err: err}
	}
}

func (s *QuizScreen) waitDone() tea.Cmd {
	done := s.session.Done()
	return func() tea.Msg {
		<-done
		return endedMsg{}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
