// Package quiz runs timed quiz sessions: it asks the progression machine
// what to ask, acquires questions, scores answers and keeps the report.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/quizwhiz/internal/curriculum"
	"github.com/abhisek/quizwhiz/internal/logger"
	"github.com/abhisek/quizwhiz/internal/problemgen"
	"github.com/abhisek/quizwhiz/internal/progression"
	"github.com/abhisek/quizwhiz/internal/report"
	"github.com/abhisek/quizwhiz/internal/store"
	"github.com/abhisek/quizwhiz/internal/topicintro"
)

// Phase is where a session is in its question loop.
type Phase int

const (
	PhaseIdle     Phase = iota // No question on display
	PhaseLoading               // Acquisition in flight
	PhaseQuestion              // Waiting for an answer
	PhaseFeedback              // Answer scored, explanation on display
	PhaseEnded                 // Timer fired or report finalized
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseQuestion:
		return "question"
	case PhaseFeedback:
		return "feedback"
	case PhaseEnded:
		return "ended"
	default:
		return "idle"
	}
}

// IntroGenerator produces topic introductions. *topicintro.Service
// satisfies it.
type IntroGenerator interface {
	Generate(ctx context.Context, input topicintro.Input) (*topicintro.Detail, error)
}

// ReportSaver persists finalized reports. *store.SQLReportRepo satisfies it.
type ReportSaver interface {
	SaveReport(ctx context.Context, data store.ReportData) error
}

// FeedbackSaver persists question feedback. *store.SQLFeedbackRepo
// satisfies it.
type FeedbackSaver interface {
	AppendFeedback(ctx context.Context, data store.FeedbackData) error
}

// Deps are the collaborators shared by every session. Only Acquirer is
// required.
type Deps struct {
	Acquirer problemgen.Acquirer
	Catalog  *curriculum.Catalog
	Intros   IntroGenerator
	Reports  ReportSaver
	Feedback FeedbackSaver
	Log      *logger.Logger
}

// AnswerResult is returned for every scored answer.
type AnswerResult struct {
	Correct       bool                `json:"correct"`
	CorrectAnswer string              `json:"correctAnswer"`
	Explanation   string              `json:"explanation"`
	TimeSpent     int                 `json:"timeSpent"`
	NextTopic     string              `json:"nextTopic"`
	NextLevel     curriculum.Level    `json:"nextDifficultyLevel"`
	Streak        int                 `json:"streak"`
	BestStreak    int                 `json:"bestStreak"`
	Trigger       progression.Trigger `json:"trigger,omitempty"`
}

// Session is one learner's timed quiz. All methods are safe for
// concurrent use.
type Session struct {
	id      string
	subject curriculum.Subject
	grade   int
	cfg     Config
	deps    Deps
	log     *logger.Logger

	// ctx is cancelled when the session ends; every acquisition hangs off it.
	ctx       context.Context
	cancel    context.CancelCauseFunc
	timer     *time.Timer
	startedAt time.Time
	expiresAt time.Time
	done      chan struct{}
	saveOnce  sync.Once

	mu       sync.Mutex
	machine  *progression.Machine
	acc      *report.Accumulator
	phase    Phase
	gen      uint64
	inflight context.CancelFunc
	current  *problemgen.Question
	shownAt  time.Time
	attempts int
	hintUsed bool
	last     *AnswerResult
	seen     map[string]bool
	ended    error
	endedAt  time.Time
}

// NewSession starts a quiz over the grade's topics for subject. The timer
// starts immediately.
func NewSession(deps Deps, cfg Config, subject curriculum.Subject, grade int) (*Session, error) {
	if deps.Acquirer == nil {
		return nil, errors.New("quiz: no question acquirer")
	}
	if deps.Catalog == nil {
		deps.Catalog = curriculum.Default()
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if cfg.Duration <= 0 {
		cfg.Duration = DefaultConfig().Duration
	}

	topics, err := deps.Catalog.Topics(grade, subject)
	if err != nil {
		return nil, err
	}
	machine, err := progression.New(topics)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	ctx, cancel := context.WithCancelCause(context.Background())
	now := time.Now()

	s := &Session{
		id:        id,
		subject:   subject,
		grade:     grade,
		cfg:       cfg,
		deps:      deps,
		log:       deps.Log.With("session_id", id),
		ctx:       ctx,
		cancel:    cancel,
		startedAt: now,
		expiresAt: now.Add(cfg.Duration),
		done:      make(chan struct{}),
		machine:   machine,
		acc:       report.NewAccumulator(report.Meta{SessionID: id, Subject: string(subject), Grade: grade}, cfg.Clock),
		seen:      make(map[string]bool),
	}
	s.timer = time.AfterFunc(cfg.Duration, s.expire)

	s.log.Info("quiz started", "subject", subject, "grade", grade, "duration", cfg.Duration)
	return s, nil
}

func (s *Session) ID() string                  { return s.id }
func (s *Session) Subject() curriculum.Subject { return s.subject }
func (s *Session) Grade() int                  { return s.grade }
func (s *Session) ExpiresAt() time.Time        { return s.expiresAt }

// Done is closed when the session ends for any reason.
func (s *Session) Done() <-chan struct{} { return s.done }

// TimeRemaining is the time left on the quiz timer, never negative.
func (s *Session) TimeRemaining() time.Duration {
	s.mu.Lock()
	ended := s.ended != nil
	s.mu.Unlock()
	if ended {
		return 0
	}
	return max(time.Until(s.expiresAt), 0)
}

// Err returns ErrSessionExpired or ErrSessionFinished once the session has
// ended, nil before.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// EndedAt is when the session ended, zero while it runs.
func (s *Session) EndedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endedAt
}

// State returns the progression state.
func (s *Session) State() progression.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.State()
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// CurrentQuestion returns the question on display, or nil.
func (s *Session) CurrentQuestion() *problemgen.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// LastResult returns the result for the question on display once it has
// been answered.
func (s *Session) LastResult() *AnswerResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Report returns the report so far, or the frozen report after the
// session ended.
func (s *Session) Report() report.SessionReport {
	return s.acc.Snapshot()
}

// RequestNextQuestion acquires a question for the machine's current topic
// and level. A newer call cancels an older one still in flight; the older
// call then returns ErrSuperseded. A question that arrives after the
// session ended is discarded. With a problemgen.DeferredAcquirer, a
// discarded question is also taken back out of the uniqueness cache.
func (s *Session) RequestNextQuestion(ctx context.Context) (*problemgen.Question, error) {
	s.mu.Lock()
	if s.ended != nil {
		err := s.ended
		s.mu.Unlock()
		return nil, err
	}
	if s.inflight != nil {
		s.inflight()
	}
	s.gen++
	gen := s.gen

	actx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	s.inflight = cancel
	s.phase = PhaseLoading

	topic, level := s.machine.Current()
	subs, _ := s.deps.Catalog.Subtopics(s.subject, topic)
	input := problemgen.AcquireInput{
		Subject:   s.subject,
		Grade:     s.grade,
		Topic:     topic,
		Level:     level,
		Subtopics: subs,
	}
	s.mu.Unlock()

	q, claim, err := s.acquire(actx, input)
	stop()
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended != nil {
		if q != nil {
			s.log.Debug("discarding question acquired after session end", "question_id", q.ID)
		}
		claim.Abort()
		return nil, s.ended
	}
	if gen != s.gen {
		claim.Abort()
		return nil, ErrSuperseded
	}
	s.inflight = nil

	if err != nil {
		s.phase = PhaseIdle
		if s.current != nil && s.last == nil {
			s.phase = PhaseQuestion
		}
		return nil, err
	}

	claim.Commit()
	s.current = q
	s.shownAt = s.cfg.now()
	s.attempts = 0
	s.hintUsed = false
	s.last = nil
	s.phase = PhaseQuestion
	return q, nil
}

// acquire asks the acquirer for a question. The returned claim is never
// nil.
func (s *Session) acquire(ctx context.Context, input problemgen.AcquireInput) (*problemgen.Question, problemgen.Claim, error) {
	if d, ok := s.deps.Acquirer.(problemgen.DeferredAcquirer); ok {
		q, claim, err := d.AcquireDeferred(ctx, input)
		if claim == nil {
			claim = committed{}
		}
		return q, claim, err
	}
	q, err := s.deps.Acquirer.Acquire(ctx, input)
	return q, committed{}, err
}

// committed is the claim for a question the acquirer already cached.
type committed struct{}

func (committed) Commit() {}
func (committed) Abort()  {}

// SubmitAnswer scores the learner's answer to the question on display.
// The answer is the option text or its 1-based position. An answer that
// selects no option counts as an attempt and returns ErrInvalidAnswer.
func (s *Session) SubmitAnswer(answer string) (*AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.answerableLocked(); err != nil {
		return nil, err
	}
	selected, ok := problemgen.SelectOption(answer, s.current)
	if !ok {
		s.attempts++
		return nil, ErrInvalidAnswer
	}
	return s.recordLocked(selected == s.current.CorrectAnswer), nil
}

// SubmitOutcome records an already-scored answer to the question on
// display.
func (s *Session) SubmitOutcome(correct bool) (*AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.answerableLocked(); err != nil {
		return nil, err
	}
	return s.recordLocked(correct), nil
}

func (s *Session) answerableLocked() error {
	if s.ended != nil {
		return s.ended
	}
	if s.current == nil {
		return ErrNoQuestion
	}
	if s.last != nil {
		return ErrAlreadyAnswered
	}
	return nil
}

func (s *Session) recordLocked(correct bool) *AnswerResult {
	q := s.current
	spent := max(int(s.cfg.now().Sub(s.shownAt)/time.Second), 0)

	tr := s.machine.Submit(correct)

	// The accumulator only refuses after Finalize, which requires the
	// session to have ended, checked above under the same lock.
	_ = s.acc.RecordOutcome(report.Outcome{
		QuestionID:     q.ID,
		Topic:          q.Topic,
		Level:          q.Level,
		Correct:        correct,
		AttemptsNeeded: s.attempts + 1,
		TimeSpent:      spent,
		HintUsed:       s.hintUsed,
		StreakAfter:    tr.Streak,
	})
	if tr.CompletedTopic != "" {
		_ = s.acc.MarkTopicCompleted(tr.CompletedTopic)
	}

	res := &AnswerResult{
		Correct:       correct,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
		TimeSpent:     spent,
		NextTopic:     tr.NextTopic,
		NextLevel:     tr.NextLevel,
		Streak:        tr.Streak,
		BestStreak:    tr.BestStreak,
		Trigger:       tr.Trigger,
	}
	s.last = res
	s.phase = PhaseFeedback

	s.log.Debug("answer recorded",
		"question_id", q.ID, "correct", correct, "topic", q.Topic,
		"level", q.Level, "streak", tr.Streak, "trigger", string(tr.Trigger))
	return res
}

// UseHint returns the hint for the question on display. Asking before
// answering marks the question as hinted in the report.
func (s *Session) UseHint() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended != nil {
		return "", s.ended
	}
	if s.current == nil {
		return "", ErrNoQuestion
	}
	if s.last == nil {
		s.hintUsed = true
	}
	return s.current.Hint, nil
}

// TopicIntro returns an introduction to the current topic the first time
// the session reaches it, and nil afterwards or without an IntroGenerator.
func (s *Session) TopicIntro(ctx context.Context) (*topicintro.Detail, error) {
	s.mu.Lock()
	if s.ended != nil {
		err := s.ended
		s.mu.Unlock()
		return nil, err
	}
	topic, _ := s.machine.Current()
	if s.deps.Intros == nil || s.seen[topic] {
		s.mu.Unlock()
		return nil, nil
	}
	s.seen[topic] = true
	s.mu.Unlock()

	d, err := s.deps.Intros.Generate(ctx, topicintro.Input{Subject: s.subject, Grade: s.grade, Topic: topic})
	if err != nil {
		s.mu.Lock()
		delete(s.seen, topic)
		s.mu.Unlock()
		return nil, err
	}
	return d, nil
}

// SubmitFeedback attaches a learner's complaint to the question on display.
func (s *Session) SubmitFeedback(ctx context.Context, tag store.FeedbackTag, note string) error {
	if _, err := store.ParseFeedbackTag(string(tag)); err != nil {
		return err
	}

	s.mu.Lock()
	q := s.current
	s.mu.Unlock()
	if q == nil {
		return ErrNoQuestion
	}

	s.log.Info("question feedback", "question_id", q.ID, "tag", string(tag))
	if s.deps.Feedback == nil {
		return nil
	}
	err := s.deps.Feedback.AppendFeedback(ctx, store.FeedbackData{
		SessionID:    s.id,
		QuestionID:   q.ID,
		QuestionText: q.Text,
		Tag:          tag,
		Note:         note,
	})
	if err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	return nil
}

// FinalizeReport ends the session and returns the frozen report. Later
// calls return the same report.
func (s *Session) FinalizeReport(ctx context.Context) report.SessionReport {
	s.end(ErrSessionFinished)
	r := s.acc.Finalize()
	s.persist(ctx, r)
	return r
}

func (s *Session) expire() {
	if !s.end(ErrSessionExpired) {
		return
	}
	s.log.Info("quiz time is up")
	s.persist(context.Background(), s.acc.Finalize())
}

// end moves the session to PhaseEnded once. It cancels any acquisition in
// flight and reports whether this call ended the session.
func (s *Session) end(cause error) bool {
	s.mu.Lock()
	if s.ended != nil {
		s.mu.Unlock()
		return false
	}
	s.ended = cause
	s.endedAt = time.Now()
	s.phase = PhaseEnded
	s.gen++
	if s.inflight != nil {
		s.inflight()
		s.inflight = nil
	}
	s.mu.Unlock()

	s.timer.Stop()
	s.cancel(cause)
	close(s.done)
	return true
}

func (s *Session) persist(ctx context.Context, r report.SessionReport) {
	s.saveOnce.Do(func() {
		s.log.Info("quiz finished",
			"questions", r.TotalQuestions, "correct", r.CorrectAnswers,
			"best_streak", r.BestStreak, "accuracy", r.Accuracy)
		if s.deps.Reports == nil {
			return
		}
		err := s.deps.Reports.SaveReport(context.WithoutCancel(ctx), store.ReportData{
			SessionID:      r.SessionID,
			Subject:        r.Subject,
			Grade:          r.Grade,
			TotalQuestions: r.TotalQuestions,
			TotalCorrect:   r.CorrectAnswers,
			Accuracy:       r.Accuracy,
			Report:         r,
		})
		if err != nil {
			s.log.Warn("failed to save report", "error", err)
		}
	})
}
