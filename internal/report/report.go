// Package report folds answered questions into a session report.
package report

import (
	"errors"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/abhisek/quizwhiz/internal/curriculum"
)

// Topics answered at least RevisionMinQuestions times with accuracy below
// RevisionThreshold are flagged for revision.
const (
	RevisionThreshold    = 0.6
	RevisionMinQuestions = 3
)

// ErrFinalized is returned when recording into a finalized report.
var ErrFinalized = errors.New("report: already finalized")

// Outcome is one answered question.
type Outcome struct {
	QuestionID     string
	Topic          string
	Level          curriculum.Level
	Correct        bool
	AttemptsNeeded int
	TimeSpent      int // whole seconds
	HintUsed       bool
	StreakAfter    int
}

// QuestionRecord is the immutable per-question entry in a report.
type QuestionRecord struct {
	QuestionID     string           `json:"questionId"`
	Topic          string           `json:"topic"`
	AttemptsNeeded int              `json:"attemptsNeeded"`
	HintUsed       bool             `json:"hintUsed"`
	TimeTaken      int              `json:"timeTaken"`
	Correct        bool             `json:"correct"`
	Difficulty     curriculum.Level `json:"difficulty"`
}

// TopicStats aggregates the outcomes of one topic.
type TopicStats struct {
	Total         int `json:"total"`
	Correct       int `json:"correct"`
	TotalAttempts int `json:"totalAttempts"`
	TotalTime     int `json:"totalTime"`
	HintsUsed     int `json:"hintsUsed"`
}

// Accuracy is Correct/Total, or 0 with no answers.
func (t TopicStats) Accuracy() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Correct) / float64(t.Total)
}

// SessionReport is the accumulated report of one quiz session.
type SessionReport struct {
	SessionID string `json:"sessionId"`
	Subject   string `json:"subject"`
	Grade     int    `json:"grade"`

	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt,omitzero"`

	TotalQuestions         int     `json:"totalQuestions"`
	CorrectAnswers         int     `json:"correctAnswers"`
	HintsUsed              int     `json:"hintsUsed"`
	TotalAttempts          int     `json:"totalAttempts"`
	TimeTaken              int     `json:"timeTaken"`
	AverageTimePerQuestion float64 `json:"averageTimePerQuestion"`
	BestStreak             int     `json:"bestStreak"`

	TopicStats      map[string]TopicStats `json:"topicStats"`
	QuestionsData   []QuestionRecord      `json:"questionsData"`
	TopicsCompleted []string              `json:"topicsCompleted"`

	// Set by Finalize.
	RevisionNeeded []string `json:"revisionNeeded"`
	Accuracy       float64  `json:"accuracy"`
	Finalized      bool     `json:"finalized"`
}

// Meta identifies the session a report belongs to.
type Meta struct {
	SessionID string
	Subject   string
	Grade     int
}

// Accumulator builds a SessionReport. It is safe for concurrent use.
type Accumulator struct {
	mu     sync.Mutex
	clock  func() time.Time
	report SessionReport
	frozen *SessionReport
}

// NewAccumulator starts an empty report. A nil clock uses time.Now.
func NewAccumulator(meta Meta, clock func() time.Time) *Accumulator {
	if clock == nil {
		clock = time.Now
	}
	return &Accumulator{
		clock: clock,
		report: SessionReport{
			SessionID:       meta.SessionID,
			Subject:         meta.Subject,
			Grade:           meta.Grade,
			StartedAt:       clock(),
			TopicStats:      make(map[string]TopicStats),
			QuestionsData:   []QuestionRecord{},
			TopicsCompleted: []string{},
			RevisionNeeded:  []string{},
		},
	}
}

// RecordOutcome folds one answered question into the report.
func (a *Accumulator) RecordOutcome(o Outcome) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.frozen != nil {
		return ErrFinalized
	}

	r := &a.report
	hint := 0
	if o.HintUsed {
		hint = 1
	}

	r.TotalQuestions++
	if o.Correct {
		r.CorrectAnswers++
	}
	r.HintsUsed += hint
	r.TotalAttempts += o.AttemptsNeeded
	r.TimeTaken += o.TimeSpent
	r.AverageTimePerQuestion = float64(r.TimeTaken) / float64(r.TotalQuestions)
	r.BestStreak = max(r.BestStreak, o.StreakAfter)

	ts := r.TopicStats[o.Topic]
	ts.Total++
	if o.Correct {
		ts.Correct++
	}
	ts.TotalAttempts += o.AttemptsNeeded
	ts.TotalTime += o.TimeSpent
	ts.HintsUsed += hint
	r.TopicStats[o.Topic] = ts

	r.QuestionsData = append(r.QuestionsData, QuestionRecord{
		QuestionID:     o.QuestionID,
		Topic:          o.Topic,
		AttemptsNeeded: o.AttemptsNeeded,
		HintUsed:       o.HintUsed,
		TimeTaken:      o.TimeSpent,
		Correct:        o.Correct,
		Difficulty:     o.Level,
	})
	return nil
}

// MarkTopicCompleted records a topic cleared at the top level. Repeats are
// ignored.
func (a *Accumulator) MarkTopicCompleted(topic string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.frozen != nil {
		return ErrFinalized
	}
	if !slices.Contains(a.report.TopicsCompleted, topic) {
		a.report.TopicsCompleted = append(a.report.TopicsCompleted, topic)
	}
	return nil
}

// Snapshot returns a deep copy of the report so far.
func (a *Accumulator) Snapshot() SessionReport {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.frozen != nil {
		return clone(*a.frozen)
	}
	return clone(a.report)
}

// Finalize freezes the report and derives accuracy and revision topics.
// Later calls return the same frozen report.
func (a *Accumulator) Finalize() SessionReport {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.frozen == nil {
		r := clone(a.report)
		r.FinishedAt = a.clock()
		if r.TotalQuestions > 0 {
			r.Accuracy = float64(r.CorrectAnswers) / float64(r.TotalQuestions)
		}
		r.RevisionNeeded = revisionTopics(r.TopicStats)
		r.Finalized = true
		a.frozen = &r
	}
	return clone(*a.frozen)
}

// Finalized reports whether Finalize has been called.
func (a *Accumulator) Finalized() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frozen != nil
}

func revisionTopics(stats map[string]TopicStats) []string {
	out := []string{}
	for topic, ts := range stats {
		if ts.Total >= RevisionMinQuestions && ts.Accuracy() < RevisionThreshold {
			out = append(out, topic)
		}
	}
	sort.Strings(out)
	return out
}

func clone(r SessionReport) SessionReport {
	r.TopicStats = maps.Clone(r.TopicStats)
	r.QuestionsData = slices.Clone(r.QuestionsData)
	r.TopicsCompleted = slices.Clone(r.TopicsCompleted)
	r.RevisionNeeded = slices.Clone(r.RevisionNeeded)
	return r
}
