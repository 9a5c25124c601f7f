// Package progression implements the adaptive difficulty state machine that
// picks the topic and level of the next question.
package progression

import (
	"errors"

	"github.com/abhisek/quizwhiz/internal/curriculum"
)

// WindowSize is the number of answers evaluated at each level boundary.
const WindowSize = 5

// State is the composite progression state of one quiz session.
type State struct {
	TopicIndex       int              `json:"topicIndex"`
	Topic            string           `json:"currentTopic"`
	Level            curriculum.Level `json:"difficultyLevel"`
	QuestionsInLevel int              `json:"questionsInLevel"`
	CorrectInLevel   int              `json:"correctInLevel"`
	CurrentStreak    int              `json:"currentStreak"`
	BestStreak       int              `json:"bestStreak"`
}

// Trigger names why a transition happened.
type Trigger string

const (
	TriggerNone         Trigger = ""
	TriggerLevelUp      Trigger = "level-up"
	TriggerTopicAdvance Trigger = "topic-advance"
	TriggerWindowReset  Trigger = "window-reset"
)

// Transition is the result of one answered question.
type Transition struct {
	Correct bool
	Trigger Trigger

	// CompletedTopic is set when the topic was cleared at the top level.
	CompletedTopic string

	NextTopic string
	NextLevel curriculum.Level

	Streak     int
	BestStreak int

	// State is a copy of the state after the transition.
	State State
}

// Machine owns the ProgressionState of a single session. It is not safe
// for concurrent use; the quiz session serializes calls.
type Machine struct {
	topics []string
	state  State
}

// ErrNoTopics is returned when a machine is built over an empty topic list.
var ErrNoTopics = errors.New("progression: topic list is empty")

// New starts a machine at the first topic, lowest level, all counters zero.
func New(topics []string) (*Machine, error) {
	if len(topics) == 0 {
		return nil, ErrNoTopics
	}
	m := &Machine{topics: append([]string(nil), topics...)}
	m.state = State{Topic: m.topics[0], Level: curriculum.VeryEasy}
	return m, nil
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	return m.state
}

// Topics returns the topic order the machine cycles through.
func (m *Machine) Topics() []string {
	return append([]string(nil), m.topics...)
}

// Current returns the topic and level the next question should target.
func (m *Machine) Current() (string, curriculum.Level) {
	return m.state.Topic, m.state.Level
}

// Submit applies exactly one answered question.
//
// The boundary check fires on the fifth answer in the current window. A
// perfect window raises the level, or at the top level moves to the next
// topic (wrapping) at the lowest level. Any other window restarts at the
// same topic and level. Difficulty never regresses.
func (m *Machine) Submit(correct bool) Transition {
	s := &m.state
	fifth := s.QuestionsInLevel == WindowSize-1

	s.QuestionsInLevel++
	if correct {
		s.CorrectInLevel++
		s.CurrentStreak++
		s.BestStreak = max(s.BestStreak, s.CurrentStreak)
	} else {
		s.CurrentStreak = 0
	}

	t := Transition{Correct: correct}

	if fifth {
		switch {
		case s.CorrectInLevel == WindowSize && s.Level == curriculum.MaxLevel:
			t.Trigger = TriggerTopicAdvance
			t.CompletedTopic = s.Topic
			s.TopicIndex = (s.TopicIndex + 1) % len(m.topics)
			s.Topic = m.topics[s.TopicIndex]
			s.Level = curriculum.VeryEasy
		case s.CorrectInLevel == WindowSize:
			t.Trigger = TriggerLevelUp
			s.Level++
		default:
			t.Trigger = TriggerWindowReset
		}
		s.QuestionsInLevel = 0
		s.CorrectInLevel = 0
	}

	t.NextTopic = s.Topic
	t.NextLevel = s.Level
	t.Streak = s.CurrentStreak
	t.BestStreak = s.BestStreak
	t.State = *s
	return t
}
