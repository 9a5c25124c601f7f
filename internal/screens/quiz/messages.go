package quiz

import (
	"time"

	"github.com/abhisek/quizwhiz/internal/problemgen"
	"github.com/abhisek/quizwhiz/internal/topicintro"
)

// introMsg carries the introduction for a newly entered topic. Detail is
// nil when the topic needs no introduction.
type introMsg struct {
	Detail *topicintro.Detail
	Err    error
}

// questionMsg is sent when an acquisition finishes.
type questionMsg struct {
	Question *problemgen.Question
	Err      error
}

// feedbackSavedMsg is sent after a feedback report was stored.
type feedbackSavedMsg struct {
	Err error
}

// endedMsg is sent once the session's Done channel closes.
type endedMsg struct{}

// tickMsg redraws the countdown.
type tickMsg time.Time
