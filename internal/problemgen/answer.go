package problemgen

import (
	"strconv"
	"strings"

	"github.com/abhisek/quizwhiz/internal/content"
)

// CheckAnswer reports whether the learner's answer selects the correct
// option. The answer may be the option text (compared after display
// formatting, case-insensitively) or its 1-based position.
func CheckAnswer(answer string, q *Question) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" || q == nil {
		return false
	}

	if idx, err := strconv.Atoi(answer); err == nil && idx >= 1 && idx <= len(q.Options) {
		if !containsFold(q.Options, answer) {
			return q.Options[idx-1] == q.CorrectAnswer
		}
	}

	return strings.EqualFold(content.FormatForDisplay(answer), q.CorrectAnswer)
}

// SelectOption resolves the learner's answer to one of q's options, by
// text or by 1-based position. It reports false when nothing matches.
func SelectOption(answer string, q *Question) (string, bool) {
	answer = strings.TrimSpace(answer)
	if answer == "" || q == nil {
		return "", false
	}

	formatted := content.FormatForDisplay(answer)
	for _, o := range q.Options {
		if strings.EqualFold(o, formatted) {
			return o, true
		}
	}

	if idx, err := strconv.Atoi(answer); err == nil && idx >= 1 && idx <= len(q.Options) {
		return q.Options[idx-1], true
	}
	return "", false
}

// OptionIndex returns the position of the correct answer in Options, or -1.
func (q *Question) OptionIndex() int {
	for i, o := range q.Options {
		if o == q.CorrectAnswer {
			return i
		}
	}
	return -1
}

func containsFold(options []string, s string) bool {
	for _, o := range options {
		if strings.EqualFold(o, s) {
			return true
		}
	}
	return false
}
