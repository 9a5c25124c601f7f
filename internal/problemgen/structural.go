package problemgen

import (
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/abhisek/quizwhiz/internal/curriculum"
)

const structuralName = "structural"

// Validate checks the question contract on a decoded candidate: every
// required field present, exactly four options, the correct answer among
// them and non-empty question, hint and explanation. It never panics.
// Level, topic and grade are taken from input rather than trusted.
func Validate(c *Candidate, input AcquireInput) (*Question, error) {
	if c == nil {
		return nil, structuralErr(ReasonMissingField, "candidate is nil")
	}
	required := []struct {
		name    string
		present bool
	}{
		{"questionText", c.QuestionText != nil},
		{"options", c.Options != nil},
		{"correctAnswer", c.CorrectAnswer != nil},
		{"hint", c.Hint != nil},
		{"explanation", c.Explanation != nil},
	}
	for _, f := range required {
		if !f.present {
			return nil, structuralErr(ReasonMissingField, fmt.Sprintf("%s is missing", f.name))
		}
	}

	if len(c.Options) != OptionCount {
		return nil, structuralErr(ReasonWrongOptionCount,
			fmt.Sprintf("expected %d options, got %d", OptionCount, len(c.Options)))
	}

	texts := []struct {
		name  string
		value string
	}{
		{"questionText", *c.QuestionText},
		{"hint", *c.Hint},
		{"explanation", *c.Explanation},
	}
	for _, f := range texts {
		if f.value == "" {
			return nil, structuralErr(ReasonEmptyTextField, fmt.Sprintf("%s is empty", f.name))
		}
	}

	if !slices.Contains(c.Options, *c.CorrectAnswer) {
		return nil, structuralErr(ReasonAnswerNotInOptions,
			fmt.Sprintf("correct answer %q is not one of the options", *c.CorrectAnswer))
	}

	return &Question{
		ID:            str(c.ID),
		Text:          *c.QuestionText,
		Options:       slices.Clone(c.Options),
		CorrectAnswer: *c.CorrectAnswer,
		Hint:          *c.Hint,
		Explanation:   *c.Explanation,
		Level:         input.Level,
		Topic:         input.Topic,
		Grade:         input.Grade,
		Subject:       input.Subject,
	}, nil
}

func structuralErr(reason Reason, msg string) *ValidationError {
	return &ValidationError{Validator: structuralName, Reason: reason, Message: msg}
}

// DistinctOptionsValidator rejects questions whose options repeat, which
// would make the correct answer ambiguous.
type DistinctOptionsValidator struct{}

func (v *DistinctOptionsValidator) Name() string { return "distinct-options" }

func (v *DistinctOptionsValidator) Validate(q *Question) *ValidationError {
	seen := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		if o == "" {
			return &ValidationError{Validator: v.Name(), Reason: ReasonEmptyTextField, Message: "an option is empty"}
		}
		if seen[o] {
			return &ValidationError{Validator: v.Name(), Reason: ReasonDuplicateOption,
				Message: fmt.Sprintf("option %q appears more than once", o)}
		}
		seen[o] = true
	}
	return nil
}

// LengthValidator caps the size of each text field so a question fits the
// quiz screen.
type LengthValidator struct {
	MaxText        int
	MaxOption      int
	MaxHint        int
	MaxExplanation int
}

func (v *LengthValidator) Name() string { return "length" }

func (v *LengthValidator) Validate(q *Question) *ValidationError {
	check := func(field, value string, limit int) *ValidationError {
		if limit > 0 && utf8.RuneCountInString(value) > limit {
			return &ValidationError{Validator: v.Name(), Reason: ReasonTooLong,
				Message: fmt.Sprintf("%s exceeds %d characters", field, limit)}
		}
		return nil
	}
	if err := check("questionText", q.Text, v.MaxText); err != nil {
		return err
	}
	for _, o := range q.Options {
		if err := check("option", o, v.MaxOption); err != nil {
			return err
		}
	}
	if err := check("hint", q.Hint, v.MaxHint); err != nil {
		return err
	}
	return check("explanation", q.Explanation, v.MaxExplanation)
}

// subjectOnly applies a validator to questions of one subject.
type subjectOnly struct {
	subject curriculum.Subject
	inner   Validator
}

func (s subjectOnly) Name() string { return s.inner.Name() }

func (s subjectOnly) Validate(q *Question) *ValidationError {
	if q.Subject != s.subject {
		return nil
	}
	return s.inner.Validate(q)
}
