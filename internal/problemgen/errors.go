package problemgen

import (
	"errors"
	"fmt"
)

// ErrGenerationExhausted is matched by every *ExhaustedError.
var ErrGenerationExhausted = errors.New("question generation exhausted")

// ErrDuplicate marks a candidate the uniqueness cache rejected.
var ErrDuplicate = errors.New("duplicate question")

// MalformedOutputError is an unparseable or empty model response.
type MalformedOutputError struct {
	Content string
	Err     error
}

func (e *MalformedOutputError) Error() string {
	if e.Err == nil {
		return "malformed generation output: empty response"
	}
	return fmt.Sprintf("malformed generation output: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

// Reason classifies a validation failure.
type Reason string

const (
	ReasonMissingField       Reason = "missing_field"
	ReasonWrongOptionCount   Reason = "wrong_option_count"
	ReasonAnswerNotInOptions Reason = "answer_not_in_options"
	ReasonEmptyTextField     Reason = "empty_text_field"
	ReasonDuplicateOption    Reason = "duplicate_option"
	ReasonTooLong            Reason = "too_long"
	ReasonWrongAnswer        Reason = "wrong_answer"
)

// ValidationError describes why a question failed validation.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Reason    Reason
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s: %s", e.Validator, e.Reason, e.Message)
}

// ExhaustedError is returned when no attempt produced a valid, unique
// question. Last is the failure of the final attempt.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("no usable question after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

func (e *ExhaustedError) Is(target error) bool { return target == ErrGenerationExhausted }
