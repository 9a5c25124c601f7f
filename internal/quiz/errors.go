package quiz

import "errors"

var (
	// ErrSessionExpired is returned once the quiz timer has fired. Any
	// question acquired after expiry is discarded.
	ErrSessionExpired = errors.New("quiz session expired")

	// ErrSessionFinished is returned after the report was finalized.
	ErrSessionFinished = errors.New("quiz session finished")

	// ErrSessionNotFound is returned by Manager for unknown ids.
	ErrSessionNotFound = errors.New("quiz session not found")

	// ErrSuperseded is returned to a RequestNextQuestion call whose
	// acquisition was replaced by a newer request.
	ErrSuperseded = errors.New("question request superseded")

	// ErrNoQuestion is returned when no question is on display.
	ErrNoQuestion = errors.New("no question to answer")

	// ErrAlreadyAnswered is returned for a second answer to the same question.
	ErrAlreadyAnswered = errors.New("question already answered")

	// ErrInvalidAnswer is returned for an answer that selects no option.
	ErrInvalidAnswer = errors.New("answer does not match any option")
)

// Ended reports whether err means the session can no longer be used.
func Ended(err error) bool {
	return errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrSessionFinished)
}
