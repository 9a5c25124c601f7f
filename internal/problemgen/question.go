package problemgen

import "github.com/abhisek/quizwhiz/internal/curriculum"

// OptionCount is the number of answer options every question carries.
const OptionCount = 4

// Question is a generated multiple-choice question ready for display.
// Every text field has already been formatted for display.
type Question struct {
	// ID is assigned by the pipeline; the model's own id is discarded.
	ID string `json:"id"`

	Text string `json:"questionText"`

	// Options holds exactly four distinct choices in display order.
	Options []string `json:"options"`

	// CorrectAnswer equals exactly one element of Options.
	CorrectAnswer string `json:"correctAnswer"`

	Hint        string `json:"hint"`
	Explanation string `json:"explanation"`

	Level   curriculum.Level   `json:"level"`
	Topic   string             `json:"topic"`
	Grade   int                `json:"grade"`
	Subject curriculum.Subject `json:"subject"`
}

// Candidate is the raw object decoded from a model response. Pointer
// fields distinguish a missing key from an empty value.
type Candidate struct {
	ID            *string  `json:"id"`
	QuestionText  *string  `json:"questionText"`
	Options       []string `json:"options"`
	CorrectAnswer *string  `json:"correctAnswer"`
	Hint          *string  `json:"hint"`
	Explanation   *string  `json:"explanation"`
	Level         *string  `json:"level"`
	Topic         *string  `json:"topic"`
	Grade         *int     `json:"grade"`
}

// AcquireInput describes the question to obtain.
type AcquireInput struct {
	Subject   curriculum.Subject
	Grade     int
	Topic     string
	Level     curriculum.Level
	Subtopics []string

	// CacheKey scopes duplicate detection. Empty means the default
	// subject|grade|topic|level key.
	CacheKey string
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
