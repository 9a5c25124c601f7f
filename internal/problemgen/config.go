package problemgen

import "github.com/abhisek/quizwhiz/internal/curriculum"

// Config controls the acquisition pipeline.
type Config struct {
	// MaxAttempts bounds generation calls per acquisition.
	MaxAttempts int

	// Validators run in order after the structural check; the first
	// failure rejects the candidate.
	Validators []Validator

	// MaxTokens is the token budget for the model response.
	MaxTokens int

	// Sampling parameters. They favour varied output.
	Temperature      float64
	PresencePenalty  float64
	FrequencyPenalty float64

	// MaxPriorQuestions is how many recently accepted questions for the
	// same cache key are listed in the prompt as "do not repeat".
	MaxPriorQuestions int
}

// DefaultConfig returns the standard validator chain and sampling setup.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 5,
		Validators: []Validator{
			&DistinctOptionsValidator{},
			&LengthValidator{MaxText: 500, MaxOption: 200, MaxHint: 500, MaxExplanation: 1000},
			subjectOnly{subject: curriculum.Mathematics, inner: &ArithmeticValidator{}},
		},
		MaxTokens:         1024,
		Temperature:       1.0,
		PresencePenalty:   0.6,
		FrequencyPenalty:  0.6,
		MaxPriorQuestions: 8,
	}
}
