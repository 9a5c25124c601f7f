package quiz

import (
	"os"
	"strconv"
	"time"
)

// Config holds quiz session settings.
type Config struct {
	// Duration is the time budget of one quiz.
	Duration time.Duration

	// Linger is how long a Manager keeps an ended session around so its
	// report can still be fetched.
	Linger time.Duration

	// PruneInterval is how often Manager.Run removes ended sessions.
	PruneInterval time.Duration

	// Clock measures time spent per question. Nil means time.Now.
	Clock func() time.Time
}

// DefaultConfig returns a 15-minute quiz. QUIZWHIZ_QUIZ_MINUTES overrides
// the duration.
func DefaultConfig() Config {
	cfg := Config{
		Duration:      15 * time.Minute,
		Linger:        10 * time.Minute,
		PruneInterval: time.Minute,
	}
	if v := os.Getenv("QUIZWHIZ_QUIZ_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Duration = time.Duration(n) * time.Minute
		}
	}
	return cfg
}

func (c Config) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}
