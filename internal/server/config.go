package server

import (
	"os"
	"strings"
	"time"
)

// Config holds HTTP transport settings.
type Config struct {
	// Addr is the listen address.
	Addr string

	// SessionSecret signs the quiz cookie. Empty means a random key per
	// process, which invalidates cookies on restart.
	SessionSecret string

	// CORSOrigins lists allowed browser origins.
	CORSOrigins []string

	// CookieName names the cookie carrying the quiz session id.
	CookieName string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns settings for local use.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		CORSOrigins:     []string{"*"},
		CookieName:      "quizwhiz-session",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    2 * time.Minute,
		ShutdownTimeout: 10 * time.Second,
	}
}

// ConfigFromEnv applies QUIZWHIZ_ADDR, QUIZWHIZ_SESSION_SECRET and
// QUIZWHIZ_CORS_ORIGINS (comma separated) over DefaultConfig.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("QUIZWHIZ_ADDR"); v != "" {
		cfg.Addr = v
	}
	cfg.SessionSecret = os.Getenv("QUIZWHIZ_SESSION_SECRET")
	if v := os.Getenv("QUIZWHIZ_CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			cfg.CORSOrigins = origins
		}
	}
	return cfg
}
