// Package server exposes quiz sessions over HTTP. The quiz session id
// travels in a signed cookie.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/rs/cors"

	"github.com/abhisek/quizwhiz/internal/curriculum"
	"github.com/abhisek/quizwhiz/internal/logger"
	"github.com/abhisek/quizwhiz/internal/problemgen"
	"github.com/abhisek/quizwhiz/internal/quiz"
)

const sessionKey = "quiz_id"

// Server routes HTTP requests to a quiz.Manager.
type Server struct {
	cfg      Config
	manager  *quiz.Manager
	acquirer problemgen.Acquirer
	intros   quiz.IntroGenerator
	catalog  *curriculum.Catalog
	cookies  *sessions.CookieStore
	log      *logger.Logger
}

// Deps are the collaborators a Server needs. Intros may be nil, which
// disables topic detail.
type Deps struct {
	Manager  *quiz.Manager
	Acquirer problemgen.Acquirer
	Intros   quiz.IntroGenerator
	Catalog  *curriculum.Catalog
	Log      *logger.Logger
}

// New creates a Server.
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Manager == nil || deps.Acquirer == nil {
		return nil, errors.New("server: manager and acquirer are required")
	}
	if deps.Catalog == nil {
		deps.Catalog = curriculum.Default()
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultConfig().CookieName
	}

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = securecookie.GenerateRandomKey(32)
		if secret == nil {
			return nil, errors.New("server: generate session key")
		}
		deps.Log.Warn("QUIZWHIZ_SESSION_SECRET not set, quiz cookies will not survive a restart")
	}
	cookies := sessions.NewCookieStore(secret)
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Server{
		cfg:      cfg,
		manager:  deps.Manager,
		acquirer: deps.Acquirer,
		intros:   deps.Intros,
		catalog:  deps.Catalog,
		cookies:  cookies,
		log:      deps.Log,
	}, nil
}

// Handler returns the routed handler wrapped in CORS.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/quiz", s.startQuiz).Methods(http.MethodPost)
	api.HandleFunc("/quiz", s.getQuiz).Methods(http.MethodGet)
	api.HandleFunc("/quiz/next", s.nextQuestion).Methods(http.MethodPost)
	api.HandleFunc("/quiz/answer", s.submitAnswer).Methods(http.MethodPost)
	api.HandleFunc("/quiz/hint", s.useHint).Methods(http.MethodPost)
	api.HandleFunc("/quiz/intro", s.quizIntro).Methods(http.MethodPost)
	api.HandleFunc("/quiz/feedback", s.submitFeedback).Methods(http.MethodPost)
	api.HandleFunc("/quiz/finish", s.finishQuiz).Methods(http.MethodPost)
	api.HandleFunc("/topic-detail", s.topicDetail).Methods(http.MethodPost)
	api.HandleFunc("/generate-question", s.generateQuestion).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	s.log.Info("http server stopped")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("http request",
			"method", r.Method, "path", r.URL.Path,
			"status", rec.status, "duration", time.Since(start))
	})
}

// session resolves the quiz session named by the request cookie.
func (s *Server) session(r *http.Request) (*quiz.Session, error) {
	cs, err := s.cookies.Get(r, s.cfg.CookieName)
	if err != nil {
		return nil, quiz.ErrSessionNotFound
	}
	id, ok := cs.Values[sessionKey].(string)
	if !ok || id == "" {
		return nil, quiz.ErrSessionNotFound
	}
	return s.manager.Get(id)
}
