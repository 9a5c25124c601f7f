package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizwhiz/internal/curriculum"
	"github.com/abhisek/quizwhiz/internal/llm"
	"github.com/abhisek/quizwhiz/internal/logger"
	"github.com/abhisek/quizwhiz/internal/problemgen"
	"github.com/abhisek/quizwhiz/internal/qcache"
	"github.com/abhisek/quizwhiz/internal/quiz"
	"github.com/abhisek/quizwhiz/internal/store"
	"github.com/abhisek/quizwhiz/internal/topicintro"
)

// engine bundles everything a quiz front end needs. Close releases it in
// reverse order of construction.
type engine struct {
	store    *store.Store
	cache    *qcache.Cache
	pipeline *problemgen.Pipeline
	intros   *topicintro.Service
	manager  *quiz.Manager
	catalog  *curriculum.Catalog
	log      *logger.Logger
}

// newEngine opens the store and wires provider, cache, pipeline and session
// manager. The provider is required; without one no question can be asked.
func newEngine(ctx context.Context, st *store.Store, quizCfg quiz.Config, log *logger.Logger) (*engine, error) {
	cfg := llm.Resolve()
	provider, err := llm.NewProvider(ctx, cfg, st.EventRepo(), log)
	if err != nil {
		return nil, fmt.Errorf("LLM provider: %w", err)
	}

	catalog := curriculum.Default()
	cache := qcache.New(qcache.ConfigFromEnv(), log)
	cache.Start()

	pipeline := problemgen.NewPipeline(provider, cache, problemgen.DefaultConfig(), log)
	intros := topicintro.NewService(provider, catalog, topicintro.DefaultConfig())

	manager := quiz.NewManager(quiz.Deps{
		Acquirer: pipeline,
		Catalog:  catalog,
		Intros:   intros,
		Reports:  st.ReportRepo(),
		Feedback: st.FeedbackRepo(),
		Log:      log,
	}, quizCfg)

	return &engine{
		store:    st,
		cache:    cache,
		pipeline: pipeline,
		intros:   intros,
		manager:  manager,
		catalog:  catalog,
		log:      log,
	}, nil
}

// Close finalizes open sessions so their reports are saved, then stops the
// cache sweeper.
func (e *engine) Close(ctx context.Context) {
	e.manager.Close(ctx)
	e.cache.Stop()
}

// quizConfig applies the --minutes flag over quiz.DefaultConfig.
func quizConfig(cmd *cobra.Command) quiz.Config {
	cfg := quiz.DefaultConfig()
	if m, _ := cmd.Flags().GetInt("minutes"); m > 0 {
		cfg.Duration = time.Duration(m) * time.Minute
	}
	return cfg
}

// logMode reads QUIZWHIZ_LOG_MODE.
func logMode() string {
	if m := os.Getenv("QUIZWHIZ_LOG_MODE"); m != "" {
		return m
	}
	return "dev"
}

// tuiLogPath places the play log next to the database so it never lands on
// the screen the UI draws.
func tuiLogPath(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), "quizwhiz.log")
}
