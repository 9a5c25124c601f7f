package quiz

import (
	"context"
	"sync"
	"time"

	"github.com/abhisek/quizwhiz/internal/curriculum"
	"github.com/abhisek/quizwhiz/internal/logger"
)

// Manager is the process-wide registry of quiz sessions. Sessions share
// the Deps, and through them one uniqueness cache and pipeline.
type Manager struct {
	deps Deps
	cfg  Config
	log  *logger.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates an empty registry.
func NewManager(deps Deps, cfg Config) *Manager {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	return &Manager{
		deps:     deps,
		cfg:      cfg,
		log:      deps.Log,
		sessions: make(map[string]*Session),
	}
}

// Config returns the settings every session is started with.
func (m *Manager) Config() Config {
	return m.cfg
}

// Start begins and registers a new session.
func (m *Manager) Start(subject curriculum.Subject, grade int) (*Session, error) {
	s, err := NewSession(m.deps, m.cfg, subject, grade)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns a registered session, ended or not.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove finalizes and forgets a session.
func (m *Manager) Remove(ctx context.Context, id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.FinalizeReport(ctx)
	}
}

// Len is the number of registered sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Prune forgets sessions that ended more than Config.Linger before now and
// returns how many were removed.
func (m *Manager) Prune(now time.Time) int {
	m.mu.Lock()
	var victims []string
	for id, s := range m.sessions {
		ended := s.EndedAt()
		if !ended.IsZero() && now.Sub(ended) >= m.cfg.Linger {
			victims = append(victims, id)
		}
	}
	for _, id := range victims {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if len(victims) > 0 {
		m.log.Debug("pruned quiz sessions", "count", len(victims))
	}
	return len(victims)
}

// Run prunes ended sessions every Config.PruneInterval until ctx is done,
// then finalizes every remaining session.
func (m *Manager) Run(ctx context.Context) error {
	interval := m.cfg.PruneInterval
	if interval <= 0 {
		interval = DefaultConfig().PruneInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Close(context.WithoutCancel(ctx))
			return nil
		case now := <-ticker.C:
			m.Prune(now)
		}
	}
}

// Close finalizes every registered session.
func (m *Manager) Close(ctx context.Context) {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.FinalizeReport(ctx)
	}
}
