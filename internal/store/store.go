// Package store persists model-call records, finished quiz reports and
// learner feedback in a local SQLite file. Tables are declared with ent
// schema types and written through ent's SQL builder.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	_ "modernc.org/sqlite" // registers the "sqlite" driver, no cgo
)

// connPragmas run on every new pool connection. WAL lets the CLI read
// while a quiz is writing; busy_timeout covers the short write overlaps
// that remain.
var connPragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"foreign_keys(ON)",
	"synchronous(NORMAL)",
}

type Store struct {
	db  *sql.DB
	drv *entsql.Driver
	seq *sequence
}

// Open opens or creates the database file at path and migrates it.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := migrate(context.Background(), drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return &Store{db: db, drv: drv, seq: &sequence{drv: drv, name: recordSequence}}, nil
}

func dsn(path string) string {
	q := url.Values{}
	for _, p := range connPragmas {
		q.Add("_pragma", p)
	}
	return "file:" + path + "?" + q.Encode()
}

// migrate creates or updates the ent tables, then the sequences table,
// which lives outside the ent schema.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return err
	}
	return createSequenceTable(ctx, drv)
}

func (s *Store) Driver() *entsql.Driver { return s.drv }

// DB exposes the pool for ad-hoc queries in tests and tooling.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.drv.Close() }

func (s *Store) EventRepo() *SQLEventRepo {
	return &SQLEventRepo{drv: s.drv, seq: s.seq}
}

func (s *Store) ReportRepo() *SQLReportRepo {
	return &SQLReportRepo{drv: s.drv, seq: s.seq}
}

func (s *Store) FeedbackRepo() *SQLFeedbackRepo {
	return &SQLFeedbackRepo{drv: s.drv, seq: s.seq}
}

// DefaultDBPath is $QUIZWHIZ_DB when set, otherwise quizwhiz.db under the
// XDG data directory. The parent directory is created.
func DefaultDBPath() (string, error) {
	if p := os.Getenv("QUIZWHIZ_DB"); p != "" {
		return p, EnsureDir(p)
	}

	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locate home directory: %w", err)
		}
		base = filepath.Join(home, ".local", "share")
	}
	p := filepath.Join(base, "quizwhiz", "quizwhiz.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the directory that will hold path.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
