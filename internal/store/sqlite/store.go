// Package sqlite is the primary record store of the catalogue on SQLite (pure Go driver).
// Mutations run inside InTx; events emitted during the transaction are handed to the
// registered post-commit hooks once the commit succeeds and are dropped on rollback.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/kailas-cloud/marketindex/internal/domain/change"
	"github.com/kailas-cloud/marketindex/internal/domain/locale"
)

// Hook receives the coalesced events of a committed transaction. Its context is
// detached from the transaction's cancellation but keeps its values.
type Hook func(ctx context.Context, events []change.Event)

// Config locates the database file. An empty Path opens a private in-memory database.
type Config struct {
	Path string
}

// Store is the SQLite-backed primary store.
type Store struct {
	db      *sql.DB
	locales locale.Table

	mu    sync.RWMutex
	hooks []Hook
}

// Open opens (creating if needed) the database and applies the schema.
func Open(ctx context.Context, cfg Config, locales locale.Table) (*Store, error) {
	dsn := ":memory:"
	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create directory for %s: %w", cfg.Path, err)
		}
		dsn = cfg.Path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Single connection: one writer, and an in-memory database lives on its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	if cfg.Path != "" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", p, err)
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, locales: locales}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close() //nolint:wrapcheck // nothing to add
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx) //nolint:wrapcheck // nothing to add
}

// OnCommit registers h to run after every successful commit that emitted events.
func (s *Store) OnCommit(h Hook) {
	s.mu.Lock()
	s.hooks = append(s.hooks, h)
	s.mu.Unlock()
}

func (s *Store) afterCommit(ctx context.Context, events []change.Event) {
	events = change.Coalesce(events)
	if len(events) == 0 {
		return
	}
	s.mu.RLock()
	hooks := make([]Hook, len(s.hooks))
	copy(hooks, s.hooks)
	s.mu.RUnlock()

	hctx := context.WithoutCancel(ctx)
	for _, h := range hooks {
		h(hctx, events)
	}
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
