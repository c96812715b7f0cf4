// Package bleve implements the search engine facade on an embedded bleve index,
// one bleve index per index definition, memory-only when no path is configured.
package bleve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"

	"github.com/kailas-cloud/marketindex/internal/db"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("bleve store is closed")

// Config holds the on-disk location of the indexes. An empty Path keeps everything in memory.
type Config struct {
	Path string
}

// Store implements db.Store on embedded bleve indexes.
type Store struct {
	mu      sync.RWMutex
	path    string
	indexes map[string]*handle
	closed  bool
}

// handle is an open index plus the text fields free-text queries fan out to.
type handle struct {
	idx        bleve.Index
	textFields []string
}

func newHandle(idx bleve.Index, def *db.IndexDefinition) *handle {
	h := &handle{idx: idx}
	for _, f := range def.Fields {
		if f.Type == db.IndexFieldText && !f.NoIndex {
			h.textFields = append(h.textFields, f.Name)
		}
	}
	return h
}

// NewStore prepares the index directory; indexes are opened by CreateIndex.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Path != "" {
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, &db.Error{Op: db.OpOpen, Err: fmt.Errorf("create %s: %w", cfg.Path, err)}
		}
	}
	return &Store{path: cfg.Path, indexes: make(map[string]*handle)}, nil
}

// Ping reports whether the store is still open.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return &db.Error{Op: db.OpPing, Err: ErrClosed}
	}
	return nil
}

// WaitForReady returns immediately: an embedded engine is ready once constructed.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// Close closes every open index.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for name, h := range s.indexes {
		_ = h.idx.Close()
		delete(s.indexes, name)
	}
}

// CreateIndex opens or creates the index for def. An index that is already open or
// already present on disk yields db.ErrIndexExists (and is ready for use).
func (s *Store) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	m, err := buildMapping(def)
	if err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &db.Error{Op: db.OpCreateIndex, Err: ErrClosed}
	}
	if _, ok := s.indexes[def.Name]; ok {
		return db.ErrIndexExists
	}

	if s.path == "" {
		idx, err := bleve.NewMemOnly(m)
		if err != nil {
			return &db.Error{Op: db.OpCreateIndex, Err: err}
		}
		s.indexes[def.Name] = newHandle(idx, def)
		return nil
	}

	dir := s.dirOf(def.Name)
	idx, err := bleve.Open(dir)
	switch {
	case err == nil:
		s.indexes[def.Name] = newHandle(idx, def)
		return db.ErrIndexExists
	case errors.Is(err, bleve.ErrorIndexPathDoesNotExist):
		idx, err = bleve.New(dir, m)
		if err != nil {
			return &db.Error{Op: db.OpCreateIndex, Err: err}
		}
		s.indexes[def.Name] = newHandle(idx, def)
		return nil
	default:
		return &db.Error{Op: db.OpOpen, Err: fmt.Errorf("%s: %w", dir, err)}
	}
}

// DropIndex closes the index and removes its files.
func (s *Store) DropIndex(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.indexes[name]
	if !ok {
		return db.ErrIndexNotFound
	}
	delete(s.indexes, name)
	if err := h.idx.Close(); err != nil {
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}
	if s.path != "" {
		if err := os.RemoveAll(s.dirOf(name)); err != nil {
			return &db.Error{Op: db.OpDropIndex, Err: err}
		}
	}
	return nil
}

// IndexExists reports whether the index is open.
func (s *Store) IndexExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.indexes[name]
	return ok, nil
}

// Put indexes the document under id, replacing any previous version.
func (s *Store) Put(_ context.Context, index, id string, values []indexable.Value) error {
	if id == "" {
		return fmt.Errorf("id is required")
	}
	h, err := s.index(index)
	if err != nil {
		return err
	}
	if err := h.idx.Index(id, toDocument(values)); err != nil {
		return &db.Error{Op: db.OpIndex, Err: err}
	}
	return nil
}

// Delete removes the document; an absent id is not an error.
func (s *Store) Delete(_ context.Context, index, id string) error {
	h, err := s.index(index)
	if err != nil {
		return err
	}
	if err := h.idx.Delete(id); err != nil {
		return &db.Error{Op: db.OpDelete, Err: err}
	}
	return nil
}

func (s *Store) index(name string) (*handle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	h, ok := s.indexes[name]
	if !ok {
		return nil, db.ErrIndexNotFound
	}
	return h, nil
}

var dirReplacer = strings.NewReplacer(":", "_", "/", "_")

func (s *Store) dirOf(name string) string {
	return filepath.Join(s.path, dirReplacer.Replace(name)+".bleve")
}
