package db

import (
	"context"
	"time"

	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
)

// Store is the search engine facade combining all sub-interfaces.
type Store interface {
	Pinger
	IndexManager
	DocumentStore
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks engine connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// IndexManager provides index lifecycle operations.
type IndexManager interface {
	// CreateIndex returns ErrIndexExists when an index with that name is already present.
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// DocumentStore writes documents into an index.
type DocumentStore interface {
	// Put replaces the document stored under id with values. No field of the previous
	// version survives.
	Put(ctx context.Context, index, id string, values []indexable.Value) error
	// Delete removes the document; deleting an absent id is not an error.
	Delete(ctx context.Context, index, id string) error
}

// Searcher runs filtered, sorted, paginated queries.
type Searcher interface {
	Search(ctx context.Context, q *Query) (*SearchResult, error)
}
