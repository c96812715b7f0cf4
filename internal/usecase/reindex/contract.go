package reindex

import (
	"context"

	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/domain/market"
)

// Writer upserts projected documents into the search index.
type Writer interface {
	Index(ctx context.Context, doc indexable.Document) error
	IsEnabled() bool
}

// Registrar records which types participate in indexing.
type Registrar interface {
	Register(t indexable.Type) error
}

// CategoryFinder re-reads categories from the primary store.
type CategoryFinder interface {
	FindCategory(ctx context.Context, id string) (market.Category, error)
}

// ItemFinder re-reads items with their seller, location and reservations.
type ItemFinder interface {
	FindItem(ctx context.Context, id string) (market.ItemRecord, error)
}

// LocationFinder re-reads locations from the primary store.
type LocationFinder interface {
	FindLocation(ctx context.Context, id string) (market.Location, error)
}

// Capture owns the change capture of one entity type: it knows how to
// re-read an entity after commit and project it.
type Capture interface {
	Type() indexable.Type
	Load(ctx context.Context, id string) (indexable.Document, error)
}
