package catalog

import (
	"context"

	"github.com/kailas-cloud/marketindex/internal/domain/change"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/domain/market"
)

// Tx is the primary store's write transaction.
type Tx interface {
	Emit(e change.Event)

	SaveUser(ctx context.Context, u *market.User) (created bool, err error)
	SaveCategory(ctx context.Context, c *market.Category) (created bool, err error)
	SaveLocation(ctx context.Context, l *market.Location) (created bool, err error)
	SaveItem(ctx context.Context, it *market.Item) (created bool, err error)
	Reserve(ctx context.Context, itemID string, qty int64) (reservationID string, err error)
	Release(ctx context.Context, reservationID string) (itemID string, err error)
	Delete(ctx context.Context, t indexable.Type, id string) error

	ItemsOfSeller(ctx context.Context, sellerID string) ([]string, error)
	ItemsAtLocation(ctx context.Context, locationID string) ([]string, error)
	ItemsInCategory(ctx context.Context, categoryID string) ([]string, error)
}

// Transactor runs fn in a transaction; events emitted through tx are delivered after commit.
type Transactor interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

// Remover deletes documents from the search index.
type Remover interface {
	Remove(ctx context.Context, t indexable.Type, id string) error
}
