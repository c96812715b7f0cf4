// Package catalog is the mutation surface of the primary store. Every save emits a
// reindex event for the entity and for the items that denormalize it; deletes remove
// the document from the search index synchronously.
package catalog

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/marketindex/internal/domain/change"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/domain/market"
	"github.com/kailas-cloud/marketindex/internal/logger"
)

// Service handles catalogue mutations.
type Service struct {
	store   Transactor
	remover Remover
	now     func() time.Time
}

// New creates a catalog service.
func New(store Transactor, remover Remover) *Service {
	return &Service{store: store, remover: remover, now: time.Now}
}

// WithClock overrides the timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) stamp(created, modified *time.Time) {
	now := s.now().UTC().Truncate(time.Millisecond)
	if created.IsZero() {
		*created = now
	}
	*modified = now
}

func kindOf(created bool) change.Kind {
	if created {
		return change.Created
	}
	return change.Updated
}

// SaveCategory creates or updates a category.
func (s *Service) SaveCategory(ctx context.Context, c *market.Category) error {
	s.stamp(&c.Created, &c.Modified)
	err := s.store.InTx(ctx, func(tx Tx) error {
		created, err := tx.SaveCategory(ctx, c)
		if err != nil {
			return err //nolint:wrapcheck // store errors carry the entity
		}
		tx.Emit(change.Event{Kind: kindOf(created), Type: indexable.Category, ID: c.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("save category: %w", err)
	}
	return nil
}

// SaveLocation creates or updates a location. Items placed there are reindexed too.
func (s *Service) SaveLocation(ctx context.Context, l *market.Location) error {
	if l.Coordinates != nil && !market.ValidateCoordinates(l.Coordinates.Lat, l.Coordinates.Lon) {
		return fmt.Errorf("save location: coordinates out of range: %+v", *l.Coordinates)
	}
	s.stamp(&l.Created, &l.Modified)
	err := s.store.InTx(ctx, func(tx Tx) error {
		created, err := tx.SaveLocation(ctx, l)
		if err != nil {
			return err //nolint:wrapcheck // store errors carry the entity
		}
		tx.Emit(change.Event{Kind: kindOf(created), Type: indexable.Location, ID: l.ID})
		return emitItems(ctx, tx, func() ([]string, error) { return tx.ItemsAtLocation(ctx, l.ID) })
	})
	if err != nil {
		return fmt.Errorf("save location: %w", err)
	}
	return nil
}

// SaveUser creates or updates a seller. Their items are reindexed for the seller name.
func (s *Service) SaveUser(ctx context.Context, u *market.User) error {
	err := s.store.InTx(ctx, func(tx Tx) error {
		if _, err := tx.SaveUser(ctx, u); err != nil {
			return err //nolint:wrapcheck // store errors carry the entity
		}
		return emitItems(ctx, tx, func() ([]string, error) { return tx.ItemsOfSeller(ctx, u.ID) })
	})
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// SaveItem creates or updates an item.
func (s *Service) SaveItem(ctx context.Context, it *market.Item) error {
	if it.Quantity < 0 {
		return fmt.Errorf("save item: negative quantity %d", it.Quantity)
	}
	s.stamp(&it.Created, &it.Modified)
	err := s.store.InTx(ctx, func(tx Tx) error {
		created, err := tx.SaveItem(ctx, it)
		if err != nil {
			return err //nolint:wrapcheck // store errors carry the entity
		}
		tx.Emit(change.Event{Kind: kindOf(created), Type: indexable.Item, ID: it.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("save item: %w", err)
	}
	return nil
}

// Reserve holds qty units of an item; the item's remaining quantity is reindexed.
func (s *Service) Reserve(ctx context.Context, itemID string, qty int64) (string, error) {
	var id string
	err := s.store.InTx(ctx, func(tx Tx) error {
		var err error
		if id, err = tx.Reserve(ctx, itemID, qty); err != nil {
			return err //nolint:wrapcheck // store errors carry the entity
		}
		tx.Emit(change.Event{Kind: change.Updated, Type: indexable.Item, ID: itemID})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("reserve: %w", err)
	}
	return id, nil
}

// Release drops a reservation; the item's remaining quantity is reindexed.
func (s *Service) Release(ctx context.Context, reservationID string) error {
	err := s.store.InTx(ctx, func(tx Tx) error {
		itemID, err := tx.Release(ctx, reservationID)
		if err != nil {
			return err //nolint:wrapcheck // store errors carry the entity
		}
		tx.Emit(change.Event{Kind: change.Updated, Type: indexable.Item, ID: itemID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("release: %w", err)
	}
	return nil
}

// Delete removes the entity from the primary store, then from the search index.
// An index failure is logged and does not fail the delete. Items that referenced a
// deleted category or location are reindexed after commit.
func (s *Service) Delete(ctx context.Context, t indexable.Type, id string) error {
	err := s.store.InTx(ctx, func(tx Tx) error {
		var dependents func() ([]string, error)
		switch t {
		case indexable.Category:
			dependents = func() ([]string, error) { return tx.ItemsInCategory(ctx, id) }
		case indexable.Location:
			dependents = func() ([]string, error) { return tx.ItemsAtLocation(ctx, id) }
		}
		if dependents != nil {
			if err := emitItems(ctx, tx, dependents); err != nil {
				return err
			}
		}
		return tx.Delete(ctx, t, id) //nolint:wrapcheck // store errors carry the entity
	})
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", t, id, err)
	}

	if err := s.remover.Remove(ctx, t, id); err != nil {
		logger.FromContext(ctx).Error("remove from search index failed",
			zap.String("type", string(t)),
			zap.String("id", id),
			zap.Error(err),
		)
	}
	return nil
}

func emitItems(ctx context.Context, tx Tx, ids func() ([]string, error)) error {
	items, err := ids()
	if err != nil {
		return fmt.Errorf("dependent items: %w", err)
	}
	for _, id := range items {
		tx.Emit(change.Event{Kind: change.Updated, Type: indexable.Item, ID: id})
	}
	if len(items) > 0 {
		logger.FromContext(ctx).Debug("reindexing dependent items", zap.Int("count", len(items)))
	}
	return nil
}
