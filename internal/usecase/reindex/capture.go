package reindex

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/domain/locale"
	"github.com/kailas-cloud/marketindex/internal/domain/projection"
)

// CategoryCapture reindexes categories.
type CategoryCapture struct {
	finder  CategoryFinder
	locales locale.Table
}

// NewCategoryCapture creates a category capture.
func NewCategoryCapture(f CategoryFinder, locales locale.Table) *CategoryCapture {
	return &CategoryCapture{finder: f, locales: locales}
}

// Type returns indexable.Category.
func (c *CategoryCapture) Type() indexable.Type { return indexable.Category }

// Load re-reads and projects the category.
func (c *CategoryCapture) Load(ctx context.Context, id string) (indexable.Document, error) {
	cat, err := c.finder.FindCategory(ctx, id)
	if err != nil {
		return indexable.Document{}, fmt.Errorf("find category %s: %w", id, err)
	}
	return projection.Category(cat, c.locales) //nolint:wrapcheck // pure projection
}

// ItemCapture reindexes items.
type ItemCapture struct {
	finder  ItemFinder
	locales locale.Table
}

// NewItemCapture creates an item capture.
func NewItemCapture(f ItemFinder, locales locale.Table) *ItemCapture {
	return &ItemCapture{finder: f, locales: locales}
}

// Type returns indexable.Item.
func (c *ItemCapture) Type() indexable.Type { return indexable.Item }

// Load re-reads the item together with its relations and projects it.
func (c *ItemCapture) Load(ctx context.Context, id string) (indexable.Document, error) {
	rec, err := c.finder.FindItem(ctx, id)
	if err != nil {
		return indexable.Document{}, fmt.Errorf("find item %s: %w", id, err)
	}
	return projection.Item(rec, c.locales) //nolint:wrapcheck // pure projection
}

// LocationCapture reindexes locations.
type LocationCapture struct {
	finder  LocationFinder
	locales locale.Table
}

// NewLocationCapture creates a location capture.
func NewLocationCapture(f LocationFinder, locales locale.Table) *LocationCapture {
	return &LocationCapture{finder: f, locales: locales}
}

// Type returns indexable.Location.
func (c *LocationCapture) Type() indexable.Type { return indexable.Location }

// Load re-reads and projects the location.
func (c *LocationCapture) Load(ctx context.Context, id string) (indexable.Document, error) {
	loc, err := c.finder.FindLocation(ctx, id)
	if err != nil {
		return indexable.Document{}, fmt.Errorf("find location %s: %w", id, err)
	}
	return projection.Location(loc, c.locales) //nolint:wrapcheck // pure projection
}
