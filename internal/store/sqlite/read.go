package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kailas-cloud/marketindex/internal/domain"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/domain/market"
)

// FindUser returns the user or domain.ErrNotFound.
func (s *Store) FindUser(ctx context.Context, id string) (market.User, error) {
	u := market.User{ID: id}
	err := s.db.QueryRowContext(ctx, `SELECT display_name FROM users WHERE id = ?`, id).Scan(&u.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return market.User{}, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return market.User{}, fmt.Errorf("find user %s: %w", id, err)
	}
	return u, nil
}

// FindCategory returns the category or domain.ErrNotFound.
func (s *Store) FindCategory(ctx context.Context, id string) (market.Category, error) {
	c := market.Category{ID: id}
	var created, modified int64
	err := s.db.QueryRowContext(ctx,
		`SELECT parent_id, slug, created, modified FROM categories WHERE id = ?`, id).
		Scan(&c.ParentID, &c.Slug, &created, &modified)
	if errors.Is(err, sql.ErrNoRows) {
		return market.Category{}, fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return market.Category{}, fmt.Errorf("find category %s: %w", id, err)
	}
	c.Created, c.Modified = fromMillis(created), fromMillis(modified)

	texts, err := s.loadTexts(ctx, s.db, indexable.Category, id)
	if err != nil {
		return market.Category{}, err
	}
	c.Title, c.Description = texts["title"], texts["description"]
	return c, nil
}

// FindLocation returns the location or domain.ErrNotFound.
func (s *Store) FindLocation(ctx context.Context, id string) (market.Location, error) {
	return findLocation(ctx, s.db, s, id)
}

// FindItem returns the item with its seller, location and reserved quantity,
// or domain.ErrNotFound. A dangling seller or location reference yields a nil relation.
func (s *Store) FindItem(ctx context.Context, id string) (market.ItemRecord, error) {
	return findItem(ctx, s.db, s, id)
}

func findLocation(ctx context.Context, q querier, s *Store, id string) (market.Location, error) {
	l := market.Location{ID: id}
	var lat, lon sql.NullFloat64
	var created, modified int64
	err := q.QueryRowContext(ctx,
		`SELECT parent_id, slug, lat, lon, created, modified FROM locations WHERE id = ?`, id).
		Scan(&l.ParentID, &l.Slug, &lat, &lon, &created, &modified)
	if errors.Is(err, sql.ErrNoRows) {
		return market.Location{}, fmt.Errorf("location %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return market.Location{}, fmt.Errorf("find location %s: %w", id, err)
	}
	if lat.Valid && lon.Valid {
		l.Coordinates = &market.Coordinates{Lat: lat.Float64, Lon: lon.Float64}
	}
	l.Created, l.Modified = fromMillis(created), fromMillis(modified)

	texts, err := s.loadTexts(ctx, q, indexable.Location, id)
	if err != nil {
		return market.Location{}, err
	}
	l.Name = texts["name"]
	return l, nil
}

func findItem(ctx context.Context, q querier, s *Store, id string) (market.ItemRecord, error) {
	var (
		rec               market.ItemRecord
		created, modified int64
		sellerName        sql.NullString
	)
	it := &rec.Item
	err := q.QueryRowContext(ctx, `
		SELECT i.slug, i.seller_id, i.location_id, i.price, i.quantity, i.published, i.created, i.modified,
		       u.display_name,
		       COALESCE((SELECT SUM(r.quantity) FROM reservations r WHERE r.item_id = i.id), 0)
		FROM items i
		LEFT JOIN users u ON u.id = i.seller_id
		WHERE i.id = ?`, id).
		Scan(&it.Slug, &it.SellerID, &it.LocationID, &it.Price, &it.Quantity, &it.Published,
			&created, &modified, &sellerName, &rec.Reserved)
	if errors.Is(err, sql.ErrNoRows) {
		return market.ItemRecord{}, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return market.ItemRecord{}, fmt.Errorf("find item %s: %w", id, err)
	}
	it.ID = id
	it.Created, it.Modified = fromMillis(created), fromMillis(modified)

	if sellerName.Valid {
		rec.Seller = &market.User{ID: it.SellerID, DisplayName: sellerName.String}
	}

	if it.CategoryIDs, err = queryIDs(ctx, q,
		`SELECT category_id FROM item_categories WHERE item_id = ? ORDER BY category_id`, id); err != nil {
		return market.ItemRecord{}, fmt.Errorf("categories of item %s: %w", id, err)
	}

	if it.LocationID != "" {
		loc, err := findLocation(ctx, q, s, it.LocationID)
		switch {
		case err == nil:
			rec.Location = &loc
		case !errors.Is(err, domain.ErrNotFound):
			return market.ItemRecord{}, err
		}
	}

	texts, err := s.loadTexts(ctx, q, indexable.Item, id)
	if err != nil {
		return market.ItemRecord{}, err
	}
	it.Title, it.Description = texts["title"], texts["description"]
	return rec, nil
}
