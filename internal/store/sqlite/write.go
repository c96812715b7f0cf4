package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/marketindex/internal/domain"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/domain/market"
)

// SaveUser inserts or updates a user. An empty ID is assigned a UUIDv4.
func (tx *Tx) SaveUser(ctx context.Context, u *market.User) (created bool, err error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	created, err = tx.absent(ctx, "users", u.ID)
	if err != nil {
		return false, err
	}
	_, err = tx.tx.ExecContext(ctx, `
		INSERT INTO users (id, display_name) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET display_name = excluded.display_name`,
		u.ID, u.DisplayName)
	if err != nil {
		return false, fmt.Errorf("save user %s: %w", u.ID, err)
	}
	return created, nil
}

// SaveCategory inserts or updates a category and its localized texts.
func (tx *Tx) SaveCategory(ctx context.Context, c *market.Category) (created bool, err error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	created, err = tx.absent(ctx, "categories", c.ID)
	if err != nil {
		return false, err
	}
	_, err = tx.tx.ExecContext(ctx, `
		INSERT INTO categories (id, parent_id, slug, created, modified) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			parent_id = excluded.parent_id, slug = excluded.slug,
			modified = excluded.modified`,
		c.ID, c.ParentID, c.Slug, toMillis(c.Created), toMillis(c.Modified))
	if err != nil {
		return false, fmt.Errorf("save category %s: %w", c.ID, err)
	}
	if err := tx.saveTexts(ctx, indexable.Category, c.ID, map[string]market.LocalizedText{
		"title": c.Title, "description": c.Description,
	}); err != nil {
		return false, err
	}
	return created, nil
}

// SaveLocation inserts or updates a location and its localized names.
func (tx *Tx) SaveLocation(ctx context.Context, l *market.Location) (created bool, err error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	created, err = tx.absent(ctx, "locations", l.ID)
	if err != nil {
		return false, err
	}
	var lat, lon sql.NullFloat64
	if l.Coordinates != nil {
		lat = sql.NullFloat64{Float64: l.Coordinates.Lat, Valid: true}
		lon = sql.NullFloat64{Float64: l.Coordinates.Lon, Valid: true}
	}
	_, err = tx.tx.ExecContext(ctx, `
		INSERT INTO locations (id, parent_id, slug, lat, lon, created, modified) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			parent_id = excluded.parent_id, slug = excluded.slug, lat = excluded.lat, lon = excluded.lon,
			modified = excluded.modified`,
		l.ID, l.ParentID, l.Slug, lat, lon, toMillis(l.Created), toMillis(l.Modified))
	if err != nil {
		return false, fmt.Errorf("save location %s: %w", l.ID, err)
	}
	if err := tx.saveTexts(ctx, indexable.Location, l.ID, map[string]market.LocalizedText{"name": l.Name}); err != nil {
		return false, err
	}
	return created, nil
}

// SaveItem inserts or updates an item, its category links and localized texts.
func (tx *Tx) SaveItem(ctx context.Context, it *market.Item) (created bool, err error) {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	created, err = tx.absent(ctx, "items", it.ID)
	if err != nil {
		return false, err
	}
	_, err = tx.tx.ExecContext(ctx, `
		INSERT INTO items (id, slug, seller_id, location_id, price, quantity, published, created, modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			slug = excluded.slug, seller_id = excluded.seller_id, location_id = excluded.location_id,
			price = excluded.price, quantity = excluded.quantity, published = excluded.published,
			modified = excluded.modified`,
		it.ID, it.Slug, it.SellerID, it.LocationID, it.Price, it.Quantity, it.Published,
		toMillis(it.Created), toMillis(it.Modified))
	if err != nil {
		return false, fmt.Errorf("save item %s: %w", it.ID, err)
	}

	if _, err := tx.tx.ExecContext(ctx, `DELETE FROM item_categories WHERE item_id = ?`, it.ID); err != nil {
		return false, fmt.Errorf("clear categories of item %s: %w", it.ID, err)
	}
	for _, cid := range it.CategoryIDs {
		if _, err := tx.tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO item_categories (item_id, category_id) VALUES (?, ?)`, it.ID, cid); err != nil {
			return false, fmt.Errorf("link item %s to category %s: %w", it.ID, cid, err)
		}
	}

	if err := tx.saveTexts(ctx, indexable.Item, it.ID, map[string]market.LocalizedText{
		"title": it.Title, "description": it.Description,
	}); err != nil {
		return false, err
	}
	return created, nil
}

// Reserve records a reservation of qty units of an item and returns its id.
func (tx *Tx) Reserve(ctx context.Context, itemID string, qty int64) (string, error) {
	if qty <= 0 {
		return "", fmt.Errorf("reservation quantity must be positive, got %d", qty)
	}
	if missing, err := tx.absent(ctx, "items", itemID); err != nil {
		return "", err
	} else if missing {
		return "", fmt.Errorf("item %s: %w", itemID, domain.ErrNotFound)
	}
	id := uuid.NewString()
	if _, err := tx.tx.ExecContext(ctx,
		`INSERT INTO reservations (id, item_id, quantity) VALUES (?, ?, ?)`, id, itemID, qty); err != nil {
		return "", fmt.Errorf("reserve item %s: %w", itemID, err)
	}
	return id, nil
}

// Release deletes a reservation and returns the item it was held on.
func (tx *Tx) Release(ctx context.Context, reservationID string) (itemID string, err error) {
	err = tx.tx.QueryRowContext(ctx,
		`DELETE FROM reservations WHERE id = ? RETURNING item_id`, reservationID).Scan(&itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("reservation %s: %w", reservationID, domain.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("release reservation %s: %w", reservationID, err)
	}
	return itemID, nil
}

// Delete removes an entity of type t with its dependent rows. A missing row is domain.ErrNotFound.
func (tx *Tx) Delete(ctx context.Context, t indexable.Type, id string) error {
	var stmts []string
	switch t {
	case indexable.Category:
		stmts = []string{
			`DELETE FROM categories WHERE id = ?`,
			`DELETE FROM item_categories WHERE category_id = ?`,
		}
	case indexable.Location:
		stmts = []string{`DELETE FROM locations WHERE id = ?`}
	case indexable.Item:
		stmts = []string{
			`DELETE FROM items WHERE id = ?`,
			`DELETE FROM item_categories WHERE item_id = ?`,
			`DELETE FROM reservations WHERE item_id = ?`,
		}
	default:
		return &domain.UnknownTypeError{Type: string(t)}
	}

	res, err := tx.tx.ExecContext(ctx, stmts[0], id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", t, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %s: %w", t, id, domain.ErrNotFound)
	}
	for _, q := range stmts[1:] {
		if _, err := tx.tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("delete %s %s: %w", t, id, err)
		}
	}
	if _, err := tx.tx.ExecContext(ctx,
		`DELETE FROM localized_texts WHERE owner_type = ? AND owner_id = ?`, string(t), id); err != nil {
		return fmt.Errorf("delete texts of %s %s: %w", t, id, err)
	}
	return nil
}

// ItemsOfSeller returns the ids of items sold by the user.
func (tx *Tx) ItemsOfSeller(ctx context.Context, sellerID string) ([]string, error) {
	return queryIDs(ctx, tx.tx, `SELECT id FROM items WHERE seller_id = ? ORDER BY id`, sellerID)
}

// ItemsAtLocation returns the ids of items placed at the location.
func (tx *Tx) ItemsAtLocation(ctx context.Context, locationID string) ([]string, error) {
	return queryIDs(ctx, tx.tx, `SELECT id FROM items WHERE location_id = ? ORDER BY id`, locationID)
}

// ItemsInCategory returns the ids of items linked to the category.
func (tx *Tx) ItemsInCategory(ctx context.Context, categoryID string) ([]string, error) {
	return queryIDs(ctx, tx.tx, `SELECT item_id FROM item_categories WHERE category_id = ? ORDER BY item_id`, categoryID)
}

// FindItem reads an item inside the transaction.
func (tx *Tx) FindItem(ctx context.Context, id string) (market.ItemRecord, error) {
	return findItem(ctx, tx.tx, tx.store, id)
}

func (tx *Tx) absent(ctx context.Context, table, id string) (bool, error) {
	var one int
	err := tx.tx.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup %s %s: %w", table, id, err)
	}
	return false, nil
}

func queryIDs(ctx context.Context, q querier, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err() //nolint:wrapcheck // iteration error
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
