package sqlite

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/domain/market"
	"github.com/kailas-cloud/marketindex/internal/logger"
)

// saveTexts replaces the localized values of each attribute. Tags are stored as given.
func (tx *Tx) saveTexts(ctx context.Context, t indexable.Type, id string, attrs map[string]market.LocalizedText) error {
	for attr, text := range attrs {
		if _, err := tx.tx.ExecContext(ctx,
			`DELETE FROM localized_texts WHERE owner_type = ? AND owner_id = ? AND attr = ?`,
			string(t), id, attr); err != nil {
			return fmt.Errorf("clear %s of %s %s: %w", attr, t, id, err)
		}
		for tag, value := range text {
			if value == "" {
				continue
			}
			if _, err := tx.tx.ExecContext(ctx,
				`INSERT INTO localized_texts (owner_type, owner_id, attr, locale, value) VALUES (?, ?, ?, ?, ?)`,
				string(t), id, attr, tag, value); err != nil {
				return fmt.Errorf("save %s.%s of %s %s: %w", attr, tag, t, id, err)
			}
		}
	}
	return nil
}

// loadTexts reads the localized attributes of one entity keyed by attribute.
// Rows whose locale the table does not know are dropped; region tags fold to their language.
func (s *Store) loadTexts(ctx context.Context, q querier, t indexable.Type, id string) (map[string]market.LocalizedText, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT attr, locale, value FROM localized_texts WHERE owner_type = ? AND owner_id = ? ORDER BY attr, locale`,
		string(t), id)
	if err != nil {
		return nil, fmt.Errorf("load texts of %s %s: %w", t, id, err)
	}
	defer rows.Close()

	out := make(map[string]market.LocalizedText)
	for rows.Next() {
		var attr, tag, value string
		if err := rows.Scan(&attr, &tag, &value); err != nil {
			return nil, fmt.Errorf("scan text: %w", err)
		}
		l, ok := s.locales.Parse(tag)
		if !ok {
			logger.FromContext(ctx).Debug("dropping text in unsupported locale",
				zap.String("type", string(t)),
				zap.String("id", id),
				zap.String("attr", attr),
				zap.String("locale", tag),
			)
			continue
		}
		if out[attr] == nil {
			out[attr] = make(market.LocalizedText)
		}
		// an exact tag wins over a region variant of the same language
		if _, seen := out[attr][l.Tag()]; seen && tag != l.Tag() {
			continue
		}
		out[attr][l.Tag()] = value
	}
	return out, rows.Err() //nolint:wrapcheck // iteration error
}
