package index

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/marketindex/internal/db"
	"github.com/kailas-cloud/marketindex/internal/domain"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/domain/search/result"
	"github.com/kailas-cloud/marketindex/internal/metrics"
)

// Search runs q against the index of t; q.Index is set by the client.
// A disabled client returns an empty result. Query text the engine rejects
// becomes a *domain.QueryError.
func (c *Client) Search(ctx context.Context, t indexable.Type, q *db.Query) (result.Result, error) {
	if !c.registry.Contains(t) {
		return result.Result{}, &domain.UnknownTypeError{Type: string(t)}
	}
	ok, err := c.acquire()
	if err != nil {
		return result.Result{}, err
	}
	if !ok {
		return result.Empty(), nil
	}
	defer c.release()

	q.Index = c.IndexName(t)

	start := time.Now()
	sr, err := c.store.Search(ctx, q)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.SearchDuration.WithLabelValues(string(t), status).Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, db.ErrQuerySyntax) {
			return result.Result{}, &domain.QueryError{Query: q.Text, Err: err}
		}
		return result.Result{}, fmt.Errorf("search %s: %w", t, err)
	}
	return result.New(sr.IDs(), sr.Total), nil
}
