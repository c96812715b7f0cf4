package index

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/marketindex/internal/domain"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/logger"
	"github.com/kailas-cloud/marketindex/internal/metrics"
)

const (
	opIndex  = "index"
	opRemove = "remove"
)

// Index upserts doc under (type, id). The stored version is replaced as a whole.
// A disabled client returns nil without writing. Engine failures wrap domain.ErrWriteFailure.
func (c *Client) Index(ctx context.Context, doc indexable.Document) error {
	t := doc.Type()
	if !c.registry.Contains(t) {
		return &domain.UnknownTypeError{Type: string(t)}
	}
	if err := c.schema.Check(doc); err != nil {
		return fmt.Errorf("index %s %s: %w", t, doc.ID(), err)
	}

	ok, err := c.acquire()
	if err != nil {
		return err
	}
	if !ok {
		metrics.IndexWritesTotal.WithLabelValues(string(t), opIndex, "disabled").Inc()
		return nil
	}
	defer c.release()

	if err := c.store.Put(ctx, c.IndexName(t), doc.ID(), doc.Values()); err != nil {
		metrics.IndexWritesTotal.WithLabelValues(string(t), opIndex, "error").Inc()
		return fmt.Errorf("%w: index %s %s: %w", domain.ErrWriteFailure, t, doc.ID(), err)
	}
	metrics.IndexWritesTotal.WithLabelValues(string(t), opIndex, "ok").Inc()
	logger.FromContext(ctx).Debug("document indexed", zap.String("type", string(t)), zap.String("id", doc.ID()))
	return nil
}

// Remove deletes (type, id) from the index. An absent document is not an error.
func (c *Client) Remove(ctx context.Context, t indexable.Type, id string) error {
	if !c.registry.Contains(t) {
		return &domain.UnknownTypeError{Type: string(t)}
	}

	ok, err := c.acquire()
	if err != nil {
		return err
	}
	if !ok {
		metrics.IndexWritesTotal.WithLabelValues(string(t), opRemove, "disabled").Inc()
		return nil
	}
	defer c.release()

	if err := c.store.Delete(ctx, c.IndexName(t), id); err != nil {
		metrics.IndexWritesTotal.WithLabelValues(string(t), opRemove, "error").Inc()
		return fmt.Errorf("%w: remove %s %s: %w", domain.ErrWriteFailure, t, id, err)
	}
	metrics.IndexWritesTotal.WithLabelValues(string(t), opRemove, "ok").Inc()
	return nil
}
