// Package index is the process-wide search index client: it provisions one index per
// registered type, writes projected documents and runs queries. When the engine cannot
// be reached at startup the client is disabled: writes succeed as no-ops and searches
// return empty results.
package index

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/marketindex/internal/db"
	"github.com/kailas-cloud/marketindex/internal/db/bleve"
	"github.com/kailas-cloud/marketindex/internal/db/redis"
	"github.com/kailas-cloud/marketindex/internal/domain"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/logger"
	"github.com/kailas-cloud/marketindex/internal/metrics"
)

// Engine drivers.
const (
	DriverRedis = "redis"
	DriverBleve = "bleve"
)

// Config selects and addresses the engine.
type Config struct {
	Driver   string
	Addrs    []string
	Username string
	Password string
	// Path is the bleve index directory; empty keeps bleve indexes in memory.
	Path string

	Cluster          string
	Index            string
	ReadinessTimeout time.Duration
}

// Client writes and queries the search index. Safe for concurrent use.
type Client struct {
	store    db.Store
	schema   indexable.Schema
	registry *indexable.Registry
	cluster  string
	index    string

	mu       sync.RWMutex
	inflight sync.WaitGroup
	enabled  bool
	closed   bool
	cause    error
}

// Open builds the configured driver, waits for it (bounded by cfg.ReadinessTimeout)
// and provisions an index for every registered type. An unreachable engine is not an
// error: the returned client is disabled and Unavailable reports why.
func Open(ctx context.Context, cfg Config, schema indexable.Schema, reg *indexable.Registry) (*Client, error) {
	store, err := newDriver(cfg)
	if err != nil {
		if errors.Is(err, errBadConfig) {
			return nil, err
		}
		c := newClient(nil, cfg, schema, reg)
		c.disable(ctx, err)
		return c, nil
	}
	return Attach(ctx, store, cfg, schema, reg), nil
}

// Attach wraps an already constructed driver and provisions it like Open does.
func Attach(ctx context.Context, store db.Store, cfg Config, schema indexable.Schema, reg *indexable.Registry) *Client {
	c := newClient(store, cfg, schema, reg)

	timeout := cfg.ReadinessTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if err := store.WaitForReady(ctx, timeout); err != nil {
		c.disable(ctx, err)
		return c
	}
	if err := c.ensure(ctx); err != nil {
		c.disable(ctx, err)
		return c
	}

	c.enabled = true
	metrics.EngineEnabled.Set(1)
	logger.FromContext(ctx).Info("search index ready",
		zap.String("driver", cfg.Driver),
		zap.Strings("types", typeNames(reg.AllTypes())),
	)
	return c
}

func newClient(store db.Store, cfg Config, schema indexable.Schema, reg *indexable.Registry) *Client {
	return &Client{
		store:    store,
		schema:   schema,
		registry: reg,
		cluster:  cfg.Cluster,
		index:    cfg.Index,
	}
}

func (c *Client) disable(ctx context.Context, err error) {
	c.enabled = false
	c.cause = fmt.Errorf("%w: %w", domain.ErrEngineUnavailable, err)
	metrics.EngineEnabled.Set(0)
	logger.FromContext(ctx).Warn("search engine unavailable, indexing disabled", zap.Error(err))
}

// ensure creates the index of every registered type in parallel. An existing index is success.
func (c *Client) ensure(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range c.registry.AllTypes() {
		g.Go(func() error {
			def, err := c.Definition(t)
			if err != nil {
				return err
			}
			err = c.store.CreateIndex(gctx, def)
			switch {
			case err == nil:
				logger.FromContext(ctx).Info("index created", zap.String("index", def.Name))
			case errors.Is(err, db.ErrIndexExists):
				logger.FromContext(ctx).Debug("index exists", zap.String("index", def.Name))
			default:
				return fmt.Errorf("create index %s: %w", def.Name, err)
			}
			return nil
		})
	}
	return g.Wait() //nolint:wrapcheck // already wrapped per index
}

// Provision creates every missing index again, e.g. after Drop.
func (c *Client) Provision(ctx context.Context) error {
	if !c.IsEnabled() {
		return c.Unavailable()
	}
	return c.ensure(ctx)
}

// IsEnabled reports whether writes and searches reach the engine.
func (c *Client) IsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled && !c.closed
}

// Unavailable returns the reason the client is disabled, wrapping domain.ErrEngineUnavailable.
func (c *Client) Unavailable() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cause
}

// Ping checks engine connectivity. A disabled client reports its cause.
func (c *Client) Ping(ctx context.Context) error {
	c.mu.RLock()
	enabled, cause := c.enabled, c.cause
	c.mu.RUnlock()
	if !enabled {
		return cause
	}
	return c.store.Ping(ctx) //nolint:wrapcheck // already a *db.Error
}

// IndexName returns the engine index of t: <cluster>:<index>:<type>.
func (c *Client) IndexName(t indexable.Type) string {
	return c.cluster + ":" + c.index + ":" + string(t)
}

// Drop removes the index of t. Used by reprovisioning after a schema change.
func (c *Client) Drop(ctx context.Context, t indexable.Type) error {
	if !c.IsEnabled() {
		return c.Unavailable()
	}
	if err := c.store.DropIndex(ctx, c.IndexName(t)); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index %s: %w", t, err)
	}
	return nil
}

// Close waits for in-flight writes, bounded by ctx, then releases the driver.
// Writes after Close fail with domain.ErrClientClosed.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = fmt.Errorf("close index client: %w", ctx.Err())
	}
	if c.store != nil {
		c.store.Close()
	}
	metrics.EngineEnabled.Set(0)
	return err
}

// acquire registers an in-flight operation. ok is false when the client is disabled.
func (c *Client) acquire() (ok bool, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false, domain.ErrClientClosed
	}
	if !c.enabled {
		return false, nil
	}
	c.inflight.Add(1)
	return true, nil
}

func (c *Client) release() { c.inflight.Done() }

func typeNames(ts []indexable.Type) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = string(t)
	}
	return out
}

var errBadConfig = errors.New("invalid engine config")

func newDriver(cfg Config) (db.Store, error) {
	switch cfg.Driver {
	case DriverRedis, "":
		s, err := redis.NewStore(redis.Config{
			Addrs:      cfg.Addrs,
			Username:   cfg.Username,
			Password:   cfg.Password,
			ClientName: "marketindex",
		})
		if err != nil {
			return nil, fmt.Errorf("redis driver: %w", err)
		}
		return s, nil
	case DriverBleve:
		s, err := bleve.NewStore(bleve.Config{Path: cfg.Path})
		if err != nil {
			return nil, fmt.Errorf("bleve driver: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: unknown driver %q", errBadConfig, cfg.Driver)
}
