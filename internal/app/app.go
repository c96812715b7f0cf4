// Package app is the composition root: it wires the primary store, the search index
// client, change capture and the use cases from one Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/marketindex/internal/config"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/domain/locale"
	"github.com/kailas-cloud/marketindex/internal/logger"
	"github.com/kailas-cloud/marketindex/internal/metrics"
	"github.com/kailas-cloud/marketindex/internal/repository/index"
	"github.com/kailas-cloud/marketindex/internal/store/sqlite"
	chiTransport "github.com/kailas-cloud/marketindex/internal/transport/chi"
	"github.com/kailas-cloud/marketindex/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/marketindex/internal/usecase/health"
	"github.com/kailas-cloud/marketindex/internal/usecase/reindex"
	searchuc "github.com/kailas-cloud/marketindex/internal/usecase/search"
)

// App holds the wired components.
type App struct {
	Config   config.Config
	Locales  locale.Table
	Registry *indexable.Registry
	Store    *sqlite.Store
	Index    *index.Client
	Gate     *reindex.Gate
	Catalog  *catalog.Service
	Search   *searchuc.Service
	Health   *healthuc.Service

	logger *zap.Logger
}

// New opens the primary store and the index client and wires everything together.
// An unreachable search engine does not fail New: the index client comes up disabled.
func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	metrics.Register()
	ctx = logger.ContextWithLogger(ctx, log)

	locales, err := cfg.LocaleTable()
	if err != nil {
		return nil, fmt.Errorf("locales: %w", err)
	}

	store, err := sqlite.Open(ctx, sqlite.Config{Path: cfg.Database.Path}, locales)
	if err != nil {
		return nil, fmt.Errorf("open primary store: %w", err)
	}

	reg := indexable.NewRegistry()
	gate := reindex.NewGate()
	for _, c := range []reindex.Capture{
		reindex.NewCategoryCapture(store, locales),
		reindex.NewItemCapture(store, locales),
		reindex.NewLocationCapture(store, locales),
	} {
		if err := gate.Register(reg, c); err != nil {
			return nil, errors.Join(err, store.Close())
		}
	}
	reg.Freeze()

	schema := indexable.NewSchema(locales)
	client, err := index.Open(ctx, indexConfig(cfg.Engine), schema, reg)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("open index client: %w", err), store.Close())
	}
	gate.Bind(client)
	store.OnCommit(gate.AfterCommit)

	return &App{
		Config:   cfg,
		Locales:  locales,
		Registry: reg,
		Store:    store,
		Index:    client,
		Gate:     gate,
		Catalog:  catalog.New(transactor{store}, client),
		Search:   searchuc.New(client, schema),
		Health:   healthuc.New(store, client),
		logger:   log,
	}, nil
}

// Handler builds the HTTP API.
func (a *App) Handler() http.Handler {
	return chiTransport.NewServer(a.Search, a.Health, a.logger, chiTransport.Options{
		DefaultLimit: a.Config.Search.DefaultLimit,
	}).Routes()
}

// Close drains the index client, bounded by ctx, then closes the primary store.
func (a *App) Close(ctx context.Context) error {
	return errors.Join(a.Index.Close(ctx), a.Store.Close())
}

func indexConfig(e config.EngineConfig) index.Config {
	return index.Config{
		Driver:           e.Driver,
		Addrs:            e.Addrs,
		Username:         e.Username,
		Password:         e.Password,
		Path:             e.Path,
		Cluster:          e.Cluster,
		Index:            e.Index,
		ReadinessTimeout: time.Duration(e.ReadinessTimeout) * time.Second,
	}
}

// transactor narrows the store's concrete transaction to catalog.Tx.
type transactor struct {
	store *sqlite.Store
}

func (t transactor) InTx(ctx context.Context, fn func(tx catalog.Tx) error) error {
	return t.store.InTx(ctx, func(tx *sqlite.Tx) error { return fn(tx) })
}
