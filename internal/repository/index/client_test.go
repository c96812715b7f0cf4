package index

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/kailas-cloud/marketindex/internal/db"
	"github.com/kailas-cloud/marketindex/internal/domain"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/domain/locale"
	"github.com/kailas-cloud/marketindex/internal/domain/search/sortkey"
)

func TestAttach_ProvisionsEveryRegisteredType(t *testing.T) {
	fs := &fakeStore{}
	c := newTestClient(t, fs)

	if !c.IsEnabled() {
		t.Fatalf("expected enabled client, cause: %v", c.Unavailable())
	}
	slices.Sort(fs.created)
	want := []string{
		"marketplace:classifieds:category",
		"marketplace:classifieds:item",
		"marketplace:classifieds:location",
	}
	if !slices.Equal(fs.created, want) {
		t.Errorf("created = %v, want %v", fs.created, want)
	}
}

func TestAttach_ExistingIndexIsSuccess(t *testing.T) {
	fs := &fakeStore{createFn: func(context.Context, *db.IndexDefinition) error {
		return db.ErrIndexExists
	}}
	c := newTestClient(t, fs)
	if !c.IsEnabled() {
		t.Fatalf("expected enabled client, cause: %v", c.Unavailable())
	}
}

func TestAttach_UnreachableDisables(t *testing.T) {
	fs := &fakeStore{waitFn: func(context.Context, time.Duration) error {
		return errors.New("dial tcp: connection refused")
	}}
	c := newTestClient(t, fs)

	if c.IsEnabled() {
		t.Fatal("expected disabled client")
	}
	if !errors.Is(c.Unavailable(), domain.ErrEngineUnavailable) {
		t.Errorf("Unavailable() = %v, want ErrEngineUnavailable", c.Unavailable())
	}
	if len(fs.created) != 0 {
		t.Errorf("expected no index provisioning, got %v", fs.created)
	}

	ctx := context.Background()
	if err := c.Index(ctx, categoryDoc(t, "c1")); err != nil {
		t.Errorf("Index on disabled client: %v", err)
	}
	if err := c.Remove(ctx, indexable.Category, "c1"); err != nil {
		t.Errorf("Remove on disabled client: %v", err)
	}
	res, err := c.Search(ctx, indexable.Category, &db.Query{Limit: 10})
	if err != nil {
		t.Fatalf("Search on disabled client: %v", err)
	}
	if res.Total() != 0 || res.Len() != 0 {
		t.Errorf("expected empty result, got %d/%d", res.Len(), res.Total())
	}
	if len(fs.puts)+len(fs.deletes) != 0 {
		t.Errorf("disabled client wrote to the engine: %v %v", fs.puts, fs.deletes)
	}
	if !errors.Is(c.Ping(ctx), domain.ErrEngineUnavailable) {
		t.Error("expected Ping to report unavailability")
	}
}

func TestAttach_ProvisioningFailureDisables(t *testing.T) {
	fs := &fakeStore{createFn: func(_ context.Context, def *db.IndexDefinition) error {
		if def.Name == "marketplace:classifieds:item" {
			return errors.New("ERR bad schema")
		}
		return nil
	}}
	c := newTestClient(t, fs)
	if c.IsEnabled() {
		t.Fatal("expected disabled client")
	}
}

func TestAttach_DefaultReadinessTimeout(t *testing.T) {
	var got time.Duration
	fs := &fakeStore{waitFn: func(_ context.Context, timeout time.Duration) error {
		got = timeout
		return nil
	}}
	cfg := testConfig
	cfg.ReadinessTimeout = 0
	Attach(context.Background(), fs, cfg, indexable.NewSchema(locale.Default()), testRegistry(t))
	if got != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", got)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := testConfig
	cfg.Driver = "elastic"
	_, err := Open(context.Background(), cfg, indexable.NewSchema(locale.Default()), testRegistry(t))
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestOpen_BleveInMemory(t *testing.T) {
	cfg := testConfig
	cfg.Driver = DriverBleve
	c, err := Open(context.Background(), cfg, indexable.NewSchema(locale.Default()), testRegistry(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = c.Close(context.Background()) }()
	if !c.IsEnabled() {
		t.Fatalf("expected enabled client, cause: %v", c.Unavailable())
	}
}

func TestIndex_WritesUnderTypedIndex(t *testing.T) {
	var gotValues []indexable.Value
	fs := &fakeStore{putFn: func(_ context.Context, _, _ string, values []indexable.Value) error {
		gotValues = values
		return nil
	}}
	c := newTestClient(t, fs)

	if err := c.Index(context.Background(), categoryDoc(t, "c1")); err != nil {
		t.Fatalf("Index: %v", err)
	}
	if !slices.Equal(fs.puts, []string{"marketplace:classifieds:category/c1"}) {
		t.Errorf("puts = %v", fs.puts)
	}
	if len(gotValues) == 0 {
		t.Error("expected document values to be written")
	}
}

func TestIndex_Errors(t *testing.T) {
	engineErr := errors.New("READONLY You can't write against a read only replica")
	fs := &fakeStore{putFn: func(context.Context, string, string, []indexable.Value) error { return engineErr }}
	ctx := context.Background()

	c := Attach(ctx, fs, testConfig, indexable.NewSchema(locale.Default()), testRegistry(t, indexable.Category))

	err := c.Index(ctx, categoryDoc(t, "c1"))
	if !errors.Is(err, domain.ErrWriteFailure) || !errors.Is(err, engineErr) {
		t.Errorf("expected ErrWriteFailure wrapping the engine error, got %v", err)
	}

	item, _ := indexable.NewDocument(indexable.Item, "i1").Build()
	var ute *domain.UnknownTypeError
	if err := c.Index(ctx, item); !errors.As(err, &ute) {
		t.Errorf("expected UnknownTypeError for unregistered type, got %v", err)
	}

	bad, _ := indexable.NewDocument(indexable.Category, "c2").Long("slug", 1).Build()
	if err := c.Index(ctx, bad); err == nil {
		t.Error("expected schema mismatch error")
	}
}

func TestRemove(t *testing.T) {
	fs := &fakeStore{}
	c := newTestClient(t, fs)
	if err := c.Remove(context.Background(), indexable.Item, "i1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !slices.Equal(fs.deletes, []string{"marketplace:classifieds:item/i1"}) {
		t.Errorf("deletes = %v", fs.deletes)
	}

	fs.deleteFn = func(context.Context, string, string) error { return errors.New("boom") }
	if err := c.Remove(context.Background(), indexable.Item, "i1"); !errors.Is(err, domain.ErrWriteFailure) {
		t.Errorf("expected ErrWriteFailure, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	var got *db.Query
	fs := &fakeStore{searchFn: func(_ context.Context, q *db.Query) (*db.SearchResult, error) {
		got = q
		return &db.SearchResult{Total: 9, Entries: []db.SearchEntry{{ID: "b"}, {ID: "a"}}}, nil
	}}
	c := newTestClient(t, fs)

	res, err := c.Search(context.Background(), indexable.Item, &db.Query{
		Sort:  []sortkey.Clause{sortkey.CreatedDesc.Clause()},
		Limit: 2,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got.Index != "marketplace:classifieds:item" {
		t.Errorf("query index = %q", got.Index)
	}
	if !slices.Equal(res.IDs(), []string{"b", "a"}) || res.Total() != 9 {
		t.Errorf("result = %v/%d", res.IDs(), res.Total())
	}
}

func TestSearch_SyntaxErrorBecomesQueryError(t *testing.T) {
	fs := &fakeStore{searchFn: func(context.Context, *db.Query) (*db.SearchResult, error) {
		return nil, &db.Error{Op: db.OpSearch, Err: errors.Join(db.ErrQuerySyntax, errors.New("Syntax error at offset 3"))}
	}}
	c := newTestClient(t, fs)

	_, err := c.Search(context.Background(), indexable.Item, &db.Query{Text: "a ((", Limit: 10})
	var qe *domain.QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("expected QueryError, got %v", err)
	}
	if qe.Query != "a ((" || !errors.Is(err, domain.ErrQuery) {
		t.Errorf("unexpected query error %+v", qe)
	}
}

func TestSearch_EngineErrorPassesThrough(t *testing.T) {
	fs := &fakeStore{searchFn: func(context.Context, *db.Query) (*db.SearchResult, error) {
		return nil, &db.Error{Op: db.OpSearch, Err: errors.New("LOADING")}
	}}
	c := newTestClient(t, fs)
	_, err := c.Search(context.Background(), indexable.Item, &db.Query{Limit: 10})
	if err == nil || errors.Is(err, domain.ErrQuery) {
		t.Errorf("expected plain engine error, got %v", err)
	}
}

func TestClose_WaitsForInflightWrites(t *testing.T) {
	entered := make(chan struct{})
	unblock := make(chan struct{})
	fs := &fakeStore{putFn: func(context.Context, string, string, []indexable.Value) error {
		close(entered)
		<-unblock
		return nil
	}}
	c := newTestClient(t, fs)
	ctx := context.Background()

	writeDone := make(chan error, 1)
	go func() { writeDone <- c.Index(ctx, categoryDoc(t, "c1")) }()
	<-entered

	closeDone := make(chan error, 1)
	go func() { closeDone <- c.Close(ctx) }()

	select {
	case <-closeDone:
		t.Fatal("Close returned while a write was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(unblock)
	if err := <-writeDone; err != nil {
		t.Errorf("in-flight write: %v", err)
	}
	if err := <-closeDone; err != nil {
		t.Errorf("Close: %v", err)
	}
	if !fs.closed {
		t.Error("expected driver to be closed")
	}

	if err := c.Index(ctx, categoryDoc(t, "c2")); !errors.Is(err, domain.ErrClientClosed) {
		t.Errorf("expected ErrClientClosed after Close, got %v", err)
	}
	if err := c.Remove(ctx, indexable.Category, "c2"); !errors.Is(err, domain.ErrClientClosed) {
		t.Errorf("expected ErrClientClosed after Close, got %v", err)
	}
}

func TestClose_BoundedByContext(t *testing.T) {
	unblock := make(chan struct{})
	entered := make(chan struct{})
	fs := &fakeStore{putFn: func(context.Context, string, string, []indexable.Value) error {
		close(entered)
		<-unblock
		return nil
	}}
	c := newTestClient(t, fs)
	defer close(unblock)

	go func() { _ = c.Index(context.Background(), categoryDoc(t, "c1")) }()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := c.Close(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestDrop(t *testing.T) {
	fs := &fakeStore{}
	c := newTestClient(t, fs)
	if err := c.Drop(context.Background(), indexable.Location); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if !slices.Equal(fs.dropped, []string{"marketplace:classifieds:location"}) {
		t.Errorf("dropped = %v", fs.dropped)
	}
}

func TestProvision_AfterDrop(t *testing.T) {
	fs := &fakeStore{}
	c := newTestClient(t, fs)
	if err := c.Drop(context.Background(), indexable.Item); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	before := len(fs.created)
	if err := c.Provision(context.Background()); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if got := len(fs.created) - before; got != 3 {
		t.Errorf("expected 3 CreateIndex calls, got %d", got)
	}
}

func TestProvision_Disabled(t *testing.T) {
	fs := &fakeStore{waitFn: func(context.Context, time.Duration) error {
		return errors.New("dial tcp: connection refused")
	}}
	c := newTestClient(t, fs)
	if err := c.Provision(context.Background()); !errors.Is(err, domain.ErrEngineUnavailable) {
		t.Errorf("expected ErrEngineUnavailable, got %v", err)
	}
}
