package index

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/marketindex/internal/db"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/domain/locale"
)

// fakeStore implements db.Store for tests. Nil funcs succeed.
type fakeStore struct {
	mu sync.Mutex

	waitFn   func(ctx context.Context, timeout time.Duration) error
	createFn func(ctx context.Context, def *db.IndexDefinition) error
	putFn    func(ctx context.Context, index, id string, values []indexable.Value) error
	deleteFn func(ctx context.Context, index, id string) error
	searchFn func(ctx context.Context, q *db.Query) (*db.SearchResult, error)

	created []string
	dropped []string
	puts    []string
	deletes []string
	closed  bool
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) WaitForReady(ctx context.Context, timeout time.Duration) error {
	if f.waitFn != nil {
		return f.waitFn(ctx, timeout)
	}
	return nil
}

func (f *fakeStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	f.mu.Lock()
	f.created = append(f.created, def.Name)
	f.mu.Unlock()
	if f.createFn != nil {
		return f.createFn(ctx, def)
	}
	return nil
}

func (f *fakeStore) DropIndex(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dropped = append(f.dropped, name)
	return nil
}

func (f *fakeStore) IndexExists(context.Context, string) (bool, error) { return true, nil }

func (f *fakeStore) Put(ctx context.Context, index, id string, values []indexable.Value) error {
	f.mu.Lock()
	f.puts = append(f.puts, index+"/"+id)
	f.mu.Unlock()
	if f.putFn != nil {
		return f.putFn(ctx, index, id, values)
	}
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, index, id string) error {
	f.mu.Lock()
	f.deletes = append(f.deletes, index+"/"+id)
	f.mu.Unlock()
	if f.deleteFn != nil {
		return f.deleteFn(ctx, index, id)
	}
	return nil
}

func (f *fakeStore) Search(ctx context.Context, q *db.Query) (*db.SearchResult, error) {
	if f.searchFn != nil {
		return f.searchFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (f *fakeStore) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

var testConfig = Config{Driver: DriverRedis, Cluster: "marketplace", Index: "classifieds", ReadinessTimeout: time.Second}

func testRegistry(t *testing.T, types ...indexable.Type) *indexable.Registry {
	t.Helper()
	if len(types) == 0 {
		types = []indexable.Type{indexable.Category, indexable.Item, indexable.Location}
	}
	reg := indexable.NewRegistry()
	for _, typ := range types {
		if err := reg.Register(typ); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}
	reg.Freeze()
	return reg
}

func newTestClient(t *testing.T, fs *fakeStore) *Client {
	t.Helper()
	return Attach(context.Background(), fs, testConfig, indexable.NewSchema(locale.Default()), testRegistry(t))
}

func categoryDoc(t *testing.T, id string) indexable.Document {
	t.Helper()
	doc, err := indexable.NewDocument(indexable.Category, id).
		Keyword("slug", "bikes").
		Text("titleEn", "Bikes").
		Date("created", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return doc
}
