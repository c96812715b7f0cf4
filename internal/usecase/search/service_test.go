package search

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/kailas-cloud/marketindex/internal/db"
	"github.com/kailas-cloud/marketindex/internal/domain"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable/field"
	"github.com/kailas-cloud/marketindex/internal/domain/locale"
	"github.com/kailas-cloud/marketindex/internal/domain/search/request"
	"github.com/kailas-cloud/marketindex/internal/domain/search/result"
	"github.com/kailas-cloud/marketindex/internal/domain/search/sortkey"
)

// --- Mocks ---

type mockIndex struct {
	got     *db.Query
	gotType indexable.Type
	res     result.Result
	err     error
}

func (m *mockIndex) Search(_ context.Context, t indexable.Type, q *db.Query) (result.Result, error) {
	m.got, m.gotType = q, t
	return m.res, m.err
}

// stubSchema overrides single descriptors of the real schema.
type stubSchema struct {
	base      indexable.Schema
	overrides map[string]field.Descriptor
}

func (s stubSchema) Descriptor(t indexable.Type, name string) (field.Descriptor, error) {
	if d, ok := s.overrides[name]; ok {
		return d, nil
	}
	return s.base.Descriptor(t, name)
}

// --- Helpers ---

func newTestService() (*Service, *mockIndex) {
	idx := &mockIndex{res: result.New([]string{"a"}, 1)}
	return New(idx, indexable.NewSchema(locale.Default())), idx
}

func mustRequest(t *testing.T, typ indexable.Type, opts ...request.Option) request.Request {
	t.Helper()
	r, err := request.New(typ, opts...)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return r
}

// --- Tests ---

func TestSearch_NoCriteriaIsMatchAll(t *testing.T) {
	svc, idx := newTestService()
	res, err := svc.Search(context.Background(), mustRequest(t, indexable.Item))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Total() != 1 {
		t.Errorf("total = %d", res.Total())
	}
	if idx.gotType != indexable.Item {
		t.Errorf("type = %s", idx.gotType)
	}
	if !idx.got.Filters.IsEmpty() || idx.got.Text != "" {
		t.Errorf("expected empty query, got %+v", idx.got)
	}
	if idx.got.Limit != request.DefaultLimit || idx.got.Offset != 0 {
		t.Errorf("paging = %d/%d", idx.got.Offset, idx.got.Limit)
	}
}

func TestSearch_DefaultSortPerType(t *testing.T) {
	tests := []struct {
		typ  indexable.Type
		want []sortkey.Clause
	}{
		{indexable.Category, []sortkey.Clause{sortkey.CreatedAsc.Clause(), sortkey.ByID(false)}},
		{indexable.Item, []sortkey.Clause{sortkey.CreatedDesc.Clause(), sortkey.ByID(true)}},
		{indexable.Location, []sortkey.Clause{sortkey.CreatedDesc.Clause(), sortkey.ByID(true)}},
	}
	for _, tc := range tests {
		t.Run(string(tc.typ), func(t *testing.T) {
			svc, idx := newTestService()
			if _, err := svc.Search(context.Background(), mustRequest(t, tc.typ)); err != nil {
				t.Fatalf("Search: %v", err)
			}
			if !slices.Equal(idx.got.Sort, tc.want) {
				t.Errorf("sort = %+v, want %+v", idx.got.Sort, tc.want)
			}
		})
	}
}

func TestSearch_ItemCriteria(t *testing.T) {
	svc, idx := newTestService()
	req := mustRequest(t, indexable.Item,
		request.WithText("  red bike "),
		request.WithCriteria(request.Criteria{
			Slug:        "red-bike",
			CategoryIDs: []string{"x", "x", "y"},
			SellerID:    "u1",
			LocationID:  "l1",
			Near:        &request.Near{Lat: 60.17, Lon: 24.94, RadiusKm: 5},
		}),
		request.WithSort("modified_desc", "relevance_desc"),
		request.WithOffset(10),
		request.WithLimit(5),
	)
	if _, err := svc.Search(context.Background(), req); err != nil {
		t.Fatalf("Search: %v", err)
	}

	q := idx.got
	if q.Text != "red bike" {
		t.Errorf("text = %q", q.Text)
	}
	if got := q.Filters.Keys(); !slices.Equal(got, []string{"slug", "categories", "sellerId", "locationId", "location"}) {
		t.Errorf("filter keys = %v", got)
	}
	cats := q.Filters.Must()[1]
	if !slices.Equal(cats.Values(), []string{"x", "y"}) {
		t.Errorf("categories = %v", cats.Values())
	}
	geo := q.Filters.Must()[4]
	if !geo.IsGeo() || geo.Geo().RadiusKm() != 5 {
		t.Errorf("geo condition = %+v", geo)
	}
	want := []sortkey.Clause{sortkey.ModifiedDesc.Clause(), sortkey.RelevanceDesc.Clause(), sortkey.ByID(true)}
	if !slices.Equal(q.Sort, want) {
		t.Errorf("sort = %+v", q.Sort)
	}
	if q.Offset != 10 || q.Limit != 5 {
		t.Errorf("paging = %d/%d", q.Offset, q.Limit)
	}
}

func TestSearch_UnsupportedCriteria(t *testing.T) {
	tests := []struct {
		name string
		typ  indexable.Type
		c    request.Criteria
	}{
		{"category by seller", indexable.Category, request.Criteria{SellerID: "u1"}},
		{"category near", indexable.Category, request.Criteria{Near: &request.Near{RadiusKm: 1}}},
		{"item by parent", indexable.Item, request.Criteria{ParentID: "p"}},
		{"location by categories", indexable.Location, request.Criteria{CategoryIDs: []string{"x"}}},
		{"location by location", indexable.Location, request.Criteria{LocationID: "l1"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, idx := newTestService()
			_, err := svc.Search(context.Background(), mustRequest(t, tc.typ, request.WithCriteria(tc.c)))
			var qe *domain.QueryError
			if !errors.As(err, &qe) {
				t.Fatalf("expected QueryError, got %v", err)
			}
			if idx.got != nil {
				t.Error("engine must not be queried")
			}
		})
	}
}

func TestSearch_InvalidGeo(t *testing.T) {
	svc, _ := newTestService()
	req := mustRequest(t, indexable.Location,
		request.WithCriteria(request.Criteria{Near: &request.Near{Lat: 100, Lon: 0, RadiusKm: 1}}))
	_, err := svc.Search(context.Background(), req)
	if !errors.Is(err, domain.ErrQuery) {
		t.Errorf("expected ErrQuery, got %v", err)
	}
}

func TestSearch_UnknownType(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Search(context.Background(), mustRequest(t, "invoice"))
	if !errors.Is(err, domain.ErrUnknownType) {
		t.Errorf("expected ErrUnknownType, got %v", err)
	}
}

func TestBuild_RejectsUnindexedFilterAndUnstoredSort(t *testing.T) {
	base := indexable.NewSchema(locale.Default())

	svc := New(&mockIndex{}, stubSchema{base: base, overrides: map[string]field.Descriptor{
		"slug": field.MustNew("slug", field.Keyword, field.Stored(), field.NotIndexed()),
	}})
	req := mustRequest(t, indexable.Item, request.WithCriteria(request.Criteria{Slug: "x"}))
	if _, err := svc.Build(req); err == nil {
		t.Error("expected error filtering on a non-indexed field")
	}

	svc = New(&mockIndex{}, stubSchema{base: base, overrides: map[string]field.Descriptor{
		"created": field.MustNew("created", field.Date),
	}})
	if _, err := svc.Build(mustRequest(t, indexable.Item, request.WithSort("created_asc"))); err == nil {
		t.Error("expected error sorting on a non-stored field")
	}
}

func TestSearch_IndexErrorPassesThrough(t *testing.T) {
	svc, idx := newTestService()
	idx.err = &domain.QueryError{Query: "((", Err: errors.New("syntax error")}
	_, err := svc.Search(context.Background(), mustRequest(t, indexable.Item, request.WithText("((")))
	if !errors.Is(err, domain.ErrQuery) {
		t.Errorf("expected ErrQuery, got %v", err)
	}
}

func TestResolve_DropsMissing(t *testing.T) {
	known := map[string]string{"a": "A", "c": "C"}
	find := func(_ context.Context, id string) (string, error) {
		if v, ok := known[id]; ok {
			return v, nil
		}
		return "", domain.ErrNotFound
	}
	got, err := Resolve(context.Background(), []string{"c", "b", "a"}, find)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !slices.Equal(got, []string{"C", "A"}) {
		t.Errorf("Resolve = %v", got)
	}
}

func TestResolve_OtherErrorsAbort(t *testing.T) {
	boom := errors.New("database is locked")
	_, err := Resolve(context.Background(), []string{"a"}, func(context.Context, string) (int, error) {
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped error, got %v", err)
	}
}
