package bleve

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/marketindex/internal/db"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/domain/search/filter"
	"github.com/kailas-cloud/marketindex/internal/domain/search/sortkey"
)

const testIndex = "marketplace:classifieds:item"

var base = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func testDefinition() *db.IndexDefinition {
	return db.NewIndex(testIndex).
		Prefix(testIndex+":").
		Tag("id").
		Tag("slug").
		Tag("categories").
		Text("titleEn", "en").
		Text("titleFi", "fi").
		Numeric("price").Sortable().
		Bool("published").
		Geo("location").
		Date("created").Sortable().
		Date("modified").Sortable().NoIndex().
		MustBuild()
}

type item struct {
	id      string
	title   string
	cats    []string
	created time.Time
	geo     *indexable.GeoPoint
}

func values(t *testing.T, it item) []indexable.Value {
	t.Helper()
	doc, err := indexable.NewDocument(indexable.Item, it.id).
		Keyword("slug", it.id+"-slug").
		Text("titleEn", it.title).
		Keywords("categories", it.cats).
		Long("price", 100).
		Bool("published", true).
		Geo("location", it.geo).
		Date("created", it.created).
		Build()
	require.NoError(t, err)
	return doc.Values()
}

func newStore(t *testing.T, items ...item) *Store {
	t.Helper()
	s, err := NewStore(Config{})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	ctx := context.Background()
	require.NoError(t, s.CreateIndex(ctx, testDefinition()))
	for _, it := range items {
		require.NoError(t, s.Put(ctx, testIndex, it.id, values(t, it)))
	}
	return s
}

func search(t *testing.T, s *Store, q db.Query) *db.SearchResult {
	t.Helper()
	q.Index = testIndex
	if q.Limit == 0 {
		q.Limit = 20
	}
	res, err := s.Search(context.Background(), &q)
	require.NoError(t, err)
	return res
}

var helsinki = &indexable.GeoPoint{Lat: 60.1699, Lon: 24.9384}

func fixtures() []item {
	return []item{
		{id: "a", title: "Red zeppelin model", cats: []string{"x"}, created: base, geo: helsinki},
		{id: "b", title: "Blue bicycle", cats: []string{"x", "y"}, created: base.Add(time.Hour)},
		{id: "c", title: "Green bicycle", cats: []string{"y"}, created: base.Add(2 * time.Hour),
			geo: &indexable.GeoPoint{Lat: 61.4978, Lon: 23.7610}},
	}
}

func TestCreateIndex_Twice(t *testing.T) {
	s := newStore(t)
	err := s.CreateIndex(context.Background(), testDefinition())
	assert.ErrorIs(t, err, db.ErrIndexExists)

	ok, err := s.IndexExists(context.Background(), testIndex)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreateIndex_ReopensFromDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewStore(Config{Path: dir})
	require.NoError(t, err)
	require.NoError(t, s.CreateIndex(ctx, testDefinition()))
	require.NoError(t, s.Put(ctx, testIndex, "a", values(t, fixtures()[0])))
	s.Close()

	s2, err := NewStore(Config{Path: dir})
	require.NoError(t, err)
	defer s2.Close()
	assert.ErrorIs(t, s2.CreateIndex(ctx, testDefinition()), db.ErrIndexExists)

	res, err := s2.Search(ctx, &db.Query{Index: testIndex, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
}

func TestSearch_MatchAll(t *testing.T) {
	s := newStore(t, fixtures()...)
	res := search(t, s, db.Query{})
	assert.Equal(t, 3, res.Total)
	assert.Len(t, res.Entries, 3)
}

func TestSearch_SortByCreated(t *testing.T) {
	s := newStore(t, fixtures()...)

	asc := search(t, s, db.Query{Sort: []sortkey.Clause{sortkey.CreatedAsc.Clause()}})
	desc := search(t, s, db.Query{Sort: []sortkey.Clause{sortkey.CreatedDesc.Clause()}})

	assert.Equal(t, []string{"a", "b", "c"}, asc.IDs())
	assert.Equal(t, []string{"c", "b", "a"}, desc.IDs())
}

func TestSearch_Paging(t *testing.T) {
	s := newStore(t, fixtures()...)
	res := search(t, s, db.Query{Sort: []sortkey.Clause{sortkey.CreatedAsc.Clause()}, Offset: 1, Limit: 1})
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, []string{"b"}, res.IDs())
}

func TestSearch_CategoryAnyOf(t *testing.T) {
	s := newStore(t, fixtures()...)

	x, _ := filter.NewMatch("categories", "x")
	expr, _ := filter.NewExpression(x)
	res := search(t, s, db.Query{Filters: expr})
	assert.Equal(t, 2, res.Total)
	assert.ElementsMatch(t, []string{"a", "b"}, res.IDs())

	xy, _ := filter.NewMatch("categories", "x", "y")
	expr, _ = filter.NewExpression(xy)
	res = search(t, s, db.Query{Filters: expr})
	assert.Equal(t, 3, res.Total)
}

func TestSearch_KeywordIsCaseSensitive(t *testing.T) {
	s := newStore(t, fixtures()...)
	upper, _ := filter.NewMatch("categories", "X")
	expr, _ := filter.NewExpression(upper)
	assert.Zero(t, search(t, s, db.Query{Filters: expr}).Total)
}

func TestSearch_FreeText(t *testing.T) {
	s := newStore(t, fixtures()...)
	res := search(t, s, db.Query{Text: "zeppelin"})
	assert.Equal(t, []string{"a"}, res.IDs())

	res = search(t, s, db.Query{Text: "bicycle", Sort: []sortkey.Clause{sortkey.CreatedDesc.Clause()}})
	assert.Equal(t, []string{"c", "b"}, res.IDs())
}

func TestSearch_QueryStringOperators(t *testing.T) {
	s := newStore(t, fixtures()...)

	tests := []struct {
		text string
		want []string
	}{
		{"+zeppelin +bicycle", []string{}},
		{"green bicycle", []string{"c"}},
		{"bicycle -blue", []string{"c"}},
		{"-bicycle", []string{"a"}},
		{"titleEn:zeppelin", []string{"a"}},
		{`"blue bicycle"`, []string{"b"}},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			res := search(t, s, db.Query{Text: tc.text})
			assert.ElementsMatch(t, tc.want, res.IDs())
			assert.Equal(t, len(tc.want), res.Total)
		})
	}
}

func TestSearch_IDBreaksTies(t *testing.T) {
	var same []item
	for _, id := range []string{"i3", "i1", "i5", "i2", "i4"} {
		same = append(same, item{id: id, title: "Thing", created: base})
	}
	s := newStore(t, same...)

	asc := search(t, s, db.Query{Sort: []sortkey.Clause{sortkey.CreatedAsc.Clause(), sortkey.ByID(false)}})
	desc := search(t, s, db.Query{Sort: []sortkey.Clause{sortkey.CreatedDesc.Clause(), sortkey.ByID(true)}})

	assert.Equal(t, []string{"i1", "i2", "i3", "i4", "i5"}, asc.IDs())
	assert.Equal(t, []string{"i5", "i4", "i3", "i2", "i1"}, desc.IDs())
}

func TestSearch_Geo(t *testing.T) {
	s := newStore(t, fixtures()...)
	g, _ := filter.NewGeo(60.17, 24.94, 10)
	near, _ := filter.NewGeoRadius("location", g)
	expr, _ := filter.NewExpression(near)

	res := search(t, s, db.Query{Filters: expr})
	assert.Equal(t, []string{"a"}, res.IDs())
}

func TestSearch_SyntaxError(t *testing.T) {
	s := newStore(t, fixtures()...)
	_, err := s.Search(context.Background(), &db.Query{Index: testIndex, Text: "^", Limit: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, db.ErrQuerySyntax)
}

func TestSearch_UnknownIndex(t *testing.T) {
	s := newStore(t)
	_, err := s.Search(context.Background(), &db.Query{Index: "nope", Limit: 10})
	assert.ErrorIs(t, err, db.ErrIndexNotFound)
}

func TestPut_ReplacesPreviousVersion(t *testing.T) {
	s := newStore(t, fixtures()...)
	ctx := context.Background()

	updated := fixtures()[0]
	updated.title = "Plain airship"
	updated.cats = []string{"y"}
	require.NoError(t, s.Put(ctx, testIndex, "a", values(t, updated)))

	assert.Empty(t, search(t, s, db.Query{Text: "zeppelin"}).IDs())
	x, _ := filter.NewMatch("categories", "x")
	expr, _ := filter.NewExpression(x)
	assert.Equal(t, []string{"b"}, search(t, s, db.Query{Filters: expr}).IDs())
	assert.Equal(t, 3, search(t, s, db.Query{}).Total)
}

func TestDelete(t *testing.T) {
	s := newStore(t, fixtures()...)
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, testIndex, "a"))
	require.NoError(t, s.Delete(ctx, testIndex, "never-indexed"))

	res := search(t, s, db.Query{})
	assert.Equal(t, 2, res.Total)
	assert.NotContains(t, res.IDs(), "a")
}

func TestDropIndex(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, s.DropIndex(ctx, testIndex))
	assert.ErrorIs(t, s.DropIndex(ctx, testIndex), db.ErrIndexNotFound)
	ok, _ := s.IndexExists(ctx, testIndex)
	assert.False(t, ok)
}

func TestClosed(t *testing.T) {
	s, err := NewStore(Config{})
	require.NoError(t, err)
	s.Close()

	assert.ErrorIs(t, s.Ping(context.Background()), ErrClosed)
	assert.ErrorIs(t, s.Put(context.Background(), testIndex, "a", nil), ErrClosed)
	assert.Error(t, s.CreateIndex(context.Background(), testDefinition()))
}

func TestSortOrder(t *testing.T) {
	got := sortOrder([]sortkey.Clause{
		sortkey.RelevanceDesc.Clause(),
		sortkey.CreatedAsc.Clause(),
		sortkey.ModifiedDesc.Clause(),
		sortkey.RelevanceAsc.Clause(),
		sortkey.ByID(true),
	})
	assert.Equal(t, []string{"-_score", "created", "-modified", "_score", "-_id"}, got)
}

func TestAnalyzerFor(t *testing.T) {
	assert.Equal(t, "fi", analyzerFor("fi"))
	assert.Equal(t, "standard", analyzerFor(""))
	assert.Equal(t, "standard", analyzerFor("de"))
}
