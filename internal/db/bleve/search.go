package bleve

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/kailas-cloud/marketindex/internal/db"
	"github.com/kailas-cloud/marketindex/internal/domain/search/filter"
	"github.com/kailas-cloud/marketindex/internal/domain/search/sortkey"
)

// Search runs q against its index.
func (s *Store) Search(ctx context.Context, q *db.Query) (*db.SearchResult, error) {
	if q.Index == "" {
		return nil, fmt.Errorf("index name is required")
	}
	h, err := s.index(q.Index)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}

	bq, err := buildQuery(q.Text, q.Filters, h.textFields)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}

	req := bleve.NewSearchRequestOptions(bq, q.Limit, q.Offset, false)
	if order := sortOrder(q.Sort); len(order) > 0 {
		req.SortBy(order)
	}

	res, err := h.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}

	entries := make([]db.SearchEntry, 0, len(res.Hits))
	for _, hit := range res.Hits {
		entries = append(entries, db.SearchEntry{ID: hit.ID, Score: hit.Score})
	}
	return &db.SearchResult{Total: int(res.Total), Entries: entries}, nil
}

// buildQuery combines filters and free text into a conjunction.
// Nothing to match yields match-all. Unparseable text wraps db.ErrQuerySyntax.
func buildQuery(text string, expr filter.Expression, textFields []string) (query.Query, error) {
	parts := make([]query.Query, 0, len(expr.Must())+1)
	for _, cond := range expr.Must() {
		switch {
		case cond.IsMatch():
			parts = append(parts, matchQuery(cond.Key(), cond.Values()))
		case cond.IsGeo():
			g := cond.Geo()
			gq := bleve.NewGeoDistanceQuery(g.Lon(), g.Lat(), strconv.FormatFloat(g.RadiusKm(), 'f', -1, 64)+"km")
			gq.SetField(cond.Key())
			parts = append(parts, gq)
		}
	}

	if t := strings.TrimSpace(text); t != "" {
		parsed, err := bleve.NewQueryStringQuery(t).Parse()
		if err != nil {
			return nil, errors.Join(db.ErrQuerySyntax, err)
		}
		parts = append(parts, textQuery(parsed, textFields))
	}

	switch len(parts) {
	case 0:
		return bleve.NewMatchAllQuery(), nil
	case 1:
		return parts[0], nil
	}
	return bleve.NewConjunctionQuery(parts...), nil
}

// textQuery rebuilds a parsed query string. Unsigned and "+" clauses are all required,
// the same as on redis, and "-" clauses exclude. Clauses without a field name are
// matched against every text field so each one is analyzed the way it was indexed.
func textQuery(parsed query.Query, fields []string) query.Query {
	bq, ok := parsed.(*query.BooleanQuery)
	if !ok {
		return expand(parsed, fields)
	}
	var must, mustNot []query.Query
	for _, c := range clausesOf(bq.Must) {
		must = append(must, expand(c, fields))
	}
	for _, c := range clausesOf(bq.Should) {
		must = append(must, expand(c, fields))
	}
	for _, c := range clausesOf(bq.MustNot) {
		mustNot = append(mustNot, expand(c, fields))
	}
	return query.NewBooleanQuery(must, nil, mustNot)
}

func clausesOf(q query.Query) []query.Query {
	switch v := q.(type) {
	case *query.ConjunctionQuery:
		return v.Conjuncts
	case *query.DisjunctionQuery:
		return v.Disjuncts
	case nil:
		return nil
	}
	return []query.Query{q}
}

// expand turns an unfielded clause into a disjunction of per-field copies.
// Clauses naming a field are kept as written.
func expand(q query.Query, fields []string) query.Query {
	if d, ok := q.(*query.DisjunctionQuery); ok {
		out := make([]query.Query, 0, len(d.Disjuncts))
		for _, c := range d.Disjuncts {
			out = append(out, expand(c, fields))
		}
		return bleve.NewDisjunctionQuery(out...)
	}
	fq, ok := q.(query.FieldableQuery)
	if !ok || fq.Field() != "" || len(fields) == 0 {
		return q
	}
	copies := make([]query.Query, 0, len(fields))
	for _, f := range fields {
		c := withField(fq, f)
		if c == nil {
			return q
		}
		copies = append(copies, c)
	}
	if len(copies) == 1 {
		return copies[0]
	}
	return bleve.NewDisjunctionQuery(copies...)
}

// withField copies the leaf queries the query string parser produces.
func withField(q query.FieldableQuery, f string) query.Query {
	switch v := q.(type) {
	case *query.MatchQuery:
		c := *v
		c.SetField(f)
		return &c
	case *query.MatchPhraseQuery:
		c := *v
		c.SetField(f)
		return &c
	case *query.WildcardQuery:
		c := *v
		c.SetField(f)
		return &c
	case *query.RegexpQuery:
		c := *v
		c.SetField(f)
		return &c
	case *query.NumericRangeQuery:
		c := *v
		c.SetField(f)
		return &c
	}
	return nil
}

// matchQuery is an exact term match; several values match if any one does.
func matchQuery(key string, values []string) query.Query {
	terms := make([]query.Query, 0, len(values))
	for _, v := range values {
		tq := bleve.NewTermQuery(v)
		tq.SetField(key)
		terms = append(terms, tq)
	}
	if len(terms) == 1 {
		return terms[0]
	}
	return bleve.NewDisjunctionQuery(terms...)
}

// sortOrder renders clauses in bleve's "-field" notation; relevance is "_score", id is "_id".
func sortOrder(clauses []sortkey.Clause) []string {
	order := make([]string, 0, len(clauses))
	for _, c := range clauses {
		name := c.Field
		switch {
		case c.Relevance:
			name = "_score"
		case c.ID:
			name = "_id"
		}
		if c.Desc {
			name = "-" + name
		}
		order = append(order, name)
	}
	return order
}
