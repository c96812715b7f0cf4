package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/marketindex/internal/db"
	"github.com/kailas-cloud/marketindex/internal/domain"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/domain/search/filter"
	"github.com/kailas-cloud/marketindex/internal/domain/search/request"
	"github.com/kailas-cloud/marketindex/internal/domain/search/result"
	"github.com/kailas-cloud/marketindex/internal/domain/search/sortkey"
)

// Service builds and runs filtered, sorted searches.
type Service struct {
	index  Index
	schema Schema
}

// New creates a search service.
func New(index Index, schema Schema) *Service {
	return &Service{index: index, schema: schema}
}

// Search validates req against the type's schema, builds the engine query and runs it.
// Criteria the type does not support fail with *domain.QueryError, unknown sort keys
// have already failed in request.New.
func (s *Service) Search(ctx context.Context, req request.Request) (result.Result, error) {
	q, err := s.Build(req)
	if err != nil {
		return result.Result{}, err
	}
	res, err := s.index.Search(ctx, req.Type(), q)
	if err != nil {
		return result.Result{}, err //nolint:wrapcheck // typed errors from the index client
	}
	return res, nil
}

// Build turns req into an engine query without running it.
func (s *Service) Build(req request.Request) (*db.Query, error) {
	t := req.Type()

	expr, err := buildFilters(t, req.Criteria())
	if err != nil {
		return nil, err
	}
	for _, key := range expr.Keys() {
		d, err := s.schema.Descriptor(t, key)
		if err != nil {
			return nil, err //nolint:wrapcheck // UnknownTypeError or missing field
		}
		if !d.Indexed() {
			return nil, fmt.Errorf("filter on %s.%s: field is not indexed", t, key)
		}
	}

	clauses := sortkey.Resolve(t, req.Sort())
	for _, c := range clauses {
		if c.Relevance {
			continue
		}
		d, err := s.schema.Descriptor(t, c.Field)
		if err != nil {
			return nil, err //nolint:wrapcheck // UnknownTypeError or missing field
		}
		if !d.Stored() {
			return nil, fmt.Errorf("sort on %s.%s: field is not stored", t, c.Field)
		}
	}

	return &db.Query{
		Text:    strings.TrimSpace(req.Text()),
		Filters: expr,
		Sort:    clauses,
		Offset:  req.Offset(),
		Limit:   req.Limit(),
	}, nil
}

type criterion string

const (
	byParent     criterion = "parent"
	bySlug       criterion = "slug"
	byCategories criterion = "category"
	bySeller     criterion = "seller"
	byLocation   criterion = "location"
	byNear       criterion = "near"
)

// allowed lists the criteria meaningful for each type.
var allowed = map[indexable.Type]map[criterion]bool{
	indexable.Category: {byParent: true, bySlug: true},
	indexable.Item:     {bySlug: true, byCategories: true, bySeller: true, byLocation: true, byNear: true},
	indexable.Location: {byParent: true, bySlug: true, byNear: true},
}

// buildFilters maps criteria onto indexed attributes. No criteria yields an empty
// expression, which the engines run as match-all.
func buildFilters(t indexable.Type, c request.Criteria) (filter.Expression, error) {
	ok, known := allowed[t]
	if !known {
		return filter.Expression{}, &domain.UnknownTypeError{Type: string(t)}
	}
	unsupported := func(cr criterion) error {
		return domain.NewQueryError("", fmt.Sprintf("%s filter is not supported for %s", cr, t))
	}

	matches := []struct {
		cr     criterion
		attr   string
		values []string
	}{
		{byParent, "parentId", nonEmpty(c.ParentID)},
		{bySlug, "slug", nonEmpty(c.Slug)},
		{byCategories, "categories", c.CategoryIDs},
		{bySeller, "sellerId", nonEmpty(c.SellerID)},
		{byLocation, "locationId", nonEmpty(c.LocationID)},
	}

	var conds []filter.Condition
	for _, m := range matches {
		if len(m.values) == 0 {
			continue
		}
		if !ok[m.cr] {
			return filter.Expression{}, unsupported(m.cr)
		}
		cond, err := filter.NewMatch(m.attr, m.values...)
		if err != nil {
			return filter.Expression{}, domain.NewQueryError("", err.Error())
		}
		conds = append(conds, cond)
	}

	if n := c.Near; n != nil {
		if !ok[byNear] {
			return filter.Expression{}, unsupported(byNear)
		}
		g, err := filter.NewGeo(n.Lat, n.Lon, n.RadiusKm)
		if err != nil {
			return filter.Expression{}, domain.NewQueryError("", err.Error())
		}
		cond, err := filter.NewGeoRadius("location", g)
		if err != nil {
			return filter.Expression{}, domain.NewQueryError("", err.Error())
		}
		conds = append(conds, cond)
	}

	expr, err := filter.NewExpression(conds...)
	if err != nil {
		return filter.Expression{}, domain.NewQueryError("", err.Error())
	}
	return expr, nil
}

func nonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

// Resolve re-reads ids through find and silently drops those the primary store no
// longer knows. Order is preserved; any other lookup error aborts.
func Resolve[T any](ctx context.Context, ids []string, find func(ctx context.Context, id string) (T, error)) ([]T, error) {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		v, err := find(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", id, err)
		}
		out = append(out, v)
	}
	return out, nil
}
