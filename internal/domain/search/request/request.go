package request

import (
	"fmt"

	"github.com/kailas-cloud/marketindex/internal/domain"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/domain/search/sortkey"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed free-text length.
	MaxQueryLength = 4096
	DefaultLimit   = 20
)

// Near is a radius around a point, in kilometres.
type Near struct {
	Lat      float64
	Lon      float64
	RadiusKm float64
}

// Criteria are the structured filters a caller may combine. Zero values are unset.
type Criteria struct {
	ParentID    string
	Slug        string
	CategoryIDs []string // any-of
	SellerID    string
	LocationID  string
	Near        *Near
}

// IsZero reports whether no criterion is set.
func (c Criteria) IsZero() bool {
	return c.ParentID == "" && c.Slug == "" && len(c.CategoryIDs) == 0 &&
		c.SellerID == "" && c.LocationID == "" && c.Near == nil
}

// Request is a validated search query for one indexable type.
type Request struct {
	typ      indexable.Type
	text     string
	criteria Criteria
	sort     []sortkey.Key
	offset   int
	limit    int
}

// Option configures a Request.
type Option func(*options)

type options struct {
	text     string
	criteria Criteria
	sort     []string
	offset   int
	limit    *int
}

// WithText sets the free-text query.
func WithText(s string) Option { return func(o *options) { o.text = s } }

// WithCriteria sets the structured filters.
func WithCriteria(c Criteria) Option { return func(o *options) { o.criteria = c } }

// WithSort appends public sort keys, applied in order.
func WithSort(keys ...string) Option {
	return func(o *options) { o.sort = append(o.sort, keys...) }
}

// WithOffset sets the number of hits to skip.
func WithOffset(n int) Option { return func(o *options) { o.offset = n } }

// WithLimit sets the maximum number of ids returned.
func WithLimit(n int) Option { return func(o *options) { o.limit = &n } }

// New validates and normalizes search parameters.
// Offset defaults to 0 and limit to DefaultLimit; negative values are clamped to 0.
// Unrecognized sort keys fail with *domain.InvalidSortError.
func New(t indexable.Type, opts ...Option) (Request, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if t == "" {
		return Request{}, fmt.Errorf("type is required")
	}
	if len(o.text) > MaxQueryLength {
		return Request{}, domain.NewQueryError(o.text, fmt.Sprintf("query too long (max %d chars)", MaxQueryLength))
	}
	keys, err := sortkey.ParseAll(o.sort)
	if err != nil {
		return Request{}, err
	}

	limit := DefaultLimit
	if o.limit != nil {
		limit = max(*o.limit, 0)
	}

	return Request{
		typ:      t,
		text:     o.text,
		criteria: o.criteria,
		sort:     keys,
		offset:   max(o.offset, 0),
		limit:    limit,
	}, nil
}

// Type returns the indexable type searched.
func (r *Request) Type() indexable.Type { return r.typ }

// Text returns the free-text query; empty means none.
func (r *Request) Text() string { return r.text }

// Criteria returns the structured filters.
func (r *Request) Criteria() Criteria { return r.criteria }

// Sort returns the requested keys; empty means the type default.
func (r *Request) Sort() []sortkey.Key { return r.sort }

// Offset returns the number of hits to skip.
func (r *Request) Offset() int { return r.offset }

// Limit returns the maximum number of ids to return.
func (r *Request) Limit() int { return r.limit }
