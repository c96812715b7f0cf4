package search

import (
	"context"

	"github.com/kailas-cloud/marketindex/internal/db"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable/field"
	"github.com/kailas-cloud/marketindex/internal/domain/search/result"
)

// Index runs built queries against the search index of a type.
type Index interface {
	Search(ctx context.Context, t indexable.Type, q *db.Query) (result.Result, error)
}

// Schema looks up field descriptors for validation.
type Schema interface {
	Descriptor(t indexable.Type, name string) (field.Descriptor, error)
}
