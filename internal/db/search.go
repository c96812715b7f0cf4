package db

import (
	"github.com/kailas-cloud/marketindex/internal/domain/search/filter"
	"github.com/kailas-cloud/marketindex/internal/domain/search/sortkey"
)

// Query is the input for a filtered, sorted search.
// Empty Text and empty Filters match every document of the index.
type Query struct {
	Index   string
	Text    string
	Filters filter.Expression
	Sort    []sortkey.Clause
	Offset  int
	Limit   int
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// IDs returns the entry ids in result order.
func (r *SearchResult) IDs() []string {
	ids := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		ids = append(ids, e.ID)
	}
	return ids
}

// SearchEntry is a single document hit.
type SearchEntry struct {
	ID    string
	Score float64
}
