// Package sortkey holds the fixed enumeration of search orderings.
package sortkey

import (
	"strings"

	"github.com/kailas-cloud/marketindex/internal/domain"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
)

// Key is a public sort key.
type Key string

// Sort key constants.
const (
	CreatedAsc    Key = "created_asc"
	CreatedDesc   Key = "created_desc"
	ModifiedAsc   Key = "modified_asc"
	ModifiedDesc  Key = "modified_desc"
	RelevanceAsc  Key = "relevance_asc"
	RelevanceDesc Key = "relevance_desc"
)

var clauses = map[Key]Clause{
	CreatedAsc:    {Field: "created"},
	CreatedDesc:   {Field: "created", Desc: true},
	ModifiedAsc:   {Field: "modified"},
	ModifiedDesc:  {Field: "modified", Desc: true},
	RelevanceAsc:  {Relevance: true},
	RelevanceDesc: {Relevance: true, Desc: true},
}

// defaults are part of the public contract and must not change silently.
var defaults = map[indexable.Type]Key{
	indexable.Category: CreatedAsc,
	indexable.Item:     CreatedDesc,
	indexable.Location: CreatedDesc,
}

// IsValid checks if the key is one of the supported values.
func (k Key) IsValid() bool {
	_, ok := clauses[k]
	return ok
}

// Clause returns the engine-neutral clause for k.
func (k Key) Clause() Clause { return clauses[k] }

// Clause is one ordering step. Relevance clauses order by engine score, ID clauses by
// document id; others by a stored field.
type Clause struct {
	Field     string
	Desc      bool
	Relevance bool
	ID        bool
}

// ByID orders by document id. It is the final tiebreaker of every resolved ordering.
func ByID(desc bool) Clause { return Clause{ID: true, Desc: desc} }

// Parse maps a public key to its Key. Keys are case-insensitive.
func Parse(s string) (Key, error) {
	k := Key(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", &domain.InvalidSortError{Key: s}
	}
	return k, nil
}

// ParseAll parses keys in order, failing on the first unrecognized one.
func ParseAll(ss []string) ([]Key, error) {
	keys := make([]Key, 0, len(ss))
	for _, s := range ss {
		k, err := Parse(s)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

// Default returns the ordering applied to t when the caller supplies none.
func Default(t indexable.Type) Key {
	if k, ok := defaults[t]; ok {
		return k
	}
	return CreatedDesc
}

// Resolve turns keys into clauses, substituting the type default when keys is empty.
// Repeated keys keep their first position. An id clause in the direction of the last
// key is appended so equal sort values still order deterministically.
func Resolve(t indexable.Type, keys []Key) []Clause {
	if len(keys) == 0 {
		keys = []Key{Default(t)}
	}
	out := make([]Clause, 0, len(keys)+1)
	seen := make(map[Key]bool, len(keys))
	for _, k := range keys {
		if seen[k] || !k.IsValid() {
			continue
		}
		seen[k] = true
		out = append(out, k.Clause())
	}
	if len(out) == 0 {
		out = append(out, Default(t).Clause())
	}
	return append(out, ByID(out[len(out)-1].Desc))
}
