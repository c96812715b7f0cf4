// Package indexable defines the search-engine-facing projection of primary-store entities:
// the per-type field schema, the immutable document value and the type registry.
package indexable

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/kailas-cloud/marketindex/internal/domain/indexable/field"
)

// Type names an indexable entity type.
type Type string

// Indexable entity types.
const (
	Category Type = "category"
	Item     Type = "item"
	Location Type = "location"
)

func (t Type) String() string { return string(t) }

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Value is one typed attribute of a document.
// Exactly one of the payload fields is meaningful, selected by Kind.
type Value struct {
	Name     string
	Kind     field.Kind
	Text     string
	Keywords []string
	Long     int64
	Bool     bool
	Time     time.Time
	Geo      GeoPoint
}

// Interface returns the payload as a plain Go value.
func (v Value) Interface() any {
	switch v.Kind {
	case field.Text:
		return v.Text
	case field.Keyword:
		if len(v.Keywords) == 1 {
			return v.Keywords[0]
		}
		return v.Keywords
	case field.Long:
		return v.Long
	case field.Boolean:
		return v.Bool
	case field.Date:
		return v.Time
	case field.GeoPoint:
		return v.Geo
	}
	return nil
}

// Document is an immutable indexable projection of one entity.
type Document struct {
	id      string
	typ     Type
	values  []Value
	missing []string
}

// ID returns the entity identifier shared with the primary store.
func (d Document) ID() string { return d.id }

// Type returns the type discriminator.
func (d Document) Type() Type { return d.typ }

// Values returns the attributes sorted by name.
func (d Document) Values() []Value {
	out := make([]Value, len(d.values))
	copy(out, d.values)
	return out
}

// Get returns the attribute with the given name.
func (d Document) Get(name string) (Value, bool) {
	i := sort.Search(len(d.values), func(i int) bool { return d.values[i].Name >= name })
	if i < len(d.values) && d.values[i].Name == name {
		return d.values[i], true
	}
	return Value{}, false
}

// Missing returns the related records that were absent during projection.
func (d Document) Missing() []string {
	out := make([]string, len(d.missing))
	copy(out, d.missing)
	return out
}

// MarshalJSON renders the canonical form: fields keyed by name, timestamps as RFC 3339 UTC.
func (d Document) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(d.values))
	for _, v := range d.values {
		if v.Kind == field.Date {
			fields[v.Name] = v.Time.UTC().Format(time.RFC3339Nano)
			continue
		}
		fields[v.Name] = v.Interface()
	}
	return json.Marshal(struct {
		ID     string         `json:"id"`
		Type   Type           `json:"type"`
		Fields map[string]any `json:"fields"`
	}{d.id, d.typ, fields})
}

// Builder assembles a Document. Empty values are skipped so absent data stays absent.
type Builder struct {
	doc  Document
	seen map[string]bool
	err  error
}

// NewDocument starts a document for the given type and id.
// The type and id are also projected as keyword attributes.
func NewDocument(t Type, id string) *Builder {
	b := &Builder{doc: Document{id: id, typ: t}, seen: make(map[string]bool)}
	b.Keyword("type", string(t))
	b.Keyword("id", id)
	return b
}

func (b *Builder) add(v Value) *Builder {
	if b.seen[v.Name] {
		if b.err == nil {
			b.err = fmt.Errorf("duplicate attribute %q", v.Name)
		}
		return b
	}
	b.seen[v.Name] = true
	b.doc.values = append(b.doc.values, v)
	return b
}

// Text adds an analyzed text attribute.
func (b *Builder) Text(name, s string) *Builder {
	if s == "" {
		return b
	}
	return b.add(Value{Name: name, Kind: field.Text, Text: s})
}

// Keyword adds a single exact-match token.
func (b *Builder) Keyword(name, s string) *Builder {
	if s == "" {
		return b
	}
	return b.add(Value{Name: name, Kind: field.Keyword, Keywords: []string{s}})
}

// Keywords adds a multi-valued exact-match attribute. Order is normalized.
func (b *Builder) Keywords(name string, ss []string) *Builder {
	vals := make([]string, 0, len(ss))
	for _, s := range ss {
		if s != "" {
			vals = append(vals, s)
		}
	}
	if len(vals) == 0 {
		return b
	}
	sort.Strings(vals)
	return b.add(Value{Name: name, Kind: field.Keyword, Keywords: vals})
}

// Long adds an integer attribute.
func (b *Builder) Long(name string, n int64) *Builder {
	return b.add(Value{Name: name, Kind: field.Long, Long: n})
}

// Bool adds a boolean attribute.
func (b *Builder) Bool(name string, v bool) *Builder {
	return b.add(Value{Name: name, Kind: field.Boolean, Bool: v})
}

// Date adds a timestamp attribute; the zero time is skipped.
func (b *Builder) Date(name string, t time.Time) *Builder {
	if t.IsZero() {
		return b
	}
	return b.add(Value{Name: name, Kind: field.Date, Time: t.UTC()})
}

// Geo adds a geo point; nil is skipped.
func (b *Builder) Geo(name string, p *GeoPoint) *Builder {
	if p == nil {
		return b
	}
	return b.add(Value{Name: name, Kind: field.GeoPoint, Geo: *p})
}

// Missing records an absent relation.
func (b *Builder) Missing(relation string) *Builder {
	b.doc.missing = append(b.doc.missing, relation)
	return b
}

// Build returns the finished document.
func (b *Builder) Build() (Document, error) {
	if b.err != nil {
		return Document{}, b.err
	}
	if b.doc.id == "" {
		return Document{}, fmt.Errorf("document id is required")
	}
	doc := b.doc
	doc.values = append([]Value(nil), b.doc.values...)
	sort.Slice(doc.values, func(i, j int) bool { return doc.values[i].Name < doc.values[j].Name })
	doc.missing = append([]string(nil), b.doc.missing...)
	return doc, nil
}
