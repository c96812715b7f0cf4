package indexable

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/marketindex/internal/domain"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable/field"
	"github.com/kailas-cloud/marketindex/internal/domain/locale"
)

// Schema is the static catalogue of field descriptors per indexable type.
type Schema struct {
	types   map[Type][]field.Descriptor
	byName  map[Type]map[string]field.Descriptor
	locales locale.Table
}

// NewSchema builds the descriptor tables for every indexable type.
// Localized attributes expand into one text field per locale in the table.
func NewSchema(locales locale.Table) Schema {
	s := Schema{
		types:   make(map[Type][]field.Descriptor),
		byName:  make(map[Type]map[string]field.Descriptor),
		locales: locales,
	}

	common := func() []field.Descriptor {
		return []field.Descriptor{
			field.MustNew("type", field.Keyword),
			field.MustNew("id", field.Keyword),
			field.MustNew("slug", field.Keyword),
		}
	}
	timestamps := []field.Descriptor{
		field.MustNew("created", field.Date, field.Stored()),
		field.MustNew("modified", field.Date, field.Stored()),
	}

	category := common()
	category = append(category, field.MustNew("parentId", field.Keyword))
	category = append(category, localized(locales, "title")...)
	category = append(category, localized(locales, "description")...)
	category = append(category, timestamps...)
	s.add(Category, category)

	item := common()
	item = append(item, localized(locales, "title")...)
	item = append(item, localized(locales, "description")...)
	item = append(item,
		field.MustNew("categories", field.Keyword),
		field.MustNew("sellerId", field.Keyword),
		field.MustNew("sellerName", field.Text),
		field.MustNew("locationId", field.Keyword),
		field.MustNew("location", field.GeoPoint),
		field.MustNew("price", field.Long, field.Stored()),
		field.MustNew("remaining", field.Long, field.Stored()),
		field.MustNew("published", field.Boolean),
	)
	item = append(item, timestamps...)
	s.add(Item, item)

	loc := common()
	loc = append(loc, field.MustNew("parentId", field.Keyword))
	loc = append(loc, localized(locales, "name")...)
	loc = append(loc, field.MustNew("location", field.GeoPoint))
	loc = append(loc, timestamps...)
	s.add(Location, loc)

	return s
}

func localized(locales locale.Table, base string) []field.Descriptor {
	out := make([]field.Descriptor, 0, locales.Len())
	for _, l := range locales.Locales() {
		out = append(out, field.MustNew(l.Field(base), field.Text, field.Analyzer(l.Analyzer())))
	}
	return out
}

func (s Schema) add(t Type, ds []field.Descriptor) {
	s.types[t] = ds
	m := make(map[string]field.Descriptor, len(ds))
	for _, d := range ds {
		m[d.Name()] = d
	}
	s.byName[t] = m
}

// Locales returns the locale table the schema was built from.
func (s Schema) Locales() locale.Table { return s.locales }

// Types returns every type with descriptors, sorted by name.
func (s Schema) Types() []Type {
	out := make([]Type, 0, len(s.types))
	for t := range s.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Descriptors returns the ordered descriptors of t.
func (s Schema) Descriptors(t Type) ([]field.Descriptor, error) {
	ds, ok := s.types[t]
	if !ok {
		return nil, &domain.UnknownTypeError{Type: string(t)}
	}
	out := make([]field.Descriptor, len(ds))
	copy(out, ds)
	return out, nil
}

// Descriptor returns the named descriptor of t.
func (s Schema) Descriptor(t Type, name string) (field.Descriptor, error) {
	m, ok := s.byName[t]
	if !ok {
		return field.Descriptor{}, &domain.UnknownTypeError{Type: string(t)}
	}
	d, ok := m[name]
	if !ok {
		return field.Descriptor{}, fmt.Errorf("type %s has no field %q", t, name)
	}
	return d, nil
}

// Check verifies that every attribute of doc has a descriptor of the same kind.
func (s Schema) Check(doc Document) error {
	m, ok := s.byName[doc.Type()]
	if !ok {
		return &domain.UnknownTypeError{Type: string(doc.Type())}
	}
	for _, v := range doc.values {
		d, ok := m[v.Name]
		if !ok {
			return fmt.Errorf("type %s has no field %q", doc.Type(), v.Name)
		}
		if d.Kind() != v.Kind {
			return fmt.Errorf("field %s.%s is %s, got %s", doc.Type(), v.Name, d.Kind(), v.Kind)
		}
	}
	return nil
}
