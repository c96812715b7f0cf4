package index

import (
	"fmt"

	"github.com/kailas-cloud/marketindex/internal/db"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable/field"
)

// Definition builds the engine index definition of t from its field descriptors.
func (c *Client) Definition(t indexable.Type) (*db.IndexDefinition, error) {
	ds, err := c.schema.Descriptors(t)
	if err != nil {
		return nil, err //nolint:wrapcheck // typed domain error
	}
	name := c.IndexName(t)
	return buildDefinition(name, ds)
}

func buildDefinition(name string, ds []field.Descriptor) (*db.IndexDefinition, error) {
	b := db.NewIndex(name).Prefix(name + ":")
	for _, d := range ds {
		switch d.Kind() {
		case field.Text:
			b.Text(d.Name(), d.Analyzer())
		case field.Keyword:
			b.Tag(d.Name())
		case field.Long:
			b.Numeric(d.Name())
		case field.Date:
			b.Date(d.Name())
		case field.Boolean:
			b.Bool(d.Name())
		case field.GeoPoint:
			b.Geo(d.Name())
		default:
			return nil, fmt.Errorf("field %s: unsupported kind %s", d.Name(), d.Kind())
		}
		if d.Stored() {
			b.Sortable()
		}
		if !d.Indexed() {
			b.NoIndex()
		}
	}
	def, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", name, err)
	}
	return def, nil
}
