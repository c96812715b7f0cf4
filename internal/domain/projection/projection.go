// Package projection turns primary-store entities into indexable documents.
// Every function is pure: no I/O, safe to retry.
package projection

import (
	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/domain/locale"
	"github.com/kailas-cloud/marketindex/internal/domain/market"
)

// Relation names reported through Document.Missing.
const (
	RelationSeller      = "seller"
	RelationLocation    = "location"
	RelationCoordinates = "coordinates"
)

// Category projects a category.
func Category(c market.Category, locales locale.Table) (indexable.Document, error) {
	b := indexable.NewDocument(indexable.Category, c.ID).
		Keyword("slug", c.Slug).
		Keyword("parentId", c.ParentID).
		Date("created", c.Created).
		Date("modified", c.Modified)
	localize(b, locales, "title", c.Title)
	localize(b, locales, "description", c.Description)
	return b.Build()
}

// Item projects an item with its seller, location and reservations.
// A missing seller or location yields a partial document, not an error.
func Item(r market.ItemRecord, locales locale.Table) (indexable.Document, error) {
	it := r.Item
	b := indexable.NewDocument(indexable.Item, it.ID).
		Keyword("slug", it.Slug).
		Keywords("categories", it.CategoryIDs).
		Keyword("sellerId", it.SellerID).
		Keyword("locationId", it.LocationID).
		Long("price", it.Price).
		Long("remaining", r.Remaining()).
		Bool("published", it.Published).
		Date("created", it.Created).
		Date("modified", it.Modified)
	localize(b, locales, "title", it.Title)
	localize(b, locales, "description", it.Description)

	switch {
	case r.Seller != nil:
		b.Text("sellerName", r.Seller.DisplayName)
	case it.SellerID != "":
		b.Missing(RelationSeller)
	}

	switch {
	case r.Location != nil && r.Location.Coordinates != nil:
		b.Geo("location", geoPoint(r.Location.Coordinates))
	case r.Location != nil:
		b.Missing(RelationCoordinates)
	case it.LocationID != "":
		b.Missing(RelationLocation)
	}

	return b.Build()
}

// Location projects a location; ungeocoded places omit the geo point.
func Location(l market.Location, locales locale.Table) (indexable.Document, error) {
	b := indexable.NewDocument(indexable.Location, l.ID).
		Keyword("slug", l.Slug).
		Keyword("parentId", l.ParentID).
		Geo("location", geoPoint(l.Coordinates)).
		Date("created", l.Created).
		Date("modified", l.Modified)
	if l.Coordinates == nil {
		b.Missing(RelationCoordinates)
	}
	localize(b, locales, "name", l.Name)
	return b.Build()
}

// localize writes one field per supported locale; locales without text stay absent.
func localize(b *indexable.Builder, locales locale.Table, base string, text market.LocalizedText) {
	for _, l := range locales.Locales() {
		b.Text(l.Field(base), text.Get(l.Tag()))
	}
}

func geoPoint(c *market.Coordinates) *indexable.GeoPoint {
	if c == nil {
		return nil
	}
	return &indexable.GeoPoint{Lat: c.Lat, Lon: c.Lon}
}
