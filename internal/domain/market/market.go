// Package market holds the primary-store entities of the classifieds catalogue.
package market

import (
	"fmt"
	"time"
)

// LocalizedText maps locale tags to values. Only tags the locale table accepts are kept.
type LocalizedText map[string]string

// Get returns the value for tag, empty when absent.
func (t LocalizedText) Get(tag string) string {
	if t == nil {
		return ""
	}
	return t[tag]
}

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Lat float64
	Lon float64
}

// NewCoordinates validates latitude in [-90,90] and longitude in [-180,180].
func NewCoordinates(lat, lon float64) (Coordinates, error) {
	if !ValidateCoordinates(lat, lon) {
		return Coordinates{}, fmt.Errorf("coordinates out of range: lat=%g lon=%g", lat, lon)
	}
	return Coordinates{Lat: lat, Lon: lon}, nil
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Category is a node of the category tree.
type Category struct {
	ID          string
	ParentID    string
	Slug        string
	Title       LocalizedText
	Description LocalizedText
	Created     time.Time
	Modified    time.Time
}

// Location is a named place; Coordinates is nil when the place has not been geocoded.
type Location struct {
	ID          string
	ParentID    string
	Slug        string
	Name        LocalizedText
	Coordinates *Coordinates
	Created     time.Time
	Modified    time.Time
}

// User is the seller reference denormalized into items.
type User struct {
	ID          string
	DisplayName string
}

// Item is a listed classified.
type Item struct {
	ID          string
	Slug        string
	Title       LocalizedText
	Description LocalizedText
	CategoryIDs []string
	SellerID    string
	LocationID  string
	Price       int64 // cents
	Quantity    int64
	Published   bool
	Created     time.Time
	Modified    time.Time
}

// ItemRecord is an item together with the related records needed to project it.
// Seller and Location are nil when the reference is unset or dangling.
type ItemRecord struct {
	Item     Item
	Seller   *User
	Location *Location
	Reserved int64
}

// Remaining returns the unreserved quantity, never negative.
func (r ItemRecord) Remaining() int64 {
	if n := r.Item.Quantity - r.Reserved; n > 0 {
		return n
	}
	return 0
}
