package filter

import (
	"fmt"
	"math"
)

// MaxConditions is the maximum number of conditions per expression.
const MaxConditions = 32

// MaxValuesPerCondition caps the values of one any-of match.
const MaxValuesPerCondition = 64

// Expression is a conjunction of conditions. An empty expression matches everything.
type Expression struct {
	must []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must ...Condition) (Expression, error) {
	if len(must) > MaxConditions {
		return Expression{}, fmt.Errorf("too many conditions (max %d)", MaxConditions)
	}
	return Expression{must: must}, nil
}

// Must returns the conditions that all have to hold.
func (e Expression) Must() []Condition { return e.must }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.must) == 0 }

// Keys returns the field names the expression references, in order.
func (e Expression) Keys() []string {
	keys := make([]string, 0, len(e.must))
	for _, c := range e.must {
		keys = append(keys, c.key)
	}
	return keys
}

// Condition is a single filter clause: an exact keyword match or a geo radius.
type Condition struct {
	key    string
	values []string
	geo    *Geo
}

// NewMatch creates an exact keyword condition. Several values match if any one does.
func NewMatch(key string, values ...string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if len(values) == 0 {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	if len(values) > MaxValuesPerCondition {
		return Condition{}, fmt.Errorf("too many values for key %q (max %d)", key, MaxValuesPerCondition)
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if v == "" {
			return Condition{}, fmt.Errorf("empty match value for key %q", key)
		}
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return Condition{key: key, values: out}, nil
}

// NewGeoRadius creates a condition matching points within g.
func NewGeoRadius(key string, g Geo) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, geo: &g}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Values returns the accepted values of a match condition.
func (c Condition) Values() []string { return c.values }

// Geo returns the radius of a geo condition.
func (c Condition) Geo() *Geo { return c.geo }

// IsMatch reports whether this is a match condition.
func (c Condition) IsMatch() bool { return len(c.values) > 0 }

// IsGeo reports whether this is a geo radius condition.
func (c Condition) IsGeo() bool { return c.geo != nil }

// Geo is a circle on the WGS84 sphere.
type Geo struct {
	lat      float64
	lon      float64
	radiusKm float64
}

// NewGeo validates coordinates and a positive radius in kilometres.
func NewGeo(lat, lon, radiusKm float64) (Geo, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return Geo{}, fmt.Errorf("latitude must be between -90 and 90")
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return Geo{}, fmt.Errorf("longitude must be between -180 and 180")
	}
	if math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) || radiusKm <= 0 {
		return Geo{}, fmt.Errorf("radius must be positive")
	}
	return Geo{lat: lat, lon: lon, radiusKm: radiusKm}, nil
}

// Lat returns the centre latitude.
func (g Geo) Lat() float64 { return g.lat }

// Lon returns the centre longitude.
func (g Geo) Lon() float64 { return g.lon }

// RadiusKm returns the radius in kilometres.
func (g Geo) RadiusKm() float64 { return g.radiusKm }
