package field

import "fmt"

// Kind is the wire type of an indexed attribute.
type Kind string

// Kind constants.
const (
	// Text is analyzed full-text.
	Text Kind = "text"
	// Keyword is an exact-match token (or list of tokens).
	Keyword  Kind = "keyword"
	Date     Kind = "date"
	Long     Kind = "long"
	Boolean  Kind = "boolean"
	GeoPoint Kind = "geo_point"
)

// IsValid reports whether k is a supported kind.
func (k Kind) IsValid() bool {
	switch k {
	case Text, Keyword, Date, Long, Boolean, GeoPoint:
		return true
	}
	return false
}

var reservedNames = map[string]bool{
	"__key": true, "__score": true, "_all": true, "_id": true, "_score": true,
}

// Descriptor is an immutable value object describing one attribute of an indexable type.
type Descriptor struct {
	name     string
	kind     Kind
	analyzer string
	stored   bool
	indexed  bool
}

// Option tunes a Descriptor at construction time.
type Option func(*Descriptor)

// Analyzer sets the text analyzer (locale tag or engine analyzer name). Text only.
func Analyzer(a string) Option {
	return func(d *Descriptor) { d.analyzer = a }
}

// Stored marks the attribute as stored (retrievable and sortable).
func Stored() Option {
	return func(d *Descriptor) { d.stored = true }
}

// NotIndexed excludes the attribute from query evaluation.
func NotIndexed() Option {
	return func(d *Descriptor) { d.indexed = false }
}

// New validates and creates a Descriptor. Attributes are indexed unless NotIndexed is given.
// Name must be a non-empty identifier of at most 64 chars and not reserved.
func New(name string, kind Kind, opts ...Option) (Descriptor, error) {
	if name == "" {
		return Descriptor{}, fmt.Errorf("field name is required")
	}
	if len(name) > 64 {
		return Descriptor{}, fmt.Errorf("field name %q too long (max 64)", name)
	}
	if reservedNames[name] {
		return Descriptor{}, fmt.Errorf("field name %q is reserved", name)
	}
	for _, r := range name {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !isAlpha && !isDigit && r != '_' {
			return Descriptor{}, fmt.Errorf("field name %q contains invalid characters", name)
		}
	}
	if !kind.IsValid() {
		return Descriptor{}, fmt.Errorf("invalid field kind %q for %q", kind, name)
	}

	d := Descriptor{name: name, kind: kind, indexed: true}
	for _, opt := range opts {
		opt(&d)
	}
	if d.analyzer != "" && kind != Text {
		return Descriptor{}, fmt.Errorf("analyzer is only valid on text fields, %q is %s", name, kind)
	}
	if !d.indexed && !d.stored {
		return Descriptor{}, fmt.Errorf("field %q is neither indexed nor stored", name)
	}
	return d, nil
}

// MustNew calls New and panics on error. For static schema tables.
func MustNew(name string, kind Kind, opts ...Option) Descriptor {
	d, err := New(name, kind, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// Name returns the attribute name.
func (d Descriptor) Name() string { return d.name }

// Kind returns the wire type.
func (d Descriptor) Kind() Kind { return d.kind }

// Analyzer returns the analyzer tag, empty for the engine default.
func (d Descriptor) Analyzer() string { return d.analyzer }

// Stored reports whether the attribute is stored (usable for sorting).
func (d Descriptor) Stored() bool { return d.stored }

// Indexed reports whether the attribute can be queried.
func (d Descriptor) Indexed() bool { return d.indexed }
