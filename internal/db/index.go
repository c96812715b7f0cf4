package db

import (
	"errors"
	"strconv"
)

// IndexFieldType enumerates engine-neutral index field types.
type IndexFieldType int

const (
	// IndexFieldText is an analyzed full-text field.
	IndexFieldText IndexFieldType = iota
	// IndexFieldTag is an exact-match keyword field, possibly multi-valued.
	IndexFieldTag
	// IndexFieldNumeric is an integer field.
	IndexFieldNumeric
	// IndexFieldDate is a timestamp field.
	IndexFieldDate
	// IndexFieldBool is a boolean field.
	IndexFieldBool
	// IndexFieldGeo is a latitude/longitude point.
	IndexFieldGeo
)

func (t IndexFieldType) String() string {
	switch t {
	case IndexFieldText:
		return "TEXT"
	case IndexFieldTag:
		return "TAG"
	case IndexFieldNumeric:
		return "NUMERIC"
	case IndexFieldDate:
		return "DATE"
	case IndexFieldBool:
		return "BOOL"
	case IndexFieldGeo:
		return "GEO"
	}
	return "UNKNOWN(" + strconv.Itoa(int(t)) + ")"
}

// TagSeparator joins multi-valued tags on engines that store them as one string.
const TagSeparator = ","

// IndexField describes a single field in an index schema.
type IndexField struct {
	Name string
	Type IndexFieldType

	// Analyzer names the language analyzer of a text field; empty means the engine default.
	Analyzer string
	// Sortable keeps the value available for sorting.
	Sortable bool
	// NoIndex excludes the field from filtering and matching. Only meaningful with Sortable.
	NoIndex bool
}

// IndexDefinition is a complete index definition.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool)
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return errors.New("field name is required at index " + strconv.Itoa(i))
		}
		if seen[f.Name] {
			return errors.New("duplicate field name: " + f.Name)
		}
		seen[f.Name] = true

		if f.Analyzer != "" && f.Type != IndexFieldText {
			return errors.New("analyzer is only valid on text fields: " + f.Name)
		}
		if f.NoIndex && !f.Sortable {
			return errors.New("field neither indexed nor sortable: " + f.Name)
		}
	}

	return nil
}

// Field returns the named field.
func (idx *IndexDefinition) Field(name string) (IndexField, bool) {
	for _, f := range idx.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return IndexField{}, false
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == ':' || r == '-'
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}
