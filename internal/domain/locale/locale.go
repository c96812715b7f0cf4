// Package locale maps locale tags to the per-locale field suffixes used by indexable documents.
package locale

import (
	"fmt"
	"strings"
)

// Locale is a single supported locale.
type Locale struct {
	tag      string
	suffix   string
	analyzer string
}

// Tag returns the lower-case locale tag, e.g. "fi".
func (l Locale) Tag() string { return l.tag }

// Suffix returns the field-name suffix, e.g. "Fi".
func (l Locale) Suffix() string { return l.suffix }

// Analyzer returns the text analyzer used for fields in this locale.
func (l Locale) Analyzer() string { return l.analyzer }

// Field returns the per-locale field name for base, e.g. Field("title") = "titleFi".
func (l Locale) Field(base string) string { return base + l.suffix }

// Table is an ordered, immutable set of supported locales.
type Table struct {
	locales []Locale
	byTag   map[string]int
}

// Entry is the raw configuration of one locale.
type Entry struct {
	Tag      string
	Suffix   string
	Analyzer string
}

// NewTable validates entries and builds a Table.
// Tags are matched case-insensitively; suffix defaults to the capitalized tag,
// analyzer defaults to the tag.
func NewTable(entries []Entry) (Table, error) {
	if len(entries) == 0 {
		return Table{}, fmt.Errorf("at least one locale is required")
	}
	t := Table{
		locales: make([]Locale, 0, len(entries)),
		byTag:   make(map[string]int, len(entries)),
	}
	suffixes := make(map[string]bool, len(entries))
	for _, e := range entries {
		tag := strings.ToLower(strings.TrimSpace(e.Tag))
		if tag == "" {
			return Table{}, fmt.Errorf("locale tag is required")
		}
		if _, dup := t.byTag[tag]; dup {
			return Table{}, fmt.Errorf("duplicate locale tag %q", tag)
		}
		suffix := e.Suffix
		if suffix == "" {
			suffix = strings.ToUpper(tag[:1]) + tag[1:]
		}
		if suffixes[suffix] {
			return Table{}, fmt.Errorf("duplicate locale suffix %q", suffix)
		}
		suffixes[suffix] = true
		analyzer := e.Analyzer
		if analyzer == "" {
			analyzer = tag
		}
		t.byTag[tag] = len(t.locales)
		t.locales = append(t.locales, Locale{tag: tag, suffix: suffix, analyzer: analyzer})
	}
	return t, nil
}

// Default returns the Finnish/Swedish/English table.
func Default() Table {
	t, err := NewTable([]Entry{
		{Tag: "fi"},
		{Tag: "sv"},
		{Tag: "en"},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// Locales returns the locales in table order.
func (t Table) Locales() []Locale {
	out := make([]Locale, len(t.locales))
	copy(out, t.locales)
	return out
}

// Len returns the number of supported locales.
func (t Table) Len() int { return len(t.locales) }

// Parse resolves a locale tag. Region subtags ("fi-FI", "sv_SE") resolve to their language.
// Unknown tags return false; callers drop such values silently.
func (t Table) Parse(tag string) (Locale, bool) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	idx, ok := t.byTag[tag]
	if !ok {
		return Locale{}, false
	}
	return t.locales[idx], true
}
