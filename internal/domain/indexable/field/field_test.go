package field

import (
	"strings"
	"testing"
)

func TestNew_Valid(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
	}{
		{"slug", Keyword},
		{"titleFi", Text},
		{"created", Date},
		{"price", Long},
		{"published", Boolean},
		{"location", GeoPoint},
		{strings.Repeat("x", 64), Keyword},
		{"with_underscore", Keyword},
	}

	for _, tt := range tests {
		d, err := New(tt.name, tt.kind)
		if err != nil {
			t.Errorf("New(%q, %q) unexpected error: %v", tt.name, tt.kind, err)
			continue
		}
		if d.Name() != tt.name {
			t.Errorf("Name() = %q, want %q", d.Name(), tt.name)
		}
		if d.Kind() != tt.kind {
			t.Errorf("Kind() = %q, want %q", d.Kind(), tt.kind)
		}
		if !d.Indexed() {
			t.Errorf("%q: expected indexed by default", tt.name)
		}
		if d.Stored() {
			t.Errorf("%q: expected not stored by default", tt.name)
		}
	}
}

func TestNew_Options(t *testing.T) {
	d, err := New("titleSv", Text, Analyzer("sv"), Stored())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Analyzer() != "sv" || !d.Stored() || !d.Indexed() {
		t.Errorf("unexpected descriptor: %+v", d)
	}

	d, err = New("modified", Date, Stored(), NotIndexed())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Indexed() || !d.Stored() {
		t.Errorf("unexpected descriptor: %+v", d)
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		kind    Kind
		opts    []Option
		wantErr string
	}{
		{"empty name", "", Keyword, nil, "required"},
		{"too long", strings.Repeat("x", 65), Keyword, nil, "too long"},
		{"reserved", "__score", Keyword, nil, "reserved"},
		{"invalid chars", "title.fi", Text, nil, "invalid characters"},
		{"bad kind", "x", Kind("vector"), nil, "invalid field kind"},
		{"analyzer on keyword", "slug", Keyword, []Option{Analyzer("fi")}, "only valid on text"},
		{"neither indexed nor stored", "x", Long, []Option{NotIndexed()}, "neither"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.field, tt.kind, tt.opts...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestMustNew_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustNew("", Keyword)
}
