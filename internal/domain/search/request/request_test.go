package request

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/marketindex/internal/domain"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/domain/search/sortkey"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New(indexable.Item)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Type() != indexable.Item {
		t.Errorf("Type() = %q", r.Type())
	}
	if r.Text() != "" {
		t.Errorf("Text() = %q", r.Text())
	}
	if r.Offset() != 0 {
		t.Errorf("Offset() = %d", r.Offset())
	}
	if r.Limit() != DefaultLimit {
		t.Errorf("Limit() = %d, want %d", r.Limit(), DefaultLimit)
	}
	if len(r.Sort()) != 0 {
		t.Errorf("Sort() = %v", r.Sort())
	}
	if !r.Criteria().IsZero() {
		t.Error("expected zero criteria")
	}
}

func TestNew_ExplicitValues(t *testing.T) {
	r, err := New(indexable.Item,
		WithText("bike"),
		WithCriteria(Criteria{CategoryIDs: []string{"x"}}),
		WithSort("created_asc", "relevance_desc"),
		WithOffset(40),
		WithLimit(500),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Text() != "bike" {
		t.Errorf("Text() = %q", r.Text())
	}
	if r.Offset() != 40 {
		t.Errorf("Offset() = %d", r.Offset())
	}
	if r.Limit() != 500 {
		t.Errorf("Limit() = %d, no maximum expected", r.Limit())
	}
	if len(r.Sort()) != 2 || r.Sort()[0] != sortkey.CreatedAsc || r.Sort()[1] != sortkey.RelevanceDesc {
		t.Errorf("Sort() = %v", r.Sort())
	}
	if r.Criteria().IsZero() {
		t.Error("expected criteria")
	}
}

func TestNew_NegativeClamped(t *testing.T) {
	r, err := New(indexable.Category, WithOffset(-5), WithLimit(-1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Offset() != 0 || r.Limit() != 0 {
		t.Errorf("offset=%d limit=%d, want 0/0", r.Offset(), r.Limit())
	}
}

func TestNew_InvalidSort(t *testing.T) {
	_, err := New(indexable.Item, WithSort("created_asc", "price_desc"))
	if !errors.Is(err, domain.ErrInvalidSort) {
		t.Fatalf("expected ErrInvalidSort, got %v", err)
	}
}

func TestNew_TextTooLong(t *testing.T) {
	_, err := New(indexable.Item, WithText(strings.Repeat("x", MaxQueryLength+1)))
	if !errors.Is(err, domain.ErrQuery) {
		t.Fatalf("expected ErrQuery, got %v", err)
	}
}

func TestNew_TypeRequired(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error")
	}
}

func TestCriteria_IsZero(t *testing.T) {
	tests := []struct {
		name string
		c    Criteria
		want bool
	}{
		{"empty", Criteria{}, true},
		{"empty category list", Criteria{CategoryIDs: []string{}}, true},
		{"parent", Criteria{ParentID: "p"}, false},
		{"near", Criteria{Near: &Near{Lat: 1, Lon: 2, RadiusKm: 3}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.IsZero(); got != tt.want {
				t.Errorf("IsZero() = %v, want %v", got, tt.want)
			}
		})
	}
}
