package result

import "testing"

func TestNew(t *testing.T) {
	r := New([]string{"a", "b"}, 7)

	if r.Len() != 2 {
		t.Errorf("Len() = %d", r.Len())
	}
	if r.IDs()[0] != "a" || r.IDs()[1] != "b" {
		t.Errorf("IDs() = %v", r.IDs())
	}
	if r.Total() != 7 {
		t.Errorf("Total() = %d", r.Total())
	}
}

func TestEmpty(t *testing.T) {
	r := Empty()
	if r.IDs() == nil {
		t.Error("IDs() should be non-nil for JSON encoding")
	}
	if r.Len() != 0 || r.Total() != 0 {
		t.Errorf("Empty() = %v/%d", r.IDs(), r.Total())
	}
}
