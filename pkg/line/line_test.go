package line

import (
	"errors"
	"slices"
	"testing"
)

func TestNew(t *testing.T) {
	l, err := New("2", "Line 2", "green", st("a"), st("b"), 10)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if l.Path().Line() != "2" {
		t.Errorf("Path().Line() = %q, want %q", l.Path().Line(), "2")
	}
	if err := l.AddSection(st("b"), st("c"), 4); err != nil {
		t.Fatalf("AddSection() error: %v", err)
	}
	if err := l.RemoveStation(st("b")); err != nil {
		t.Fatalf("RemoveStation() error: %v", err)
	}

	if got := StationIDs(l.Stations()); !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("Stations() = %v, want [a c]", got)
	}
	if secs := l.Sections(); len(secs) != 1 || secs[0].Distance() != 14 || secs[0].Line() != "2" {
		t.Errorf("Sections() = %v, want [a→c (14)] on line 2", secs)
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New("", "Line", "red", st("a"), st("b"), 1); !errors.Is(err, ErrInvalidLineID) {
		t.Errorf("New() with empty ID error = %v, want %v", err, ErrInvalidLineID)
	}
	if _, err := New("1", "Line", "red", st("a"), st("b"), 0); !errors.Is(err, ErrInvalidDistance) {
		t.Errorf("New() with zero distance error = %v, want %v", err, ErrInvalidDistance)
	}
}

func TestRestore(t *testing.T) {
	l, err := Restore("1", "Line 1", "blue", []Section{
		NewSection("1", st("b"), st("c"), 2),
		NewSection("1", st("a"), st("b"), 1),
	})
	if err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if l.Name != "Line 1" || l.Color != "blue" {
		t.Errorf("metadata = %q/%q, want Line 1/blue", l.Name, l.Color)
	}
	if got := StationIDs(l.Stations()); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("Stations() = %v, want [a b c]", got)
	}

	if _, err := Restore("", "x", "x", nil); !errors.Is(err, ErrInvalidLineID) {
		t.Errorf("Restore() with empty ID error = %v, want %v", err, ErrInvalidLineID)
	}
}

func TestStation(t *testing.T) {
	a := NewStation("a", "Alpha")
	if !a.Equal(NewStation("a", "Other name")) {
		t.Error("stations with the same ID should be equal")
	}
	if a.Equal(NewStation("b", "Alpha")) {
		t.Error("stations with different IDs should differ")
	}
	if a.DisplayName() != "Alpha" {
		t.Errorf("DisplayName() = %q, want Alpha", a.DisplayName())
	}
	if NewStation("b", "").DisplayName() != "b" {
		t.Error("DisplayName() should fall back to the ID")
	}
}
