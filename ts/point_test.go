package ts

import (
	"slices"
	"testing"
	"time"
)

func TestAddQualifier(t *testing.T) {
	p := NewValue(time.Now(), 1)

	p.AddQualifier("A")
	p.AddQualifier("B")
	p.AddQualifier("A")
	p.AddQualifier("")

	// Insertion order preserved, duplicates and empties dropped
	if !slices.Equal(p.Qualifiers, []string{"A", "B"}) {
		t.Errorf("Got %v, wanted [A B]", p.Qualifiers)
	}
}

func TestSetQualifiers(t *testing.T) {
	p := NewValue(time.Now(), 1)
	p.SetQualifiers([]string{"X", "Y", "X"})

	if !slices.Equal(p.Qualifiers, []string{"X", "Y"}) {
		t.Errorf("Got %v, wanted [X Y]", p.Qualifiers)
	}

	p.SetQualifiers(nil)
	if p.Qualifiers != nil {
		t.Errorf("Got %v, wanted no qualifiers", p.Qualifiers)
	}
}

func TestNewGap(t *testing.T) {
	p := NewGap(time.Now())
	if p.Kind != Gap || p.Grade != nil || p.Qualifiers != nil {
		t.Errorf("Got %v, wanted a bare gap point", p)
	}
}
