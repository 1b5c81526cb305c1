package ts

import (
	"slices"
	"time"
)

// Kind discriminates measurements from explicit breaks in the record
type Kind int

const (
	Value Kind = iota
	Gap
)

// Point is a single timestamped observation, or an explicit gap marking a
// discontinuity in the record. Gap points carry no value, grade or qualifiers.
type Point struct {
	Time  time.Time
	Value float64
	// Optional quality code
	Grade *int32
	// Short annotation codes, insertion order preserved
	Qualifiers []string
	Kind       Kind
}

func NewValue(t time.Time, value float64) Point {
	return Point{Time: t, Value: value, Kind: Value}
}

func NewGap(t time.Time) Point {
	return Point{Time: t, Kind: Gap}
}

func (p *Point) SetGrade(grade int32) {
	p.Grade = &grade
}

// Appends a qualifier, keeping insertion order and dropping duplicates
func (p *Point) AddQualifier(q string) {
	if q == "" || slices.Contains(p.Qualifiers, q) {
		return
	}
	p.Qualifiers = append(p.Qualifiers, q)
}

// Replaces the qualifier set, deduplicating while preserving order
func (p *Point) SetQualifiers(qs []string) {
	p.Qualifiers = nil
	for _, q := range qs {
		p.AddQualifier(q)
	}
}
