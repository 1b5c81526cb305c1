package pipeline

import (
	"time"

	"tsload/mapping"
	"tsload/ts"
)

// Options selects which transformations run on the collected point stream.
// All fields are optional; the zero value passes points through untouched.
type Options struct {
	// Strip grades/qualifiers from every point before mapping
	IgnoreGrades     bool
	IgnoreQualifiers bool

	Grades     *mapping.GradeMap
	Qualifiers *mapping.QualifierMap

	// Shift all points so the first one lands on this instant,
	// preserving relative spacing
	RealignTo *time.Time

	// Drop value points sharing a time with the previously retained
	// value point, keeping the first occurrence. Gaps are never dropped.
	Deduplicate bool
}

// Apply runs the transformations in fixed order: ignore flags, grade
// mapping, qualifier mapping, realignment, deduplication. The input is
// modified in place and must already be time-ordered where ordering
// matters to the caller; Apply does not sort.
func Apply(points []ts.Point, opts *Options) []ts.Point {
	for i := range points {
		if opts.IgnoreGrades {
			points[i].Grade = nil
		}
		if opts.IgnoreQualifiers {
			points[i].Qualifiers = nil
		}
		if opts.Grades != nil {
			opts.Grades.Apply(&points[i])
		}
		if opts.Qualifiers != nil {
			opts.Qualifiers.Apply(&points[i])
		}
	}

	if opts.RealignTo != nil && len(points) > 0 {
		shift := opts.RealignTo.Sub(points[0].Time)
		for i := range points {
			points[i].Time = points[i].Time.Add(shift)
		}
	}

	if opts.Deduplicate {
		points = dedup(points)
	}

	return points
}

func dedup(points []ts.Point) []ts.Point {
	out := points[:0]
	var lastRetained *time.Time
	for _, p := range points {
		if p.Kind == ts.Value {
			if lastRetained != nil && p.Time.Equal(*lastRetained) {
				continue
			}
			t := p.Time
			lastRetained = &t
		}
		out = append(out, p)
	}
	return out
}
