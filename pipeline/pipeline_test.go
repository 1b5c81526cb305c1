package pipeline

import (
	"slices"
	"testing"
	"time"

	"tsload/mapping"
	"tsload/ts"
	"tsload/utils"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(seconds int) time.Time {
	return t0.Add(time.Duration(seconds) * time.Second)
}

func TestDeduplication(t *testing.T) {
	points := []ts.Point{
		ts.NewValue(at(10), 1),
		ts.NewValue(at(10), 2),
		ts.NewValue(at(20), 3),
	}

	out := Apply(points, &Options{Deduplicate: true})

	if len(out) != 2 {
		t.Fatalf("Got %v points, wanted 2", len(out))
	}
	// First occurrence wins
	if out[0].Value != 1 || !out[0].Time.Equal(at(10)) {
		t.Errorf("Got %v at %v, wanted 1 at %v", out[0].Value, out[0].Time, at(10))
	}
	if out[1].Value != 3 {
		t.Errorf("Got %v, wanted 3", out[1].Value)
	}
}

func TestDeduplicationKeepsGaps(t *testing.T) {
	points := []ts.Point{
		ts.NewValue(at(10), 1),
		ts.NewGap(at(10)),
		ts.NewValue(at(10), 2),
	}

	out := Apply(points, &Options{Deduplicate: true})

	// The gap signals a discontinuity, not a measurement, and survives
	// even at a coinciding time
	if len(out) != 2 {
		t.Fatalf("Got %v points, wanted 2", len(out))
	}
	if out[1].Kind != ts.Gap {
		t.Error("The gap point was dropped")
	}
}

func TestRealignment(t *testing.T) {
	points := []ts.Point{
		ts.NewValue(at(100), 1),
		ts.NewValue(at(160), 2),
		ts.NewValue(at(400), 3),
	}

	target := at(0)
	out := Apply(points, &Options{RealignTo: &target})

	expected := []time.Time{at(0), at(60), at(300)}
	for i, want := range expected {
		if !out[i].Time.Equal(want) {
			t.Errorf("Point %d: got %v, wanted %v", i, out[i].Time, want)
		}
	}
}

func TestIgnoreFlags(t *testing.T) {
	p := ts.NewValue(at(0), 1)
	p.SetGrade(10)
	p.SetQualifiers([]string{"A"})

	out := Apply([]ts.Point{p}, &Options{IgnoreGrades: true, IgnoreQualifiers: true})

	if out[0].Grade != nil {
		t.Error("Grade was not stripped")
	}
	if out[0].Qualifiers != nil {
		t.Error("Qualifiers were not stripped")
	}
}

func TestIgnoreRunsBeforeMapping(t *testing.T) {
	grades := mapping.NewGradeMap()
	if err := grades.AddRule(":1"); err != nil {
		t.Fatal(err)
	}

	p := ts.NewValue(at(0), 1)
	p.SetGrade(200)

	// With the grade stripped first, the mapping sees an unlisted source
	// and applies the default
	out := Apply([]ts.Point{p}, &Options{IgnoreGrades: true, Grades: grades})
	if out[0].Grade == nil || *out[0].Grade != 1 {
		t.Errorf("Got %v, wanted the default grade 1", out[0].Grade)
	}
}

func TestApplyZeroOptions(t *testing.T) {
	points := []ts.Point{ts.NewValue(at(10), 1), ts.NewValue(at(10), 1)}

	out := Apply(points, &Options{})
	if len(out) != 2 {
		t.Errorf("Got %v points, wanted the stream untouched", len(out))
	}
}

func TestCollectManual(t *testing.T) {
	interval, err := utils.NewInterval("PT1M")
	if err != nil {
		t.Fatal(err)
	}

	points, err := CollectManual([]string{"1.5", "GAP", "-2"}, t0, interval)
	if err != nil {
		t.Fatal(err)
	}

	if len(points) != 3 {
		t.Fatalf("Got %v points, wanted 3", len(points))
	}

	// The clock advances after every literal, gaps included
	expectedTimes := []time.Time{t0, t0.Add(time.Minute), t0.Add(2 * time.Minute)}
	for i, want := range expectedTimes {
		if !points[i].Time.Equal(want) {
			t.Errorf("Point %d: got %v, wanted %v", i, points[i].Time, want)
		}
	}

	if points[0].Value != 1.5 || points[0].Kind != ts.Value {
		t.Errorf("Got %v, wanted the value 1.5", points[0])
	}
	if points[1].Kind != ts.Gap {
		t.Error("The gap keyword did not produce a gap point")
	}
	if points[2].Value != -2 {
		t.Errorf("Got %v, wanted -2", points[2].Value)
	}
}

func TestCollectManualInvalid(t *testing.T) {
	interval, err := utils.NewInterval("PT1M")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := CollectManual([]string{"1.5", "oops"}, t0, interval); err == nil {
		t.Error("Wanted an error for a non-numeric literal")
	}
}

func TestTransformOrder(t *testing.T) {
	grades := mapping.NewGradeMap()
	if err := grades.AddRule("200,299:5"); err != nil {
		t.Fatal(err)
	}

	qualifiers := mapping.NewQualifierMap()
	if err := qualifiers.AddRule("A:B"); err != nil {
		t.Fatal(err)
	}

	p1 := ts.NewValue(at(100), 1)
	p1.SetGrade(250)
	p1.SetQualifiers([]string{"A"})
	p2 := ts.NewValue(at(100), 2)
	p3 := ts.NewValue(at(160), 3)

	target := at(0)
	out := Apply([]ts.Point{p1, p2, p3}, &Options{
		Grades:      grades,
		Qualifiers:  qualifiers,
		RealignTo:   &target,
		Deduplicate: true,
	})

	if len(out) != 2 {
		t.Fatalf("Got %v points, wanted 2", len(out))
	}
	if out[0].Grade == nil || *out[0].Grade != 5 {
		t.Errorf("Got grade %v, wanted 5", out[0].Grade)
	}
	if !slices.Equal(out[0].Qualifiers, []string{"B"}) {
		t.Errorf("Got qualifiers %v, wanted [B]", out[0].Qualifiers)
	}
	if !out[0].Time.Equal(at(0)) || !out[1].Time.Equal(at(60)) {
		t.Errorf("Realignment ran after dedup: %v, %v", out[0].Time, out[1].Time)
	}
}
