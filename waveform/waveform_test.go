package waveform

import (
	"math"
	"testing"
	"time"

	"tsload/utils"
)

func minuteInterval(t *testing.T) utils.Interval {
	t.Helper()
	interval, err := utils.NewInterval("PT1M")
	if err != nil {
		t.Fatal(err)
	}
	return interval
}

func TestGenerateCountAndSpacing(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	spec := Spec{
		Shape:            Sine,
		Start:            start,
		Interval:         minuteInterval(t),
		Points:           25,
		SamplesPerPeriod: 360,
		Scalar:           1,
	}

	points, err := Generate(&spec)
	if err != nil {
		t.Fatal(err)
	}

	if len(points) != 25 {
		t.Fatalf("Got %v points, wanted 25", len(points))
	}
	for i, p := range points {
		expected := start.Add(time.Duration(i) * time.Minute)
		if !p.Time.Equal(expected) {
			t.Errorf("Sample %d: got time %v, wanted %v", i, p.Time, expected)
		}
	}
}

func TestGenerateSineValues(t *testing.T) {
	spec := Spec{
		Shape:            Sine,
		Start:            time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:         minuteInterval(t),
		Points:           4,
		SamplesPerPeriod: 4,
		Scalar:           1,
	}

	points, err := Generate(&spec)
	if err != nil {
		t.Fatal(err)
	}

	expected := []float64{0, 1, 0, -1}
	for i, want := range expected {
		if math.Abs(points[i].Value-want) > 1e-9 {
			t.Errorf("Sample %d: got %v, wanted %v", i, points[i].Value, want)
		}
	}
}

func TestGenerateShapes(t *testing.T) {
	type testCase struct {
		shape    Shape
		expected []float64
	}

	cases := []testCase{
		{Square, []float64{1, 1, -1, -1}},
		{Sawtooth, []float64{-1, -0.5, 0, 0.5}},
	}

	for _, c := range cases {
		spec := Spec{
			Shape:            c.shape,
			Start:            time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			Interval:         minuteInterval(t),
			Points:           4,
			SamplesPerPeriod: 4,
			Scalar:           1,
		}

		points, err := Generate(&spec)
		if err != nil {
			t.Fatal(err)
		}

		for i, want := range c.expected {
			if math.Abs(points[i].Value-want) > 1e-9 {
				t.Errorf("Shape %v sample %d: got %v, wanted %v", c.shape, i, points[i].Value, want)
			}
		}
	}
}

func TestGenerateScalarAndOffset(t *testing.T) {
	spec := Spec{
		Shape:            Sine,
		Start:            time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:         minuteInterval(t),
		Points:           2,
		SamplesPerPeriod: 4,
		Scalar:           10,
		Offset:           100,
	}

	points, err := Generate(&spec)
	if err != nil {
		t.Fatal(err)
	}

	// offset + scalar*sin at samples 0 and a quarter period
	if math.Abs(points[0].Value-100) > 1e-9 {
		t.Errorf("Got %v, wanted 100", points[0].Value)
	}
	if math.Abs(points[1].Value-110) > 1e-9 {
		t.Errorf("Got %v, wanted 110", points[1].Value)
	}
}

func TestGeneratePhase(t *testing.T) {
	spec := Spec{
		Shape:            Sine,
		Start:            time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:         minuteInterval(t),
		Points:           1,
		SamplesPerPeriod: 4,
		Scalar:           1,
		Phase:            0.25,
	}

	points, err := Generate(&spec)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(points[0].Value-1) > 1e-9 {
		t.Errorf("Got %v, wanted 1", points[0].Value)
	}
}

func TestGenerateCountFromPeriods(t *testing.T) {
	spec := Spec{
		Shape:            Square,
		Start:            time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:         minuteInterval(t),
		Periods:          2.5,
		SamplesPerPeriod: 4,
		Scalar:           1,
	}

	points, err := Generate(&spec)
	if err != nil {
		t.Fatal(err)
	}

	// Fractional periods truncate to whole samples
	if len(points) != 10 {
		t.Errorf("Got %v points, wanted 10", len(points))
	}
}

func TestGenerateEmpty(t *testing.T) {
	type testCase struct {
		name string
		spec Spec
	}

	cases := []testCase{
		{"zero count", Spec{Shape: Sine, Interval: minuteInterval(t), SamplesPerPeriod: 4}},
		{"zero interval", Spec{Shape: Sine, Points: 10, SamplesPerPeriod: 4}},
		{"empty text path", Spec{Shape: Text, Interval: minuteInterval(t), Points: 10, SamplesPerPeriod: 4, Text: "   "}},
	}

	for _, c := range cases {
		points, err := Generate(&c.spec)
		if err != nil {
			t.Fatal(err)
		}
		if len(points) != 0 {
			t.Errorf("%s: got %v points, wanted none", c.name, len(points))
		}
	}
}

func TestGenerateTextChannels(t *testing.T) {
	spec := Spec{
		Shape:            Text,
		Start:            time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:         minuteInterval(t),
		Points:           4,
		SamplesPerPeriod: 4,
		Scalar:           1,
		Text:             "1",
		Channel:          ChannelY,
	}

	// The glyph for '1' is a single vertical line walked top to bottom
	// over one period
	points, err := Generate(&spec)
	if err != nil {
		t.Fatal(err)
	}

	expectedY := []float64{1, 0.5, 0, -0.5}
	for i, want := range expectedY {
		if math.Abs(points[i].Value-want) > 1e-9 {
			t.Errorf("Y sample %d: got %v, wanted %v", i, points[i].Value, want)
		}
	}

	spec.Channel = ChannelX
	points, err = Generate(&spec)
	if err != nil {
		t.Fatal(err)
	}

	// A vertical stroke has constant x
	wantX := 2*0.6/glyphAdvance - 1
	for i, p := range points {
		if math.Abs(p.Value-wantX) > 1e-9 {
			t.Errorf("X sample %d: got %v, wanted %v", i, p.Value, wantX)
		}
	}
}

func TestParseShape(t *testing.T) {
	type testCase struct {
		input    string
		expected Shape
		ok       bool
	}

	cases := []testCase{
		{"sine", Sine, true},
		{"Square", Square, true},
		{"sawtooth", Sawtooth, true},
		{"text", Text, true},
		{"triangle", 0, false},
		{"", 0, false},
	}

	for _, c := range cases {
		shape, err := ParseShape(c.input)
		if c.ok != (err == nil) {
			t.Errorf("%q: got error %v", c.input, err)
			continue
		}
		if c.ok && shape != c.expected {
			t.Errorf("%q: got %v, wanted %v", c.input, shape, c.expected)
		}
	}
}
