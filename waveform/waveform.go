package waveform

import (
	"fmt"
	"math"
	"strings"
	"time"

	"tsload/ts"
	"tsload/utils"
)

type Shape int

const (
	Sine Shape = iota
	Square
	Sawtooth
	Text
)

func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(s) {
	case "sine":
		return Sine, nil
	case "square":
		return Square, nil
	case "sawtooth":
		return Sawtooth, nil
	case "text":
		return Text, nil
	default:
		return 0, fmt.Errorf("unknown waveform shape %q, valid choices: [sine, square, sawtooth, text]", s)
	}
}

// Channel selects which coordinate of a glyph path the Text shape emits
type Channel int

const (
	ChannelX Channel = iota
	ChannelY
)

func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(s) {
	case "x", "horizontal":
		return ChannelX, nil
	case "y", "vertical":
		return ChannelY, nil
	default:
		return 0, fmt.Errorf("unknown waveform channel %q, valid choices: [x, y]", s)
	}
}

// Spec holds the generation parameters for a synthetic point sequence
type Spec struct {
	Shape    Shape
	Start    time.Time
	Interval utils.Interval
	// Total number of samples. When zero, the count is derived from
	// Periods * SamplesPerPeriod, truncated to whole samples.
	Points           int
	Periods          float64
	SamplesPerPeriod float64
	// Amplitude multiplier
	Scalar float64
	// Vertical offset added to every sample
	Offset float64
	// Phase offset as a fraction of a period
	Phase float64
	// String rendered by the Text shape
	Text    string
	Channel Channel
}

func (spec *Spec) count() int {
	if spec.Points > 0 {
		return spec.Points
	}
	if spec.Periods <= 0 || spec.SamplesPerPeriod <= 0 {
		return 0
	}
	return int(spec.Periods * spec.SamplesPerPeriod)
}

// Generate produces the finite sample sequence described by spec.
// Sample i lands at Start + i*Interval and evaluates the shape at the period
// fraction i/SamplesPerPeriod + Phase. A zero interval or a zero sample count
// yields an empty sequence, not an error.
func Generate(spec *Spec) ([]ts.Point, error) {
	n := spec.count()
	if n <= 0 || spec.Interval.IsZero() {
		return nil, nil
	}

	var path *glyphPath
	if spec.Shape == Text {
		path = newGlyphPath(spec.Text)
		if path.empty() {
			return nil, nil
		}
	}

	points := make([]ts.Point, 0, n)
	clock := spec.Start
	for i := 0; i < n; i++ {
		frac := spec.Phase
		if spec.SamplesPerPeriod > 0 {
			frac += float64(i) / spec.SamplesPerPeriod
		}
		// Wrap to a single period
		frac -= math.Floor(frac)

		var v float64
		switch spec.Shape {
		case Sine:
			v = math.Sin(2 * math.Pi * frac)
		case Square:
			if frac < 0.5 {
				v = 1
			} else {
				v = -1
			}
		case Sawtooth:
			v = 2*frac - 1
		case Text:
			v = path.sample(frac, spec.Channel)
		}

		points = append(points, ts.NewValue(clock, spec.Offset+spec.Scalar*v))

		next, err := spec.Interval.AddTo(clock)
		if err != nil {
			return nil, err
		}
		clock = next
	}

	return points, nil
}
