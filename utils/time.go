package utils

import (
	"fmt"
	"time"

	"github.com/rickb777/period"
)

// Accepted timestamp layouts, tried in order
var LAYOUTS = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// Parses a timestamp in one of the accepted layouts. Timestamps without an
// explicit zone are taken as UTC.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range LAYOUTS {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse timestamp %q, accepted layouts: %v", s, LAYOUTS)
}

// Parses a time of day ("15:04" or "15:04:05")
func ParseTimeOfDay(s string) (time.Time, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse time of day %q", s)
}

// Timestamp is a command line flag that accepts the layouts in LAYOUTS
type Timestamp struct {
	t time.Time
}

func (ts *Timestamp) UnmarshalText(b []byte) error {
	t, err := ParseTime(string(b))
	if err != nil {
		return err
	}
	ts.t = t
	return nil
}

func (ts *Timestamp) Inner() *time.Time {
	if ts == nil {
		return nil
	}
	return &ts.t
}

func (ts *Timestamp) Time() time.Time {
	return ts.t
}

// Interval is a command line flag holding an ISO-8601 duration ("PT15M")
type Interval struct {
	p period.Period
}

func NewInterval(s string) (Interval, error) {
	p, err := period.Parse(s)
	if err != nil {
		return Interval{}, err
	}
	return Interval{p: p}, nil
}

func (i *Interval) UnmarshalText(b []byte) error {
	p, err := period.Parse(string(b))
	if err != nil {
		return err
	}
	i.p = p
	return nil
}

func (i Interval) IsZero() bool {
	return i.p.IsZero()
}

func (i Interval) String() string {
	return i.p.String()
}

// Shifts t forward by the interval
func (i Interval) AddTo(t time.Time) (time.Time, error) {
	shifted, ok := i.p.AddTo(t)
	if !ok {
		return t, fmt.Errorf("could not add period %s to %s", i.p, t)
	}
	return shifted, nil
}

type TimeSpan struct {
	From *time.Time
	To   *time.Time
}

func NewTimeSpan(from, to *Timestamp) TimeSpan {
	return TimeSpan{From: from.Inner(), To: to.Inner()}
}

// Checks that the bounds are in order, when both are present
func (t *TimeSpan) Valid() bool {
	if t.From == nil || t.To == nil {
		return true
	}
	return !t.From.After(*t.To)
}
