package ingest

import (
	"errors"
	"fmt"

	"tsload/utils"
)

// Format describes how rows of a delimited file map to points.
// Column indices are 1-based, zero meaning the column is not present.
type Format struct {
	// Combined date and time column, mutually exclusive with DateCol/TimeCol
	DateTimeCol int
	// Go layout for DateTimeCol. When empty the layouts in utils.LAYOUTS
	// are tried in order.
	DateTimeLayout string
	// Date-only column, combined with TimeCol or DefaultTime
	DateCol int
	// Time-only column. When absent or empty, DefaultTime is used.
	TimeCol int
	// Time of day ("06:00:00") assumed when only a date is present
	DefaultTime string

	ValueCol      int
	GradeCol      int
	QualifiersCol int

	// Lines starting with this prefix are skipped
	Comment string
	// Number of leading rows to skip
	SkipRows int
	// Field separator, single byte
	Delimiter string
	// Separator between qualifiers within the qualifiers column
	QualifierSep string
	// Token representing a missing value; such rows become gap points
	NanToken string

	// Skip and count malformed rows instead of failing the ingestion
	IgnoreInvalid bool
}

func (f *Format) Validate() error {
	if f.DateTimeCol != 0 && (f.DateCol != 0 || f.TimeCol != 0) {
		return errors.New("the combined datetime column and the date/time column pair are mutually exclusive")
	}
	if f.DateTimeCol == 0 && f.DateCol == 0 {
		return errors.New("either a datetime column or a date column is required")
	}
	if f.ValueCol == 0 {
		return errors.New("a value column is required")
	}
	if f.SkipRows < 0 {
		return errors.New("the number of rows to skip cannot be negative")
	}
	if len(f.Delimiter) != 1 {
		return fmt.Errorf("the delimiter only accepts single-byte characters, got %q", f.Delimiter)
	}
	if f.DefaultTime != "" {
		if _, err := utils.ParseTimeOfDay(f.DefaultTime); err != nil {
			return err
		}
	}
	return nil
}
