package ingest

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"tsload/ts"
	"tsload/utils"
)

// RowError is a parse failure in a single row of the input file
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// ReadPoints parses a delimited byte stream into points according to the
// format. Rows are returned in the order they are encountered, without
// sorting. The second return value counts malformed rows that were skipped,
// which is only nonzero when format.IgnoreInvalid is set; otherwise the
// first malformed row fails the whole ingestion with a RowError.
func ReadPoints(r io.Reader, format *Format) ([]ts.Point, int, error) {
	scanner := bufio.NewScanner(r)

	var points []ts.Point
	var line, skipped int
	for scanner.Scan() {
		line++
		if line <= format.SkipRows {
			continue
		}

		trimmed := strings.TrimSpace(scanner.Text())
		if trimmed == "" {
			continue
		}
		if format.Comment != "" && strings.HasPrefix(trimmed, format.Comment) {
			continue
		}

		point, err := format.parseRow(strings.Split(scanner.Text(), format.Delimiter))
		if err != nil {
			if format.IgnoreInvalid {
				slog.Warn(fmt.Sprintf("Skipping row %d: %s", line, err))
				skipped++
				continue
			}
			return nil, 0, &RowError{Line: line, Err: err}
		}
		points = append(points, point)
	}

	return points, skipped, scanner.Err()
}

func (f *Format) parseRow(fields []string) (ts.Point, error) {
	obstime, err := f.parseObstime(fields)
	if err != nil {
		return ts.Point{}, err
	}

	value, err := field(fields, f.ValueCol)
	if err != nil {
		return ts.Point{}, err
	}
	if value == f.NanToken {
		return ts.NewGap(obstime), nil
	}

	number, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return ts.Point{}, fmt.Errorf("value %q is not a number", value)
	}
	point := ts.NewValue(obstime, number)

	if f.GradeCol != 0 {
		grade, err := field(fields, f.GradeCol)
		if err != nil {
			return ts.Point{}, err
		}
		if grade != "" {
			code, err := strconv.ParseInt(grade, 10, 32)
			if err != nil {
				return ts.Point{}, fmt.Errorf("grade %q is not an integer", grade)
			}
			point.SetGrade(int32(code))
		}
	}

	if f.QualifiersCol != 0 {
		qualifiers, err := field(fields, f.QualifiersCol)
		if err != nil {
			return ts.Point{}, err
		}
		if qualifiers != "" {
			sep := f.QualifierSep
			if sep == "" {
				sep = ts.QUALIFIER_SEP
			}
			point.SetQualifiers(strings.Split(qualifiers, sep))
		}
	}

	return point, nil
}

func (f *Format) parseObstime(fields []string) (time.Time, error) {
	if f.DateTimeCol != 0 {
		datetime, err := field(fields, f.DateTimeCol)
		if err != nil {
			return time.Time{}, err
		}
		if f.DateTimeLayout != "" {
			obstime, err := time.Parse(f.DateTimeLayout, datetime)
			if err != nil {
				return time.Time{}, fmt.Errorf("timestamp %q does not match layout %q", datetime, f.DateTimeLayout)
			}
			return obstime, nil
		}
		return utils.ParseTime(datetime)
	}

	date, err := field(fields, f.DateCol)
	if err != nil {
		return time.Time{}, err
	}
	day, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q does not match layout %q", date, time.DateOnly)
	}

	timeOfDay := f.DefaultTime
	if f.TimeCol != 0 {
		s, err := field(fields, f.TimeCol)
		if err != nil {
			return time.Time{}, err
		}
		if s != "" {
			timeOfDay = s
		}
	}
	if timeOfDay == "" {
		return day, nil
	}

	clock, err := utils.ParseTimeOfDay(timeOfDay)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(clock.Hour())*time.Hour +
		time.Duration(clock.Minute())*time.Minute +
		time.Duration(clock.Second())*time.Second), nil
}

func field(fields []string, col int) (string, error) {
	if col < 1 || col > len(fields) {
		return "", fmt.Errorf("column %d out of range, the row has %d fields", col, len(fields))
	}
	return strings.TrimSpace(fields[col-1]), nil
}
