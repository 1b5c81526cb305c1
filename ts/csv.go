package ts

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
)

// Token written in the value column for gap points
const GAP_MARKER string = "gap"

// Separator used to join multiple qualifiers inside the qualifiers column
const QUALIFIER_SEP string = "+"

// Struct representing a single record in the output CSV file
type Record struct {
	Time       string `csv:"time"`
	Value      string `csv:"value"`
	Grade      string `csv:"grade"`
	Qualifiers string `csv:"qualifiers"`
}

func toRecord(p *Point) Record {
	record := Record{Time: p.Time.Format(time.RFC3339Nano)}

	if p.Kind == Gap {
		record.Value = GAP_MARKER
		return record
	}

	record.Value = strconv.FormatFloat(p.Value, 'f', -1, 64)
	if p.Grade != nil {
		record.Grade = strconv.FormatInt(int64(*p.Grade), 10)
	}
	record.Qualifiers = strings.Join(p.Qualifiers, QUALIFIER_SEP)
	return record
}

// Writes points as (time | value | grade | qualifiers) rows with a header.
// Timestamps are RFC 3339, gaps are marked with GAP_MARKER in the value column.
func WriteCSV(w io.Writer, points []Point, sep rune) error {
	records := make([]Record, 0, len(points))
	for i := range points {
		records = append(records, toRecord(&points[i]))
	}

	writer := csv.NewWriter(w)
	writer.Comma = sep
	return gocsv.MarshalCSV(&records, gocsv.NewSafeCSVWriter(writer))
}
