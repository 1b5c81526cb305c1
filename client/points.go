package client

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"tsload/ts"
	"tsload/utils"
)

// TimeRange is the wire shape of an optionally bounded time interval
type TimeRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// Point is the wire shape of a single observation
type Point struct {
	Time       time.Time `json:"time"`
	Value      *float64  `json:"value,omitempty"`
	Gap        bool      `json:"gap,omitempty"`
	Grade      *int32    `json:"grade,omitempty"`
	Qualifiers []string  `json:"qualifiers,omitempty"`
}

func toWire(points []ts.Point) []Point {
	wire := make([]Point, 0, len(points))
	for _, p := range points {
		if p.Kind == ts.Gap {
			wire = append(wire, Point{Time: p.Time, Gap: true})
			continue
		}
		value := p.Value
		wire = append(wire, Point{
			Time:       p.Time,
			Value:      &value,
			Grade:      p.Grade,
			Qualifiers: p.Qualifiers,
		})
	}
	return wire
}

func fromWire(wire []Point) []ts.Point {
	points := make([]ts.Point, 0, len(wire))
	for _, w := range wire {
		if w.Gap || w.Value == nil {
			points = append(points, ts.NewGap(w.Time))
			continue
		}
		p := ts.NewValue(w.Time, *w.Value)
		p.Grade = w.Grade
		p.SetQualifiers(w.Qualifiers)
		points = append(points, p)
	}
	return points
}

type appendRequest struct {
	Points    []Point    `json:"points"`
	Overwrite *TimeRange `json:"overwrite,omitempty"`
}

// AppendReceipt identifies a submitted append operation
type AppendReceipt struct {
	AppendID string `json:"append_id"`
}

// AppendStatus reports the progress of an append operation
type AppendStatus struct {
	Complete       bool   `json:"complete"`
	PointsAppended int    `json:"points_appended"`
	Error          string `json:"error,omitempty"`
}

// ResolveSeries resolves a series name to its unique id. Identifiers that
// already are GUIDs are passed through without a round trip.
func (c *Client) ResolveSeries(ctx context.Context, identifier string) (string, error) {
	if _, err := uuid.Parse(identifier); err == nil {
		return identifier, nil
	}

	var resp struct {
		UniqueID string `json:"unique_id"`
	}
	params := url.Values{"identifier": {identifier}}
	if err := c.get(ctx, "/api/v1/series/resolve", params, &resp); err != nil {
		return "", err
	}
	return resp.UniqueID, nil
}

// AppendPoints submits one batch of points for appending, optionally
// overwriting the given time range, and returns the append id to poll
// with AppendStatus
func (c *Client) AppendPoints(ctx context.Context, series string, points []ts.Point, overwrite *TimeRange) (string, error) {
	req := appendRequest{Points: toWire(points), Overwrite: overwrite}

	var resp AppendReceipt
	path := fmt.Sprintf("/api/v1/series/%s/append", url.PathEscape(series))
	if err := c.post(ctx, path, &req, &resp); err != nil {
		return "", err
	}
	return resp.AppendID, nil
}

// GetAppendStatus fetches the completion state of a previously submitted append
func (c *Client) GetAppendStatus(ctx context.Context, appendID string) (*AppendStatus, error) {
	var resp AppendStatus
	path := fmt.Sprintf("/api/v1/appends/%s", url.PathEscape(appendID))
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPoints fetches the points of a series whose times fall within the span,
// the series' full extent when unbounded
func (c *Client) GetPoints(ctx context.Context, series string, span utils.TimeSpan) ([]ts.Point, error) {
	params := url.Values{}
	if span.From != nil {
		params.Set("from", span.From.Format(time.RFC3339Nano))
	}
	if span.To != nil {
		params.Set("to", span.To.Format(time.RFC3339Nano))
	}

	var resp struct {
		Points []Point `json:"points"`
	}
	path := fmt.Sprintf("/api/v1/series/%s/points", url.PathEscape(series))
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	return fromWire(resp.Points), nil
}
