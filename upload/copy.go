package upload

import (
	"context"
	"fmt"
	"log/slog"

	"tsload/client"
	"tsload/ts"
	"tsload/utils"
)

// SourceSpec identifies an existing series to copy points from, optionally
// on a different server with different credentials
type SourceSpec struct {
	Series string
	Server string
	Token  string
	Span   utils.TimeSpan
}

// fetchSourcePoints resolves the source series and fetches its points
// within the configured span, the full extent when unbounded. The primary
// client is reused unless the spec names its own server.
func fetchSourcePoints(ctx context.Context, primary *client.Client, spec *SourceSpec) ([]ts.Point, error) {
	c := primary
	if spec.Server != "" {
		var opts []client.Option
		if spec.Token != "" {
			opts = append(opts, client.WithToken(spec.Token))
		}
		c = client.New(spec.Server, opts...)
	}

	series, err := c.ResolveSeries(ctx, spec.Series)
	if err != nil {
		return nil, fmt.Errorf("could not resolve source series %q: %w", spec.Series, err)
	}

	points, err := c.GetPoints(ctx, series, spec.Span)
	if err != nil {
		return nil, fmt.Errorf("could not fetch source series %q: %w", spec.Series, err)
	}

	slog.Info(fmt.Sprintf("Copied %d points from source series %q", len(points), spec.Series))
	return points, nil
}
