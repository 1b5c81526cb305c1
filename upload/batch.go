package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"tsload/client"
	"tsload/ts"
	"tsload/utils"
)

// Interval between completion polls when waiting for the store
const POLL_INTERVAL = 2 * time.Second

// BatchPolicy bounds the delivery of the final point stream
type BatchPolicy struct {
	// Maximum number of points per append request
	Size int
	// Block until the store reports every append complete
	Wait bool
	// Deadline for the completion wait
	Timeout time.Duration
}

// Result reports what a delivery run achieved. On a batch failure it still
// carries the counts for the batches the store already accepted.
type Result struct {
	PointsSent int
	Batches    int
	AppendIDs  []string
	// Filled by the completion wait
	PointsAppended int
	Complete       bool
	TimedOut       bool
}

// AppendAll partitions points into consecutive batches no larger than the
// policy size and submits them in order, one append request per batch.
// A failed batch stops submission of the remaining ones. Zero points is a
// legal no-op: no request is made.
func AppendAll(ctx context.Context, c *client.Client, series string, points []ts.Point, overwrite *client.TimeRange, policy BatchPolicy) (*Result, error) {
	result := &Result{}
	if len(points) == 0 {
		slog.Info("No points to deliver")
		return result, nil
	}
	if policy.Size <= 0 {
		return nil, errors.New("batch size must be positive")
	}

	ranges := batchRanges(points, overwrite, policy.Size)

	bar := utils.NewBar(len(points), series)
	bar.RenderBlank()
	for start := 0; start < len(points); start += policy.Size {
		end := min(start+policy.Size, len(points))
		batch := points[start:end]

		appendID, err := c.AppendPoints(ctx, series, batch, ranges[result.Batches])
		if err != nil {
			return result, fmt.Errorf("batch %d rejected after %d points accepted: %w",
				result.Batches+1, result.PointsSent, err)
		}

		result.AppendIDs = append(result.AppendIDs, appendID)
		result.Batches++
		result.PointsSent += len(batch)
		bar.Add(len(batch))
	}

	if policy.Wait {
		if err := waitComplete(ctx, c, result, policy.Timeout); err != nil {
			return result, err
		}
	}

	return result, nil
}

// batchRanges partitions the overall overwrite range (explicit, or implied
// by the min/max point times) into per-batch sub-ranges, so a batch does not
// overwrite the points delivered by the previous one
func batchRanges(points []ts.Point, overwrite *client.TimeRange, size int) []*client.TimeRange {
	lo := points[0].Time
	hi := points[len(points)-1].Time
	if overwrite != nil {
		if overwrite.Start != nil {
			lo = *overwrite.Start
		}
		if overwrite.End != nil {
			hi = *overwrite.End
		}
	}

	count := (len(points) + size - 1) / size
	ranges := make([]*client.TimeRange, count)

	cursor := lo
	for i := 0; i < count; i++ {
		last := points[min((i+1)*size, len(points))-1].Time
		if i == count-1 {
			last = hi
		}

		start, end := cursor, last
		ranges[i] = &client.TimeRange{Start: &start, End: &end}
		cursor = last.Add(time.Nanosecond)
	}

	return ranges
}

// waitComplete polls the store until every submitted append reports
// complete or the timeout elapses. Elapsing is reported on the result,
// not returned as an error, since the accepted batches stand either way.
func waitComplete(ctx context.Context, c *client.Client, result *Result, timeout time.Duration) error {
	deadlineCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	backoff := retry.NewConstant(POLL_INTERVAL)
	for _, appendID := range result.AppendIDs {
		var status *client.AppendStatus
		err := retry.Do(deadlineCtx, backoff, func(ctx context.Context) error {
			s, err := c.GetAppendStatus(ctx, appendID)
			if err != nil {
				return err
			}
			if s.Error != "" {
				return fmt.Errorf("append %s failed remotely: %s", appendID, s.Error)
			}
			if !s.Complete {
				return retry.RetryableError(errors.New("append still in progress"))
			}
			status = s
			return nil
		})
		if err != nil {
			if deadlineCtx.Err() != nil && ctx.Err() == nil {
				slog.Warn(fmt.Sprintf("Timed out after %s waiting for append %s to complete", timeout, appendID))
				result.TimedOut = true
				return nil
			}
			return err
		}
		result.PointsAppended += status.PointsAppended
	}

	result.Complete = true
	return nil
}
