package pipeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tsload/ts"
	"tsload/utils"
)

// Keyword accepted in place of a literal value to mark a record break
const GAP_KEYWORD string = "gap"

// CollectManual turns literal command line values into points. The clock is
// seeded at start and advanced by interval after every literal, gaps
// included, so emission order matches argument order.
func CollectManual(args []string, start time.Time, interval utils.Interval) ([]ts.Point, error) {
	points := make([]ts.Point, 0, len(args))

	clock := start
	for _, arg := range args {
		if strings.EqualFold(arg, GAP_KEYWORD) {
			points = append(points, ts.NewGap(clock))
		} else {
			value, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return nil, fmt.Errorf("point value %q is not a number or %q", arg, GAP_KEYWORD)
			}
			points = append(points, ts.NewValue(clock, value))
		}

		next, err := interval.AddTo(clock)
		if err != nil {
			return nil, err
		}
		clock = next
	}

	return points, nil
}
