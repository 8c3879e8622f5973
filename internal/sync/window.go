package sync

import (
	"fmt"
	"time"
)

// TimeWindow is an inclusive [Start, End] range of Unix millisecond
// timestamps. It is an immutable value type.
type TimeWindow struct {
	// End is the inclusive window end, in Unix milliseconds.
	End int64

	// Start is the inclusive window start, in Unix milliseconds.
	Start int64
}

// NewTimeWindow creates a window, rejecting an end before the start.
func NewTimeWindow(start int64, end int64) (TimeWindow, error) {
	if start > end {
		return TimeWindow{}, fmt.Errorf("window start %d is after end %d", start, end)
	}
	return TimeWindow{End: end, Start: start}, nil
}

// splitWindow walks the window in steps of chunkSize, producing contiguous,
// non-overlapping sub-windows. Each chunk starts one millisecond after the
// previous chunk's end, matching the fetcher's cursor convention so records on
// a boundary are neither skipped nor duplicated. The final chunk's end is
// clamped to the window's end.
func splitWindow(window TimeWindow, chunkSize time.Duration) []TimeWindow {
	step := chunkSize.Milliseconds()

	var chunks []TimeWindow
	for start := window.Start; start <= window.End; start += step {
		end := start + step - 1
		if end > window.End {
			end = window.End
		}
		chunks = append(chunks, TimeWindow{End: end, Start: start})
	}

	return chunks
}
