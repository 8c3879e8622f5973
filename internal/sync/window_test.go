package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const day = 24 * time.Hour

func TestNewTimeWindow(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		end     int64
		start   int64
		wantErr bool
	}{
		"start before end": {
			start:   1000,
			end:     2000,
			wantErr: false,
		},
		"start equals end": {
			start:   1000,
			end:     1000,
			wantErr: false,
		},
		"start after end": {
			start:   2000,
			end:     1000,
			wantErr: true,
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			window, err := NewTimeWindow(tc.start, tc.end)

			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				require.Equal(t, tc.start, window.Start)
				require.Equal(t, tc.end, window.End)
			}
		})
	}
}

func TestSplitWindow(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		chunkSize  time.Duration
		wantChunks []TimeWindow
		window     TimeWindow
	}{
		"window smaller than chunk": {
			window:     TimeWindow{Start: 0, End: 999},
			chunkSize:  day,
			wantChunks: []TimeWindow{{Start: 0, End: 999}},
		},
		"window is exact multiple of chunk": {
			window:    TimeWindow{Start: 0, End: 2*day.Milliseconds() - 1},
			chunkSize: day,
			wantChunks: []TimeWindow{
				{Start: 0, End: day.Milliseconds() - 1},
				{Start: day.Milliseconds(), End: 2*day.Milliseconds() - 1},
			},
		},
		"final chunk clamped to window end": {
			window:    TimeWindow{Start: 1000, End: 1000 + day.Milliseconds() + 500},
			chunkSize: day,
			wantChunks: []TimeWindow{
				{Start: 1000, End: 1000 + day.Milliseconds() - 1},
				{Start: 1000 + day.Milliseconds(), End: 1000 + day.Milliseconds() + 500},
			},
		},
		"single millisecond window": {
			window:     TimeWindow{Start: 42, End: 42},
			chunkSize:  day,
			wantChunks: []TimeWindow{{Start: 42, End: 42}},
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			chunks := splitWindow(tc.window, tc.chunkSize)

			require.Equal(t, tc.wantChunks, chunks)
		})
	}
}

func TestSplitWindowContiguity(t *testing.T) {
	t.Parallel()

	// Fourteen days plus an uneven tail, split weekly.
	window := TimeWindow{Start: 1_600_000_000_123, End: 1_600_000_000_123 + 14*day.Milliseconds() + 7321}
	chunks := splitWindow(window, 7*day)

	require.Len(t, chunks, 3)
	require.Equal(t, window.Start, chunks[0].Start)
	require.Equal(t, window.End, chunks[len(chunks)-1].End)

	for i := range chunks {
		require.LessOrEqual(t, chunks[i].Start, chunks[i].End)
		if i > 0 {
			require.Equal(t, chunks[i-1].End+1, chunks[i].Start)
		}
	}
}
