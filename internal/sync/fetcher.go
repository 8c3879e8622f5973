package sync

import "context"

// record is an upstream history record carrying its ordering timestamp.
type record interface {
	// Timestamp returns the record's ordering timestamp in Unix milliseconds.
	Timestamp() int64
}

// pageFunc fetches one page of records for an inclusive millisecond range.
type pageFunc[T record] func(ctx context.Context, startTime int64, endTime int64, limit int) ([]T, error)

// forEachPage streams the chunk's pages through handle, strictly in order.
// After a full page the cursor advances to one millisecond past the last
// record's timestamp; a page shorter than limit ends the chunk. When the
// remaining count is an exact multiple of limit this costs one extra request,
// which returns an empty page and terminates cleanly. Fetch errors wrap as
// FetchError and abort the chunk.
func forEachPage[T record](
	ctx context.Context,
	chunk TimeWindow,
	limit int,
	fetch pageFunc[T],
	handle func(page []T) error,
) error {
	cursor := chunk.Start

	for {
		page, err := fetch(ctx, cursor, chunk.End, limit)
		if err != nil {
			return &FetchError{Err: err}
		}

		if len(page) > 0 {
			if err := handle(page); err != nil {
				return err
			}
		}

		if len(page) < limit {
			return nil
		}

		cursor = page[len(page)-1].Timestamp() + 1
	}
}
