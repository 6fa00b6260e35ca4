package syncsvc

import "time"

// Window is a bounded time range over order update-timestamps scoping
// one listing query. Both ends are inclusive; boundary overlap between
// adjacent windows is harmless because upserts are idempotent.
type Window struct {
	Start time.Time
	End   time.Time
}

const (
	// pageSize is the fixed marketplace listing page size. Pagination
	// advances the offset by this amount until a short page comes back.
	pageSize = 100

	// defaultLookback bounds the first incremental window of an account
	// that has never synced.
	defaultLookback = 10 * time.Minute

	// aggregationWindowCount and aggregationWindowSpan shape the
	// read-side rolling aggregation: 8 non-overlapping weekly windows
	// counting backward from now.
	aggregationWindowCount = 8
	aggregationWindowSpan  = 7 * 24 * time.Hour
)

// incrementalWindow plans the single window of an incremental pass:
// from the account's checkpoint (or the default lookback when none
// exists) to now.
func incrementalWindow(checkpoint *time.Time, now time.Time) Window {
	if checkpoint == nil {
		return Window{Start: now.Add(-defaultLookback), End: now}
	}

	return Window{Start: *checkpoint, End: now}
}

// backfillWindows plans one-calendar-month windows from the historical
// epoch up to now, ascending. The final window may extend past now; the
// upstream simply returns nothing for the future part.
func backfillWindows(epoch, now time.Time) []Window {
	var windows []Window
	for cursor := epoch; cursor.Before(now); {
		next := cursor.AddDate(0, 1, 0)
		windows = append(windows, Window{Start: cursor, End: next})
		cursor = next
	}

	return windows
}

// rollingWindows plans count non-overlapping windows of the given span
// counting backward from now, newest first. First-seen dedupe across
// windows therefore prefers the most recent sighting of an order.
func rollingWindows(now time.Time, count int, span time.Duration) []Window {
	windows := make([]Window, 0, count)
	end := now
	for i := 0; i < count; i++ {
		start := end.Add(-span)
		windows = append(windows, Window{Start: start, End: end})
		end = start
	}

	return windows
}
