package usage

import (
	"context"
	"time"
)

// Metric identifies a usage quantity to query.
type Metric struct {
	// Name is the metric identifier understood by the monitoring API
	// (e.g., "vectordb/read_count").
	Name string

	// Filter is an optional qualifier narrowing the query.
	Filter string
}

// Window is the half-open time interval a query aggregates over.
type Window struct {
	Start time.Time
	End   time.Time
}

// CurrentBillingWindow returns the window from the start of the current
// calendar month to now, in UTC. Billing providers close their books on
// calendar months; a provider-local billing timezone may differ from UTC
// by at most a partial day at the boundary.
func CurrentBillingWindow(now time.Time) Window {
	now = now.UTC()
	return Window{
		Start: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		End:   now,
	}
}

// Source answers aggregate usage queries. A query failure degrades the
// caller's cost computation; it never silently reports zero as success.
type Source interface {
	Query(ctx context.Context, metric Metric, window Window) (int64, error)
}
