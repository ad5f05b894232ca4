// Package stats holds the pure aggregation functions behind the dashboard,
// statistics and per-page filtering: rolling windows, per-kind summaries,
// chart bucketing, correlation and the merged activity feed.
//
// Nothing in this package reads the clock. Callers capture "now" once per
// request and pass the same instant to every function they call together.
package stats

import (
	"errors"
	"fmt"
	"time"

	"github.com/yourname/fittrack/internal"
)

var ErrUnknownWindow = errors.New("stats: unknown window")

// Window is a named rolling range anchored to the evaluation instant.
type Window string

const (
	Window7Days   Window = "7days"
	Window30Days  Window = "30days"
	Window3Months Window = "3months"
	Window6Months Window = "6months"
	WindowAll     Window = "all"
)

// ParseWindow maps a query value to a Window. An empty value means all-time.
func ParseWindow(s string) (Window, error) {
	switch w := Window(s); w {
	case "":
		return WindowAll, nil
	case Window7Days, Window30Days, Window3Months, Window6Months, WindowAll:
		return w, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownWindow, s)
	}
}

// Cutoff returns the earliest calendar date kept by w, taken in now's
// location. ok is false for the all-time window.
func (w Window) Cutoff(now time.Time) (cutoff internal.Date, ok bool) {
	today := internal.DateOf(now)
	switch w {
	case Window7Days:
		return today.AddDays(-7), true
	case Window30Days:
		return today.AddDays(-30), true
	case Window3Months:
		return today.AddMonths(-3), true
	case Window6Months:
		return today.AddMonths(-6), true
	default:
		return internal.Date{}, false
	}
}

// Dated is satisfied by every record kind through the embedded Record.
type Dated interface {
	RecordDate() internal.Date
}

// FilterByWindow returns the records whose date is on or after the window
// cutoff. The input slice is never modified; unknown windows behave like all.
func FilterByWindow[T Dated](records []T, w Window, now time.Time) []T {
	cutoff, ok := w.Cutoff(now)
	out := make([]T, 0, len(records))
	for _, r := range records {
		if ok && r.RecordDate().Before(cutoff) {
			continue
		}
		out = append(out, r)
	}
	return out
}
