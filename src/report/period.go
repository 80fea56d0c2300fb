package report

import (
	"fmt"
	"time"
)

const monthLayout = "2006-01"

// MonthRange maps a "YYYY-MM" month string to its half-open UTC instant
// interval [start, end). A trade belongs to the month when its OpenedAt is
// >= start and < end.
func MonthRange(month string) (start, end time.Time, err error) {
	start, err = time.ParseInLocation(monthLayout, month, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q (want YYYY-MM): %w", month, err)
	}
	return start, start.AddDate(0, 1, 0), nil
}

// InMonth reports whether ts falls inside the month's half-open interval.
func InMonth(ts, start, end time.Time) bool {
	return !ts.Before(start) && ts.Before(end)
}
