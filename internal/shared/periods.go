package shared

import "time"

// Named reporting periods resolvable to a concrete date range.
const (
	PeriodToday  = "today"
	PeriodWeek   = "week"
	PeriodMonth  = "month"
	PeriodCustom = "custom"
)

// DateRange is an inclusive timestamp window.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// RangeForPeriod resolves a named period to a date range relative to now.
// Weeks start on Monday; months span the first through the last calendar day.
// Returns false for PeriodCustom and unknown names.
func RangeForPeriod(period string, now time.Time) (DateRange, bool) {
	switch period {
	case PeriodToday:
		return DateRange{Start: startOfDay(now), End: endOfDay(now)}, true
	case PeriodWeek:
		diff := int(now.Weekday()) - int(time.Monday)
		if now.Weekday() == time.Sunday {
			diff = 6
		}
		return DateRange{Start: startOfDay(now.AddDate(0, 0, -diff)), End: endOfDay(now)}, true
	case PeriodMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		last := first.AddDate(0, 1, -1)
		return DateRange{Start: first, End: endOfDay(last)}, true
	}
	return DateRange{}, false
}

// CustomRange builds an inclusive range from two calendar dates.
func CustomRange(from, to time.Time) DateRange {
	return DateRange{Start: startOfDay(from), End: endOfDay(to)}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
