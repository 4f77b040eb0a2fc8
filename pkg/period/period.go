package period

import (
	"errors"
	"fmt"
	"time"
)

// Granularity is the bucket size of a time-bucketed sales series.
type Granularity string

const (
	GranularityHourly  Granularity = "hourly"
	GranularityDaily   Granularity = "daily"
	GranularityMonthly Granularity = "monthly"
)

// Named periods accepted by Resolve.
const (
	PeriodToday     = "today"
	PeriodYesterday = "yesterday"
	PeriodThisWeek  = "thisWeek"
	PeriodThisMonth = "thisMonth"
	PeriodThisYear  = "thisYear"
	PeriodCustom    = "custom"
)

// ErrUnknownPeriod is returned when a period name is not recognized.
var ErrUnknownPeriod = errors.New("unknown period name")

// Window is a resolved reporting window. Start/End bound the current period and
// ComparisonStart/ComparisonEnd bound an equally long period immediately before it.
// All boundaries are inclusive; closed periods end at 23:59:59.999.
type Window struct {
	Start           time.Time
	End             time.Time
	ComparisonStart time.Time
	ComparisonEnd   time.Time
	Granularity     Granularity
}

// Resolve maps a named period to a concrete window relative to now.
func Resolve(name string, now time.Time) (Window, error) {
	switch name {
	case PeriodToday:
		start := StartOfDay(now)
		end := EndOfDay(now)
		return Window{
			Start:           start,
			End:             end,
			ComparisonStart: start.AddDate(0, 0, -1),
			ComparisonEnd:   end.AddDate(0, 0, -1),
			Granularity:     GranularityHourly,
		}, nil

	case PeriodYesterday:
		day := now.AddDate(0, 0, -1)
		start := StartOfDay(day)
		end := EndOfDay(day)
		return Window{
			Start:           start,
			End:             end,
			ComparisonStart: start.AddDate(0, 0, -1),
			ComparisonEnd:   end.AddDate(0, 0, -1),
			Granularity:     GranularityHourly,
		}, nil

	case PeriodThisWeek:
		// Weeks start on the most recent Sunday.
		start := StartOfDay(now.AddDate(0, 0, -int(now.Weekday())))
		return Window{
			Start:           start,
			End:             now,
			ComparisonStart: start.AddDate(0, 0, -7),
			ComparisonEnd:   now.AddDate(0, 0, -7),
			Granularity:     GranularityDaily,
		}, nil

	case PeriodThisMonth:
		start := startOfMonth(now)
		lastOfPrevious := start.AddDate(0, 0, -1)
		return Window{
			Start:           start,
			End:             now,
			ComparisonStart: startOfMonth(lastOfPrevious),
			ComparisonEnd:   EndOfDay(lastOfPrevious),
			Granularity:     GranularityDaily,
		}, nil

	case PeriodThisYear:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return Window{
			Start:           start,
			End:             now,
			ComparisonStart: start.AddDate(-1, 0, 0),
			ComparisonEnd:   now.AddDate(-1, 0, 0),
			Granularity:     GranularityMonthly,
		}, nil
	}

	return Window{}, fmt.Errorf("%w: %q", ErrUnknownPeriod, name)
}

// ResolveCustom builds a window from explicit start/end dates. The window runs
// from the start of the first day to the end of the last day; the comparison
// window is the same number of days immediately preceding it. Granularity is
// chosen from the span: one day or less is hourly, up to 31 days daily,
// anything longer monthly.
func ResolveCustom(start, end time.Time) (Window, error) {
	if end.Before(start) {
		return Window{}, errors.New("end date is before start date")
	}

	s := StartOfDay(start)
	e := EndOfDay(end)
	days := daysIn(s, e)

	granularity := GranularityMonthly
	switch {
	case days <= 1:
		granularity = GranularityHourly
	case days <= 31:
		granularity = GranularityDaily
	}

	return Window{
		Start:           s,
		End:             e,
		ComparisonStart: s.AddDate(0, 0, -days),
		ComparisonEnd:   e.AddDate(0, 0, -days),
		Granularity:     granularity,
	}, nil
}

// Buckets returns the chronologically ordered bucket start times covering
// [start, end], one per hour, calendar day or calendar month. Every bucket in
// range is present even when it will hold no data.
func Buckets(start, end time.Time, g Granularity) []time.Time {
	var buckets []time.Time
	switch g {
	case GranularityHourly:
		t := time.Date(start.Year(), start.Month(), start.Day(), start.Hour(), 0, 0, 0, start.Location())
		for !t.After(end) {
			buckets = append(buckets, t)
			t = t.Add(time.Hour)
		}
	case GranularityDaily:
		t := StartOfDay(start)
		for !t.After(end) {
			buckets = append(buckets, t)
			t = t.AddDate(0, 0, 1)
		}
	case GranularityMonthly:
		t := startOfMonth(start)
		for !t.After(end) {
			buckets = append(buckets, t)
			t = t.AddDate(0, 1, 0)
		}
	}
	return buckets
}

// Label formats a bucket start time for display: "HH:00" for hourly buckets,
// short weekday+date for daily, short month+year for monthly.
func Label(t time.Time, g Granularity) string {
	switch g {
	case GranularityHourly:
		return fmt.Sprintf("%02d:00", t.Hour())
	case GranularityDaily:
		return t.Format("Mon Jan 2")
	default:
		return t.Format("Jan 2006")
	}
}

// BucketKey returns a granularity-truncated key used to match aggregated rows
// to their bucket regardless of time zone representation.
func BucketKey(t time.Time, g Granularity) string {
	switch g {
	case GranularityHourly:
		return t.Format("2006-01-02T15")
	case GranularityDaily:
		return t.Format("2006-01-02")
	default:
		return t.Format("2006-01")
	}
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59.999 of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// daysIn counts whole calendar days covered by [start, end].
func daysIn(start, end time.Time) int {
	days := 0
	for t := StartOfDay(start); !t.After(end); t = t.AddDate(0, 0, 1) {
		days++
	}
	return days
}
