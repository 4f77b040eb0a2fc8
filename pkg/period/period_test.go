package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestResolveToday(t *testing.T) {
	now := date(2024, time.March, 15, 14, 30)

	w, err := Resolve(PeriodToday, now)
	require.NoError(t, err)

	assert.Equal(t, date(2024, time.March, 15, 0, 0), w.Start)
	assert.Equal(t, time.Date(2024, time.March, 15, 23, 59, 59, int(999*time.Millisecond), time.UTC), w.End)
	assert.Equal(t, date(2024, time.March, 14, 0, 0), w.ComparisonStart)
	assert.Equal(t, time.Date(2024, time.March, 14, 23, 59, 59, int(999*time.Millisecond), time.UTC), w.ComparisonEnd)
	assert.Equal(t, GranularityHourly, w.Granularity)
}

func TestResolveYesterday(t *testing.T) {
	now := date(2024, time.March, 1, 8, 0)

	w, err := Resolve(PeriodYesterday, now)
	require.NoError(t, err)

	// Month boundary: yesterday is Feb 29 (leap year), comparison Feb 28.
	assert.Equal(t, date(2024, time.February, 29, 0, 0), w.Start)
	assert.Equal(t, date(2024, time.February, 28, 0, 0), w.ComparisonStart)
	assert.Equal(t, GranularityHourly, w.Granularity)
}

func TestResolveThisWeek(t *testing.T) {
	// 2024-03-15 is a Friday; the week started Sunday 2024-03-10.
	now := date(2024, time.March, 15, 10, 0)

	w, err := Resolve(PeriodThisWeek, now)
	require.NoError(t, err)

	assert.Equal(t, date(2024, time.March, 10, 0, 0), w.Start)
	assert.Equal(t, now, w.End)
	assert.Equal(t, date(2024, time.March, 3, 0, 0), w.ComparisonStart)
	assert.Equal(t, now.AddDate(0, 0, -7), w.ComparisonEnd)
	assert.Equal(t, GranularityDaily, w.Granularity)
}

func TestResolveThisWeekOnSunday(t *testing.T) {
	// On a Sunday the window starts that same morning.
	now := date(2024, time.March, 10, 9, 0)

	w, err := Resolve(PeriodThisWeek, now)
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.March, 10, 0, 0), w.Start)
}

func TestResolveThisMonth(t *testing.T) {
	now := date(2024, time.March, 15, 12, 0)

	w, err := Resolve(PeriodThisMonth, now)
	require.NoError(t, err)

	assert.Equal(t, date(2024, time.March, 1, 0, 0), w.Start)
	assert.Equal(t, now, w.End)
	assert.Equal(t, date(2024, time.February, 1, 0, 0), w.ComparisonStart)
	assert.Equal(t, time.Date(2024, time.February, 29, 23, 59, 59, int(999*time.Millisecond), time.UTC), w.ComparisonEnd)
	assert.Equal(t, GranularityDaily, w.Granularity)
}

func TestResolveThisYear(t *testing.T) {
	now := date(2024, time.June, 20, 18, 0)

	w, err := Resolve(PeriodThisYear, now)
	require.NoError(t, err)

	assert.Equal(t, date(2024, time.January, 1, 0, 0), w.Start)
	assert.Equal(t, date(2023, time.January, 1, 0, 0), w.ComparisonStart)
	assert.Equal(t, date(2023, time.June, 20, 18, 0), w.ComparisonEnd)
	assert.Equal(t, GranularityMonthly, w.Granularity)
}

func TestResolveUnknownName(t *testing.T) {
	_, err := Resolve("lastFortnight", time.Now())
	assert.ErrorIs(t, err, ErrUnknownPeriod)
}

func TestResolveCustomGranularity(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  Granularity
	}{
		{"single day", date(2024, time.March, 2, 0, 0), date(2024, time.March, 2, 0, 0), GranularityHourly},
		{"two days", date(2024, time.March, 1, 0, 0), date(2024, time.March, 2, 0, 0), GranularityDaily},
		{"full month", date(2024, time.March, 1, 0, 0), date(2024, time.March, 31, 0, 0), GranularityDaily},
		{"quarter", date(2024, time.January, 1, 0, 0), date(2024, time.March, 31, 0, 0), GranularityMonthly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := ResolveCustom(tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, w.Granularity)
		})
	}
}

func TestResolveCustomComparisonAlignment(t *testing.T) {
	w, err := ResolveCustom(date(2024, time.March, 1, 0, 0), date(2024, time.March, 2, 0, 0))
	require.NoError(t, err)

	// Two-day window, so the comparison is the two days right before it.
	assert.Equal(t, date(2024, time.February, 28, 0, 0), w.ComparisonStart)
	assert.Equal(t, time.Date(2024, time.February, 29, 23, 59, 59, int(999*time.Millisecond), time.UTC), w.ComparisonEnd)

	// Comparison window length always equals the current window length.
	assert.Equal(t, w.End.Sub(w.Start), w.ComparisonEnd.Sub(w.ComparisonStart))
}

func TestResolveCustomEndBeforeStart(t *testing.T) {
	_, err := ResolveCustom(date(2024, time.March, 2, 0, 0), date(2024, time.March, 1, 0, 0))
	assert.Error(t, err)
}

func TestBucketsHourlyFullDay(t *testing.T) {
	start := date(2024, time.March, 15, 0, 0)
	end := EndOfDay(start)

	buckets := Buckets(start, end, GranularityHourly)

	require.Len(t, buckets, 24)
	assert.Equal(t, start, buckets[0])
	assert.Equal(t, date(2024, time.March, 15, 23, 0), buckets[23])
}

func TestBucketsDailyAcrossMonthBoundary(t *testing.T) {
	start := date(2024, time.February, 28, 0, 0)
	end := EndOfDay(date(2024, time.March, 2, 0, 0))

	buckets := Buckets(start, end, GranularityDaily)

	// Feb 28, Feb 29 (leap), Mar 1, Mar 2.
	require.Len(t, buckets, 4)
	assert.Equal(t, date(2024, time.February, 29, 0, 0), buckets[1])
	assert.Equal(t, date(2024, time.March, 1, 0, 0), buckets[2])
}

func TestBucketsMonthly(t *testing.T) {
	start := date(2024, time.January, 1, 0, 0)
	end := date(2024, time.June, 20, 18, 0)

	buckets := Buckets(start, end, GranularityMonthly)

	require.Len(t, buckets, 6)
	assert.Equal(t, date(2024, time.June, 1, 0, 0), buckets[5])
}

func TestLabelFormats(t *testing.T) {
	ts := date(2024, time.March, 4, 9, 0)

	assert.Equal(t, "09:00", Label(ts, GranularityHourly))
	assert.Equal(t, "Mon Mar 4", Label(ts, GranularityDaily))
	assert.Equal(t, "Mar 2024", Label(ts, GranularityMonthly))
}

func TestBucketKeyMatchesAcrossZones(t *testing.T) {
	loc := time.FixedZone("EAT", 3*60*60)
	utc := date(2024, time.March, 4, 9, 0)
	local := utc.In(loc)

	// Same wall-clock components produce the same key; differing ones do not.
	assert.NotEqual(t, BucketKey(utc, GranularityHourly), BucketKey(local, GranularityHourly))
	assert.Equal(t, BucketKey(utc, GranularityDaily), BucketKey(date(2024, time.March, 4, 23, 0), GranularityDaily))
}
