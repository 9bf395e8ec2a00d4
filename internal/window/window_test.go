package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"aedash/internal/apperr"
)

func TestResolveNewYear(t *testing.T) {
	w, err := Resolve("2024-01-01", 1, nil)
	require.NoError(t, err)
	require.Equal(t, int64(1704067200000), w.StartMillis())
	require.Equal(t, int64(1704153600000), w.EndMillis())
	require.Equal(t, "2024-01-01T000000", w.StartText())
	require.Equal(t, "2024-01-02T000000", w.EndText())
}

func TestResolveSpanIsExactForEveryDayCount(t *testing.T) {
	vienna, err := time.LoadLocation("Europe/Vienna")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 2024-03-15 + up to 45 days crosses the spring DST switch.
	for _, loc := range []*time.Location{time.UTC, vienna} {
		for days := MinDays; days <= MaxDays; days++ {
			w, err := Resolve("2024-03-15", days, loc)
			require.NoError(t, err)
			require.Equal(t, int64(days)*86_400_000, w.EndMillis()-w.StartMillis(), "days=%d loc=%s", days, loc)
			require.Equal(t, days, w.Days())
		}
	}
}

func TestResolveTextMatchesInstant(t *testing.T) {
	vienna, err := time.LoadLocation("Europe/Vienna")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	w, err := Resolve("2024-06-10", 2, vienna)
	require.NoError(t, err)

	parsed, err := time.ParseInLocation("2006-01-02T150405", w.StartText(), vienna)
	require.NoError(t, err)
	require.True(t, parsed.Equal(w.Start))
	require.Equal(t, "2024-06-10T000000", w.StartText())
}

func TestResolveInvalidInput(t *testing.T) {
	cases := []struct {
		name string
		date string
		days int
	}{
		{name: "zero days", date: "2024-01-01", days: 0},
		{name: "too many days", date: "2024-01-01", days: 46},
		{name: "not a date", date: "01.01.2024", days: 1},
		{name: "impossible date", date: "2024-02-30", days: 1},
		{name: "empty", date: "", days: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(tc.date, tc.days, nil)
			require.Error(t, err)
			require.True(t, apperr.Is(err, apperr.InvalidInput), "got %v", err)
		})
	}
}

func TestRecentDates(t *testing.T) {
	now := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	dates := RecentDates(now, 3, nil)
	require.Equal(t, []string{"2024-03-02", "2024-03-01", "2024-02-29"}, dates)
	require.Len(t, RecentDates(now, MaxDays, nil), MaxDays)
	require.Nil(t, RecentDates(now, 0, nil))
}

func TestTrailing(t *testing.T) {
	now := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)
	w, err := Trailing(now, 2, nil)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), w.Start)
	require.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), w.End)
	require.Equal(t, "2024-03-02", Today(now, nil))
}
