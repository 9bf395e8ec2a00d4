// Package window turns a picked calendar date and a day count into query bounds.
package window

import (
	"strings"
	"time"

	"aedash/internal/apperr"
	"aedash/internal/model"
)

const (
	// DateLayout is the picker's calendar date format.
	DateLayout = "2006-01-02"

	MinDays = 1
	MaxDays = 45
)

// Resolve returns [midnight of date, +days) in loc. A nil loc means UTC.
func Resolve(date string, days int, loc *time.Location) (model.TimeWindow, error) {
	if loc == nil {
		loc = time.UTC
	}
	if days < MinDays || days > MaxDays {
		return model.TimeWindow{}, apperr.Newf(apperr.InvalidInput, "days must be within [%d,%d], got %d", MinDays, MaxDays, days)
	}

	start, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), loc)
	if err != nil {
		return model.TimeWindow{}, apperr.Wrap(apperr.InvalidInput, "date must be YYYY-MM-DD", err)
	}

	// Fixed 24h days keep End-Start exact in milliseconds even across DST switches.
	end := start.Add(time.Duration(days) * 24 * time.Hour)
	return model.TimeWindow{Start: start, End: end}, nil
}

// RecentDates lists the last n selectable dates, today first.
func RecentDates(now time.Time, n int, loc *time.Location) []string {
	if loc == nil {
		loc = time.UTC
	}
	if n <= 0 {
		return nil
	}
	today := now.In(loc)
	dates := make([]string, 0, n)
	for i := 0; i < n; i++ {
		dates = append(dates, today.AddDate(0, 0, -i).Format(DateLayout))
	}
	return dates
}

// Today returns the current calendar date in loc.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(DateLayout)
}

// Trailing resolves the window of days ending with (and including) today.
func Trailing(now time.Time, days int, loc *time.Location) (model.TimeWindow, error) {
	if loc == nil {
		loc = time.UTC
	}
	first := now.In(loc).AddDate(0, 0, -(days - 1))
	return Resolve(first.Format(DateLayout), days, loc)
}
