package model

import "time"

// TextLayout is the second-precision timestamp the AE download endpoint expects in its path.
const TextLayout = "2006-01-02T150405"

// TimeWindow is the half-open interval [Start, End) bounding both feed queries.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// StartMillis returns Start as epoch milliseconds.
func (w TimeWindow) StartMillis() int64 { return w.Start.UnixMilli() }

// EndMillis returns End as epoch milliseconds.
func (w TimeWindow) EndMillis() int64 { return w.End.UnixMilli() }

// StartText formats Start in the wall clock of its location.
func (w TimeWindow) StartText() string { return w.Start.Format(TextLayout) }

// EndText formats End in the wall clock of its location.
func (w TimeWindow) EndText() string { return w.End.Format(TextLayout) }

// Duration is End - Start.
func (w TimeWindow) Duration() time.Duration { return w.End.Sub(w.Start) }

// Days is the number of whole 24h days covered.
func (w TimeWindow) Days() int { return int(w.Duration() / (24 * time.Hour)) }

// Contains reports whether t falls inside [Start, End).
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}
