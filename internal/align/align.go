// Package align puts the spot and AE feeds on one comparable time axis.
package align

import (
	"fmt"
	"strings"
	"time"

	"aedash/internal/apperr"
	"aedash/internal/model"
)

// ActivationLayout is the AE feed's "day.month.year hour:minute:second" timestamp.
const ActivationLayout = "02.01.2006 15:04:05"

// Align normalises both feeds. Rows keep their input order and native resolution.
func Align(spot []model.SpotRow, activation []model.ActivationRow, loc *time.Location) ([]model.SpotPriceRecord, []model.ActivationRecord, error) {
	prices, err := Spot(spot)
	if err != nil {
		return nil, nil, fmt.Errorf("align spot: %w", err)
	}
	intervals, err := Activation(activation, loc)
	if err != nil {
		return nil, nil, fmt.Errorf("align activation: %w", err)
	}
	return prices, intervals, nil
}

// Spot converts epoch-millisecond rows and checks that start times never decrease.
func Spot(rows []model.SpotRow) ([]model.SpotPriceRecord, error) {
	out := make([]model.SpotPriceRecord, 0, len(rows))
	var prev time.Time
	for i, row := range rows {
		if row.StartMillis <= 0 {
			return nil, apperr.AtRow(apperr.DataIntegrity, i, fmt.Sprintf("start_timestamp %d is not an epoch millisecond value", row.StartMillis), nil)
		}
		start := time.UnixMilli(row.StartMillis).UTC()
		if i > 0 && start.Before(prev) {
			return nil, apperr.AtRow(apperr.DataIntegrity, i, fmt.Sprintf("start %s precedes previous row %s", start.Format(time.RFC3339), prev.Format(time.RFC3339)), nil)
		}
		prev = start

		var end time.Time
		if row.EndMillis > 0 {
			end = time.UnixMilli(row.EndMillis).UTC()
		}
		out = append(out, model.SpotPriceRecord{Start: start, End: end, MarketPrice: row.MarketPrice})
	}
	return out, nil
}

// Activation parses the AE text timestamps in loc (nil means UTC).
func Activation(rows []model.ActivationRow, loc *time.Location) ([]model.ActivationRecord, error) {
	if loc == nil {
		loc = time.UTC
	}
	out := make([]model.ActivationRecord, 0, len(rows))
	for i, row := range rows {
		start, err := time.ParseInLocation(ActivationLayout, strings.TrimSpace(row.IntervalStart), loc)
		if err != nil {
			return nil, apperr.AtRow(apperr.DataIntegrity, i, "parse interval start", err)
		}
		end, err := time.ParseInLocation(ActivationLayout, strings.TrimSpace(row.IntervalEnd), loc)
		if err != nil {
			return nil, apperr.AtRow(apperr.DataIntegrity, i, "parse interval end", err)
		}
		out = append(out, model.ActivationRecord{
			IntervalStart: start,
			IntervalEnd:   end,
			Early:         row.Early,
			Provisional:   row.Provisional,
			Final:         row.Final,
		})
	}
	return out, nil
}
