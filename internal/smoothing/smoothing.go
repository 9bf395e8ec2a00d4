// Package smoothing computes trailing moving averages over reconciled AE values.
package smoothing

import (
	"github.com/shopspring/decimal"

	"aedash/internal/model"
)

// DefaultWindow spans one hour of 15-minute intervals.
const DefaultWindow = 4

// Smooth returns, for each position i, the mean of the valid values among the last
// min(window, i+1) positions. Invalid positions do not count toward the denominator;
// a window without any valid value yields an invalid output.
func Smooth(values []decimal.NullDecimal, window int) []decimal.NullDecimal {
	if window <= 0 {
		window = DefaultWindow
	}

	out := make([]decimal.NullDecimal, len(values))
	sum := decimal.Zero
	count := 0
	for i, v := range values {
		if v.Valid {
			sum = sum.Add(v.Decimal)
			count++
		}
		if j := i - window; j >= 0 && values[j].Valid {
			sum = sum.Sub(values[j].Decimal)
			count--
		}
		if count > 0 {
			out[i] = decimal.NewNullDecimal(sum.Div(decimal.NewFromInt(int64(count))))
		}
	}
	return out
}

// Apply fills MovingAverage on records in place and returns them.
func Apply(records []model.ReconciledRecord, window int) []model.ReconciledRecord {
	values := make([]decimal.NullDecimal, len(records))
	for i, rec := range records {
		values[i] = rec.Value
	}
	for i, avg := range Smooth(values, window) {
		records[i].MovingAverage = avg
	}
	return records
}
