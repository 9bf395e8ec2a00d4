package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Dataset is the finished output of one pass, handed to the rendering collaborators.
type Dataset struct {
	PassID     uuid.UUID          `json:"pass_id"`
	Window     TimeWindow         `json:"-"`
	Spot       []SpotPriceRecord  `json:"spot"`
	Activation []ReconciledRecord `json:"activation"`
	ClampAxis  bool               `json:"clamp_axis"`
}

// BySource returns the valued records supplied by the given stage, in order.
func (d *Dataset) BySource(src RevisionSource) []ReconciledRecord {
	out := make([]ReconciledRecord, 0)
	for _, rec := range d.Activation {
		if rec.HasValue() && rec.Source == src {
			out = append(out, rec)
		}
	}
	return out
}

// Malformed returns the records whose selected revision failed to parse.
func (d *Dataset) Malformed() []ReconciledRecord {
	out := make([]ReconciledRecord, 0)
	for _, rec := range d.Activation {
		if rec.Err != nil {
			out = append(out, rec)
		}
	}
	return out
}

// Summary condenses a dataset for logs, tables and notifications.
type Summary struct {
	Intervals  int                 `json:"intervals"`
	Valued     int                 `json:"valued"`
	Missing    int                 `json:"missing"`
	Malformed  int                 `json:"malformed"`
	BySource   map[string]int      `json:"by_source"`
	SpotPoints int                 `json:"spot_points"`
	MinAE      decimal.NullDecimal `json:"min_ae"`
	MaxAE      decimal.NullDecimal `json:"max_ae"`
	LatestMA   decimal.NullDecimal `json:"latest_ma_1h"`
	MeanSpot   decimal.NullDecimal `json:"mean_spot"`
}

// Summary walks the dataset once.
func (d *Dataset) Summary() Summary {
	s := Summary{
		Intervals:  len(d.Activation),
		BySource:   make(map[string]int, len(Sources)),
		SpotPoints: len(d.Spot),
	}
	for _, rec := range d.Activation {
		switch {
		case rec.Err != nil:
			s.Malformed++
		case !rec.HasValue():
			s.Missing++
		default:
			s.Valued++
			s.BySource[rec.Source.String()]++
			v := rec.Value.Decimal
			if !s.MinAE.Valid || v.LessThan(s.MinAE.Decimal) {
				s.MinAE = decimal.NewNullDecimal(v)
			}
			if !s.MaxAE.Valid || v.GreaterThan(s.MaxAE.Decimal) {
				s.MaxAE = decimal.NewNullDecimal(v)
			}
		}
		if rec.MovingAverage.Valid {
			s.LatestMA = rec.MovingAverage
		}
	}
	if len(d.Spot) > 0 {
		sum := decimal.Zero
		for _, p := range d.Spot {
			sum = sum.Add(p.MarketPrice)
		}
		s.MeanSpot = decimal.NewNullDecimal(sum.Div(decimal.NewFromInt(int64(len(d.Spot)))))
	}
	return s
}
