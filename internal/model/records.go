package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SpotRow is one row of the spot feed as decoded from its JSON payload.
type SpotRow struct {
	StartMillis int64
	EndMillis   int64
	MarketPrice decimal.Decimal
	Unit        string
}

// ActivationRow is one row of the AE feed as read from its CSV payload, columns in feed order.
type ActivationRow struct {
	IntervalStart string
	IntervalEnd   string
	Early         string
	Provisional   string
	Final         string
}

// SpotPriceRecord is an hourly day-ahead price on the common time axis.
type SpotPriceRecord struct {
	Start       time.Time       `json:"start"`
	End         time.Time       `json:"end"`
	MarketPrice decimal.Decimal `json:"marketprice"`
}

// ActivationRecord is a 15-minute AE interval on the common time axis. Each revision field keeps
// the feed's text; an empty string means the stage has not been published.
type ActivationRecord struct {
	IntervalStart time.Time
	IntervalEnd   time.Time
	Early         string
	Provisional   string
	Final         string
}

// RevisionSource names the publication stage that supplied a reconciled value.
type RevisionSource int

const (
	SourceNone RevisionSource = iota
	SourceFinal
	SourceProvisional
	SourceEarlyPublication
)

// Sources lists the stages in display order.
var Sources = []RevisionSource{SourceFinal, SourceProvisional, SourceEarlyPublication}

func (s RevisionSource) String() string {
	switch s {
	case SourceFinal:
		return "final"
	case SourceProvisional:
		return "provisional"
	case SourceEarlyPublication:
		return "early_publication"
	default:
		return ""
	}
}

// Label is the human readable legend entry.
func (s RevisionSource) Label() string {
	switch s {
	case SourceFinal:
		return "AE final"
	case SourceProvisional:
		return "AE provisional"
	case SourceEarlyPublication:
		return "AE early publication"
	default:
		return "AE"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s RevisionSource) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *RevisionSource) UnmarshalText(text []byte) error {
	src, err := ParseRevisionSource(string(text))
	if err != nil {
		return err
	}
	*s = src
	return nil
}

// ParseRevisionSource is the inverse of String.
func ParseRevisionSource(v string) (RevisionSource, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "final":
		return SourceFinal, nil
	case "provisional":
		return SourceProvisional, nil
	case "early_publication":
		return SourceEarlyPublication, nil
	case "":
		return SourceNone, nil
	}
	return SourceNone, fmt.Errorf("unknown revision source %q", v)
}

// ReconciledRecord is an AE interval reduced to its authoritative value.
type ReconciledRecord struct {
	IntervalStart time.Time           `json:"interval_start"`
	IntervalEnd   time.Time           `json:"interval_end"`
	Value         decimal.NullDecimal `json:"value"`
	Source        RevisionSource      `json:"source"`
	MovingAverage decimal.NullDecimal `json:"moving_average_1h"`
	// Err is set when the selected revision could not be parsed.
	Err error `json:"-"`
}

// HasValue reports whether the record contributes to aggregates.
func (r ReconciledRecord) HasValue() bool {
	return r.Value.Valid
}
