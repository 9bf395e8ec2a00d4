// Package reconcile reduces the three AE publication stages of an interval to one authoritative value.
package reconcile

import (
	"strings"

	"github.com/shopspring/decimal"

	"aedash/internal/apperr"
	"aedash/internal/model"
)

// revision pairs a stage with its field accessor. Order is priority: later publications win.
type revision struct {
	source model.RevisionSource
	field  func(model.ActivationRecord) string
}

var priority = [...]revision{
	{source: model.SourceFinal, field: func(r model.ActivationRecord) string { return r.Final }},
	{source: model.SourceProvisional, field: func(r model.ActivationRecord) string { return r.Provisional }},
	{source: model.SourceEarlyPublication, field: func(r model.ActivationRecord) string { return r.Early }},
}

// Select returns the text and stage of the first published revision, or SourceNone.
func Select(rec model.ActivationRecord) (string, model.RevisionSource) {
	for _, rev := range priority {
		if text := strings.TrimSpace(rev.field(rec)); text != "" {
			return text, rev.source
		}
	}
	return "", model.SourceNone
}

// Reconcile maps every record to its authoritative value, preserving order. A malformed
// selected value leaves Value unset and records the error on that record only.
func Reconcile(records []model.ActivationRecord) []model.ReconciledRecord {
	out := make([]model.ReconciledRecord, len(records))
	for i, rec := range records {
		res := model.ReconciledRecord{
			IntervalStart: rec.IntervalStart,
			IntervalEnd:   rec.IntervalEnd,
		}

		text, src := Select(rec)
		res.Source = src
		if src != model.SourceNone {
			value, err := ParseValue(text)
			if err != nil {
				res.Err = apperr.AtRow(apperr.MalformedValue, i, src.String(), err)
			} else {
				res.Value = decimal.NewNullDecimal(value)
			}
		}
		out[i] = res
	}
	return out
}

// Errors collects the per-record MalformedValue errors.
func Errors(records []model.ReconciledRecord) []error {
	var errs []error
	for _, rec := range records {
		if rec.Err != nil {
			errs = append(errs, rec.Err)
		}
	}
	return errs
}

// ParseValue converts a comma-decimal cell ("-12,5") into a decimal. The feed never uses a
// point separator, so "12.5" is rejected along with exponents and grouping.
func ParseValue(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return decimal.Decimal{}, apperr.New(apperr.MalformedValue, "empty value")
	}

	body := s
	if body[0] == '-' || body[0] == '+' {
		body = body[1:]
	}
	intPart, fracPart, hasComma := strings.Cut(body, ",")
	if intPart == "" || !allDigits(intPart) || (hasComma && (fracPart == "" || !allDigits(fracPart))) {
		return decimal.Decimal{}, apperr.Newf(apperr.MalformedValue, "%q is not a comma decimal", text)
	}

	value, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return decimal.Decimal{}, apperr.Wrap(apperr.MalformedValue, "convert "+text, err)
	}
	return value, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
