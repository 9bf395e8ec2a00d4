package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"aedash/internal/model"
)

// Row is one AE interval joined with the spot price of the hour it starts in.
type Row struct {
	IntervalStart time.Time
	IntervalEnd   time.Time
	Value         decimal.NullDecimal
	Source        model.RevisionSource
	MovingAverage decimal.NullDecimal
	SpotPrice     decimal.NullDecimal
	Err           error
}

// Rows joins every AE interval with the spot record covering its start.
func Rows(ds *model.Dataset) []Row {
	rows := make([]Row, len(ds.Activation))
	for i, rec := range ds.Activation {
		rows[i] = Row{
			IntervalStart: rec.IntervalStart,
			IntervalEnd:   rec.IntervalEnd,
			Value:         rec.Value,
			Source:        rec.Source,
			MovingAverage: rec.MovingAverage,
			SpotPrice:     spotAt(ds.Spot, rec.IntervalStart),
			Err:           rec.Err,
		}
	}
	return rows
}

// spotAt finds the price whose [Start, End) contains t. Spot rows are sorted by start.
func spotAt(spot []model.SpotPriceRecord, t time.Time) decimal.NullDecimal {
	idx := sort.Search(len(spot), func(i int) bool { return spot[i].Start.After(t) }) - 1
	if idx < 0 {
		return decimal.NullDecimal{}
	}
	p := spot[idx]
	end := p.End
	if end.IsZero() {
		end = p.Start.Add(time.Hour)
	}
	if !t.Before(end) {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(p.MarketPrice)
}

var tableHeader = []string{"interval_start", "interval_end", "ae_value", "source", "ae_ma_1h", "spot_price", "error"}

// FormatValue renders a possibly undefined value with two decimals, or "".
func FormatValue(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(2)
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// CSV writes the joined table.
func CSV(w io.Writer, ds *model.Dataset) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(tableHeader); err != nil {
		return err
	}
	for _, row := range Rows(ds) {
		record := []string{
			row.IntervalStart.Format(time.RFC3339),
			row.IntervalEnd.Format(time.RFC3339),
			FormatValue(row.Value),
			row.Source.String(),
			FormatValue(row.MovingAverage),
			FormatValue(row.SpotPrice),
			errText(row.Err),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

const (
	sheetAE   = "AE"
	sheetSpot = "Spot"
)

// XLSX writes a workbook with the joined AE table and the raw spot series.
func XLSX(w io.Writer, ds *model.Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetAE); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetSpot); err != nil {
		return fmt.Errorf("create spot sheet: %w", err)
	}

	if err := setRow(f, sheetAE, 1, stringsToCells(tableHeader)); err != nil {
		return err
	}
	for i, row := range Rows(ds) {
		cells := []interface{}{
			row.IntervalStart.Format(time.RFC3339),
			row.IntervalEnd.Format(time.RFC3339),
			numberCell(row.Value),
			row.Source.String(),
			numberCell(row.MovingAverage),
			numberCell(row.SpotPrice),
			errText(row.Err),
		}
		if err := setRow(f, sheetAE, i+2, cells); err != nil {
			return err
		}
	}

	if err := setRow(f, sheetSpot, 1, []interface{}{"start", "end", "marketprice"}); err != nil {
		return err
	}
	for i, p := range ds.Spot {
		cells := []interface{}{
			p.Start.Format(time.RFC3339),
			p.End.Format(time.RFC3339),
			p.MarketPrice.InexactFloat64(),
		}
		if err := setRow(f, sheetSpot, i+2, cells); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func stringsToCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// numberCell keeps undefined values as empty cells.
func numberCell(d decimal.NullDecimal) interface{} {
	if !d.Valid {
		return nil
	}
	return d.Decimal.Round(2).InexactFloat64()
}

// WriteFile creates path (and its directory) and hands it to write.
func WriteFile(path string, write func(io.Writer) error) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
