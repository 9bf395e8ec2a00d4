package render

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/xuri/excelize/v2"

	"aedash/internal/apperr"
	"aedash/internal/model"
)

var day = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func value(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func sampleDataset() *model.Dataset {
	at := func(q int) time.Time { return day.Add(time.Duration(q) * 15 * time.Minute) }
	return &model.Dataset{
		PassID: uuid.New(),
		Window: model.TimeWindow{Start: day, End: day.Add(24 * time.Hour)},
		Spot: []model.SpotPriceRecord{
			{Start: day, End: day.Add(time.Hour), MarketPrice: decimal.RequireFromString("80.5")},
			{Start: day.Add(time.Hour), End: day.Add(2 * time.Hour), MarketPrice: decimal.RequireFromString("75.25")},
		},
		Activation: []model.ReconciledRecord{
			{IntervalStart: at(0), IntervalEnd: at(1), Value: value("12.5"), Source: model.SourceFinal, MovingAverage: value("12.5")},
			{IntervalStart: at(1), IntervalEnd: at(2), Value: value("5.5"), Source: model.SourceProvisional, MovingAverage: value("9")},
			{IntervalStart: at(2), IntervalEnd: at(3), Source: model.SourceEarlyPublication, MovingAverage: value("9"),
				Err: apperr.AtRow(apperr.MalformedValue, 2, "early_publication", errors.New(`"5.5" is not a comma decimal`))},
			{IntervalStart: at(4), IntervalEnd: at(5), Value: value("-3.333"), Source: model.SourceEarlyPublication, MovingAverage: value("4.889")},
			{IntervalStart: at(12), IntervalEnd: at(13)},
		},
	}
}

func TestChartSeries(t *testing.T) {
	graph, err := Chart(sampleDataset(), ChartOptions{})
	require.NoError(t, err)

	names := make(map[string]int)
	for _, s := range graph.Series {
		names[s.GetName()]++
	}
	// The malformed row splits the AE line into two segments.
	require.Equal(t, 2, names["AE"])
	require.Equal(t, 1, names["AE final"])
	require.Equal(t, 1, names["AE provisional"])
	require.Equal(t, 1, names["AE early publication"])
	require.Equal(t, 1, names["AE 1h MA"])
	require.Equal(t, 1, names["Spot price"])

	for _, s := range graph.Series {
		if s.GetName() == "AE final" {
			require.Equal(t, float64(chart.Disabled), s.GetStyle().StrokeWidth)
			require.Equal(t, 4.0, s.GetStyle().DotWidth)
		}
	}
	require.Equal(t, DefaultWidth, graph.Width)
}

func TestChartClampAxis(t *testing.T) {
	ds := sampleDataset()
	ds.ClampAxis = true

	graph, err := Chart(ds, ChartOptions{})
	require.NoError(t, err)
	require.Equal(t, DefaultClampMin, graph.YAxis.Range.GetMin())
	require.Equal(t, DefaultClampMax, graph.YAxis.Range.GetMax())

	ds.ClampAxis = false
	graph, err = Chart(ds, ChartOptions{})
	require.NoError(t, err)
	require.Less(t, graph.YAxis.Range.GetMin(), -3.333)
	require.Greater(t, graph.YAxis.Range.GetMax(), 80.5)
	require.Greater(t, graph.YAxis.Range.GetMin(), DefaultClampMin)
}

func TestChartNoData(t *testing.T) {
	ds := &model.Dataset{Window: model.TimeWindow{Start: day, End: day.Add(24 * time.Hour)}}
	_, err := Chart(ds, ChartOptions{})
	require.ErrorIs(t, err, ErrNoData)
}

func TestPNGSignature(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, sampleDataset(), ChartOptions{Width: 640, Height: 360}))
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG\r\n\x1a\n")))
}

func TestRowsJoinSpot(t *testing.T) {
	rows := Rows(sampleDataset())
	require.Len(t, rows, 5)
	require.Equal(t, "80.50", FormatValue(rows[0].SpotPrice))
	require.Equal(t, "80.50", FormatValue(rows[1].SpotPrice))
	require.Equal(t, "75.25", FormatValue(rows[3].SpotPrice))
	// 03:00 is past the last spot hour.
	require.False(t, rows[4].SpotPrice.Valid)
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(&buf, sampleDataset()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 6)
	require.Equal(t, tableHeader, records[0])
	require.Equal(t, []string{"2024-01-01T00:00:00Z", "2024-01-01T00:15:00Z", "12.50", "final", "12.50", "80.50", ""}, records[1])
	require.Equal(t, "", records[3][2])
	require.Equal(t, "early_publication", records[3][3])
	require.Contains(t, records[3][6], "malformed_value")
	require.Equal(t, "-3.33", records[4][2])
	require.Equal(t, "", records[5][3])
}

func TestXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, XLSX(&buf, sampleDataset()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{sheetAE, sheetSpot}, f.GetSheetList())

	aeRows, err := f.GetRows(sheetAE)
	require.NoError(t, err)
	require.Len(t, aeRows, 6)
	require.Equal(t, "ae_value", aeRows[0][2])
	require.Equal(t, "12.5", aeRows[1][2])

	spotRows, err := f.GetRows(sheetSpot)
	require.NoError(t, err)
	require.Len(t, spotRows, 3)
	require.Equal(t, "75.25", spotRows[2][2])
}

func TestWriteFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	require.NoError(t, WriteFile(path, func(w io.Writer) error {
		return CSV(w, sampleDataset())
	}))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Positive(t, info.Size())
}
