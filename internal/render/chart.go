package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/shopspring/decimal"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"aedash/internal/model"
)

// Series colours as hex without the leading '#'.
const (
	colorAELine      = "7f7f7f"
	colorFinal       = "2ca02c"
	colorProvisional = "ffbb78"
	colorEarly       = "1f77b4"
	colorMA          = "17becf"
	colorSpot        = "8e44ad"
)

const (
	DefaultWidth    = 1280
	DefaultHeight   = 720
	DefaultClampMin = -150.0
	DefaultClampMax = 300.0
)

// ErrNoData is returned when neither feed has a single plottable value.
var ErrNoData = errors.New("dataset has no plottable values")

// ChartOptions control PNG geometry and the value-axis clamp.
type ChartOptions struct {
	Width    int
	Height   int
	ClampMin float64
	ClampMax float64
}

func (o ChartOptions) withDefaults() ChartOptions {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.ClampMin >= o.ClampMax {
		o.ClampMin, o.ClampMax = DefaultClampMin, DefaultClampMax
	}
	return o
}

// Chart assembles the overlay chart: AE line, AE markers per source, the AE moving
// average and the spot price, all on one time axis.
func Chart(ds *model.Dataset, opts ChartOptions) (*chart.Chart, error) {
	opts = opts.withDefaults()

	var series, legend []chart.Series

	for i, seg := range segments(ds.Activation, func(r model.ReconciledRecord) decimal.NullDecimal { return r.Value }) {
		series = append(series, chart.TimeSeries{
			Name:    "AE",
			Style:   lineStyle(colorAELine, 1),
			XValues: seg.x,
			YValues: seg.y,
		})
		if i == 0 {
			legend = append(legend, legendEntry("AE", colorAELine, nil))
		}
	}

	for _, src := range model.Sources {
		recs := ds.BySource(src)
		if len(recs) == 0 {
			continue
		}
		x := make([]time.Time, len(recs))
		y := make([]float64, len(recs))
		for i, rec := range recs {
			x[i] = rec.IntervalStart
			y[i] = rec.Value.Decimal.InexactFloat64()
		}
		series = append(series, chart.TimeSeries{
			Name:    src.Label(),
			Style:   markerStyle(sourceColor(src)),
			XValues: x,
			YValues: y,
		})
		legend = append(legend, legendEntry(src.Label(), sourceColor(src), nil))
	}

	for i, seg := range segments(ds.Activation, func(r model.ReconciledRecord) decimal.NullDecimal { return r.MovingAverage }) {
		style := lineStyle(colorMA, 2)
		style.StrokeDashArray = []float64{6, 4}
		series = append(series, chart.TimeSeries{
			Name:    "AE 1h MA",
			Style:   style,
			XValues: seg.x,
			YValues: seg.y,
		})
		if i == 0 {
			legend = append(legend, legendEntry("AE 1h MA", colorMA, style.StrokeDashArray))
		}
	}

	if len(ds.Spot) > 0 {
		x := make([]time.Time, len(ds.Spot))
		y := make([]float64, len(ds.Spot))
		for i, p := range ds.Spot {
			x[i] = p.Start
			y[i] = p.MarketPrice.InexactFloat64()
		}
		style := lineStyle(colorSpot, 3)
		style.DotColor = style.StrokeColor
		style.DotWidth = 3
		series = append(series, chart.TimeSeries{
			Name:    "Spot price",
			Style:   style,
			XValues: x,
			YValues: y,
		})
		legend = append(legend, legendEntry("Spot price", colorSpot, nil))
	}

	if len(series) == 0 {
		return nil, ErrNoData
	}

	loc := ds.Window.Start.Location()
	graph := &chart.Chart{
		Title:  title(ds.Window),
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           "Time",
			ValueFormatter: timeFormatter(loc),
			Range:          xRange(ds.Window, series),
		},
		YAxis: chart.YAxis{
			Name: "EUR/MWh",
			ValueFormatter: func(v interface{}) string {
				return chart.FloatValueFormatterWithFormat(v, "%.0f")
			},
			Range: yRange(series, ds.ClampAxis, opts),
		},
		Series: series,
	}
	legendChart := &chart.Chart{Series: legend}
	graph.Elements = []chart.Renderable{chart.Legend(legendChart)}
	return graph, nil
}

// PNG renders the chart for ds to w.
func PNG(w io.Writer, ds *model.Dataset, opts ChartOptions) error {
	graph, err := Chart(ds, opts)
	if err != nil {
		return err
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

type segment struct {
	x []time.Time
	y []float64
}

// segments splits the records into runs of consecutive defined values so that
// undefined intervals show up as gaps.
func segments(records []model.ReconciledRecord, value func(model.ReconciledRecord) decimal.NullDecimal) []segment {
	var (
		out []segment
		cur segment
	)
	for _, rec := range records {
		v := value(rec)
		if !v.Valid {
			if len(cur.x) > 0 {
				out = append(out, cur)
				cur = segment{}
			}
			continue
		}
		cur.x = append(cur.x, rec.IntervalStart)
		cur.y = append(cur.y, v.Decimal.InexactFloat64())
	}
	if len(cur.x) > 0 {
		out = append(out, cur)
	}
	return out
}

func sourceColor(src model.RevisionSource) string {
	switch src {
	case model.SourceFinal:
		return colorFinal
	case model.SourceProvisional:
		return colorProvisional
	default:
		return colorEarly
	}
}

func lineStyle(hex string, width float64) chart.Style {
	return chart.Style{
		StrokeColor: drawing.ColorFromHex(hex),
		StrokeWidth: width,
	}
}

func markerStyle(hex string) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotColor:    drawing.ColorFromHex(hex),
		DotWidth:    4,
	}
}

// legendEntry is a stroke-only stand-in so marker series still get a visible swatch.
func legendEntry(name, hex string, dash []float64) chart.Series {
	return chart.TimeSeries{
		Name: name,
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex(hex),
			StrokeWidth:     3,
			StrokeDashArray: dash,
		},
	}
}

func title(w model.TimeWindow) string {
	if w.Start.IsZero() {
		return "AE vs spot price"
	}
	return fmt.Sprintf("AE vs spot price %s .. %s", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
}

func timeFormatter(loc *time.Location) chart.ValueFormatter {
	return func(v interface{}) string {
		f, ok := v.(float64)
		if !ok {
			return ""
		}
		return time.Unix(0, int64(f)).In(loc).Format("02.01 15:04")
	}
}

func timeValue(t time.Time) float64 {
	return float64(t.UnixNano())
}

// xRange spans the pass window, or the data when the window is unset.
func xRange(w model.TimeWindow, series []chart.Series) chart.Range {
	if !w.Start.IsZero() && w.End.After(w.Start) {
		return &chart.ContinuousRange{Min: timeValue(w.Start), Max: timeValue(w.End)}
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, t := range s.(chart.TimeSeries).XValues {
			lo = math.Min(lo, timeValue(t))
			hi = math.Max(hi, timeValue(t))
		}
	}
	if lo == hi {
		hi = lo + float64(time.Hour)
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

func yRange(series []chart.Series, clamp bool, opts ChartOptions) chart.Range {
	if clamp {
		return &chart.ContinuousRange{Min: opts.ClampMin, Max: opts.ClampMax}
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s.(chart.TimeSeries).YValues {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
