package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"aedash/internal/model"
	"aedash/internal/render"
	"aedash/internal/service"
)

// Show runs one pass and prints the resolved bounds, a summary and the joined table.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	svc, err := a.newService(opts.Sources, nil)
	if err != nil {
		return err
	}

	ds, err := svc.Run(ctx, service.Request{
		Date: opts.Date,
		Days: a.Config.ResolveDays(opts.Days),
	})
	if err != nil {
		return err
	}

	printHeader(out, ds)

	rows := render.Rows(ds)
	if len(rows) == 0 {
		fmt.Fprintln(out, "no AE intervals in window")
		return nil
	}
	if opts.Limit > 0 && len(rows) > opts.Limit {
		rows = rows[len(rows)-opts.Limit:]
	}

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Interval start\tAE\tSource\tAE 1h MA\tSpot\tError")
	for _, row := range rows {
		errMsg := ""
		if row.Err != nil {
			errMsg = sanitizeInline(row.Err.Error())
		}
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%s\n",
			row.IntervalStart.Format(time.RFC3339),
			dash(render.FormatValue(row.Value)),
			dash(row.Source.String()),
			dash(render.FormatValue(row.MovingAverage)),
			dash(render.FormatValue(row.SpotPrice)),
			errMsg,
		)
	}

	return writer.Flush()
}

func printHeader(out io.Writer, ds *model.Dataset) {
	s := ds.Summary()
	fmt.Fprintf(out, "Pass:  %s\n", ds.PassID)
	fmt.Fprintf(out, "Start: %s (%d ms)\n", ds.Window.StartText(), ds.Window.StartMillis())
	fmt.Fprintf(out, "End:   %s (%d ms)\n", ds.Window.EndText(), ds.Window.EndMillis())
	fmt.Fprintf(out, "AE intervals: %d (valued %d, missing %d, malformed %d)\n", s.Intervals, s.Valued, s.Missing, s.Malformed)

	parts := make([]string, 0, len(model.Sources))
	for _, src := range model.Sources {
		parts = append(parts, fmt.Sprintf("%s=%d", src, s.BySource[src.String()]))
	}
	fmt.Fprintf(out, "By source: %s\n", strings.Join(parts, " "))
	fmt.Fprintf(out, "Spot points: %d, mean %s\n", s.SpotPoints, dash(render.FormatValue(s.MeanSpot)))
	fmt.Fprintf(out, "Latest AE 1h MA: %s\n\n", dash(render.FormatValue(s.LatestMA)))
}

func dash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
