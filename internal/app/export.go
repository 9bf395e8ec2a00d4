package app

import (
	"context"
	"errors"
	"io"

	"aedash/internal/model"
	"aedash/internal/render"
	"aedash/internal/service"
)

// Render runs one pass and writes the chart and/or tables.
func (a *App) Render(ctx context.Context, opts RenderOptions) error {
	if opts.PNGPath == "" && opts.CSVPath == "" && opts.XLSXPath == "" {
		return errors.New("at least one of --png, --csv or --xlsx must be provided")
	}

	svc, err := a.newService(opts.Sources, nil)
	if err != nil {
		return err
	}

	ds, err := svc.Run(ctx, service.Request{
		Date:      opts.Date,
		Days:      a.Config.ResolveDays(opts.Days),
		ClampAxis: opts.Clamp,
	})
	if err != nil {
		return err
	}

	return a.writeOutputs(ds, opts.PNGPath, opts.CSVPath, opts.XLSXPath)
}

func (a *App) writeOutputs(ds *model.Dataset, pngPath, csvPath, xlsxPath string) error {
	chartOpts := a.chartOptions()
	outputs := []struct {
		path  string
		write func(io.Writer) error
	}{
		{pngPath, func(w io.Writer) error { return render.PNG(w, ds, chartOpts) }},
		{csvPath, func(w io.Writer) error { return render.CSV(w, ds) }},
		{xlsxPath, func(w io.Writer) error { return render.XLSX(w, ds) }},
	}

	for _, out := range outputs {
		if out.path == "" {
			continue
		}
		if err := render.WriteFile(out.path, out.write); err != nil {
			return err
		}
		a.Logger.Info().Str("path", out.path).Str("pass_id", ds.PassID.String()).Msg("output written")
	}
	return nil
}
