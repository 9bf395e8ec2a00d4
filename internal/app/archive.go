package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"aedash/internal/service"
	"aedash/internal/window"
)

// maxArchiveDays bounds one archive run.
const maxArchiveDays = 366

// Archive renders one chart and one CSV per day in [From, To].
func (a *App) Archive(ctx context.Context, opts ArchiveOptions) error {
	dates, err := archiveDates(opts.From, opts.To)
	if err != nil {
		return err
	}
	if opts.Dir == "" {
		return errors.New("--dir must be provided")
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	svc, err := a.newService(opts.Sources, nil)
	if err != nil {
		return err
	}

	var processed, failed atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, date := range dates {
		if gctx.Err() != nil {
			break
		}
		date := date // per-iteration copy (go.mod targets Go 1.21 loop semantics)
		g.Go(func() error {
			ds, err := svc.Run(gctx, service.Request{Date: date, Days: 1, ClampAxis: opts.Clamp})
			if err == nil {
				base := filepath.Join(opts.Dir, "ae_spot_"+date)
				err = a.writeOutputs(ds, base+".png", base+".csv", "")
			}
			if err != nil {
				failed.Add(1)
				a.Logger.Error().Err(err).Str("date", date).Msg("archive day failed")
				return nil
			}
			processed.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	a.Logger.Info().Int32("processed", processed.Load()).Int32("failed", failed.Load()).Msg("archive complete")
	if failed.Load() > 0 {
		return fmt.Errorf("%d of %d days failed, check the log", failed.Load(), len(dates))
	}
	return nil
}

// archiveDates lists the calendar dates from..to inclusive.
func archiveDates(from, to string) ([]string, error) {
	if from == "" || to == "" {
		return nil, errors.New("--from and --to must be provided")
	}
	start, err := time.Parse(window.DateLayout, from)
	if err != nil {
		return nil, fmt.Errorf("invalid --from value: %w", err)
	}
	end, err := time.Parse(window.DateLayout, to)
	if err != nil {
		return nil, fmt.Errorf("invalid --to value: %w", err)
	}
	if end.Before(start) {
		return nil, errors.New("--from must not be after --to")
	}

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if len(dates) == maxArchiveDays {
			return nil, fmt.Errorf("archive range exceeds %d days", maxArchiveDays)
		}
		dates = append(dates, d.Format(window.DateLayout))
	}
	return dates, nil
}
