package app

import (
	"context"
	"errors"
	"io"

	"aedash/internal/model"
	"aedash/internal/render"
	"aedash/internal/scheduler"
	"aedash/internal/service"
)

// Watch re-renders the trailing window on every scheduler tick until interrupted.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	ctx, cancel := signalContext(ctx)
	defer cancel()

	if opts.Days <= 0 {
		opts.Days = a.Config.Watch.Days
	}
	if opts.PNGPath == "" {
		opts.PNGPath = a.Config.Watch.PNGPath
	}
	opts.Clamp = opts.Clamp || a.Config.Watch.Clamp

	sched, err := scheduler.New(scheduler.Options{
		Interval:     a.Config.Watch.Interval,
		AlignToStart: a.Config.Watch.AlignToInterval,
		StartupDelay: a.Config.Watch.StartupDelay,
		Immediate:    true,
	}, a.Logger)
	if err != nil {
		return err
	}

	notifier := a.newNotifier()
	if notifier == nil {
		a.Logger.Warn().Msg("alerting not configured; watch failures are only logged")
	}

	svc, err := a.newService(Sources{}, notifier)
	if err != nil {
		return err
	}

	chartOpts := a.chartOptions()
	sink := func(ctx context.Context, ds *model.Dataset) error {
		return render.WriteFile(opts.PNGPath, func(w io.Writer) error {
			return render.PNG(w, ds, chartOpts)
		})
	}

	a.Logger.Info().Int("days", opts.Days).Str("png", opts.PNGPath).Dur("interval", a.Config.Watch.Interval).Msg("starting watch")
	err = svc.Watch(ctx, sched, service.WatchOptions{Days: opts.Days, ClampAxis: opts.Clamp}, sink)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("watch terminated with error")
		return err
	}

	a.Logger.Info().Msg("watch stopped")
	return nil
}
