package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"aedash/internal/alerting"
	"aedash/internal/align"
	"aedash/internal/apperr"
	"aedash/internal/fetcher"
	"aedash/internal/logging"
	"aedash/internal/model"
	"aedash/internal/reconcile"
	"aedash/internal/scheduler"
	"aedash/internal/smoothing"
	"aedash/internal/window"
)

// Options configure every pass the service runs.
type Options struct {
	Location        *time.Location
	SmoothingWindow int
	NotifyMalformed bool
}

// Request is the user's selection for one pass.
type Request struct {
	Date      string
	Days      int
	ClampAxis bool
}

// Pass is the immutable context of one reconciliation pass.
type Pass struct {
	ID              uuid.UUID
	Window          model.TimeWindow
	Location        *time.Location
	SmoothingWindow int
	ClampAxis       bool
}

// Service orchestrates fetching, alignment, reconciliation and smoothing.
type Service struct {
	spot       fetcher.SpotFetcher
	activation fetcher.ActivationFetcher
	notifier   alerting.Notifier
	logger     zerolog.Logger
	opts       Options
	now        func() time.Time
}

// New constructs the pass service. notifier may be nil.
func New(opts Options, spot fetcher.SpotFetcher, activation fetcher.ActivationFetcher, notifier alerting.Notifier, logger zerolog.Logger) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.SmoothingWindow <= 0 {
		opts.SmoothingWindow = smoothing.DefaultWindow
	}
	return &Service{
		spot:       spot,
		activation: activation,
		notifier:   notifier,
		logger:     logger.With().Str("component", "service").Logger(),
		opts:       opts,
		now:        time.Now,
	}
}

// Location is the zone picked dates are interpreted in.
func (s *Service) Location() *time.Location {
	return s.opts.Location
}

// NewPass resolves a request into a pass. An empty date means today.
func (s *Service) NewPass(req Request) (Pass, error) {
	date := req.Date
	if date == "" {
		date = window.Today(s.now(), s.opts.Location)
	}
	w, err := window.Resolve(date, req.Days, s.opts.Location)
	if err != nil {
		return Pass{}, err
	}
	return s.passFor(w, req.ClampAxis), nil
}

func (s *Service) passFor(w model.TimeWindow, clamp bool) Pass {
	return Pass{
		ID:              uuid.New(),
		Window:          w,
		Location:        s.opts.Location,
		SmoothingWindow: s.opts.SmoothingWindow,
		ClampAxis:       clamp,
	}
}

// Run resolves the request and executes one pass.
func (s *Service) Run(ctx context.Context, req Request) (*model.Dataset, error) {
	pass, err := s.NewPass(req)
	if err != nil {
		return nil, err
	}
	return s.Execute(ctx, pass)
}

// Execute fetches both feeds for the pass window and derives the dataset.
// Malformed AE values are logged and kept on their records; everything else aborts.
func (s *Service) Execute(ctx context.Context, pass Pass) (*model.Dataset, error) {
	logger := logging.ForPass(s.logger, pass.ID)
	started := time.Now()

	spotRows, activationRows, err := s.fetch(ctx, pass.Window)
	if err != nil {
		logger.Error().Err(err).Str("kind", string(apperr.KindOf(err))).Msg("pass aborted during fetch")
		return nil, err
	}

	prices, intervals, err := align.Align(spotRows, activationRows, pass.Location)
	if err != nil {
		logger.Error().Err(err).Int("row", apperr.RowOf(err)).Msg("pass aborted during alignment")
		return nil, err
	}

	records := reconcile.Reconcile(intervals)
	for _, rec := range records {
		if rec.Err == nil {
			continue
		}
		logger.Warn().Err(rec.Err).
			Int("row", apperr.RowOf(rec.Err)).
			Str("source", rec.Source.String()).
			Time("interval_start", rec.IntervalStart).
			Msg("malformed AE value skipped")
	}
	records = smoothing.Apply(records, pass.SmoothingWindow)

	ds := &model.Dataset{
		PassID:     pass.ID,
		Window:     pass.Window,
		Spot:       prices,
		Activation: records,
		ClampAxis:  pass.ClampAxis,
	}

	summary := ds.Summary()
	logger.Info().
		Str("start", pass.Window.StartText()).
		Str("end", pass.Window.EndText()).
		Int("spot_points", summary.SpotPoints).
		Int("intervals", summary.Intervals).
		Int("valued", summary.Valued).
		Int("malformed", summary.Malformed).
		Dur("elapsed", time.Since(started)).
		Msg("pass complete")
	return ds, nil
}

// fetch queries both feeds concurrently; the first failure cancels the other.
func (s *Service) fetch(ctx context.Context, w model.TimeWindow) ([]model.SpotRow, []model.ActivationRow, error) {
	var (
		spotRows       []model.SpotRow
		activationRows []model.ActivationRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.spot.FetchSpot(gctx, w)
		if err != nil {
			return fmt.Errorf("fetch spot: %w", err)
		}
		spotRows = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.activation.FetchActivation(gctx, w)
		if err != nil {
			return fmt.Errorf("fetch activation: %w", err)
		}
		activationRows = rows
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return spotRows, activationRows, nil
}

// Sink consumes the dataset of a scheduled pass.
type Sink func(ctx context.Context, ds *model.Dataset) error

// WatchOptions select the rolling window re-run on every tick.
type WatchOptions struct {
	Days      int
	ClampAxis bool
}

// Watch runs a pass over the trailing window on every scheduler tick.
func (s *Service) Watch(ctx context.Context, sched *scheduler.Scheduler, opts WatchOptions, sink Sink) error {
	if sched == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return sched.Run(ctx, func(ctx context.Context, tick time.Time) error {
		return s.ProcessTick(ctx, tick, opts, sink)
	})
}

// ProcessTick 执行单次定时计算, 结束于 tick 所在日期。
func (s *Service) ProcessTick(ctx context.Context, tick time.Time, opts WatchOptions, sink Sink) error {
	w, err := window.Trailing(tick, opts.Days, s.opts.Location)
	if err != nil {
		return err
	}
	pass := s.passFor(w, opts.ClampAxis)

	ds, err := s.Execute(ctx, pass)
	if err != nil {
		s.notify(ctx, alerting.Notification{PassID: pass.ID, Tick: tick, Window: w, Err: err})
		return err
	}

	if sink != nil {
		if err := sink(ctx, ds); err != nil {
			err = fmt.Errorf("deliver dataset: %w", err)
			s.notify(ctx, alerting.Notification{PassID: pass.ID, Tick: tick, Window: w, Err: err})
			return err
		}
	}

	if malformed := ds.Malformed(); s.opts.NotifyMalformed && len(malformed) > 0 {
		summary := ds.Summary()
		s.notify(ctx, alerting.Notification{
			PassID:    pass.ID,
			Tick:      tick,
			Window:    w,
			Summary:   &summary,
			Malformed: malformed,
		})
	}
	return nil
}

func (s *Service) notify(ctx context.Context, note alerting.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, note); err != nil {
		s.logger.Error().Err(err).Str("pass_id", note.PassID.String()).Msg("failed to dispatch notification")
	}
}
