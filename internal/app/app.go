package app

import (
	"context"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"aedash/internal/alerting"
	"aedash/internal/config"
	"aedash/internal/fetcher"
	"aedash/internal/render"
	"aedash/internal/service"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

// Sources optionally replace the live feeds with saved payloads.
type Sources struct {
	SpotFile       string
	ActivationFile string
}

// RenderOptions select the pass and the files to write.
type RenderOptions struct {
	Date     string
	Days     int
	Clamp    bool
	PNGPath  string
	CSVPath  string
	XLSXPath string
	Sources  Sources
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Date    string
	Days    int
	Limit   int
	Sources Sources
	Out     io.Writer
}

// WatchOptions configure the periodic re-render.
type WatchOptions struct {
	Days    int
	Clamp   bool
	PNGPath string
}

// ArchiveOptions configure the per-day chart archive.
type ArchiveOptions struct {
	From    string
	To      string
	Dir     string
	Clamp   bool
	Workers int
	Sources Sources
}

func (a *App) newFetchers(src Sources) (fetcher.SpotFetcher, fetcher.ActivationFetcher) {
	var spot fetcher.SpotFetcher = fetcher.NewSpot(fetcher.SpotOptions{
		BaseURL:   a.Config.Spot.BaseURL,
		Timeout:   a.Config.Spot.RequestTimeout,
		UserAgent: a.Config.Spot.UserAgent,
	}, a.Logger)
	if src.SpotFile != "" {
		spot = &fetcher.SpotFile{Path: src.SpotFile}
	}

	var activation fetcher.ActivationFetcher = fetcher.NewActivation(fetcher.ActivationOptions{
		BaseURL:    a.Config.Activation.BaseURL,
		Language:   a.Config.Activation.Language,
		Resolution: a.Config.Activation.Resolution,
		Mode:       a.Config.Activation.Mode,
		Timeout:    a.Config.Activation.RequestTimeout,
		UserAgent:  a.Config.Activation.UserAgent,
	}, a.Logger)
	if src.ActivationFile != "" {
		activation = &fetcher.ActivationFile{Path: src.ActivationFile}
	}

	return spot, activation
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Enabled && a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) newService(src Sources, notifier alerting.Notifier) (*service.Service, error) {
	loc, err := a.Config.Window.Location()
	if err != nil {
		return nil, err
	}
	spot, activation := a.newFetchers(src)
	return service.New(service.Options{
		Location:        loc,
		SmoothingWindow: a.Config.Smoothing.Window,
		NotifyMalformed: a.Config.Alerting.NotifyMalformed,
	}, spot, activation, notifier, a.Logger), nil
}

func (a *App) chartOptions() render.ChartOptions {
	return render.ChartOptions{
		Width:    a.Config.Chart.Width,
		Height:   a.Config.Chart.Height,
		ClampMin: a.Config.Chart.ClampMin,
		ClampMax: a.Config.Chart.ClampMax,
	}
}

func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
}
