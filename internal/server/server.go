// Package server exposes passes over HTTP: an HTML dashboard, the chart as PNG and the dataset as JSON.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"

	"aedash/internal/apperr"
	"aedash/internal/model"
	aerender "aedash/internal/render"
	"aedash/internal/service"
	"aedash/internal/window"
)

// Runner executes one pass per request.
type Runner interface {
	Run(ctx context.Context, req service.Request) (*model.Dataset, error)
	Location() *time.Location
}

var _ Runner = (*service.Service)(nil)

// Options configure the HTTP server.
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	DefaultDays     int
	Chart           aerender.ChartOptions
}

// Server serves the dashboard.
type Server struct {
	runner Runner
	opts   Options
	logger zerolog.Logger
	now    func() time.Time
}

// New constructs the dashboard server.
func New(opts Options, runner Runner, logger zerolog.Logger) *Server {
	if opts.DefaultDays <= 0 {
		opts.DefaultDays = window.MinDays
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	return &Server{
		runner: runner,
		opts:   opts,
		logger: logger.With().Str("component", "server").Logger(),
		now:    time.Now,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/chart.png", s.handleChart)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, "ok")
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/dataset", s.handleDataset)
		r.Get("/dates", s.handleDates)
	})
	return r
}

// ListenAndServe blocks until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.Routes(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.opts.Addr).Msg("dashboard listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown dashboard: %w", err)
	}
	s.logger.Info().Msg("dashboard stopped")
	return nil
}

// request parses date, days and clamp from the query string.
func (s *Server) request(r *http.Request) (service.Request, error) {
	q := r.URL.Query()
	req := service.Request{
		Date: strings.TrimSpace(q.Get("date")),
		Days: s.opts.DefaultDays,
	}
	if raw := strings.TrimSpace(q.Get("days")); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return req, apperr.Wrap(apperr.InvalidInput, "days must be an integer", err)
		}
		req.Days = days
	}
	if raw := strings.TrimSpace(q.Get("clamp")); raw != "" {
		clamp, err := strconv.ParseBool(raw)
		if err != nil && !strings.EqualFold(raw, "on") {
			return req, apperr.Wrap(apperr.InvalidInput, "clamp must be a boolean", err)
		}
		req.ClampAxis = clamp || strings.EqualFold(raw, "on")
	}
	return req, nil
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	req, err := s.request(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	ds, err := s.runner.Run(r.Context(), req)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := aerender.PNG(&buf, ds, s.opts.Chart); err != nil {
		s.renderError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Error().Err(err).Str("pass_id", ds.PassID.String()).Msg("failed to stream chart")
	}
}

type datasetResponse struct {
	PassID      string                  `json:"pass_id"`
	Start       time.Time               `json:"start"`
	End         time.Time               `json:"end"`
	StartMillis int64                   `json:"start_ms"`
	EndMillis   int64                   `json:"end_ms"`
	StartText   string                  `json:"start_text"`
	EndText     string                  `json:"end_text"`
	ClampAxis   bool                    `json:"clamp_axis"`
	Summary     model.Summary           `json:"summary"`
	Spot        []model.SpotPriceRecord `json:"spot"`
	Activation  []activationJSON        `json:"activation"`
}

type activationJSON struct {
	model.ReconciledRecord
	Error string `json:"error,omitempty"`
}

func newDatasetResponse(ds *model.Dataset) datasetResponse {
	resp := datasetResponse{
		PassID:      ds.PassID.String(),
		Start:       ds.Window.Start,
		End:         ds.Window.End,
		StartMillis: ds.Window.StartMillis(),
		EndMillis:   ds.Window.EndMillis(),
		StartText:   ds.Window.StartText(),
		EndText:     ds.Window.EndText(),
		ClampAxis:   ds.ClampAxis,
		Summary:     ds.Summary(),
		Spot:        ds.Spot,
		Activation:  make([]activationJSON, len(ds.Activation)),
	}
	for i, rec := range ds.Activation {
		resp.Activation[i] = activationJSON{ReconciledRecord: rec}
		if rec.Err != nil {
			resp.Activation[i].Error = rec.Err.Error()
		}
	}
	return resp
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	req, err := s.request(r)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	ds, err := s.runner.Run(r.Context(), req)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	render.JSON(w, r, newDatasetResponse(ds))
}

func (s *Server) handleDates(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"dates":        window.RecentDates(s.now(), window.MaxDays, s.runner.Location()),
		"default_days": s.opts.DefaultDays,
		"min_days":     window.MinDays,
		"max_days":     window.MaxDays,
	})
}

// Problem is an RFC 7807 error body.
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Row    *int   `json:"row,omitempty"`
	Trace  string `json:"trace_id,omitempty"`
}

// Render implements render.Renderer.
func (p Problem) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, p.Status)
	return nil
}

func statusFor(err error) int {
	if errors.Is(err, aerender.ErrNoData) {
		return http.StatusNotFound
	}
	switch apperr.KindOf(err) {
	case apperr.InvalidInput:
		return http.StatusBadRequest
	case apperr.Upstream:
		return http.StatusBadGateway
	case apperr.DataIntegrity:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	problem := Problem{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: err.Error(),
		Trace:  middleware.GetReqID(r.Context()),
	}
	if kind := apperr.KindOf(err); kind != "" {
		problem.Type = "urn:aedash:" + string(kind)
	}
	if row := apperr.RowOf(err); row != apperr.NoRow {
		problem.Row = &row
	}

	event := s.logger.Warn()
	if status >= http.StatusInternalServerError {
		event = s.logger.Error()
	}
	event.Err(err).Int("status", status).Str("path", r.URL.Path).Msg("request failed")

	if err := render.Render(w, r, problem); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(started)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request served")
	})
}
