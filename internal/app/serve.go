package app

import (
	"context"

	"aedash/internal/server"
)

// Serve runs the dashboard until interrupted. Every request is its own pass.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := signalContext(ctx)
	defer cancel()

	svc, err := a.newService(Sources{}, nil)
	if err != nil {
		return err
	}

	srv := server.New(server.Options{
		Addr:            a.Config.Server.Addr,
		ReadTimeout:     a.Config.Server.ReadTimeout,
		WriteTimeout:    a.Config.Server.WriteTimeout,
		ShutdownTimeout: a.Config.Server.ShutdownTimeout,
		DefaultDays:     a.Config.Window.DefaultDays,
		Chart:           a.chartOptions(),
	}, svc, a.Logger)

	return srv.ListenAndServe(ctx)
}
