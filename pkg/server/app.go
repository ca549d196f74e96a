package server

import (
	"context"
	"time"

	xhttp "QuantFuse/pkg/http"
	applogger "QuantFuse/pkg/logger"
)

// Stream is a background feed started before the HTTP server.
type Stream interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

type Options struct {
	Mode            string
	ShutdownTimeout time.Duration
}

// App encapsulates the entire application lifecycle.
type App struct {
	opts   Options
	http   *xhttp.Server
	stream Stream
	log    *applogger.Logger
}

// New creates a new App. stream may be nil.
func New(opts Options, httpServer *xhttp.Server, stream Stream, log *applogger.Logger) *App {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if log == nil {
		log = applogger.Nop()
	}
	return &App{
		opts:   opts,
		http:   httpServer,
		stream: stream,
		log:    log.Component("app"),
	}
}

// Run starts the application and blocks until ctx is done. A stream that
// fails to start is logged and the HTTP API keeps serving.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting", applogger.String("mode", a.opts.Mode))

	if a.stream != nil {
		if err := a.stream.Start(ctx); err != nil {
			a.log.Error("trade stream start failed", applogger.Error(err))
		} else {
			a.log.Info("trade stream started")
		}
	}

	if a.http != nil {
		if err := a.http.Start(); err != nil {
			a.log.Error("http server start error", applogger.Error(err))
			return err
		}
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.opts.ShutdownTimeout)
	defer cancel()

	if a.http != nil {
		if err := a.http.Stop(ctx); err != nil {
			a.log.Error("http shutdown error", applogger.Error(err))
		}
	}
	if a.stream != nil {
		if err := a.stream.Shutdown(ctx); err != nil {
			a.log.Warn("trade stream stop error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
