package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"WalkSim/pkg/config"
	xhttp "WalkSim/pkg/http"
	pkgkafka "WalkSim/pkg/kafka"
	applogger "WalkSim/pkg/logger"
)

// Runner is a background loop bound to the application context.
type Runner interface {
	Run(ctx context.Context)
}

// Worker is a component with explicit start and stop.
type Worker interface {
	Start() error
	Stop(ctx context.Context) error
}

type namedCloser struct {
	name string
	c    io.Closer
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	handlers   []xhttp.Handler
	httpServer *xhttp.Server

	consumer *pkgkafka.Consumer
	kh       pkgkafka.MessageHandler
	queue    Worker
	runners  []Runner
	closers  []namedCloser
}

// Option configures optional App components.
type Option func(*App)

// WithConsumer starts consumer with handler kh registered.
func WithConsumer(consumer *pkgkafka.Consumer, kh pkgkafka.MessageHandler) Option {
	return func(a *App) {
		a.consumer = consumer
		a.kh = kh
	}
}

// WithQueue starts and stops a job queue with the app.
func WithQueue(q Worker) Option {
	return func(a *App) { a.queue = q }
}

// WithRetrainer runs r in the background until shutdown.
func WithRetrainer(r Runner) Option {
	return func(a *App) { a.runners = append(a.runners, r) }
}

// WithCloser registers a resource closed on shutdown, in reverse order.
func WithCloser(name string, c io.Closer) Option {
	return func(a *App) { a.closers = append(a.closers, namedCloser{name: name, c: c}) }
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, handlers []xhttp.Handler, opts ...Option) *App {
	if l == nil {
		l = applogger.Nop()
	}
	a := &App{cfg: cfg, l: l, handlers: handlers}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.run(ctx)
}

func (a *App) run(ctx context.Context) error {
	bg, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer(a.handlers,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(true),
		xhttp.WithMetricsPath(metricsPath),
		xhttp.WithRateLimit(a.cfg.Server.RateLimit.Capacity, a.cfg.Server.RateLimit.RefillPerSec),
		xhttp.WithLogger(a.l),
	)

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		if err := a.consumer.Start(); err != nil {
			return err
		}
		a.l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if a.queue != nil {
		if err := a.queue.Start(); err != nil {
			return err
		}
		a.l.Info("job queue started")
	}

	for _, r := range a.runners {
		go r.Run(bg)
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("walksim started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("backend", a.cfg.Backend.Type),
		applogger.Strings("symbols", a.cfg.Simulation.Symbols),
	)

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var firstErr error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		firstErr = err
	}
	if a.queue != nil {
		if err := a.queue.Stop(ctx); err != nil {
			a.l.Warn("job queue stop error", applogger.Error(err))
		}
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		nc := a.closers[i]
		if err := nc.c.Close(); err != nil {
			a.l.Warn("close error", applogger.String("resource", nc.name), applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return firstErr
}
