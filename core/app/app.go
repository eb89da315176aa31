package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/farm-ng/hollywood/core/pipeline"
)

// Config configures an [App]. The zero value is usable.
type Config struct {
	// Context bounds the whole application; background when nil.
	Context context.Context
	// Log is the base logger; slog.Default when nil.
	Log *slog.Logger
	// Name identifies the app in logs; a generated name when empty.
	Name string
	// QueueSize is the per-edge queue capacity (see pipeline.Options).
	QueueSize int
	// Metrics instruments the pipeline (e.g. adapters/prometheus).
	Metrics pipeline.PipelineMetrics
	// NoSignals disables the interrupt handler; by default an OS
	// interrupt stops the run gracefully.
	NoSignals bool
}

// App couples one configured pipeline with application lifecycle: signal
// handling, a scoped logger and graceful shutdown.
type App struct {
	ctx       context.Context
	cancelCtx context.CancelFunc
	log       *slog.Logger
	noSignals bool
	p         *pipeline.Pipeline
}

// New configures the pipeline with defaulted options and wraps it.
func New(config Config, routine func(b *pipeline.Builder) error) (*App, error) {
	if config.Name == "" {
		config.Name = fmt.Sprintf("hollywood-%s", gonanoid.Must(6))
	}
	if config.Log == nil {
		config.Log = slog.Default()
	}
	if config.Context == nil {
		config.Context = context.Background()
	}

	a := &App{
		log:       config.Log.With(slog.String("app", config.Name)),
		noSignals: config.NoSignals,
	}
	a.ctx, a.cancelCtx = context.WithCancel(config.Context)

	p, err := pipeline.Configure(pipeline.Options{
		Logger:    a.log,
		QueueSize: config.QueueSize,
		Metrics:   config.Metrics,
	}, routine)
	if err != nil {
		return nil, err
	}
	a.p = p
	return a, nil
}

// Pipeline exposes the configured pipeline, e.g. for FlowGraph.
func (a *App) Pipeline() *pipeline.Pipeline { return a.p }

// Run drives the pipeline to quiescence, cancellation or interrupt.
func (a *App) Run() error {
	ctx := a.ctx
	if !a.noSignals {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(a.ctx, os.Interrupt)
		defer stop()
	}
	return a.p.Run(ctx)
}

// Stop cancels the application context; a running pipeline terminates at
// its next suspension point.
func (a *App) Stop() {
	a.cancelCtx()
}

// Run configures and runs in one call.
func Run(config Config, routine func(b *pipeline.Builder) error) error {
	a, err := New(config, routine)
	if err != nil {
		return err
	}
	return a.Run()
}
