package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/farm-ng/hollywood/core/flow"
	"github.com/farm-ng/hollywood/core/graph"
)

// Pipeline is an executable, frozen compute graph. It is created by
// [Configure] and can be run any number of times sequentially; actor state
// carries over between runs, matching the run/cancel/resume behavior of the
// original system.
type Pipeline struct {
	topo  *graph.Topology
	cells []*cell
	log   *slog.Logger

	// rearms replace every edge and link queue with a fresh one; the
	// previous run closed them to signal quiescence.
	rearms []func()

	mu     sync.Mutex
	cancel context.CancelFunc
}

// Topology returns the frozen graph. It is read-only and safe for
// concurrent use.
func (p *Pipeline) Topology() *graph.Topology { return p.topo }

// Run starts one task per actor and blocks until the pipeline reaches
// quiescence (every actor terminated, no further messages possible) or the
// context is cancelled. A handler failure aborts the whole run and is
// returned wrapped in [ErrRuntimeFailure]; pipelines without a terminating
// source run until ctx is cancelled or [Pipeline.Stop] is called.
func (p *Pipeline) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.mu.Lock()
	p.cancel = cancel
	for _, rearm := range p.rearms {
		rearm()
	}
	p.mu.Unlock()

	p.log.Info("pipeline started", slog.Int("actors", len(p.cells)))

	g, gctx := errgroup.WithContext(runCtx)
	for _, c := range p.cells {
		g.Go(func() error { return c.run(gctx) })
	}

	if err := g.Wait(); err != nil {
		p.log.Error("pipeline aborted", slog.Any("error", err))
		return fmt.Errorf("pipeline aborted: %w", err)
	}
	p.log.Info("pipeline finished")
	return nil
}

// Stop raises the shared cancellation signal of the current run. Every
// actor observes it at its next suspension point and terminates. Stop is
// safe to call from any goroutine, including actor handlers, and is a no-op
// when the pipeline is not running.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
}

// FlowGraph renders the pipeline's topology as a text diagram.
func (p *Pipeline) FlowGraph() string {
	return flow.Render(p.topo)
}

// ActorStates reports the lifecycle phase of every actor, keyed by unique
// node name. Intended for tests and diagnostics.
func (p *Pipeline) ActorStates() map[string]CellState {
	states := make(map[string]CellState, len(p.cells))
	for _, c := range p.cells {
		states[c.name] = c.State()
	}
	return states
}
