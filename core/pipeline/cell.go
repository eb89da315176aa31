package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"runtime/debug"
	"sync/atomic"
	"time"
)

// CellState is an actor task's lifecycle phase.
type CellState int32

const (
	StateCreated CellState = iota
	StateRunning
	StateDraining
	StateTerminated
)

func (s CellState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateTerminated:
		return "terminated"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// inEdge is the consuming end of one feed-forward edge.
type inEdge struct {
	q        *edgeQueue
	label    string
	port     string
	dispatch func(*Ctx, any) error
}

// inReqEdge is the serving end of one request-reply link.
type inReqEdge struct {
	link  *reqLink
	port  string
	serve func(*Ctx, any) (any, error)
}

type tickSource struct {
	every time.Duration // <= 0 fires exactly once
	fn    func(*Ctx) error
}

type eventSource struct {
	ch reflect.Value
	fn func(*Ctx, reflect.Value) error
}

// cell is the runtime state of one actor: its inbound edge queues, optional
// tick/event sources and lifecycle hooks. The cell's run loop is the only
// goroutine that ever invokes the actor's handlers, which is what makes the
// actor's state safe without locks.
type cell struct {
	name    string
	log     *slog.Logger
	metrics PipelineMetrics
	state   atomic.Int32

	inEdges []*inEdge
	inReqs  []*inReqEdge
	tick    *tickSource
	event   *eventSource
	flush   func(*Ctx) error

	// closers shut the cell's outbound edge and request queues, signalling
	// downstream actors that this producer has terminated.
	closers []func()
}

func newCell(name string, log *slog.Logger, m PipelineMetrics) *cell {
	c := &cell{name: name, log: log.With(slog.String("actor", name)), metrics: m}
	c.state.Store(int32(StateCreated))
	return c
}

func (c *cell) setState(s CellState) {
	c.state.Store(int32(s))
	c.metrics.ActorState(c.name, s)
}

// State returns the cell's current lifecycle phase.
func (c *cell) State() CellState { return CellState(c.state.Load()) }

// fatal classifies a handler error. Cancellation surfacing through a
// handler (e.g. a send suspended on a full queue when the run stops) is a
// clean shutdown, not a runtime failure.
func (c *cell) fatal(where string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return fmt.Errorf("%w: actor %q %s: %v", ErrRuntimeFailure, c.name, where, err)
}

// branch describes what one reflect.Select case maps to. Exactly one field
// is set (the zero branch is the cancellation case).
type branch struct {
	edge    *inEdge
	req     *inReqEdge
	isTick  bool
	isEvent bool
}

// run drives the actor until quiescence or cancellation.
//
// The loop is a multi-way wait over the run context, the tick/event source
// and every inbound edge and request queue; whichever arrives first is
// handled, one invocation at a time. A closed queue is removed from the
// wait set once drained.
//
// Draining is driven by the feed-forward graph alone: when the tick/event
// source is exhausted and every inbound edge is closed and drained, the
// cell flushes and closes its own outbound queues and request links, which
// is what lets termination cascade down the acyclic graph. Open in-request
// channels are still served through the drain (feedback callers sit
// downstream and may have queued input left); they never keep a pipeline
// alive on their own, and once every caller has drained the cell
// terminates.
func (c *cell) run(ctx context.Context) (err error) {
	outputsClosed := false
	closeOutputs := func() {
		if outputsClosed {
			return
		}
		outputsClosed = true
		for _, closeQueue := range c.closers {
			closeQueue()
		}
	}

	defer func() {
		if r := recover(); r != nil {
			c.log.Error("actor panicked",
				slog.Any("recovered", r),
				slog.String("stack", string(debug.Stack())))
			err = fmt.Errorf("%w: actor %q panicked: %v", ErrRuntimeFailure, c.name, r)
		}
		closeOutputs()
		c.setState(StateTerminated)
	}()

	c.setState(StateRunning)

	cases := []reflect.SelectCase{{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())}}
	branches := []branch{{}}

	var ticker *time.Ticker
	tickOnce := false
	if c.tick != nil {
		var tickCh <-chan time.Time
		if c.tick.every > 0 {
			ticker = time.NewTicker(c.tick.every)
			defer ticker.Stop()
			tickCh = ticker.C
		} else {
			tickOnce = true
			timer := time.NewTimer(0)
			defer timer.Stop()
			tickCh = timer.C
		}
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(tickCh)})
		branches = append(branches, branch{isTick: true})
	}
	if c.event != nil {
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: c.event.ch})
		branches = append(branches, branch{isEvent: true})
	}
	for _, e := range c.inEdges {
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(e.q.ch)})
		branches = append(branches, branch{edge: e})
	}
	for _, r := range c.inReqs {
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(r.link.ch)})
		branches = append(branches, branch{req: r})
	}

	feedForward := len(cases) - 1 - len(c.inReqs)

	drop := func(i int) {
		if branches[i].req == nil {
			feedForward--
		}
		cases = append(cases[:i], cases[i+1:]...)
		branches = append(branches[:i], branches[i+1:]...)
	}

	draining := false
	for {
		if !draining && feedForward == 0 {
			// upstream is exhausted and the last feed-forward input
			// has been handled: flush, then let downstream drain
			c.setState(StateDraining)
			draining = true
			if c.flush != nil {
				hctx := &Ctx{Context: ctx, cell: c, log: c.log, at: time.Now()}
				if flushErr := c.flush(hctx); flushErr != nil {
					if f := c.fatal("flush", flushErr); f != nil {
						return f
					}
				}
			}
			closeOutputs()
		}
		if len(cases) == 1 {
			return nil
		}

		chosen, recv, ok := reflect.Select(cases)
		if chosen == 0 {
			// cancelled: terminate directly, discarding unflushed output
			return nil
		}
		br := branches[chosen]

		switch {
		case br.isTick:
			hctx := &Ctx{Context: ctx, cell: c, log: c.log, at: time.Now()}
			tickErr := c.tick.fn(hctx)
			switch {
			case errors.Is(tickErr, ErrDone):
				drop(chosen)
			case tickErr != nil:
				if f := c.fatal("tick", tickErr); f != nil {
					return f
				}
			case tickOnce:
				drop(chosen)
			}

		case br.isEvent:
			if !ok {
				drop(chosen)
				continue
			}
			hctx := &Ctx{Context: ctx, cell: c, log: c.log, at: time.Now()}
			evErr := c.event.fn(hctx, recv)
			switch {
			case errors.Is(evErr, ErrDone):
				drop(chosen)
			case evErr != nil:
				if f := c.fatal("event", evErr); f != nil {
					return f
				}
			}

		case br.edge != nil:
			if !ok {
				drop(chosen)
				continue
			}
			env := recv.Interface().(envelope)
			c.metrics.QueueDepth(br.edge.label, len(br.edge.q.ch))
			hctx := &Ctx{Context: ctx, cell: c, log: c.log, seq: env.seq, at: env.at}
			timer := c.metrics.HandleDuration(c.name)
			handleErr := br.edge.dispatch(hctx, env.msg)
			timer.ObserveDuration()
			c.metrics.MessageHandled(c.name, br.edge.port, handleErr == nil)
			if handleErr != nil {
				if f := c.fatal(fmt.Sprintf("port %q", br.edge.port), handleErr); f != nil {
					return f
				}
			}

		case br.req != nil:
			if !ok {
				drop(chosen)
				continue
			}
			env := recv.Interface().(reqEnvelope)
			hctx := &Ctx{Context: ctx, cell: c, log: c.log, at: env.at}
			timer := c.metrics.HandleDuration(c.name)
			rep, serveErr := br.req.serve(hctx, env.req)
			timer.ObserveDuration()
			c.metrics.MessageHandled(c.name, br.req.port, serveErr == nil)
			// a serve error is the caller's reply, never fatal here
			env.reply <- repEnvelope{token: env.token, rep: rep, err: serveErr}
		}
	}
}
