package pipeline

import (
	"log/slog"
	"reflect"
	"time"

	"github.com/farm-ng/hollywood/core/graph"
)

// Options configures a pipeline. The zero value is usable: it logs through
// slog.Default, uses queue capacity 8 per edge and records no metrics.
type Options struct {
	Logger *slog.Logger
	// QueueSize is the capacity of each edge's bounded queue. A producer
	// sending into a full queue is suspended until space is available.
	QueueSize int
	Metrics   PipelineMetrics
}

// Builder accumulates actor registrations and port connections. It is
// handed to the user's configuration routine by [Configure] and must not be
// used after the routine returns; the frozen graph takes over from there.
type Builder struct {
	topo  *graph.Topology
	opts  Options
	log   *slog.Logger
	cells []*cell
	p     *Pipeline

	cancelSink *Inbound[CancelRequest]

	err error // first deferred configuration error
}

// Configure runs the user-supplied configuration routine against a fresh
// builder, freezes the resulting graph and returns the executable pipeline.
// Every configuration error (type mismatch, duplicate port, cycle, ...)
// surfaces here, before any actor runs.
func Configure(opts Options, routine func(b *Builder) error) (*Pipeline, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 8
	}
	if opts.Metrics == nil {
		opts.Metrics = NopPipelineMetrics()
	}

	p := &Pipeline{log: opts.Logger}
	b := &Builder{
		topo: graph.NewTopology(),
		opts: opts,
		log:  opts.Logger,
		p:    p,
	}

	if err := routine(b); err != nil {
		return nil, err
	}
	if b.err != nil {
		return nil, b.err
	}
	if err := b.topo.Freeze(); err != nil {
		return nil, err
	}

	p.topo = b.topo
	// upstream actors are spawned before their consumers
	byName := make(map[string]*cell, len(b.cells))
	for _, c := range b.cells {
		byName[c.name] = c
	}
	p.cells = make([]*cell, 0, len(b.cells))
	for _, n := range b.topo.Order() {
		p.cells = append(p.cells, byName[n.Name()])
	}
	return p, nil
}

// fail records the first deferred configuration error. Port declaration
// helpers cannot return errors ergonomically alongside typed ports, so they
// report through here and [Configure] surfaces the error before freeze.
func (b *Builder) fail(err error) {
	if b.err == nil && err != nil {
		b.err = err
	}
}

// Topology exposes the graph under construction, mainly for tests and
// introspection. It is frozen by [Configure].
func (b *Builder) Topology() *graph.Topology { return b.topo }

// Handle refers to one registered actor. Prop is the actor's immutable
// configuration record; State is its private mutable state, touched only
// from the actor's own handler invocations (which the scheduler serializes,
// so no locking is needed).
type Handle[P, S any] struct {
	b     *Builder
	node  *graph.Node
	cell  *cell
	prop  P
	state *S
}

// Name returns the unique node name assigned at registration, or "" when
// registration failed.
func (h *Handle[P, S]) Name() string {
	if h.node == nil {
		return ""
	}
	return h.node.Name()
}

// Register adds an actor to the graph. The name hint is made unique by a
// counter suffix. Ports and handlers are declared against the returned
// handle with [InboundPort], [OutboundPort], [Tick] and friends.
func Register[P, S any](b *Builder, nameHint string, prop P, state S) *Handle[P, S] {
	node, err := b.topo.AddNode(nameHint)
	if err != nil {
		// dead handle: port declarations on it are no-ops and the
		// recorded error surfaces from Configure
		b.fail(err)
		return &Handle[P, S]{b: b, cell: newCell(nameHint, b.log, b.opts.Metrics), prop: prop, state: &state}
	}
	c := newCell(node.Name(), b.log, b.opts.Metrics)
	b.cells = append(b.cells, c)
	return &Handle[P, S]{b: b, node: node, cell: c, prop: prop, state: &state}
}

// InboundPort declares a named, typed consuming port on the actor and binds
// its message handler. The handler runs on the actor's own task; it may
// mutate the state record and send on the actor's outbound ports.
func InboundPort[T, P, S any](h *Handle[P, S], name string, fn func(ctx *Ctx, prop P, state *S, msg T) error) *Inbound[T] {
	var port *graph.Port
	if h.node != nil {
		var err error
		port, err = h.node.AddInbound(name, reflect.TypeFor[T]())
		if err != nil {
			h.b.fail(err)
		}
	}
	return &Inbound[T]{inboundCore: inboundCore{
		port: port,
		cell: h.cell,
		dispatch: func(ctx *Ctx, msg any) error {
			return fn(ctx, h.prop, h.state, msg.(T))
		},
	}}
}

// OutboundPort declares a named, typed producing port on the actor.
// Messages are sent from handlers via [Outbound.Send]; an outbound port
// with zero connections silently drops them.
func OutboundPort[T, P, S any](h *Handle[P, S], name string) *Outbound[T] {
	var port *graph.Port
	if h.node != nil {
		var err error
		port, err = h.node.AddOutbound(name, reflect.TypeFor[T]())
		if err != nil {
			h.b.fail(err)
		}
	}
	return &Outbound[T]{outboundCore: outboundCore{port: port, cell: h.cell}}
}

// Tick installs a timer source on the actor. The handler fires every
// `every` until it returns [ErrDone]; with every <= 0 it fires exactly
// once. Source actors with no inbound ports live as long as their tick
// source does.
func Tick[P, S any](h *Handle[P, S], every time.Duration, fn func(ctx *Ctx, prop P, state *S) error) {
	h.cell.tick = &tickSource{
		every: every,
		fn: func(ctx *Ctx) error {
			return fn(ctx, h.prop, h.state)
		},
	}
}

// EventSource installs an external event source on the actor: each value
// received from events triggers one handler invocation on the actor's task,
// serialized with its other handlers. Closing the channel ends the source.
// This is how sensor, file or broker collaborators feed a pipeline (see
// adapters/nats).
func EventSource[T, P, S any](h *Handle[P, S], events <-chan T, fn func(ctx *Ctx, prop P, state *S, ev T) error) {
	h.cell.event = &eventSource{
		ch: reflect.ValueOf(events),
		fn: func(ctx *Ctx, v reflect.Value) error {
			return fn(ctx, h.prop, h.state, v.Interface().(T))
		},
	}
}

// Flush installs a drain hook: it runs exactly once, after all upstream
// producers have terminated and the actor's inbound queues are empty, and
// before the actor's own outbound queues close. Buffered output sent from
// the hook is still delivered downstream.
func Flush[P, S any](h *Handle[P, S], fn func(ctx *Ctx, prop P, state *S) error) {
	h.cell.flush = func(ctx *Ctx) error {
		return fn(ctx, h.prop, h.state)
	}
}

// Connect wires an outbound port to an inbound port of the same message
// type. The edge owns a bounded FIFO queue of Options.QueueSize messages.
// Fan-out (one outbound, many inbounds) delivers in connection order;
// fan-in (many outbounds, one inbound) merges in arrival order.
func Connect[T any](b *Builder, from *Outbound[T], to *Inbound[T]) error {
	edge, err := b.topo.Connect(from.port, to.port)
	if err != nil {
		b.fail(err)
		return err
	}
	b.wire(edge, &from.outboundCore, &to.inboundCore, nil)
	return nil
}

// ConnectWith wires an outbound port of type T to an inbound port of type U
// through a conversion function applied at production time.
func ConnectWith[T, U any](b *Builder, from *Outbound[T], convert func(T) U, to *Inbound[U]) error {
	edge, err := b.topo.ConnectAdapter(from.port, to.port)
	if err != nil {
		b.fail(err)
		return err
	}
	b.wire(edge, &from.outboundCore, &to.inboundCore, func(msg any) any {
		return convert(msg.(T))
	})
	return nil
}

func (b *Builder) wire(edge *graph.Edge, from *outboundCore, to *inboundCore, adapt func(any) any) {
	q := &edgeQueue{cap: b.opts.QueueSize}
	q.rearm()
	b.p.rearms = append(b.p.rearms, q.rearm)
	label := edge.String()
	from.conns = append(from.conns, &conn{q: q, label: label, adapt: adapt})
	from.cell.closers = append(from.cell.closers, q.close)
	to.cell.inEdges = append(to.cell.inEdges, &inEdge{
		q:        q,
		label:    label,
		port:     edge.To().Name(),
		dispatch: to.dispatch,
	})
}

// CancelRequest asks a running pipeline to stop. Any actor may declare an
// outbound port of this type and connect it to [Builder.CancelRequestInbound]
// to cancel the run from inside the graph.
type CancelRequest struct{}

// CancelRequestInbound returns the pipeline's cancel sink: an inbound port
// on a hidden actor whose only job is to raise the shared cancellation
// signal. It is created on first use and may be connected from any number
// of outbound ports.
func (b *Builder) CancelRequestInbound() *Inbound[CancelRequest] {
	if b.cancelSink == nil {
		h := Register[struct{}, struct{}](b, "cancel", struct{}{}, struct{}{})
		p := b.p
		b.cancelSink = InboundPort(h, "CANCEL", func(ctx *Ctx, _ struct{}, _ *struct{}, _ CancelRequest) error {
			ctx.Log().Info("pipeline cancellation requested")
			p.Stop()
			return nil
		})
	}
	return b.cancelSink
}
