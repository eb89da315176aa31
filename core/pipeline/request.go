package pipeline

import (
	"fmt"
	"reflect"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/farm-ng/hollywood/core/graph"
)

// DefaultRequestTimeout bounds a request-reply round trip when the link was
// connected without [WithTimeout] and the caller's Ctx has no deadline.
const DefaultRequestTimeout = 5 * time.Second

// reqEnvelope travels on a request link: the payload, a correlation token
// and the private reply channel for this call.
type reqEnvelope struct {
	token string
	req   any
	reply chan repEnvelope
	at    time.Time
}

type repEnvelope struct {
	token string
	rep   any
	err   error
}

// reqLink is the runtime side of one request-reply link. Like feed-forward
// edge queues it is closed by the calling cell at termination and re-armed
// at the start of each run.
type reqLink struct {
	ch      chan reqEnvelope
	cap     int
	label   string
	timeout time.Duration
	// closed is written and read only on the calling cell's goroutine.
	closed bool
}

func (l *reqLink) rearm() {
	l.ch = make(chan reqEnvelope, l.cap)
	l.closed = false
}

func (l *reqLink) close() {
	l.closed = true
	close(l.ch)
}

// OutRequest is a typed calling port. Request-reply links bypass the
// feed-forward acyclicity check; they are the sanctioned mechanism for
// feedback loops.
type OutRequest[Req, Rep any] struct {
	port *graph.Port
	cell *cell
	link *reqLink
}

// Port returns the underlying topology port.
func (o *OutRequest[Req, Rep]) Port() *graph.Port { return o.port }

// InRequest is a typed serving port. Its handler runs on the owning actor's
// task, serialized with the actor's other handlers, and its return value is
// the reply delivered back to the caller.
type InRequest[Req, Rep any] struct {
	port  *graph.Port
	cell  *cell
	serve func(*Ctx, any) (any, error)
}

// Port returns the underlying topology port.
func (i *InRequest[Req, Rep]) Port() *graph.Port { return i.port }

// OutRequestPort declares a port through which the actor issues
// request-reply calls via [OutRequest.Call].
func OutRequestPort[Req, Rep, P, S any](h *Handle[P, S], name string) *OutRequest[Req, Rep] {
	var port *graph.Port
	if h.node != nil {
		var err error
		port, err = h.node.AddOutRequest(name, reflect.TypeFor[Req](), reflect.TypeFor[Rep]())
		if err != nil {
			h.b.fail(err)
		}
	}
	return &OutRequest[Req, Rep]{port: port, cell: h.cell}
}

// InRequestPort declares a port on which the actor serves request-reply
// calls and binds its handler. A handler error is not fatal to the
// pipeline; it is delivered to the caller as the call's error.
func InRequestPort[Req, Rep, P, S any](h *Handle[P, S], name string, fn func(ctx *Ctx, prop P, state *S, req Req) (Rep, error)) *InRequest[Req, Rep] {
	var port *graph.Port
	if h.node != nil {
		var err error
		port, err = h.node.AddInRequest(name, reflect.TypeFor[Req](), reflect.TypeFor[Rep]())
		if err != nil {
			h.b.fail(err)
		}
	}
	return &InRequest[Req, Rep]{
		port: port,
		cell: h.cell,
		serve: func(ctx *Ctx, req any) (any, error) {
			return fn(ctx, h.prop, h.state, req.(Req))
		},
	}
}

// RequestOption configures one request-reply link.
type RequestOption func(*reqLink)

// WithTimeout sets the link's default round-trip deadline. A caller Ctx
// with an earlier deadline still wins per call.
func WithTimeout(d time.Duration) RequestOption {
	return func(l *reqLink) { l.timeout = d }
}

// ConnectRequest wires an out-request port to an in-request port with
// matching request and reply types. The link is strictly point-to-point:
// connecting an out-request port twice fails with [ErrLinkConnected].
func ConnectRequest[Req, Rep any](b *Builder, from *OutRequest[Req, Rep], to *InRequest[Req, Rep], opts ...RequestOption) error {
	if from.link != nil {
		err := fmt.Errorf("%w: %s", ErrLinkConnected, from.port)
		b.fail(err)
		return err
	}
	link, err := b.topo.ConnectRequest(from.port, to.port)
	if err != nil {
		b.fail(err)
		return err
	}

	l := &reqLink{
		cap:     b.opts.QueueSize,
		label:   link.String(),
		timeout: DefaultRequestTimeout,
	}
	l.rearm()
	b.p.rearms = append(b.p.rearms, l.rearm)
	for _, opt := range opts {
		opt(l)
	}

	from.link = l
	from.cell.closers = append(from.cell.closers, l.close)
	to.cell.inReqs = append(to.cell.inReqs, &inReqEdge{
		link:  l,
		port:  to.port.Name(),
		serve: to.serve,
	})
	return nil
}

// Call issues one request and suspends the calling actor until the matching
// reply arrives, the link deadline elapses ([ErrRequestTimeout]) or the run
// is cancelled. Each call carries a fresh correlation token matched to
// exactly one reply.
func (o *OutRequest[Req, Rep]) Call(ctx *Ctx, req Req) (Rep, error) {
	var zero Rep
	if o.link == nil {
		return zero, fmt.Errorf("%w: %s", ErrNotConnected, o.port)
	}
	if o.link.closed {
		return zero, fmt.Errorf("%w: %s", ErrLinkClosed, o.link.label)
	}

	token := gonanoid.Must(10)
	reply := make(chan repEnvelope, 1)

	timeout := o.link.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if until := time.Until(deadline); until < timeout {
			timeout = until
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	m := o.cell.metrics
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-timer.C:
		m.RequestCompleted(o.link.label, "timeout")
		return zero, fmt.Errorf("%w: %s (token %s, enqueue)", ErrRequestTimeout, o.link.label, token)
	case o.link.ch <- reqEnvelope{token: token, req: req, reply: reply, at: time.Now()}:
	}

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-timer.C:
		m.RequestCompleted(o.link.label, "timeout")
		return zero, fmt.Errorf("%w: %s (token %s)", ErrRequestTimeout, o.link.label, token)
	case rep := <-reply:
		if rep.token != token {
			// reply channels are per call, so this indicates a bug
			return zero, fmt.Errorf("correlation token mismatch on %s: sent %s, got %s", o.link.label, token, rep.token)
		}
		if rep.err != nil {
			m.RequestCompleted(o.link.label, "error")
			return zero, rep.err
		}
		m.RequestCompleted(o.link.label, "ok")
		return rep.rep.(Rep), nil
	}
}
