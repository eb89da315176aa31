package pipeline

import (
	"sync/atomic"
	"time"

	"github.com/farm-ng/hollywood/core/graph"
)

// envelope is the unit traveling on an edge queue: the payload plus its
// logical stamp, assigned once at production and shared by all fan-out
// copies of the message.
type envelope struct {
	msg any
	seq uint64
	at  time.Time
}

// seqCounter hands out pipeline-wide logical timestamps.
var seqCounter atomic.Uint64

// edgeQueue is the bounded buffer of one feed-forward edge. The producing
// cell closes it at termination to signal quiescence downstream; the
// pipeline re-arms it at the start of each run so a pipeline can execute
// repeatedly with actor state carried over.
type edgeQueue struct {
	ch  chan envelope
	cap int
	// closed is written by the producing cell's goroutine when it drains,
	// and read there by later sends (serve handlers outlive the drain).
	closed bool
}

func (q *edgeQueue) rearm() {
	q.ch = make(chan envelope, q.cap)
	q.closed = false
}

func (q *edgeQueue) close() {
	q.closed = true
	close(q.ch)
}

// conn is one feed-forward connection of an outbound port: the edge's
// bounded queue plus an optional type adapter applied at production time.
type conn struct {
	q     *edgeQueue
	label string
	adapt func(any) any
}

type inboundCore struct {
	port     *graph.Port
	cell     *cell
	dispatch func(*Ctx, any) error
}

// Inbound is a typed consuming port. Its handler was bound at declaration
// time; one or more outbound ports may feed it (fan-in, merged in arrival
// order, per-edge FIFO preserved).
type Inbound[T any] struct {
	inboundCore
}

// Port returns the underlying topology port.
func (i *Inbound[T]) Port() *graph.Port { return i.port }

type outboundCore struct {
	port  *graph.Port
	cell  *cell
	conns []*conn
}

// Outbound is a typed producing port. It may be connected to zero or more
// inbound ports of the same type; with zero connections sends are silently
// dropped, which makes terminal actors valid without ceremony.
type Outbound[T any] struct {
	outboundCore
}

// Port returns the underlying topology port.
func (o *Outbound[T]) Port() *graph.Port { return o.port }

// Send routes one message to every connected inbound port, in the order the
// connections were declared. Each edge owns a bounded queue: when a queue
// is full the send suspends until the consumer makes room or the run is
// cancelled. Fan-out is by copy, so a slow consumer delays faster ones only
// while its own queue is full.
func (o *Outbound[T]) Send(ctx *Ctx, msg T) error {
	if len(o.conns) == 0 {
		return nil
	}
	env := envelope{msg: msg, seq: seqCounter.Add(1), at: time.Now()}
	m := o.cell.metrics
	for _, c := range o.conns {
		if c.q.closed {
			// the producer already drained; only a serve or flush
			// handler can still send here, and downstream is gone
			continue
		}
		e := env
		if c.adapt != nil {
			e.msg = c.adapt(e.msg)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c.q.ch <- e:
		}
		m.MessageSent(o.cell.name, o.port.Name())
		m.QueueDepth(c.label, len(c.q.ch))
	}
	return nil
}
