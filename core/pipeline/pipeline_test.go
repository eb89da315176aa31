package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/farm-ng/hollywood/core/graph"
)

func testOpts() Options {
	return Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// counter emits float64(1), float64(2), ... on each tick and signals done
// after n emissions.
type counterProp struct{ n int }
type counterState struct{ sent int }

func registerCounter(b *Builder, n int) *Outbound[float64] {
	h := Register(b, "counter", counterProp{n: n}, counterState{})
	out := OutboundPort[float64](h, "value")
	Tick(h, time.Millisecond, func(ctx *Ctx, prop counterProp, state *counterState) error {
		if state.sent == prop.n {
			return ErrDone
		}
		state.sent++
		return out.Send(ctx, float64(state.sent))
	})
	return out
}

// collector appends every received value to an external slice. The slice is
// only read after Run returns, when all handler invocations have finished.
func registerCollector[T any](b *Builder, name string, sink *[]T) *Inbound[T] {
	h := Register(b, name, struct{}{}, struct{}{})
	return InboundPort(h, "in", func(ctx *Ctx, _ struct{}, _ *struct{}, msg T) error {
		*sink = append(*sink, msg)
		return nil
	})
}

func TestPipeline_movingAverage(t *testing.T) {
	type avgProp struct{ alpha float64 }
	type avgState struct{ average float64 }

	var got []float64
	p, err := Configure(testOpts(), func(b *Builder) error {
		values := registerCounter(b, 3)

		h := Register(b, "moving_average", avgProp{alpha: 0.5}, avgState{})
		average := OutboundPort[float64](h, "average")
		in := InboundPort(h, "value", func(ctx *Ctx, prop avgProp, state *avgState, v float64) error {
			state.average = prop.alpha*v + (1-prop.alpha)*state.average
			return average.Send(ctx, state.average)
		})

		if err := Connect(b, values, in); err != nil {
			return err
		}
		return Connect(b, average, registerCollector(b, "sink", &got))
	})
	require.NoError(t, err)

	require.NoError(t, p.Run(t.Context()))
	require.Equal(t, []float64{0.5, 1.25, 2.125}, got)

	// quiescence: every producer signalled done and every queue drained
	for name, state := range p.ActorStates() {
		require.Equal(t, StateTerminated, state, "actor %s", name)
	}
}

func TestPipeline_fanOut(t *testing.T) {
	var left, right []float64
	var leftSeq, rightSeq []uint64

	p, err := Configure(testOpts(), func(b *Builder) error {
		values := registerCounter(b, 5)

		register := func(name string, vals *[]float64, seqs *[]uint64) *Inbound[float64] {
			h := Register(b, name, struct{}{}, struct{}{})
			return InboundPort(h, "in", func(ctx *Ctx, _ struct{}, _ *struct{}, v float64) error {
				*vals = append(*vals, v)
				*seqs = append(*seqs, ctx.Seq())
				return nil
			})
		}
		if err := Connect(b, values, register("left", &left, &leftSeq)); err != nil {
			return err
		}
		return Connect(b, values, register("right", &right, &rightSeq))
	})
	require.NoError(t, err)
	require.NoError(t, p.Run(t.Context()))

	want := []float64{1, 2, 3, 4, 5}
	require.Equal(t, want, left)
	require.Equal(t, want, right)
	// fan-out copies of one message share its production stamp
	require.Equal(t, leftSeq, rightSeq)
}

func TestPipeline_fanIn(t *testing.T) {
	var got []string
	p, err := Configure(testOpts(), func(b *Builder) error {
		in := registerCollector(b, "sink", &got)

		for _, prefix := range []string{"a", "b"} {
			h := Register(b, "producer", struct{ prefix string }{prefix}, counterState{})
			out := OutboundPort[string](h, "out")
			Tick(h, time.Millisecond, func(ctx *Ctx, prop struct{ prefix string }, state *counterState) error {
				if state.sent == 3 {
					return ErrDone
				}
				state.sent++
				return out.Send(ctx, prop.prefix)
			})
			if err := Connect(b, out, in); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, p.Run(t.Context()))

	require.Len(t, got, 6)
	count := map[string]int{}
	for _, v := range got {
		count[v]++
	}
	require.Equal(t, map[string]int{"a": 3, "b": 3}, count)
}

func TestPipeline_unconnectedOutboundDrops(t *testing.T) {
	p, err := Configure(testOpts(), func(b *Builder) error {
		registerCounter(b, 10)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, p.Run(t.Context()))
}

func TestPipeline_backpressure(t *testing.T) {
	opts := testOpts()
	opts.QueueSize = 1

	var got []int
	p, err := Configure(opts, func(b *Builder) error {
		h := Register(b, "burst", struct{}{}, struct{}{})
		out := OutboundPort[int](h, "out")
		// one-shot source producing far more messages than the queue
		// holds; each send past the first suspends until the slow
		// consumer makes room
		Tick(h, 0, func(ctx *Ctx, _ struct{}, _ *struct{}) error {
			for i := 0; i < 64; i++ {
				if err := out.Send(ctx, i); err != nil {
					return err
				}
			}
			return ErrDone
		})

		hc := Register(b, "slow", struct{}{}, struct{}{})
		in := InboundPort(hc, "in", func(ctx *Ctx, _ struct{}, _ *struct{}, v int) error {
			time.Sleep(200 * time.Microsecond)
			got = append(got, v)
			return nil
		})
		return Connect(b, out, in)
	})
	require.NoError(t, err)
	require.NoError(t, p.Run(t.Context()))

	require.Len(t, got, 64)
	for i, v := range got {
		require.Equal(t, i, v)
	}
}

func TestPipeline_stopUnblocksStalledProducer(t *testing.T) {
	opts := testOpts()
	opts.QueueSize = 1

	p, err := Configure(opts, func(b *Builder) error {
		h := Register(b, "burst", struct{}{}, struct{}{})
		out := OutboundPort[int](h, "out")
		Tick(h, 0, func(ctx *Ctx, _ struct{}, _ *struct{}) error {
			for i := 0; ; i++ {
				if err := out.Send(ctx, i); err != nil {
					return err
				}
			}
		})

		hc := Register(b, "stuck", struct{}{}, struct{}{})
		in := InboundPort(hc, "in", func(ctx *Ctx, _ struct{}, _ *struct{}, _ int) error {
			<-ctx.Done()
			return ctx.Err()
		})
		return Connect(b, out, in)
	})
	require.NoError(t, err)

	time.AfterFunc(50*time.Millisecond, p.Stop)

	done := make(chan error, 1)
	go func() { done <- p.Run(t.Context()) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("stalled producer did not observe cancellation")
	}
}

func TestPipeline_handlerErrorAbortsRun(t *testing.T) {
	boom := errors.New("boom")
	p, err := Configure(testOpts(), func(b *Builder) error {
		values := registerCounter(b, 10)
		h := Register(b, "faulty", struct{}{}, struct{}{})
		in := InboundPort(h, "in", func(ctx *Ctx, _ struct{}, _ *struct{}, v float64) error {
			if v >= 3 {
				return boom
			}
			return nil
		})
		return Connect(b, values, in)
	})
	require.NoError(t, err)

	err = p.Run(t.Context())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrRuntimeFailure)
	require.Contains(t, err.Error(), "faulty_0")
}

func TestPipeline_handlerPanicAbortsRun(t *testing.T) {
	p, err := Configure(testOpts(), func(b *Builder) error {
		values := registerCounter(b, 1)
		h := Register(b, "panicky", struct{}{}, struct{}{})
		in := InboundPort(h, "in", func(ctx *Ctx, _ struct{}, _ *struct{}, _ float64) error {
			panic("unreachable state")
		})
		return Connect(b, values, in)
	})
	require.NoError(t, err)

	err = p.Run(t.Context())
	require.ErrorIs(t, err, ErrRuntimeFailure)
}

func TestPipeline_flushDeliversBufferedOutput(t *testing.T) {
	type sumState struct {
		sum float64
	}

	var got []float64
	p, err := Configure(testOpts(), func(b *Builder) error {
		values := registerCounter(b, 4)

		h := Register(b, "summer", struct{}{}, sumState{})
		total := OutboundPort[float64](h, "total")
		in := InboundPort(h, "value", func(ctx *Ctx, _ struct{}, state *sumState, v float64) error {
			state.sum += v
			return nil
		})
		Flush(h, func(ctx *Ctx, _ struct{}, state *sumState) error {
			return total.Send(ctx, state.sum)
		})

		if err := Connect(b, values, in); err != nil {
			return err
		}
		return Connect(b, total, registerCollector(b, "sink", &got))
	})
	require.NoError(t, err)
	require.NoError(t, p.Run(t.Context()))

	require.Equal(t, []float64{10}, got)
}

func TestPipeline_eventSource(t *testing.T) {
	events := make(chan string, 3)
	events <- "x"
	events <- "y"
	events <- "z"
	close(events)

	var got []string
	p, err := Configure(testOpts(), func(b *Builder) error {
		h := Register(b, "ingest", struct{}{}, struct{}{})
		out := OutboundPort[string](h, "out")
		EventSource(h, events, func(ctx *Ctx, _ struct{}, _ *struct{}, ev string) error {
			return out.Send(ctx, ev)
		})
		return Connect(b, out, registerCollector(b, "sink", &got))
	})
	require.NoError(t, err)
	require.NoError(t, p.Run(t.Context()))

	require.Equal(t, []string{"x", "y", "z"}, got)
}

func TestPipeline_connectWith(t *testing.T) {
	var got []int
	p, err := Configure(testOpts(), func(b *Builder) error {
		values := registerCounter(b, 3)
		in := registerCollector(b, "sink", &got)
		return ConnectWith(b, values, func(v float64) int { return int(v) * 10 }, in)
	})
	require.NoError(t, err)
	require.NoError(t, p.Run(t.Context()))

	require.Equal(t, []int{10, 20, 30}, got)
}

func TestPipeline_cancelRequestInbound(t *testing.T) {
	p, err := Configure(testOpts(), func(b *Builder) error {
		h := Register(b, "restless", struct{}{}, counterState{})
		cancel := OutboundPort[CancelRequest](h, "cancel_request")
		// never returns ErrDone: only cancellation ends this run
		Tick(h, time.Millisecond, func(ctx *Ctx, _ struct{}, state *counterState) error {
			state.sent++
			if state.sent == 3 {
				return cancel.Send(ctx, CancelRequest{})
			}
			return nil
		})
		return Connect(b, cancel, b.CancelRequestInbound())
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- p.Run(t.Context()) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("cancel request did not stop the pipeline")
	}
}

func TestPipeline_rerunKeepsState(t *testing.T) {
	var got []float64
	var p *Pipeline
	p, err := Configure(testOpts(), func(b *Builder) error {
		h := Register(b, "acc", struct{}{}, sumBox{})
		out := OutboundPort[float64](h, "out")
		Tick(h, 0, func(ctx *Ctx, _ struct{}, state *sumBox) error {
			state.total++
			if err := out.Send(ctx, state.total); err != nil {
				return err
			}
			return ErrDone
		})
		return Connect(b, out, registerCollector(b, "sink", &got))
	})
	require.NoError(t, err)

	require.NoError(t, p.Run(t.Context()))
	require.NoError(t, p.Run(t.Context()))
	require.Equal(t, []float64{1, 2}, got)
}

type sumBox struct{ total float64 }

func TestConfigure_duplicatePort(t *testing.T) {
	_, err := Configure(testOpts(), func(b *Builder) error {
		h := Register(b, "dup", struct{}{}, struct{}{})
		OutboundPort[int](h, "out")
		OutboundPort[string](h, "out")
		return nil
	})
	require.ErrorIs(t, err, graph.ErrDuplicatePort)
}

func TestConfigure_cycleRejected(t *testing.T) {
	_, err := Configure(testOpts(), func(b *Builder) error {
		ha := Register(b, "a", struct{}{}, struct{}{})
		aOut := OutboundPort[int](ha, "out")
		aIn := InboundPort(ha, "in", func(ctx *Ctx, _ struct{}, _ *struct{}, _ int) error { return nil })

		hb := Register(b, "b", struct{}{}, struct{}{})
		bOut := OutboundPort[int](hb, "out")
		bIn := InboundPort(hb, "in", func(ctx *Ctx, _ struct{}, _ *struct{}, _ int) error { return nil })

		if err := Connect(b, aOut, bIn); err != nil {
			return err
		}
		return Connect(b, bOut, aIn)
	})
	require.ErrorIs(t, err, graph.ErrCycleDetected)
}

func TestConfigure_routineError(t *testing.T) {
	boom := errors.New("bad wiring")
	_, err := Configure(testOpts(), func(b *Builder) error { return boom })
	require.ErrorIs(t, err, boom)
}

func TestConfigure_uniqueNames(t *testing.T) {
	p, err := Configure(testOpts(), func(b *Builder) error {
		h0 := Register(b, "worker", struct{}{}, struct{}{})
		h1 := Register(b, "worker", struct{}{}, struct{}{})
		require.Equal(t, "worker_0", h0.Name())
		require.Equal(t, "worker_1", h1.Name())
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, p)
}

func TestPipeline_runCancelledContext(t *testing.T) {
	p, err := Configure(testOpts(), func(b *Builder) error {
		h := Register(b, "forever", struct{}{}, struct{}{})
		Tick(h, time.Millisecond, func(ctx *Ctx, _ struct{}, _ *struct{}) error { return nil })
		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	require.NoError(t, p.Run(ctx))
}

func TestConfigure_schedulesUpstreamFirst(t *testing.T) {
	// registration order is reversed on purpose; cells still line up with
	// the frozen topological order
	var sunk []float64
	p, err := Configure(testOpts(), func(b *Builder) error {
		sink := registerCollector(b, "sink", &sunk)

		hm := Register(b, "mid", struct{}{}, struct{}{})
		midOut := OutboundPort[float64](hm, "out")
		midIn := InboundPort(hm, "in", func(ctx *Ctx, _ struct{}, _ *struct{}, v float64) error {
			return midOut.Send(ctx, v)
		})

		src := registerCounter(b, 1)
		if err := Connect(b, src, midIn); err != nil {
			return err
		}
		return Connect(b, midOut, sink)
	})
	require.NoError(t, err)

	names := make([]string, len(p.cells))
	for i, c := range p.cells {
		names[i] = c.name
	}
	require.Equal(t, []string{"counter_0", "mid_0", "sink_0"}, names)

	require.NoError(t, p.Run(t.Context()))
	require.Equal(t, []float64{1}, sunk)
}

func TestRegister_staleBuilder(t *testing.T) {
	var stale *Builder
	_, err := Configure(testOpts(), func(b *Builder) error {
		stale = b
		registerCounter(b, 1)
		return nil
	})
	require.NoError(t, err)

	// the builder must not be used after the routine returns; late use
	// fails without panicking
	h := Register(stale, "late", struct{}{}, struct{}{})
	require.Empty(t, h.Name())

	in := InboundPort(h, "in", func(ctx *Ctx, _ struct{}, _ *struct{}, v float64) error { return nil })
	out := OutboundPort[float64](h, "out")
	require.NotNil(t, in)
	require.NotNil(t, out)
	require.ErrorIs(t, Connect(stale, out, in), graph.ErrFrozen)

	call := OutRequestPort[float64, float64](h, "call")
	serve := InRequestPort(h, "serve", func(ctx *Ctx, _ struct{}, _ *struct{}, req float64) (float64, error) {
		return req, nil
	})
	require.ErrorIs(t, ConnectRequest(stale, call, serve), graph.ErrFrozen)
}
