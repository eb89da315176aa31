// Package pipeline composes independently running actors into a directed
// acyclic compute graph and executes it as one concurrently scheduled task
// per actor, communicating exclusively by typed message passing.
//
// # Configuring a graph
//
// A graph is built inside a single configuration routine. Actors are
// registered with an immutable prop record and a private state record;
// ports are declared against the returned handle and wired with [Connect]:
//
//	p, err := pipeline.Configure(pipeline.Options{}, func(b *pipeline.Builder) error {
//	    src := pipeline.Register(b, "periodic", srcProp, srcState{})
//	    out := pipeline.OutboundPort[float64](src, "time_stamp")
//	    pipeline.Tick(src, 100*time.Millisecond, func(ctx *pipeline.Ctx, p srcProp, s *srcState) error {
//	        s.elapsed += 0.1
//	        if s.elapsed > p.stopTime {
//	            return pipeline.ErrDone
//	        }
//	        return out.Send(ctx, s.elapsed)
//	    })
//
//	    avg := pipeline.Register(b, "moving_average", avgProp{Alpha: 0.5}, avgState{})
//	    average := pipeline.OutboundPort[float64](avg, "average")
//	    value := pipeline.InboundPort(avg, "value", func(ctx *pipeline.Ctx, p avgProp, s *avgState, v float64) error {
//	        s.Average = p.Alpha*v + (1-p.Alpha)*s.Average
//	        return average.Send(ctx, s.Average)
//	    })
//
//	    return pipeline.Connect(b, out, value)
//	})
//
// Configuration errors (type mismatches, duplicate ports, feed-forward
// cycles) surface from [Configure], before any actor runs.
//
// # Execution model
//
// [Pipeline.Run] starts one goroutine per actor. Each actor waits on all of
// its inbound edges at once and handles whichever message arrives first;
// handler invocations of one actor never overlap, so actor state needs no
// locking. Every edge owns a bounded FIFO queue: a producer sending into a
// full queue is suspended until the consumer catches up (backpressure, not
// an error). The pipeline stops when every source is done and all queues
// have drained, or when the run context is cancelled.
//
// # Feedback
//
// Feed-forward edges must stay acyclic. Feedback is expressed through
// request-reply links ([OutRequestPort], [InRequestPort], [ConnectRequest]):
// point-to-point calls with correlation tokens and deadlines that bypass
// the acyclicity check.
package pipeline
