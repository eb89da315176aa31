package actors

import (
	"time"

	"github.com/farm-ng/hollywood/core/pipeline"
)

// PeriodicProp configures a [Periodic] actor. Zero values fall back to a
// one second period and a stop time of one day.
type PeriodicProp struct {
	// Period between emissions, in seconds.
	Period float64
	// StopTime is the elapsed time, in seconds, after which the actor
	// stops. A stopped periodic source drives the pipeline to quiescence.
	StopTime float64
}

// PeriodicState is the mutable state of a [Periodic] actor.
type PeriodicState struct {
	Count       uint32
	TimeElapsed float64
}

// PeriodicActor is the port surface of a registered periodic actor.
type PeriodicActor struct {
	Handle *pipeline.Handle[PeriodicProp, PeriodicState]

	// TimeStamp emits the elapsed time in seconds, once per period.
	TimeStamp *pipeline.Outbound[float64]
}

// Periodic registers a timer source that emits the elapsed time on its
// time_stamp port every period until StopTime is reached.
func Periodic(b *pipeline.Builder, prop PeriodicProp) *PeriodicActor {
	if prop.Period <= 0 {
		prop.Period = 1.0
	}
	if prop.StopTime <= 0 {
		prop.StopTime = 24 * 60 * 60
	}

	h := pipeline.Register(b, "periodic", prop, PeriodicState{})
	timeStamp := pipeline.OutboundPort[float64](h, "time_stamp")
	pipeline.Tick(h, time.Duration(prop.Period*float64(time.Second)),
		func(ctx *pipeline.Ctx, prop PeriodicProp, state *PeriodicState) error {
			state.Count++
			if state.TimeElapsed > prop.StopTime {
				return pipeline.ErrDone
			}
			state.TimeElapsed += prop.Period
			return timeStamp.Send(ctx, state.TimeElapsed)
		})

	return &PeriodicActor{Handle: h, TimeStamp: timeStamp}
}
