package actors

import "github.com/farm-ng/hollywood/core/pipeline"

// MovingAverageProp configures a [MovingAverage] actor. Zero values fall
// back to alpha 0.5 and a timeout of 10.
type MovingAverageProp struct {
	// Alpha is the smoothing factor, 0 < alpha < 1.
	Alpha float64
	// Timeout is the input value above which the actor requests pipeline
	// cancellation on its cancel_request port.
	Timeout float64
}

// MovingAverageState holds the running average.
type MovingAverageState struct {
	Average float64
}

// MovingAverageActor is the port surface of a registered moving-average
// actor.
type MovingAverageActor struct {
	Handle *pipeline.Handle[MovingAverageProp, MovingAverageState]

	// Value consumes the input samples.
	Value *pipeline.Inbound[float64]
	// Average emits the exponential moving average after each sample.
	Average *pipeline.Outbound[float64]
	// CancelRequest fires when a sample exceeds the configured timeout.
	// Connect it to [pipeline.Builder.CancelRequestInbound] to let the
	// actor stop the run.
	CancelRequest *pipeline.Outbound[pipeline.CancelRequest]
}

// MovingAverage registers an exponential moving-average filter:
// avg = alpha*v + (1-alpha)*avg for every sample v on its value port.
func MovingAverage(b *pipeline.Builder, prop MovingAverageProp) *MovingAverageActor {
	if prop.Alpha <= 0 || prop.Alpha >= 1 {
		prop.Alpha = 0.5
	}
	if prop.Timeout <= 0 {
		prop.Timeout = 10.0
	}

	h := pipeline.Register(b, "moving_average", prop, MovingAverageState{})
	average := pipeline.OutboundPort[float64](h, "average")
	cancel := pipeline.OutboundPort[pipeline.CancelRequest](h, "cancel_request")
	value := pipeline.InboundPort(h, "value",
		func(ctx *pipeline.Ctx, prop MovingAverageProp, state *MovingAverageState, v float64) error {
			state.Average = prop.Alpha*v + (1-prop.Alpha)*state.Average
			if err := average.Send(ctx, state.Average); err != nil {
				return err
			}
			if v > prop.Timeout {
				return cancel.Send(ctx, pipeline.CancelRequest{})
			}
			return nil
		})

	return &MovingAverageActor{Handle: h, Value: value, Average: average, CancelRequest: cancel}
}
