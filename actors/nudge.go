package actors

import "github.com/farm-ng/hollywood/core/pipeline"

// NudgeProp carries the single item a [Nudge] actor emits.
type NudgeProp[T any] struct {
	Item T
}

// NudgeActor is the port surface of a registered nudge actor.
type NudgeActor[T any] struct {
	Handle *pipeline.Handle[NudgeProp[T], struct{}]

	// Nudge emits the attached item exactly once.
	Nudge *pipeline.Outbound[T]
}

// Nudge registers a one-shot source: it sends item on its nudge port once
// and stops. Useful to kick off a pipeline that otherwise only reacts.
func Nudge[T any](b *pipeline.Builder, item T) *NudgeActor[T] {
	h := pipeline.Register(b, "nudge", NudgeProp[T]{Item: item}, struct{}{})
	nudge := pipeline.OutboundPort[T](h, "nudge")
	pipeline.Tick(h, 0, func(ctx *pipeline.Ctx, prop NudgeProp[T], _ *struct{}) error {
		if err := nudge.Send(ctx, prop.Item); err != nil {
			return err
		}
		return pipeline.ErrDone
	})
	return &NudgeActor[T]{Handle: h, Nudge: nudge}
}
