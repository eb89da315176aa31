package nats

import (
	"fmt"

	natsgo "github.com/nats-io/nats.go"

	"github.com/farm-ng/hollywood/core/pipeline"
)

// SourceConfig configures a [Source] actor.
type SourceConfig struct {
	// Subject to subscribe to.
	Subject string
	// Name hint for the actor; "nats_source" when empty.
	Name string
	// Buffer is the subscription channel capacity; 64 when zero.
	Buffer int
}

// SourceActor is the port surface of a registered NATS source.
type SourceActor[T any] struct {
	Handle *pipeline.Handle[SourceConfig, struct{}]

	// Out emits one T per subject message that decodes cleanly.
	Out *pipeline.Outbound[T]
}

// Source registers an actor that subscribes to cfg.Subject and emits every
// message decoded into T on its out port. Messages that fail to decode are
// logged and dropped. The subscription keeps the pipeline alive until the
// run is cancelled; it is released by [Bridge.Close].
func Source[T any](br *Bridge, b *pipeline.Builder, cfg SourceConfig) (*SourceActor[T], error) {
	if cfg.Subject == "" {
		return nil, fmt.Errorf("source subject must not be empty")
	}
	if cfg.Name == "" {
		cfg.Name = "nats_source"
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 64
	}

	msgs := make(chan *natsgo.Msg, cfg.Buffer)
	sub, err := br.nc.ChanSubscribe(cfg.Subject, msgs)
	if err != nil {
		return nil, fmt.Errorf("subscribe %q: %w", cfg.Subject, err)
	}
	br.subs = append(br.subs, sub)

	h := pipeline.Register(b, cfg.Name, cfg, struct{}{})
	out := pipeline.OutboundPort[T](h, "out")
	pipeline.EventSource(h, (<-chan *natsgo.Msg)(msgs),
		func(ctx *pipeline.Ctx, cfg SourceConfig, _ *struct{}, msg *natsgo.Msg) error {
			var v T
			if err := br.codec.Unmarshal(msg.Data, &v); err != nil {
				ctx.Log().Warn("dropping undecodable message",
					"subject", cfg.Subject, "error", err)
				return nil
			}
			return out.Send(ctx, v)
		})

	return &SourceActor[T]{Handle: h, Out: out}, nil
}
