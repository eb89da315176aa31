package nats

import (
	"fmt"

	"github.com/farm-ng/hollywood/core/pipeline"
)

// SinkConfig configures a [Sink] actor.
type SinkConfig struct {
	// Subject to publish to.
	Subject string
	// Name hint for the actor; "nats_sink" when empty.
	Name string
}

// SinkActor is the port surface of a registered NATS sink.
type SinkActor[T any] struct {
	Handle *pipeline.Handle[SinkConfig, struct{}]

	// In consumes the values to publish.
	In *pipeline.Inbound[T]
}

// Sink registers an actor that publishes every received T to cfg.Subject.
// Pending publishes are flushed to the server when the actor drains.
func Sink[T any](br *Bridge, b *pipeline.Builder, cfg SinkConfig) (*SinkActor[T], error) {
	if cfg.Subject == "" {
		return nil, fmt.Errorf("sink subject must not be empty")
	}
	if cfg.Name == "" {
		cfg.Name = "nats_sink"
	}

	h := pipeline.Register(b, cfg.Name, cfg, struct{}{})
	in := pipeline.InboundPort(h, "in",
		func(ctx *pipeline.Ctx, cfg SinkConfig, _ *struct{}, v T) error {
			data, err := br.codec.Marshal(v)
			if err != nil {
				return fmt.Errorf("encode for %q: %w", cfg.Subject, err)
			}
			return br.nc.Publish(cfg.Subject, data)
		})
	pipeline.Flush(h, func(ctx *pipeline.Ctx, cfg SinkConfig, _ *struct{}) error {
		return br.nc.Flush()
	})

	return &SinkActor[T]{Handle: h, In: in}, nil
}
