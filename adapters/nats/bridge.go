// Package nats bridges pipeline actors to NATS subjects: a Source actor
// turns subject messages into typed pipeline input, a Sink actor publishes
// pipeline output. The bridge owns the connection; actors registered
// through it share it.
package nats

import (
	natsgo "github.com/nats-io/nats.go"

	"github.com/farm-ng/hollywood/internal/codec"
)

// Bridge holds one NATS connection shared by the source and sink actors
// registered through it. Close it after the pipeline run has returned.
type Bridge struct {
	nc    *natsgo.Conn
	close closeFunc
	codec codec.Codec
	subs  []*natsgo.Subscription
}

// New establishes the connection via the given connector.
func New(connect Connector) (*Bridge, error) {
	nc, closeCon, err := connect()
	if err != nil {
		return nil, err
	}
	return &Bridge{nc: nc, close: closeCon, codec: codec.JSONCodec{}}, nil
}

// Close unsubscribes every source and releases the connection.
func (br *Bridge) Close() {
	for _, sub := range br.subs {
		_ = sub.Unsubscribe()
	}
	br.close()
}
