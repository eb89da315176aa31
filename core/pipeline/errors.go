package pipeline

import "errors"

var (
	// ErrDone is returned by a tick handler to signal that the source has
	// produced its last message. The actor then drains and terminates,
	// which is what drives pipeline quiescence.
	ErrDone = errors.New("source is done")

	// ErrRequestTimeout is returned from [OutRequest.Call] when no reply
	// arrives within the link deadline. It surfaces only to the calling
	// actor, which may retry, fall back or propagate it.
	ErrRequestTimeout = errors.New("request timed out")

	// ErrNotConnected is returned from [OutRequest.Call] on a port that
	// was never connected to an in-request port.
	ErrNotConnected = errors.New("out-request port is not connected")

	// ErrLinkConnected is reported when an out-request port is connected
	// twice. Request-reply links are strictly point-to-point.
	ErrLinkConnected = errors.New("out-request port is already connected")

	// ErrLinkClosed is returned from [OutRequest.Call] after the calling
	// actor has drained; only a serve or flush handler can reach this.
	ErrLinkClosed = errors.New("request link is closed")

	// ErrRuntimeFailure wraps a handler error or panic. It is fatal to the
	// whole pipeline: a corrupted actor's downstream state is not trusted,
	// so the run is aborted instead of restarting the actor.
	ErrRuntimeFailure = errors.New("actor handler failed")
)
