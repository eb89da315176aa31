package pipeline

import "github.com/farm-ng/hollywood/core/metrics"

// PipelineMetrics is the instrumentation hook for the pipeline runtime.
// All methods must be safe for concurrent use.
type PipelineMetrics interface {
	// MessageSent counts one message produced on an outbound port.
	MessageSent(actor, port string)
	// MessageHandled counts one handler invocation for an inbound port.
	MessageHandled(actor, port string, success bool)
	// HandleDuration times one handler invocation.
	HandleDuration(actor string) metrics.Timer
	// QueueDepth tracks the fill level of one edge queue.
	QueueDepth(edge string, depth int)
	// RequestCompleted counts one request-reply round trip.
	// Outcome is one of "ok", "error", "timeout".
	RequestCompleted(link, outcome string)
	// ActorState records an actor's lifecycle transition.
	ActorState(actor string, state CellState)
}

// nopPipelineMetrics is a no-op implementation of PipelineMetrics.
type nopPipelineMetrics struct{}

func (nopPipelineMetrics) MessageSent(string, string)            {}
func (nopPipelineMetrics) MessageHandled(string, string, bool)   {}
func (nopPipelineMetrics) HandleDuration(string) metrics.Timer   { return metrics.NopTimer() }
func (nopPipelineMetrics) QueueDepth(string, int)                {}
func (nopPipelineMetrics) RequestCompleted(string, string)       {}
func (nopPipelineMetrics) ActorState(string, CellState)          {}

// NopPipelineMetrics returns a no-op PipelineMetrics implementation.
func NopPipelineMetrics() PipelineMetrics { return nopPipelineMetrics{} }
