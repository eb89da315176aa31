package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/farm-ng/hollywood/core/metrics"
	"github.com/farm-ng/hollywood/core/pipeline"
)

// pipelineMetrics implements pipeline.PipelineMetrics using Prometheus.
type pipelineMetrics struct {
	messagesSent    *prometheus.CounterVec
	messagesHandled *prometheus.CounterVec
	handleDuration  *prometheus.HistogramVec
	queueDepth      *prometheus.GaugeVec
	requestsTotal   *prometheus.CounterVec
	actorState      *prometheus.GaugeVec
}

// NewPipelineMetrics creates a new Prometheus implementation of
// PipelineMetrics, registering all collectors on reg.
func NewPipelineMetrics(reg prometheus.Registerer) pipeline.PipelineMetrics {
	m := &pipelineMetrics{
		messagesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hollywood_pipeline_messages_sent_total",
			Help: "Total number of messages produced per outbound port",
		}, []string{"actor", "port"}),

		messagesHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hollywood_pipeline_messages_handled_total",
			Help: "Total number of messages handled per inbound port",
		}, []string{"actor", "port", "success"}),

		handleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hollywood_pipeline_handle_duration_seconds",
			Help:    "Handler invocation time in seconds",
			Buckets: defaultBuckets,
		}, []string{"actor"}),

		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hollywood_pipeline_queue_depth",
			Help: "Current per-edge queue depth",
		}, []string{"edge"}),

		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hollywood_pipeline_requests_total",
			Help: "Total number of request-reply calls per link and outcome",
		}, []string{"link", "outcome"}),

		actorState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hollywood_pipeline_actor_state",
			Help: "Actor lifecycle phase (0 created, 1 running, 2 draining, 3 terminated)",
		}, []string{"actor"}),
	}

	reg.MustRegister(
		m.messagesSent,
		m.messagesHandled,
		m.handleDuration,
		m.queueDepth,
		m.requestsTotal,
		m.actorState,
	)

	return m
}

func (m *pipelineMetrics) MessageSent(actor, port string) {
	m.messagesSent.WithLabelValues(actor, port).Inc()
}

func (m *pipelineMetrics) MessageHandled(actor, port string, success bool) {
	m.messagesHandled.WithLabelValues(actor, port, boolToStr(success)).Inc()
}

func (m *pipelineMetrics) HandleDuration(actor string) metrics.Timer {
	return newTimer(m.handleDuration.WithLabelValues(actor))
}

func (m *pipelineMetrics) QueueDepth(edge string, depth int) {
	m.queueDepth.WithLabelValues(edge).Set(float64(depth))
}

func (m *pipelineMetrics) RequestCompleted(link, outcome string) {
	m.requestsTotal.WithLabelValues(link, outcome).Inc()
}

func (m *pipelineMetrics) ActorState(actor string, state pipeline.CellState) {
	m.actorState.WithLabelValues(actor).Set(float64(state))
}

var _ pipeline.PipelineMetrics = (*pipelineMetrics)(nil)
