// Package metrics defines the small instrumentation vocabulary used by the
// pipeline runtime. The interfaces keep core packages decoupled from any
// concrete backend; adapters/prometheus provides a real implementation and
// the no-op variants below are the default.
package metrics

// Counter is a monotonically increasing value, e.g. messages delivered.
type Counter interface {
	// Inc increments the counter by 1.
	Inc()
}

// Gauge is a value that can go up and down, e.g. queue depth.
type Gauge interface {
	// Set sets the gauge to value.
	Set(value float64)
	// Inc increments the gauge by 1.
	Inc()
	// Dec decrements the gauge by 1.
	Dec()
}

// Timer measures the duration of one operation. Call ObserveDuration when
// the operation completes to record the elapsed time.
type Timer interface {
	// ObserveDuration records the elapsed time since the timer was created.
	ObserveDuration()
}
