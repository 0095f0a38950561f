package o11y

import "io"

type MetricType string

const (
	MetricTimer MetricType = "timer"
	MetricGauge MetricType = "gauge"
	MetricCount MetricType = "count"
)

// Metric is emitted from the fields of a span when it ends.
type Metric struct {
	Type MetricType
	Name string
	// Field holds the value. Counts without one add 1.
	Field string
	// Tags are the span fields sent as name:value tags.
	Tags []string
}

// Timing emits the span duration.
func Timing(name string, tags ...string) Metric {
	return Metric{Type: MetricTimer, Name: name, Field: "duration_ms", Tags: tags}
}

func Incr(name string, tags ...string) Metric {
	return Metric{Type: MetricCount, Name: name, Tags: tags}
}

func Gauge(name, field string, tags ...string) Metric {
	return Metric{Type: MetricGauge, Name: name, Field: field, Tags: tags}
}

// MetricsProvider is the subset of the statsd client the server uses.
type MetricsProvider interface {
	TimeInMilliseconds(name string, value float64, tags []string, rate float64) error
	Gauge(name string, value float64, tags []string, rate float64) error
	Count(name string, value int64, tags []string, rate float64) error
}

type ClosableMetricsProvider interface {
	MetricsProvider
	io.Closer
}
