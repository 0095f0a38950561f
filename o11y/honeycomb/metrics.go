package honeycomb

import (
	"fmt"
	"time"

	"github.com/circleci/etag-demo/o11y"
)

const metricKey = "__MAGIC_METRIC_KEY__"

// metricsHook sends the metrics recorded on a span, and removes them from its fields.
func metricsHook(mp o11y.MetricsProvider) func(map[string]interface{}) {
	return func(fields map[string]interface{}) {
		metrics, _ := fields[metricKey].([]o11y.Metric)
		delete(fields, metricKey)
		if mp == nil {
			return
		}

		if _, ok := fields["error"]; ok {
			_ = mp.Count("error", 1, []string{"type:o11y"}, 1)
		}
		for _, m := range metrics {
			send(mp, m, fields)
		}
	}
}

func send(mp o11y.MetricsProvider, m o11y.Metric, fields map[string]interface{}) {
	tags := make([]string, 0, len(m.Tags))
	for _, name := range m.Tags {
		if v, ok := field(fields, name); ok {
			tags = append(tags, fmt.Sprintf("%s:%v", name, v))
		}
	}

	if m.Type == o11y.MetricCount && m.Field == "" {
		_ = mp.Count(m.Name, 1, tags, 1)
		return
	}

	v, ok := field(fields, m.Field)
	if !ok {
		return
	}
	n, ok := number(v)
	if !ok {
		panic(fmt.Sprintf("field %s of metric %s is not numeric: %T", m.Field, m.Name, v))
	}

	switch m.Type {
	case o11y.MetricTimer:
		_ = mp.TimeInMilliseconds(m.Name, n, tags, 1)
	case o11y.MetricGauge:
		_ = mp.Gauge(m.Name, n, tags, 1)
	case o11y.MetricCount:
		_ = mp.Count(m.Name, int64(n), tags, 1)
	}
}

// field looks name up as given and then with the app. prefix.
func field(fields map[string]interface{}, name string) (interface{}, bool) {
	if v, ok := fields[name]; ok {
		return v, true
	}
	v, ok := fields["app."+name]
	return v, ok
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case time.Duration:
		return float64(n) / float64(time.Millisecond), true
	}
	return 0, false
}
