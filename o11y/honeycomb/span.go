package honeycomb

import (
	"fmt"
	"strings"

	"github.com/honeycombio/beeline-go/trace"

	"github.com/circleci/etag-demo/o11y"
)

type span struct {
	span    *trace.Span
	metrics []o11y.Metric
}

func wrap(s *trace.Span) *span {
	return &span{span: s}
}

func (s *span) AddField(key string, val interface{}) {
	s.AddRawField("app."+key, val)
}

func (s *span) AddRawField(key string, val interface{}) {
	mustValidateKey(key)
	if err, ok := val.(error); ok {
		val = err.Error()
	}
	s.span.AddField(key, val)
}

// RecordMetric stashes the metrics in a span field for the send hook to pick up.
func (s *span) RecordMetric(m o11y.Metric) {
	s.metrics = append(s.metrics, m)
	s.span.AddField(metricKey, s.metrics)
}

func (s *span) End() {
	s.span.Send()
}

// mustValidateKey rejects keys that cannot be used as statsd tag names.
func mustValidateKey(key string) {
	if strings.Contains(key, "-") {
		panic(fmt.Errorf("key %q cannot contain '-'", key))
	}
}
