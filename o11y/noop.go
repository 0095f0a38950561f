package o11y

import (
	"context"
	"net/http"

	"github.com/DataDog/datadog-go/statsd"
)

var defaultProvider Provider = noopProvider{}

type noopProvider struct{}

func (noopProvider) AddGlobalField(string, interface{}) {}

func (noopProvider) StartSpan(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, noopSpan{}
}

func (noopProvider) StartTrace(ctx context.Context, _ string, _ http.Header) (context.Context, Span) {
	return ctx, noopSpan{}
}

func (noopProvider) GetSpan(context.Context) Span { return noopSpan{} }

func (noopProvider) AddField(context.Context, string, interface{}) {}

func (noopProvider) Log(context.Context, string, ...Pair) {}

func (noopProvider) MetricsProvider() MetricsProvider { return &statsd.NoOpClient{} }

func (noopProvider) Close(context.Context) {}

type noopSpan struct{}

func (noopSpan) AddField(string, interface{})    {}
func (noopSpan) AddRawField(string, interface{}) {}
func (noopSpan) RecordMetric(Metric)             {}
func (noopSpan) End()                            {}
