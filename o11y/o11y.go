// Package o11y is the tracing, logging and metrics facade used throughout the server.
//
// Code asks the context for its Provider and records spans against it. Without a
// provider in the context every call is a no-op.
package o11y

import (
	"context"
	"errors"
	"net/http"
)

type Provider interface {
	// AddGlobalField adds a field to every span, eg. service or version.
	AddGlobalField(key string, val interface{})

	// StartSpan starts a child of the active span, or a new trace if there is none.
	// The caller must End the span, usually with o11y.End.
	StartSpan(ctx context.Context, name string) (context.Context, Span)

	// StartTrace starts a root span, continuing any trace propagated in h.
	StartTrace(ctx context.Context, name string, h http.Header) (context.Context, Span)

	// GetSpan returns the active span, nil if there is none.
	GetSpan(ctx context.Context) Span

	// AddField adds an "app." prefixed field to the active span.
	AddField(ctx context.Context, key string, val interface{})

	// Log sends a zero duration span.
	Log(ctx context.Context, name string, fields ...Pair)

	MetricsProvider() MetricsProvider

	Close(ctx context.Context)
}

type Span interface {
	// AddField adds a field prefixed with "app."
	AddField(key string, val interface{})
	// AddRawField adds an unprefixed field, for plumbing code such as http.status_code.
	AddRawField(key string, val interface{})
	// RecordMetric emits metric, built from the span's fields, when the span ends.
	RecordMetric(metric Metric)
	// End sends the span. It must not be used afterwards.
	End()
}

type providerKey struct{}

func WithProvider(ctx context.Context, p Provider) context.Context {
	return context.WithValue(ctx, providerKey{}, p)
}

// FromContext returns the provider in ctx, or a no-op provider.
func FromContext(ctx context.Context) Provider {
	if p, ok := ctx.Value(providerKey{}).(Provider); ok {
		return p
	}
	return defaultProvider
}

func StartSpan(ctx context.Context, name string) (context.Context, Span) {
	return FromContext(ctx).StartSpan(ctx, name)
}

func AddField(ctx context.Context, key string, val interface{}) {
	FromContext(ctx).AddField(ctx, key, val)
}

func Log(ctx context.Context, name string, fields ...Pair) {
	FromContext(ctx).Log(ctx, name, fields...)
}

// LogError sends a zero duration span recording err.
func LogError(ctx context.Context, name string, err error, fields ...Pair) {
	_, span := StartSpan(ctx, name)
	for _, f := range fields {
		span.AddField(f.Key, f.Value)
	}
	End(span, &err)
}

// End records the result of the operation and ends the span. Pass a pointer to the named
// error return so a deferred End sees its final value:
//
//	ctx, span := o11y.StartSpan(ctx, "setup: load-access-log")
//	defer o11y.End(span, &err)
func End(span Span, err *error) {
	var e error
	if err != nil {
		e = *err
	}
	AddResultToSpan(span, e)
	span.End()
}

// AddResultToSpan sets the result field, and the error or warning field for a non-nil err.
// Warnings and cancellations do not count as errors.
func AddResultToSpan(span Span, err error) {
	switch {
	case err == nil:
		span.AddRawField("result", "success")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		span.AddRawField("result", "canceled")
		span.AddRawField("warning", err.Error())
	case IsWarning(err):
		span.AddRawField("result", "success")
		span.AddRawField("warning", err.Error())
	default:
		span.AddRawField("result", "error")
		span.AddRawField("error", err.Error())
	}
}

type Pair struct {
	Key   string
	Value interface{}
}

func Field(key string, value interface{}) Pair {
	return Pair{Key: key, Value: value}
}
