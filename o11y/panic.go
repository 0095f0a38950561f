package o11y

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rollbar/rollbar-go"
)

// RollbarProvider is implemented by providers that report panics to rollbar.
type RollbarProvider interface {
	RollbarClient() *rollbar.Client
}

// HandlePanic records a recovered value p on span and returns it as an error. If the
// provider in ctx reports to rollbar, p is sent there too, against r when it is non-nil.
func HandlePanic(ctx context.Context, span Span, p interface{}, r *http.Request) error {
	err := fmt.Errorf("panic handled: %+v", p)
	if span == nil {
		span = noopSpan{}
	}
	span.AddRawField("panic", p)
	span.AddRawField("has_panicked", "true")
	span.AddRawField("stack", string(debug.Stack()))
	span.RecordMetric(Incr("panics", "name"))

	rp, ok := FromContext(ctx).(RollbarProvider)
	if !ok {
		return err
	}
	if r != nil {
		rp.RollbarClient().RequestError(rollbar.CRIT, r, err)
	} else {
		rp.RollbarClient().LogPanic(p, true)
	}
	return err
}
