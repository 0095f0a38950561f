// Package testcontext provides a context carrying a working o11y provider, so tests get logs.
package testcontext

import (
	"context"

	"github.com/circleci/etag-demo/config/o11y"
)

// ctx is initialised at package load to avoid racy initialisation of the beeline singleton
var ctx = newContext()

// Background returns a context for use in tests which contains a working o11y, so you get logs.
func Background() context.Context {
	return ctx
}

func newContext() context.Context {
	cx, _, err := o11y.Setup(context.Background(), o11y.Config{
		Format:  "color",
		Service: "test-service",
		Version: "test",
	})
	if err != nil {
		panic(err)
	}
	return cx
}
