// Package o11ygin traces gin requests and records their handler timings.
package o11ygin

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/circleci/etag-demo/o11y"
)

// statusClientClosed is the nginx convention for a request abandoned by its client.
const statusClientClosed = 499

const cancelledKey = "o11ygin.cancelled"

// Middleware starts a span per request, or continues the trace propagated in its headers,
// and times the handler chain. Only the query parameters named in queryParams are added
// to the span.
func Middleware(provider o11y.Provider, serverName string, queryParams map[string]struct{}) gin.HandlerFunc {
	metrics := provider.MetricsProvider()
	return func(c *gin.Context) {
		start := time.Now()
		req := c.Request

		ctx := o11y.WithProvider(req.Context(), provider)
		ctx, span := requestSpan(ctx, provider, req.Method+" "+c.FullPath(), req.Header)
		defer span.End()
		c.Request = req.WithContext(ctx)

		c.Header("X-Route", routeName(c))
		addRequestFields(span, c, serverName, queryParams)

		defer func() {
			status := c.Writer.Status()
			if c.GetBool(cancelledKey) {
				status = statusClientClosed
			}
			span.AddRawField("http.status_code", status)
			span.AddRawField("http.response_content_length", c.Writer.Size())
			if metrics == nil {
				return
			}
			_ = metrics.TimeInMilliseconds("handler", millis(time.Since(start)), []string{
				"http.server_name:" + serverName,
				"http.method:" + req.Method,
				"http.route:" + c.FullPath(),
				"http.status_code:" + strconv.Itoa(status),
			}, 1)
		}()

		c.Next()
	}
}

func requestSpan(ctx context.Context, p o11y.Provider, name string, h http.Header) (context.Context, o11y.Span) {
	if p.GetSpan(ctx) != nil {
		return p.StartSpan(ctx, name)
	}
	return p.StartTrace(ctx, name, h)
}

func routeName(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "not-found"
}

func addRequestFields(span o11y.Span, c *gin.Context, serverName string, queryParams map[string]struct{}) {
	req := c.Request
	for _, p := range c.Params {
		span.AddRawField("handler.vars."+p.Key, p.Value)
	}
	for key, values := range req.URL.Query() {
		if _, ok := queryParams[key]; !ok || len(values) == 0 {
			continue
		}
		if len(values) == 1 {
			span.AddRawField("handler.query."+key, values[0])
		} else {
			span.AddRawField("handler.query."+key, values)
		}
	}

	for k, v := range map[string]interface{}{
		"meta.type":                   "http_server",
		"http.server_name":            serverName,
		"http.route":                  c.FullPath(),
		"http.client_ip":              c.ClientIP(),
		"http.method":                 req.Method,
		"http.url":                    req.URL.String(),
		"http.target":                 req.URL.Path,
		"http.host":                   req.Host,
		"http.user_agent":             req.UserAgent(),
		"http.request_content_length": req.ContentLength,
	} {
		span.AddRawField(k, v)
	}
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// ClientCancelled marks requests whose context was cancelled so Middleware reports them
// as 499. A status already written to the wire is left alone.
func ClientCancelled() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		c.Next()

		if errors.Is(ctx.Err(), context.Canceled) {
			c.Set(cancelledKey, true)
			return
		}
		if len(c.Errors) > 0 {
			o11y.AddField(ctx, "gin_internal_error", c.Errors.String())
		}
	}
}

// Recovery turns a handler panic into a 500 and reports it through o11y.HandlePanic.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered interface{}) {
		c.AbortWithStatus(http.StatusInternalServerError)
		ctx := c.Request.Context()
		span := o11y.FromContext(ctx).GetSpan(ctx)

		// http.ErrAbortHandler is a dropped connection, not a bug.
		if err, ok := recovered.(error); ok && errors.Is(err, http.ErrAbortHandler) {
			if span != nil {
				o11y.AddResultToSpan(span, err)
			}
			return
		}
		_ = o11y.HandlePanic(ctx, span, recovered, c.Request)
	})
}
