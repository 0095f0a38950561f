package accesslog

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/circleci/etag-demo/o11y"
)

// LineWriter receives formatted access log lines.
type LineWriter interface {
	WriteLine(line string) error
}

type Options struct {
	// Sink receives the access log line of every exchange, nil writes none.
	Sink LineWriter
	// Dev receives the console summary of every exchange, nil writes none.
	Dev       io.Writer
	DevColour bool

	// SkipBelow drops exchanges whose status is known and lower than it.
	SkipBelow int
	// Skip drops any exchange it returns true for.
	Skip func(c *gin.Context) bool

	// Immediate logs on arrival of the request rather than on completion, so status,
	// size, ETag and response time are all absent.
	Immediate bool
}

// Middleware logs each exchange passing through the router.
func Middleware(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		if opts.Immediate {
			write(c, opts, requestExchange(c))
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		write(c, opts, completeExchange(c, time.Since(start)))
	}
}

func write(c *gin.Context, opts Options, e Exchange) {
	if skip(c, opts, e) {
		return
	}
	ctx := c.Request.Context()

	if opts.Sink != nil {
		line := Format(e)
		if err := opts.Sink.WriteLine(line); err != nil {
			o11y.LogError(ctx, "accesslog: write", err)
		} else {
			traceLine(ctx, e)
		}
	}

	if opts.Dev != nil {
		_, _ = io.WriteString(opts.Dev, DevFormat(e, opts.DevColour)+"\n")
	}
}

func skip(c *gin.Context, opts Options, e Exchange) bool {
	if e.Status != 0 && e.Status < opts.SkipBelow {
		return true
	}
	return opts.Skip != nil && opts.Skip(c)
}

func traceLine(ctx context.Context, e Exchange) {
	span := o11y.FromContext(ctx).GetSpan(ctx)
	if span == nil {
		return
	}
	span.AddRawField("accesslog.token", Compare(e.IfNoneMatch, e.ETag))
	span.RecordMetric(o11y.Incr("accesslog.lines", "http.status_code"))
}
