package accesslog

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Exchange is the request and response metadata of a single HTTP exchange.
type Exchange struct {
	Method string
	// URL is the request target as received, including any query.
	URL string
	// Elapsed is negative when the response time was not measured.
	Elapsed time.Duration
	// Status is zero when the response has not been written yet.
	Status int
	// Size is the response body length, zero or less means absent.
	Size int64
	// IfNoneMatch and ETag are empty when the header is absent.
	IfNoneMatch string
	ETag        string
}

// requestExchange captures the request half of an exchange.
func requestExchange(c *gin.Context) Exchange {
	url := c.Request.RequestURI
	if url == "" {
		url = c.Request.URL.RequestURI()
	}
	return Exchange{
		Method:      c.Request.Method,
		URL:         url,
		Elapsed:     -1,
		IfNoneMatch: c.GetHeader("If-None-Match"),
	}
}

// completeExchange captures the whole exchange once the handlers have run.
func completeExchange(c *gin.Context, elapsed time.Duration) Exchange {
	e := requestExchange(c)
	e.Elapsed = elapsed
	e.Status = c.Writer.Status()
	e.ETag = c.Writer.Header().Get("ETag")
	e.Size = responseSize(c)
	return e
}

// responseSize prefers the declared Content-Length and falls back to the bytes written.
func responseSize(c *gin.Context) int64 {
	if cl := c.Writer.Header().Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			return n
		}
	}
	return int64(c.Writer.Size())
}
