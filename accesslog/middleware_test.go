package accesslog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"

	"github.com/circleci/etag-demo/internal/syncbuffer"
	"github.com/circleci/etag-demo/o11y"
	"github.com/circleci/etag-demo/o11y/honeycomb"
	"github.com/circleci/etag-demo/o11y/wrappers/o11ygin"
	"github.com/circleci/etag-demo/testing/fakemetrics"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.ReleaseMode)
	m.Run()
}

type memoryLines struct {
	lines []string
}

func (m *memoryLines) WriteLine(line string) error {
	m.lines = append(m.lines, line)
	return nil
}

func newRouter(opts Options, mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.Use(Middleware(opts))
	r.GET("/hello", func(c *gin.Context) {
		c.Header("ETag", tag)
		if c.GetHeader("If-None-Match") == tag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("Content-Length", "12")
		c.String(http.StatusOK, "Hello world!")
	})
	r.GET("/chunk", func(c *gin.Context) {
		c.String(http.StatusOK, "abc")
	})
	r.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "404 page not found")
	})
	r.GET("/empty", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func serve(r http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMiddleware(t *testing.T) {
	lines := &memoryLines{}
	dev := &syncbuffer.SyncBuffer{}
	r := newRouter(Options{Sink: lines, Dev: dev})

	serve(r, http.MethodGet, "/hello", nil)
	serve(r, http.MethodGet, "/hello", http.Header{"If-None-Match": {tag}})
	serve(r, http.MethodGet, "/hello", http.Header{"If-None-Match": {`W/"1-old"`}})
	serve(r, http.MethodGet, "/chunk?n=1", nil)
	serve(r, http.MethodGet, "/missing", nil)
	serve(r, http.MethodGet, "/empty", nil)

	assert.Assert(t, cmp.Len(lines.lines, 6))
	expected := []string{
		`^GET /hello \d+\.\d{3}ms 200 12 ∅<>` + regexp.QuoteMeta(tag) + `$`,
		`^GET /hello \d+\.\d{3}ms 304 ∅ both=` + regexp.QuoteMeta(tag) + `$`,
		`^GET /hello \d+\.\d{3}ms 200 12 W/"1-old"<>` + regexp.QuoteMeta(tag) + `$`,
		`^GET /chunk\?n=1 \d+\.\d{3}ms 200 3 ∅<>∅$`,
		`^GET /missing \d+\.\d{3}ms 404 18 ∅<>∅$`,
		`^GET /empty \d+\.\d{3}ms 204 ∅ ∅<>∅$`,
	}
	for i, re := range expected {
		assert.Check(t, cmp.Regexp(re, lines.lines[i]))
	}

	devLines := dev.Lines()
	assert.Assert(t, cmp.Len(devLines, 6))
	assert.Check(t, cmp.Regexp(`^GET /hello 304 \d+\.\d{3} ms - -$`, devLines[1]))
	assert.Check(t, cmp.Regexp(`^GET /hello 200 \d+\.\d{3} ms - 12$`, devLines[2]))
}

func TestMiddleware_Skip(t *testing.T) {
	lines := &memoryLines{}
	r := newRouter(Options{
		Sink:      lines,
		SkipBelow: 400,
		Skip: func(c *gin.Context) bool {
			return c.Request.URL.Path == "/ignored"
		},
	})

	serve(r, http.MethodGet, "/hello", nil)
	serve(r, http.MethodGet, "/missing", nil)
	serve(r, http.MethodGet, "/ignored", nil)

	assert.Assert(t, cmp.Len(lines.lines, 1))
	assert.Check(t, cmp.Regexp(`^GET /missing .* 404 `, lines.lines[0]))
}

func TestMiddleware_Immediate(t *testing.T) {
	lines := &memoryLines{}
	r := newRouter(Options{Sink: lines, Immediate: true})

	serve(r, http.MethodGet, "/hello", http.Header{"If-None-Match": {tag}})

	assert.Check(t, cmp.DeepEqual(lines.lines, []string{"GET /hello ∅ ∅ ∅ " + tag + "<>∅"}))
}

func TestMiddleware_Traced(t *testing.T) {
	m := &fakemetrics.Provider{}
	buf := &syncbuffer.SyncBuffer{}
	provider := honeycomb.New(honeycomb.Config{
		Format:  "text",
		Writer:  buf,
		Metrics: m,
	})

	lines := &memoryLines{}
	r := newRouter(Options{Sink: lines}, o11ygin.Middleware(provider, "api", nil))

	serve(r, http.MethodGet, "/hello", http.Header{"If-None-Match": {tag}})
	provider.Close(o11y.WithProvider(context.Background(), provider))

	assert.Check(t, cmp.Contains(buf.String(), "accesslog.token=both="+tag))
	calls := m.Named("accesslog.lines")
	assert.Assert(t, cmp.Len(calls, 1))
	assert.Check(t, cmp.DeepEqual(calls[0].Tags, []string{"http.status_code:304"}))
}

type failingLines struct{}

func (failingLines) WriteLine(string) error {
	return ErrClosed
}

func TestMiddleware_SinkErrorDoesNotFailRequest(t *testing.T) {
	r := newRouter(Options{Sink: failingLines{}})

	w := serve(r, http.MethodGet, "/hello", nil)
	assert.Check(t, cmp.Equal(w.Code, http.StatusOK))
	assert.Check(t, cmp.Equal(w.Body.String(), "Hello world!"))
}
