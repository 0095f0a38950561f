package api

import (
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"
	"gotest.tools/v3/fs"
	"gotest.tools/v3/poll"

	"github.com/circleci/etag-demo/accesslog"
	"github.com/circleci/etag-demo/etag"
	"github.com/circleci/etag-demo/testing/testcontext"
)

func TestHello(t *testing.T) {
	ctx := testcontext.Background()
	api := startAPI(ctx, t, Options{})

	first := get(t, api.url+"/hello", nil)
	assert.Check(t, cmp.Equal(first.status, http.StatusOK))
	assert.Check(t, cmp.Equal(first.body, "Hello world!"))
	assert.Check(t, cmp.Equal(first.header.Get("Content-Type"), "text/html; charset=utf-8"))
	assert.Check(t, cmp.Equal(first.header.Get("Content-Length"), "12"))
	assert.Check(t, cmp.Equal(first.header.Get("ETag"), `W/"c-00hq6RNueFa8QiEjhep5cJRHWAI"`))

	second := get(t, api.url+"/hello", nil)
	assert.Check(t, cmp.DeepEqual(second.body, first.body))
	assert.Check(t, cmp.Equal(second.header.Get("ETag"), first.header.Get("ETag")))

	root := get(t, api.url+"/", nil)
	assert.Check(t, cmp.Equal(root.body, "Hello world!"))
}

func TestHello_Greeting(t *testing.T) {
	ctx := testcontext.Background()
	api := startAPI(ctx, t, Options{Greeting: "Hi!"})

	res := get(t, api.url+"/hello", nil)
	assert.Check(t, cmp.Equal(res.body, "Hi!"))
	assert.Check(t, cmp.Equal(res.header.Get("ETag"), etag.Weak([]byte("Hi!"))))
}

func TestNotFound(t *testing.T) {
	ctx := testcontext.Background()
	api := startAPI(ctx, t, Options{})

	res := get(t, api.url+"/nowhere", nil)
	assert.Check(t, cmp.Equal(res.status, http.StatusNotFound))
	assert.Check(t, cmp.Equal(res.body, "404 page not found"))
	assert.Check(t, cmp.Equal(res.header.Get("X-Route"), "not-found"))
}

func TestNotModified(t *testing.T) {
	ctx := testcontext.Background()
	tags, err := etag.NewCache(8)
	assert.Assert(t, err)
	api := startAPI(ctx, t, Options{Tags: tags})

	first := get(t, api.url+"/hello", nil)
	tag := first.header.Get("ETag")

	t.Run("matching tag", func(t *testing.T) {
		res := get(t, api.url+"/hello", http.Header{"If-None-Match": {tag}})
		assert.Check(t, cmp.Equal(res.status, http.StatusNotModified))
		assert.Check(t, cmp.Equal(res.body, ""))
		assert.Check(t, cmp.Equal(res.header.Get("Content-Length"), ""))
		assert.Check(t, cmp.Equal(res.header.Get("ETag"), tag))
	})

	t.Run("stale tag", func(t *testing.T) {
		res := get(t, api.url+"/hello", http.Header{"If-None-Match": {`W/"c-stale"`}})
		assert.Check(t, cmp.Equal(res.status, http.StatusOK))
		assert.Check(t, cmp.Equal(res.body, "Hello world!"))
	})

	t.Run("no-cache", func(t *testing.T) {
		res := get(t, api.url+"/hello", http.Header{
			"If-None-Match": {tag},
			"Cache-Control": {"no-cache"},
		})
		assert.Check(t, cmp.Equal(res.status, http.StatusOK))
	})

	assert.Check(t, cmp.Equal(tags.Len(), 1))
}

func TestTime(t *testing.T) {
	ctx := testcontext.Background()
	now := time.Date(2021, time.March, 4, 5, 6, 7, 0, time.UTC)
	api := startAPI(ctx, t, Options{
		Now: func() time.Time { return now },
	})

	res := get(t, api.url+"/time", nil)
	assert.Check(t, cmp.Equal(res.status, http.StatusOK))
	assert.Check(t, cmp.Equal(res.body, "Thu Mar 04 2021 05:06:07 GMT+0000 (UTC)"))
}

func TestRandom(t *testing.T) {
	ctx := testcontext.Background()

	t.Run("in range", func(t *testing.T) {
		api := startAPI(ctx, t, Options{})
		for i := 0; i < 50; i++ {
			res := get(t, api.url+"/random", nil)
			assert.Assert(t, cmp.Equal(res.status, http.StatusOK))
			n, err := strconv.Atoi(res.body)
			assert.Assert(t, err)
			assert.Assert(t, n >= 1 && n <= DefaultRandomMax, "%d out of range", n)
		}
	})

	t.Run("bounds", func(t *testing.T) {
		draws := []int{0, 6}
		api := startAPI(ctx, t, Options{
			RandomMax: 7,
			Rand: func(n int) int {
				assert.Check(t, cmp.Equal(n, 7))
				d := draws[0]
				draws = draws[1:]
				return d
			},
		})
		assert.Check(t, cmp.Equal(get(t, api.url+"/random", nil).body, "1"))
		assert.Check(t, cmp.Equal(get(t, api.url+"/random", nil).body, "7"))
	})
}

func TestIsNumber(t *testing.T) {
	ctx := testcontext.Background()
	api := startAPI(ctx, t, Options{})

	tests := []struct {
		path string
		want string
	}{
		{path: "42", want: "42 is a number"},
		{path: "abc", want: "abc is not a number"},
		{path: "-1.5e3", want: "-1.5e3 is a number"},
		{path: "0x1F", want: "0x1F is a number"},
		{path: "Infinity", want: "Infinity is a number"},
		{path: "12px", want: "12px is not a number"},
		{path: "%20", want: "  is a number"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			res := get(t, api.url+"/isNumber/"+tt.path, nil)
			assert.Check(t, cmp.Equal(res.status, http.StatusOK))
			assert.Check(t, cmp.Equal(res.body, tt.want))
		})
	}
}

func TestAccessLog(t *testing.T) {
	ctx := testcontext.Background()
	dir := fs.NewDir(t, "api")
	sink, err := accesslog.Open(filepath.Join(dir.Path(), "log", "access.log"))
	assert.Assert(t, err)
	t.Cleanup(func() {
		assert.Check(t, sink.Close())
	})

	api := startAPI(ctx, t, Options{
		Middleware: []gin.HandlerFunc{accesslog.Middleware(accesslog.Options{Sink: sink})},
	})

	tag := get(t, api.url+"/hello", nil).header.Get("ETag")
	get(t, api.url+"/hello", http.Header{"If-None-Match": {tag}})
	get(t, api.url+"/isNumber/42", nil)
	get(t, api.url+"/nowhere", nil)

	var lines []string
	poll.WaitOn(t, func(t poll.LogT) poll.Result {
		b, err := os.ReadFile(sink.Path())
		if err != nil {
			return poll.Error(err)
		}
		lines = strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
		if len(lines) < 4 {
			return poll.Continue("%d lines written", len(lines))
		}
		return poll.Success()
	})
	assert.Assert(t, cmp.Len(lines, 4))

	for _, re := range []string{
		`^GET /hello \d+\.\d{3}ms 200 12 ∅<>W/"c-00hq6RNueFa8QiEjhep5cJRHWAI"$`,
		`^GET /hello \d+\.\d{3}ms 304 ∅ both=W/"c-00hq6RNueFa8QiEjhep5cJRHWAI"$`,
		`^GET /isNumber/42 \d+\.\d{3}ms 200 14 ∅<>W/"e-LLJWxxSbT\+YTGH95wylf1CZv9OE"$`,
		`^GET /nowhere \d+\.\d{3}ms 404 18 ∅<>∅$`,
	} {
		assert.Check(t, containsMatch(lines, re), "no line matches %s in %q", re, lines)
	}
}

func containsMatch(lines []string, re string) bool {
	r := regexp.MustCompile(re)
	for _, l := range lines {
		if r.MatchString(l) {
			return true
		}
	}
	return false
}
