package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"gotest.tools/v3/assert"
)

type fixture struct {
	url string
}

func startAPI(ctx context.Context, t testing.TB, opts Options) *fixture {
	t.Helper()

	api := New(ctx, opts)
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &fixture{
		url: srv.URL,
	}
}

type response struct {
	status int
	header http.Header
	body   string
}

func get(t testing.TB, rawurl string, header http.Header) response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, rawurl, nil)
	assert.Assert(t, err)
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := http.DefaultClient.Do(req)
	assert.Assert(t, err)

	defer func() {
		assert.Check(t, resp.Body.Close())
	}()

	b, err := io.ReadAll(resp.Body)
	assert.Assert(t, err)

	return response{
		status: resp.StatusCode,
		header: resp.Header,
		body:   string(b),
	}
}
