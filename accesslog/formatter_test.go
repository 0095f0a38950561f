package accesslog

import (
	"testing"
	"time"

	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"
)

const tag = `W/"c-00hq6RNueFa8QiEjhep5cJRHWAI"`

func TestCompare(t *testing.T) {
	tests := []struct {
		name    string
		in, out string
		want    string
	}{
		{name: "equal", in: tag, out: tag, want: "both=" + tag},
		{name: "differ", in: `W/"1-a"`, out: tag, want: `W/"1-a"<>` + tag},
		{name: "no request tag", out: tag, want: "∅<>" + tag},
		{name: "no response tag", in: tag, want: tag + "<>∅"},
		{name: "neither", want: "∅<>∅"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Check(t, cmp.Equal(Compare(tt.in, tt.out), tt.want))
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		e    Exchange
		want string
	}{
		{
			name: "not modified",
			e: Exchange{
				Method: "GET", URL: "/hello", Elapsed: 274 * time.Microsecond, Status: 304,
				IfNoneMatch: tag, ETag: tag,
			},
			want: "GET /hello 0.274ms 304 ∅ both=" + tag,
		},
		{
			name: "first fetch",
			e: Exchange{
				Method: "GET", URL: "/hello", Elapsed: 1913 * time.Microsecond, Status: 200, Size: 12,
				ETag: tag,
			},
			want: "GET /hello 1.913ms 200 12 ∅<>" + tag,
		},
		{
			name: "query kept and zero size",
			e: Exchange{
				Method: "GET", URL: "/nope?x=1", Elapsed: 2 * time.Millisecond, Status: 404,
			},
			want: "GET /nope?x=1 2.000ms 404 ∅ ∅<>∅",
		},
		{
			name: "immediate",
			e:    Exchange{Method: "POST", URL: "/", Elapsed: -1},
			want: "POST / ∅ ∅ ∅ ∅<>∅",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Check(t, cmp.Equal(Format(tt.e), tt.want))
		})
	}
}

func TestDevFormat(t *testing.T) {
	e := Exchange{Method: "GET", URL: "/", Elapsed: 3562 * time.Microsecond, Status: 200, Size: 12}

	assert.Check(t, cmp.Equal(DevFormat(e, false), "GET / 200 3.562 ms - 12"))
	assert.Check(t, cmp.Equal(DevFormat(e, true), "GET / \033[32m200\033[0m 3.562 ms - 12"))

	e = Exchange{Method: "GET", URL: "/", Elapsed: -1}
	assert.Check(t, cmp.Equal(DevFormat(e, true), "GET / - - ms - -"))
}
