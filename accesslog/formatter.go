package accesslog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/circleci/etag-demo/colourise"
)

// Placeholder stands in for any absent field of a log line.
const Placeholder = "∅"

// Format renders the access log line for e, without a trailing newline.
func Format(e Exchange) string {
	return strings.Join([]string{
		e.Method,
		e.URL,
		millis(e.Elapsed),
		status(e.Status, Placeholder),
		size(e.Size, Placeholder),
		Compare(e.IfNoneMatch, e.ETag),
	}, " ")
}

// Compare renders the entity tag token. Equal present tags collapse to both=<tag>,
// anything else shows each side with absent sides as the placeholder.
func Compare(in, out string) string {
	if in != "" && in == out {
		return "both=" + in
	}
	return orPlaceholder(in) + "<>" + orPlaceholder(out)
}

// DevFormat renders the short console summary of e. With colour the status is coloured
// by its class.
func DevFormat(e Exchange, colour bool) string {
	st := status(e.Status, "-")
	if colour && e.Status != 0 {
		st = colourise.Status(e.Status)
	}
	return fmt.Sprintf("%s %s %s %s ms - %s",
		e.Method, e.URL, st, elapsed(e.Elapsed, "-"), size(e.Size, "-"))
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}

func millis(d time.Duration) string {
	if d < 0 {
		return Placeholder
	}
	return elapsed(d, "") + "ms"
}

func elapsed(d time.Duration, absent string) string {
	if d < 0 {
		return absent
	}
	return strconv.FormatFloat(float64(d)/float64(time.Millisecond), 'f', 3, 64)
}

func status(code int, absent string) string {
	if code == 0 {
		return absent
	}
	return strconv.Itoa(code)
}

func size(n int64, absent string) string {
	if n <= 0 {
		return absent
	}
	return strconv.FormatInt(n, 10)
}
