package honeycomb

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/honeycombio/libhoney-go/transmission"

	"github.com/circleci/etag-demo/colourise"
)

// TextSender is a transmission.Sender writing one human readable line per event:
//
//	09:01:12 1e113 0.274ms GET /hello accesslog.token=both=W/"c-..." http.status_code=304
//
// The trace id is cut to its last five characters. Fields with trace. or meta. prefixes
// and the global fields are left out.
type TextSender struct {
	mu        sync.Mutex
	w         io.Writer
	colour    bool
	responses chan transmission.Response
}

func NewTextSender(w io.Writer, colour bool) *TextSender {
	return &TextSender{w: w, colour: colour}
}

func (t *TextSender) Start() error {
	t.responses = make(chan transmission.Response, 100)
	return nil
}

func (t *TextSender) Stop() error  { return nil }
func (t *TextSender) Flush() error { return nil }

func (t *TextSender) Add(ev *transmission.Event) {
	line := t.format(ev)

	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = io.WriteString(t.w, line)
	t.SendResponse(transmission.Response{Metadata: ev.Metadata})
}

func (t *TextSender) TxResponses() chan transmission.Response {
	return t.responses
}

// SendResponse drops the response if nobody is reading them.
func (t *TextSender) SendResponse(r transmission.Response) bool {
	select {
	case t.responses <- r:
		return false
	default:
		return true
	}
}

func (t *TextSender) format(ev *transmission.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %.3fms %s",
		ev.Timestamp.Format("15:04:05"),
		t.paint(shortTraceID(ev.Data["trace.trace_id"])),
		ev.Data["duration_ms"],
		t.paint(fmt.Sprint(ev.Data["name"])),
	)

	keys := make([]string, 0, len(ev.Data))
	for k := range ev.Data {
		if !hidden(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		label := k
		if k == "error" && t.colour {
			label = colourise.ErrorHighlight(k)
		}
		fmt.Fprintf(&b, " %s=%v", label, ev.Data[k])
	}
	b.WriteByte('\n')
	return b.String()
}

func hidden(k string) bool {
	switch k {
	case "name", "service", "version", "duration_ms":
		return true
	}
	return strings.HasPrefix(k, "trace.") || strings.HasPrefix(k, "meta.")
}

func (t *TextSender) paint(s string) string {
	if !t.colour {
		return s
	}
	return colourise.ApplyColour(s)
}

func shortTraceID(v interface{}) string {
	id, ok := v.(string)
	if !ok || len(id) < 5 {
		return "unkwn"
	}
	return id[len(id)-5:]
}
