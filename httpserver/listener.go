package httpserver

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
)

// trackedListener counts the connections it has accepted and the ones still open.
type trackedListener struct {
	net.Listener
	name string

	accepted int64
	active   int64
}

func (l *trackedListener) Accept() (net.Conn, error) {
	c, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	atomic.AddInt64(&l.accepted, 1)
	atomic.AddInt64(&l.active, 1)
	return &trackedConn{Conn: c, l: l}, nil
}

func (l *trackedListener) MetricName() string {
	return l.name + "-listener"
}

func (l *trackedListener) Gauges(context.Context) map[string]float64 {
	return map[string]float64{
		"total_connections":  float64(atomic.LoadInt64(&l.accepted)),
		"active_connections": float64(atomic.LoadInt64(&l.active)),
	}
}

type trackedConn struct {
	net.Conn
	l    *trackedListener
	once sync.Once
}

func (c *trackedConn) Close() error {
	c.once.Do(func() {
		atomic.AddInt64(&c.l.active, -1)
	})
	return c.Conn.Close()
}
