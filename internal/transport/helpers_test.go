package transport_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"sealchat/internal/domain"
	"sealchat/internal/transport"
)

const waitFor = 2 * time.Second

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// logBuffer collects JSON log lines written from several goroutines.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fakeConn struct {
	in     chan []byte
	closed chan struct{}
	once   sync.Once

	mu      sync.Mutex
	written [][]byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{in: make(chan []byte, 16), closed: make(chan struct{})}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case b := <-c.in:
		return websocket.TextMessage, b, nil
	case <-c.closed:
		return 0, nil, io.EOF
	}
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	select {
	case <-c.closed:
		return errors.New("write on closed conn")
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, append([]byte(nil), data...))
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) Written() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.written...)
}

// fakeDialer fails the first `failures` dials, then hands out fake conns.
type fakeDialer struct {
	mu       sync.Mutex
	failures int
	attempts int
	conns    chan *fakeConn
}

func newFakeDialer(failures int) *fakeDialer {
	return &fakeDialer{failures: failures, conns: make(chan *fakeConn, 8)}
}

func (d *fakeDialer) Dial(context.Context, string) (transport.Conn, error) {
	d.mu.Lock()
	d.attempts++
	fail := d.failures > 0
	if fail {
		d.failures--
	}
	d.mu.Unlock()
	if fail {
		return nil, errors.New("connection refused")
	}
	c := newFakeConn()
	d.conns <- c
	return c, nil
}

func (d *fakeDialer) Attempts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attempts
}

func subscribe(ch *transport.Channel, types ...domain.EventType) <-chan domain.Event {
	out := make(chan domain.Event, 64)
	for _, t := range types {
		ch.On(t, func(_ context.Context, ev domain.Event) error {
			out <- ev
			return nil
		})
	}
	return out
}

func next(t *testing.T, events <-chan domain.Event) domain.Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func recv(t *testing.T, c <-chan *fakeConn) *fakeConn {
	t.Helper()
	select {
	case conn := <-c:
		return conn
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for dial")
		return nil
	}
}

func counter(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	var sum float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}

func sampleDM() domain.DirectMessage {
	ev := domain.DirectMessage{From: "alice", To: "bob"}
	ev.Ciphertext = []byte("sealed bytes")
	ev.Nonce[0] = 7
	return ev
}
