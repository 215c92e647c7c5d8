package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"sealchat/internal/domain"
	"sealchat/internal/metrics"
)

// State is the connection state of a Channel.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

const (
	DefaultDialTimeout  = 10 * time.Second
	defaultWriteTimeout = 10 * time.Second
)

// ErrClosed is returned by Connect when Close raced the dial.
var ErrClosed = errors.New("transport closed")

// Options configures a Channel.
type Options struct {
	URL         string
	Dialer      Dialer
	Backoff     Backoff
	DialTimeout time.Duration
	Logger      *slog.Logger
	Metrics     *metrics.Transport
}

// Channel is a self-healing duplex event channel to the relay.
type Channel struct {
	*dispatcher

	url         string
	dialer      Dialer
	dialTimeout time.Duration
	log         *slog.Logger
	metrics     *metrics.Transport

	mu              sync.Mutex
	state           State
	conn            Conn
	shouldReconnect bool
	schedule        *backoff.ExponentialBackOff
	retry           *time.Timer
	life            context.Context
	cancel          context.CancelFunc

	writeMu sync.Mutex
}

var _ domain.Transport = (*Channel)(nil)

// New builds a Channel in the Disconnected state. Nothing is dialled until
// Connect is called.
func New(opts Options) *Channel {
	if opts.Dialer == nil {
		opts.Dialer = WebsocketDialer{}
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = DefaultDialTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewTransport(nil)
	}
	log := opts.Logger.With("component", "transport")
	return &Channel{
		dispatcher:  newDispatcher(log, opts.Metrics),
		url:         opts.URL,
		dialer:      opts.Dialer,
		dialTimeout: opts.DialTimeout,
		log:         log,
		metrics:     opts.Metrics,
		schedule:    opts.Backoff.withDefaults().exponential(),
	}
}

// State returns the current connection state.
func (c *Channel) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connected reports whether frames can currently be sent.
func (c *Channel) Connected() bool { return c.State() == Connected }

// Connect dials the relay with the backoff reset to its floor. It is a
// no-op while already connecting or connected. A dial failure is returned
// and a retry is scheduled, so the caller need not loop.
func (c *Channel) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state != Disconnected {
		c.mu.Unlock()
		return nil
	}
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
	c.shouldReconnect = true
	c.schedule.Reset()
	if c.life == nil {
		c.life, c.cancel = context.WithCancel(context.Background())
	}
	c.setState(Connecting)
	c.mu.Unlock()

	return c.dial(ctx)
}

// Run connects and blocks until ctx is done, then closes the channel.
func (c *Channel) Run(ctx context.Context) error {
	if err := c.Connect(ctx); err != nil && !errors.Is(err, domain.ErrTransportDisconnected) {
		return err
	}
	<-ctx.Done()
	return c.Close()
}

// Close stops the channel for good: the pending retry is cancelled, the
// socket is closed and a final Disconnected event is emitted.
func (c *Channel) Close() error {
	c.mu.Lock()
	c.shouldReconnect = false
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
	conn := c.conn
	c.conn = nil
	c.setState(Disconnected)
	life, cancel := c.life, c.cancel
	c.life, c.cancel = nil, nil
	c.mu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close()
	}
	if cancel == nil {
		return nil
	}
	// Cancelling first releases handlers blocked on the old context and
	// discards frames still in flight; the final event then waits for the
	// running handler and is the last one delivered.
	cancel()
	c.log.Info("transport closed")
	c.dispatch(context.WithoutCancel(life), domain.Disconnected{Final: true})
	return err
}

// Send writes ev if the link is up and silently drops it otherwise. Only
// encoding problems are reported.
func (c *Channel) Send(ctx context.Context, ev domain.Event) error {
	data, err := Encode(ev)
	if err != nil {
		return err
	}

	c.mu.Lock()
	conn := c.conn
	up := c.state == Connected
	c.mu.Unlock()
	if !up || conn == nil {
		c.metrics.SendsDropped.Inc()
		c.log.Debug("send dropped while disconnected", "type", ev.Type())
		return nil
	}

	deadline := time.Now().Add(defaultWriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.writeMu.Lock()
	_ = conn.SetWriteDeadline(deadline)
	err = conn.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		c.metrics.SendsDropped.Inc()
		c.log.Debug("send failed", "type", ev.Type(), "err", err)
		// The read loop observes the closed socket and runs the
		// disconnect path, keeping dispatch on one goroutine.
		_ = conn.Close()
	}
	return nil
}

func (c *Channel) dial(ctx context.Context) error {
	dctx, cancel := context.WithTimeout(ctx, c.dialTimeout)
	defer cancel()

	conn, err := c.dialer.Dial(dctx, c.url)
	if err != nil {
		c.lost(nil, err)
		return fmt.Errorf("%w: dial %s: %v", domain.ErrTransportDisconnected, c.url, err)
	}

	c.mu.Lock()
	if !c.shouldReconnect || c.state != Connecting {
		c.mu.Unlock()
		_ = conn.Close()
		return ErrClosed
	}
	c.conn = conn
	c.setState(Connected)
	c.schedule.Reset()
	life := c.life
	c.mu.Unlock()

	c.metrics.Connects.Inc()
	c.log.Info("transport connected", "url", c.url)
	c.dispatch(life, domain.Connected{})
	go c.readLoop(life, conn)
	return nil
}

// lost handles a failed dial (conn == nil) or the loss of conn. It emits
// Disconnected and, unless Close was called, arms the single retry timer.
func (c *Channel) lost(conn Conn, cause error) {
	c.mu.Lock()
	if conn != nil && c.conn != conn {
		c.mu.Unlock()
		return
	}
	if conn == nil && (c.state != Connecting || !c.shouldReconnect) {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.setState(Disconnected)
	reconnect := c.shouldReconnect
	var delay time.Duration
	if reconnect {
		delay = c.schedule.NextBackOff()
	}
	life := c.life
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	c.metrics.Disconnects.Inc()
	c.log.Warn("transport disconnected", "err", cause)
	c.dispatch(life, domain.Disconnected{Err: cause, RetryIn: delay, Final: !reconnect})

	if !reconnect {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.shouldReconnect || c.state != Disconnected || c.retry != nil {
		return
	}
	c.metrics.ReconnectDelay.Observe(delay.Seconds())
	c.log.Info("reconnect scheduled", "url", c.url, "retry_in", delay)
	c.retry = time.AfterFunc(delay, c.reconnect)
}

func (c *Channel) reconnect() {
	c.mu.Lock()
	c.retry = nil
	if !c.shouldReconnect || c.state != Disconnected || c.life == nil {
		c.mu.Unlock()
		return
	}
	c.setState(Connecting)
	life := c.life
	c.mu.Unlock()

	c.log.Info("reconnecting", "url", c.url)
	_ = c.dial(life)
}

func (c *Channel) readLoop(ctx context.Context, conn Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.lost(conn, err)
			return
		}
		ev, err := Decode(data)
		if err != nil {
			c.metrics.FramesDropped.WithLabelValues("malformed").Inc()
			c.log.Warn("dropping malformed frame", "err", err, "bytes", len(data))
			continue
		}
		c.metrics.FramesReceived.WithLabelValues(string(ev.Type())).Inc()
		c.dispatch(ctx, ev)
	}
}

// setState must be called with c.mu held.
func (c *Channel) setState(s State) {
	c.state = s
	c.metrics.State.Set(float64(s))
}
