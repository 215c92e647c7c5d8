package transport

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"sealchat/internal/domain"
	"sealchat/internal/metrics"
)

type subscription struct {
	id      domain.HandlerID
	handler domain.Handler
}

// dispatcher is the subscriber table keyed by event type. run serialises
// dispatch, so the handlers for one event finish before any handler sees
// the next, whichever goroutine produced it.
type dispatcher struct {
	log     *slog.Logger
	metrics *metrics.Transport

	run sync.Mutex

	mu     sync.RWMutex
	nextID domain.HandlerID
	subs   map[domain.EventType][]subscription
}

func newDispatcher(log *slog.Logger, m *metrics.Transport) *dispatcher {
	return &dispatcher{log: log, metrics: m, subs: make(map[domain.EventType][]subscription)}
}

// On registers h for events of type t. Handlers for one type run in
// registration order.
func (d *dispatcher) On(t domain.EventType, h domain.Handler) domain.HandlerID {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	d.subs[t] = append(d.subs[t], subscription{id: d.nextID, handler: h})
	return d.nextID
}

// Off removes a registration. Unknown ids are ignored.
func (d *dispatcher) Off(t domain.EventType, id domain.HandlerID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	list := d.subs[t]
	for i, s := range list {
		if s.id == id {
			next := make([]subscription, 0, len(list)-1)
			next = append(next, list[:i]...)
			next = append(next, list[i+1:]...)
			d.subs[t] = next
			return
		}
	}
}

// dispatch runs every handler registered for ev's type. The table is
// snapshotted first so handlers may subscribe or unsubscribe freely.
// Handlers must not call Connect or Close synchronously.
func (d *dispatcher) dispatch(ctx context.Context, ev domain.Event) {
	d.run.Lock()
	defer d.run.Unlock()
	if ctx.Err() != nil {
		// The channel lifetime that produced ev has ended.
		return
	}

	d.mu.RLock()
	list := d.subs[ev.Type()]
	d.mu.RUnlock()

	for _, s := range list {
		d.invoke(ctx, ev, s)
	}
}

func (d *dispatcher) invoke(ctx context.Context, ev domain.Event, s subscription) {
	defer func() {
		if r := recover(); r != nil {
			d.metrics.HandlerFailures.WithLabelValues(string(ev.Type())).Inc()
			d.log.Error("event handler panicked",
				"type", ev.Type(), "handler", s.id, "panic", fmt.Sprint(r))
		}
	}()
	if err := s.handler(ctx, ev); err != nil {
		d.metrics.HandlerFailures.WithLabelValues(string(ev.Type())).Inc()
		d.log.Error("event handler failed", "type", ev.Type(), "handler", s.id, "err", err)
	}
}
