// Package transporttest provides an in-memory domain.Transport for
// service tests.
package transporttest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"sealchat/internal/domain"
)

type entry struct {
	id domain.HandlerID
	h  domain.Handler
}

// Fake records sent events and delivers injected ones synchronously.
type Fake struct {
	mu     sync.Mutex
	sent   []domain.Event
	subs   map[domain.EventType][]entry
	nextID domain.HandlerID
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{subs: make(map[domain.EventType][]entry)}
}

func (f *Fake) Send(_ context.Context, ev domain.Event) error {
	if ev == nil || ev.Type().Local() {
		return fmt.Errorf("cannot send %v", ev)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, ev)
	return nil
}

func (f *Fake) On(t domain.EventType, h domain.Handler) domain.HandlerID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.subs[t] = append(f.subs[t], entry{id: f.nextID, h: h})
	return f.nextID
}

func (f *Fake) Off(t domain.EventType, id domain.HandlerID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.subs[t]
	for i, e := range list {
		if e.id == id {
			f.subs[t] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Deliver runs every handler for ev in registration order and joins
// their errors.
func (f *Fake) Deliver(ctx context.Context, ev domain.Event) error {
	f.mu.Lock()
	list := append([]entry(nil), f.subs[ev.Type()]...)
	f.mu.Unlock()

	var errs []error
	for _, e := range list {
		if err := e.h(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Sent returns a copy of every event sent so far.
func (f *Fake) Sent() []domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Event(nil), f.sent...)
}

// Handlers reports how many handlers are registered for t.
func (f *Fake) Handlers(t domain.EventType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[t])
}

// Reset forgets sent events.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}

var _ domain.Transport = (*Fake)(nil)
