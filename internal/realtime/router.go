package realtime

import (
	"log/slog"
	"sync"
)

// Listener receives dispatched events. Listeners run synchronously on the
// dispatching goroutine and must not block.
type Listener func(Event)

// Subscription identifies one listener registration. The zero value is inert:
// unsubscribing it is a no-op.
type Subscription struct {
	eventType string
	id        uint64
}

type listenerEntry struct {
	id uint64
	fn Listener
}

// Router is a typed publish/subscribe registry keyed by event type, with the
// reserved Wildcard label matching every type. Listeners fire in registration
// order; a failing listener never blocks delivery to the rest. Each Subscribe
// is a distinct registration identified by the returned token, so two
// different receivers sharing a method never collide.
type Router struct {
	log *slog.Logger

	mu        sync.RWMutex
	nextID    uint64
	listeners map[string][]listenerEntry
}

func NewRouter(log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}
	return &Router{
		log:       log,
		listeners: make(map[string][]listenerEntry),
	}
}

// Subscribe registers fn under eventType and returns the token that removes
// exactly this registration.
func (r *Router) Subscribe(eventType string, fn Listener) Subscription {
	if fn == nil {
		return Subscription{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.listeners[eventType] = append(r.listeners[eventType], listenerEntry{id: r.nextID, fn: fn})
	return Subscription{eventType: eventType, id: r.nextID}
}

// Unsubscribe removes the registration behind sub. Zero or already-removed
// tokens are ignored.
func (r *Router) Unsubscribe(sub Subscription) {
	if sub.id == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.listeners[sub.eventType]
	for i, entry := range entries {
		if entry.id == sub.id {
			r.listeners[sub.eventType] = append(entries[:i:i], entries[i+1:]...)
			if len(r.listeners[sub.eventType]) == 0 {
				delete(r.listeners, sub.eventType)
			}
			return
		}
	}
}

// Dispatch delivers ev to every listener registered for ev.Type, then to every
// wildcard listener, in registration order. One synchronous pass, no fan-out
// goroutines.
func (r *Router) Dispatch(ev Event) {
	r.mu.RLock()
	typed := append([]listenerEntry(nil), r.listeners[ev.Type]...)
	wild := append([]listenerEntry(nil), r.listeners[Wildcard]...)
	r.mu.RUnlock()

	for _, entry := range typed {
		r.invoke(entry.fn, ev)
	}
	for _, entry := range wild {
		r.invoke(entry.fn, ev)
	}
}

func (r *Router) invoke(fn Listener, ev Event) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("event listener panicked", "type", ev.Type, "panic", rec)
		}
	}()
	fn(ev)
}

// Clear drops every registration. Called during connection teardown.
func (r *Router) Clear() {
	r.mu.Lock()
	r.listeners = make(map[string][]listenerEntry)
	r.mu.Unlock()
}
