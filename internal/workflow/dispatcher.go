package workflow

import (
	"context"
	"log"
	"sync"
)

// Handler processes one workflow event. Errors are logged and dropped; no
// handler failure ever reaches the conversation pipeline, and nothing is
// retried.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Dispatcher maps event kinds to handler lists. Dispatch is fire-and-forget:
// handlers run on their own goroutine and the caller never waits for them.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[EventKind][]Handler
	wg       sync.WaitGroup
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[EventKind][]Handler),
	}
}

func (d *Dispatcher) Register(kind EventKind, h Handler) {
	if _, ok := ParseKind(string(kind)); !ok {
		log.Printf("[workflow] refusing to register handler for unknown event %q", kind)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = append(d.handlers[kind], h)
}

// Dispatch delivers the event to every handler registered for its kind.
// Unknown kinds are logged and ignored.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) {
	if _, ok := ParseKind(string(event.Kind)); !ok {
		log.Printf("[workflow] unknown event %q for tenant %s, dropping", event.Kind, event.TenantID)
		return
	}

	d.mu.RLock()
	handlers := d.handlers[event.Kind]
	d.mu.RUnlock()

	if len(handlers) == 0 {
		log.Printf("[workflow] no handlers for %s (tenant %s)", event.Kind, event.TenantID)
		return
	}

	for _, h := range handlers {
		d.wg.Add(1)
		go func(h Handler) {
			defer d.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[workflow] handler panic on %s: %v", event.Kind, r)
				}
			}()

			if err := h.Handle(ctx, event); err != nil {
				log.Printf("[workflow] handler error on %s (tenant %s): %v", event.Kind, event.TenantID, err)
			}
		}(h)
	}
}

// Wait blocks until every in-flight handler has returned. Used at shutdown
// and in tests; the request path never calls it.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
