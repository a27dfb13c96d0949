// Package events is the in-process fan-out for store update
// notifications, e.g. database-updated(dictionary, import).
package events

import (
	"log"
	"sync"
)

// Update kinds and reasons.
const (
	KindDictionary = "dictionary"

	ReasonImport = "import"
	ReasonPurge  = "purge"
)

// Handler receives update notifications. Handlers must not block.
type Handler func(kind, reason string)

// Notifier broadcasts fire-and-forget update notifications to
// subscribed handlers. Delivery is synchronous and best-effort; a
// panicking handler is logged and does not affect the others.
type Notifier struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe registers a handler for all future notifications.
func (n *Notifier) Subscribe(handler Handler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers = append(n.handlers, handler)
}

// Notify broadcasts to every handler. No failure is surfaced.
func (n *Notifier) Notify(kind, reason string) {
	n.mu.RLock()
	handlers := make([]Handler, len(n.handlers))
	copy(handlers, n.handlers)
	n.mu.RUnlock()

	for _, handler := range handlers {
		deliver(handler, kind, reason)
	}
}

func deliver(handler Handler, kind, reason string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("WARNING: update handler panicked: %v", r)
		}
	}()
	handler(kind, reason)
}
