package bus

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is a lifecycle notification published on the bus.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Source    string         `json:"source"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewEvent creates an Event with a fresh id and the current timestamp.
func NewEvent(typ, source string, data map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      typ,
		Source:    source,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// Handler processes a published event. Handlers run synchronously on the
// publisher's goroutine and must not block.
type Handler func(Event)

// Subscription identifies a registered handler.
type Subscription struct {
	id        string
	eventType string
}

func (s Subscription) ID() string        { return s.id }
func (s Subscription) EventType() string { return s.eventType }

// Bus is a synchronous in-process event bus keyed by event type. The
// empty type subscribes to every event.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string]map[string]Handler
}

func New() *Bus {
	return &Bus{handlers: make(map[string]map[string]Handler)}
}

// Subscribe registers a handler for an event type ("" for all events).
func (b *Bus) Subscribe(eventType string, h Handler) Subscription {
	sub := Subscription{id: uuid.NewString(), eventType: eventType}
	b.mu.Lock()
	m, ok := b.handlers[eventType]
	if !ok {
		m = make(map[string]Handler)
		b.handlers[eventType] = m
	}
	m[sub.id] = h
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes a handler; unknown subscriptions are no-ops.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	if m, ok := b.handlers[sub.eventType]; ok {
		delete(m, sub.id)
		if len(m) == 0 {
			delete(b.handlers, sub.eventType)
		}
	}
	b.mu.Unlock()
}

// Publish delivers the event to type subscribers and wildcard
// subscribers, in stable subscription-id order.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0)
	for _, id := range sortedIDs(b.handlers[e.Type]) {
		handlers = append(handlers, b.handlers[e.Type][id])
	}
	if e.Type != "" {
		for _, id := range sortedIDs(b.handlers[""]) {
			handlers = append(handlers, b.handlers[""][id])
		}
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}

func sortedIDs(m map[string]Handler) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
