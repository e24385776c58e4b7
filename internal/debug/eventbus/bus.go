package eventbus

import (
	"context"
	"sync"
	"time"
)

type Event struct {
	Type      string
	Timestamp time.Time
	Data      map[string]interface{}
	Context   context.Context
}

type EventHandler interface {
	Handle(event Event)
	GetID() string
}

// Bus fans events out to subscribers from a single worker goroutine.
// Handlers for one event run in subscription order, and events are
// delivered in publish order, so subscribers that accumulate history
// (the session recorder) see clicks in the order they happened.
type Bus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex

	buffer chan Event
	closed bool
	wg     sync.WaitGroup
}

func NewBus(bufferSize int) *Bus {
	bus := &Bus{
		subscribers: make(map[string][]EventHandler),
		buffer:      make(chan Event, bufferSize),
	}

	bus.wg.Add(1)
	go bus.worker()
	return bus
}

// Publish never blocks the caller. Events are dropped when the buffer
// is full or the bus has shut down.
func (b *Bus) Publish(event Event) {
	event.Timestamp = time.Now()

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	select {
	case b.buffer <- event:
	default:
	}
}

func (b *Bus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

func (b *Bus) Unsubscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	handlers := b.subscribers[eventType]
	for i, h := range handlers {
		if h.GetID() == handler.GetID() {
			b.subscribers[eventType] = append(handlers[:i], handlers[i+1:]...)
			break
		}
	}
}

// Shutdown stops intake, then waits for the worker to drain every
// buffered event.
func (b *Bus) Shutdown() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.buffer)
	b.mu.Unlock()

	b.wg.Wait()
}

func (b *Bus) worker() {
	defer b.wg.Done()

	for event := range b.buffer {
		b.dispatch(event)
	}
}

func (b *Bus) dispatch(event Event) {
	b.mu.RLock()
	handlers := make([]EventHandler, len(b.subscribers[event.Type]))
	copy(handlers, b.subscribers[event.Type])
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.deliver(handler, event)
	}
}

func (b *Bus) deliver(handler EventHandler, event Event) {
	defer func() {
		// A panicking subscriber must not take down the worker.
		recover()
	}()
	handler.Handle(event)
}
