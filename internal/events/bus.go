package events

import (
	"fmt"
	"log/slog"
	"sync"
)

type Handler func(Event)

type Publisher interface {
	Publish(event Event)
}

type Bus interface {
	Publisher
	Subscribe(eventType Type, handler Handler)
}

var _ Bus = (*InProcessBus)(nil)

type InProcessBus struct {
	mutex    sync.RWMutex
	handlers map[Type][]Handler
	logger   *slog.Logger
}

func NewBus(logger *slog.Logger) *InProcessBus {
	return &InProcessBus{
		handlers: make(map[Type][]Handler),
		logger:   logger.With(slog.String("component", "event-bus")),
	}
}

func (b *InProcessBus) Subscribe(eventType Type, handler Handler) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish runs every handler subscribed to the event's type on the calling
// goroutine.
func (b *InProcessBus) Publish(event Event) {
	b.mutex.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mutex.RUnlock()

	for _, handler := range handlers {
		b.dispatch(handler, event)
	}
}

func (b *InProcessBus) dispatch(handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event handler panicked",
				slog.String("type", string(event.Type())),
				slog.String("event_id", event.ID()),
				slog.String("panic", fmt.Sprint(r)))
		}
	}()

	handler(event)
}

// On subscribes a handler typed to a single event type.
func On[E Event](bus Bus, handler func(E)) {
	var zero E
	bus.Subscribe(zero.Type(), func(event Event) {
		if typed, ok := event.(E); ok {
			handler(typed)
		}
	})
}
