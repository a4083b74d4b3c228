package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Bus is the in-process pub/sub hub for channel events.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Event // eventType -> channels
	log         *EventLog // may be nil
	logger      zerolog.Logger
	closed      bool
}

// NewBus creates a new event bus. Pass a nil EventLog to disable persistence.
func NewBus(log *EventLog, logger zerolog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[string][]chan Event),
		log:         log,
		logger:      logger.With().Str("component", "bus").Logger(),
	}
}

// Publish persists the event and delivers it to subscribers without
// blocking. Subscribers with a full buffer miss the event.
func (b *Bus) Publish(_ context.Context, e Event) error {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return nil
	}
	subs := append([]chan Event(nil), b.subscribers[e.EventType()]...)
	b.mu.RUnlock()

	if b.log != nil {
		if _, err := b.log.Append(e); err != nil {
			// Delivery still happens.
			b.logger.Error().Err(err).Str("type", e.EventType()).Msg("failed to persist event")
		}
	}

	for _, ch := range subs {
		select {
		case ch <- e:
		default:
			b.logger.Warn().
				Str("type", e.EventType()).
				Str("entity_type", e.EntityType()).
				Str("entity_key", e.EntityKey()).
				Msg("subscriber channel full, dropping event")
		}
	}
	return nil
}

// Subscribe returns a channel for events of a specific type. On a closed bus
// the channel is already closed.
func (b *Bus) Subscribe(eventType string, bufferSize int) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, bufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers[eventType] = append(b.subscribers[eventType], ch)
	return ch
}

// Unsubscribe removes a subscription channel and closes it. Channels of a
// closed bus are already closed and are left alone.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.subscribers {
		for i, sub := range subs {
			if sub == ch {
				b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
				close(sub)
				return
			}
		}
	}
}

// Close shuts down the bus and closes all subscriber channels.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for _, subs := range b.subscribers {
		for _, ch := range subs {
			close(ch)
		}
	}
	b.subscribers = nil
	return nil
}
