package events

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Bus fans pipeline events out to subscribers and the optional event log.
// Delivery never blocks the publisher: a subscriber whose buffer is full
// misses the event.
type Bus struct {
	mu     sync.RWMutex
	subs   []*Subscription
	log    *EventLog // may be nil
	logger *slog.Logger
	closed bool
}

// Subscription receives the events it was created for on C until it or
// the bus is closed.
type Subscription struct {
	C <-chan Event

	ch    chan Event
	types []string // empty means every type
	bus   *Bus
}

// NewBus creates a bus. Pass a nil EventLog to disable persistence.
func NewBus(log *EventLog, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{log: log, logger: logger}
}

// Publish persists e and hands it to every interested subscriber.
// Publishing on a closed bus is a no-op.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return nil
	}

	if b.log != nil {
		if _, err := b.log.Append(e); err != nil {
			b.logger.Error("failed to persist event", "type", e.EventType(), "run_id", e.RunID(), "error", err)
		}
	}

	// Sends happen under the read lock so a concurrent Close cannot close
	// a channel mid-send.
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		if !s.wants(e.EventType()) {
			continue
		}
		select {
		case s.ch <- e:
		default:
			b.logger.Debug("subscriber full, event dropped", "type", e.EventType(), "run_id", e.RunID())
		}
	}
	return nil
}

// Subscribe returns a subscription for the given event types, or for all
// events when none are given. On a closed bus C is already closed.
func (b *Bus) Subscribe(bufferSize int, types ...string) *Subscription {
	ch := make(chan Event, bufferSize)
	s := &Subscription{C: ch, ch: ch, types: types, bus: b}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return s
	}
	b.subs = append(b.subs, s)
	return s
}

// Close stops delivery and closes C. It is safe to call more than once.
func (s *Subscription) Close() {
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()

	i := slices.Index(b.subs, s)
	if i < 0 {
		return
	}
	b.subs = slices.Delete(b.subs, i, i+1)
	close(s.ch)
}

func (s *Subscription) wants(eventType string) bool {
	return len(s.types) == 0 || slices.Contains(s.types, eventType)
}

// Close shuts the bus down and closes every subscription.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for _, s := range b.subs {
		close(s.ch)
	}
	b.subs = nil
	return nil
}
