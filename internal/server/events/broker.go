package events

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Broker fans published events out to every registered subscriber.
type Broker struct {
	subscribers []Subscriber
	events      chan Event
	register    chan Subscriber
	unregister  chan Subscriber
	mu          sync.RWMutex
	now         func() time.Time
	logger      *zerolog.Logger
}

// NewBroker creates a broker. Subscribe may be called before Run.
func NewBroker(logger *zerolog.Logger) *Broker {
	return &Broker{
		subscribers: make([]Subscriber, 0),
		events:      make(chan Event, 256),
		register:    make(chan Subscriber, 10),
		unregister:  make(chan Subscriber, 10),
		now:         time.Now,
		logger:      logger,
	}
}

// Run is the broker loop; it returns when ctx is cancelled, closing every
// subscriber.
func (b *Broker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.mu.Lock()
			for _, sub := range b.subscribers {
				_ = sub.Close()
			}
			b.subscribers = nil
			b.mu.Unlock()
			b.logger.Debug().Msg("event broker stopped")
			return

		case sub := <-b.register:
			b.mu.Lock()
			b.subscribers = append(b.subscribers, sub)
			n := len(b.subscribers)
			b.mu.Unlock()
			b.logger.Debug().Int("subscribers", n).Msg("subscriber registered")

		case sub := <-b.unregister:
			b.mu.Lock()
			for i, s := range b.subscribers {
				if s == sub {
					b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
					_ = s.Close()
					break
				}
			}
			b.mu.Unlock()

		case event := <-b.events:
			b.mu.RLock()
			subs := make([]Subscriber, len(b.subscribers))
			copy(subs, b.subscribers)
			b.mu.RUnlock()

			for _, sub := range subs {
				if err := sub.Send(event); err != nil {
					b.logger.Warn().Err(err).Str("event_type", string(event.Type)).Msg("failed to deliver event")
				}
			}
		}
	}
}

// Publish queues an event. It never blocks; a full queue drops the event.
func (b *Broker) Publish(eventType EventType, data any) {
	event := Event{Type: eventType, Timestamp: b.now(), Data: data}
	select {
	case b.events <- event:
	default:
		b.logger.Warn().Str("event_type", string(eventType)).Msg("event queue full, event dropped")
	}
}

// Subscribe registers sub.
func (b *Broker) Subscribe(sub Subscriber) {
	b.register <- sub
}

// Unsubscribe removes and closes sub.
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.unregister <- sub
}

// SubscriberCount returns the number of registered subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
