package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/aryan0dhankhar/coursehub/internal/domain"
)

// Publisher receives store change events after they are persisted
type Publisher interface {
	Publish(event domain.Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(domain.Event) {}

// Broker fans events out to subscribers. Publish never blocks: a
// subscriber whose buffer is full misses the event.
type Broker struct {
	mu     sync.RWMutex
	subs   map[uint64]chan domain.Event
	nextID uint64
	logger *slog.Logger
}

// NewBroker creates an empty broker
func NewBroker(logger *slog.Logger) *Broker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broker{
		subs:   make(map[uint64]chan domain.Event),
		logger: logger,
	}
}

// Subscribe registers a subscriber with the given buffer size. The
// returned cancel func unregisters it and closes the channel.
func (b *Broker) Subscribe(buffer int) (<-chan domain.Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan domain.Event, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers event to every subscriber with room in its buffer
func (b *Broker) Publish(event domain.Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for id, ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.logger.Warn("dropping event for slow subscriber",
				slog.Uint64("subscriber", id),
				slog.String("type", string(event.Type)),
			)
		}
	}
}

// Subscribers returns the number of active subscribers
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
