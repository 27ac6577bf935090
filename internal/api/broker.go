package api

import (
	"context"
	"sync"
	"time"
)

// Event is a duty timeline notification fanned out to live subscribers.
type Event struct {
	Type     string    `json:"type"`
	DriverID string    `json:"driverId"`
	At       time.Time `json:"at"`
	Payload  any       `json:"payload,omitempty"`
}

// EventBroker fans duty events out to websocket subscribers. Subscribing with
// an empty driverID receives every driver's events.
type EventBroker interface {
	Publish(ctx context.Context, ev Event) error
	Subscribe(ctx context.Context, driverID string) (<-chan Event, func(), error)
	Close() error
}

type memorySub struct {
	driverID string
	ch       chan Event
}

// MemoryBroker is the in-process broker used when REDIS_URL is unset.
type MemoryBroker struct {
	mu   sync.Mutex
	subs map[int]*memorySub
	next int
}

// NewMemoryBroker returns an empty in-process broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: map[int]*memorySub{}}
}

// Publish delivers to matching subscribers without blocking; slow consumers
// drop events.
func (b *MemoryBroker) Publish(_ context.Context, ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subs {
		if s.driverID != "" && s.driverID != ev.DriverID {
			continue
		}
		select {
		case s.ch <- ev:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, driverID string) (<-chan Event, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	s := &memorySub{driverID: driverID, ch: make(chan Event, 32)}
	b.subs[id] = s
	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if cur, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(cur.ch)
		}
	}
	return s.ch, cancel, nil
}

func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, s := range b.subs {
		delete(b.subs, id)
		close(s.ch)
	}
	return nil
}
