package events

import (
	"context"
	"sync"
)

// Hub is an in-process broker. Slow subscribers miss events rather than
// stall publishers.
type Hub struct {
	mu          sync.RWMutex
	buffer      int
	closed      bool
	subscribers map[string]map[chan Event]struct{}
	dropped     func(topic string)
}

// NewHub creates a hub whose subscriber channels hold buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		buffer:      buffer,
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// OnDrop registers a callback invoked when a subscriber's buffer is full.
func (h *Hub) OnDrop(fn func(topic string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropped = fn
}

// Publish delivers event to every current subscriber of its topic.
func (h *Hub) Publish(_ context.Context, event Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrBrokerClosed
	}
	for ch := range h.subscribers[event.Topic] {
		select {
		case ch <- event:
		default:
			if h.dropped != nil {
				h.dropped(event.Topic)
			}
		}
	}
	return nil
}

// Subscribe registers a listener on topic.
func (h *Hub) Subscribe(ctx context.Context, topic string) (<-chan Event, error) {
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrBrokerClosed
	}
	if h.subscribers[topic] == nil {
		h.subscribers[topic] = make(map[chan Event]struct{})
	}
	h.subscribers[topic][ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.remove(topic, ch)
	}()
	return ch, nil
}

// Subscribers returns the number of listeners on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[topic])
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for topic, set := range h.subscribers {
		for ch := range set {
			close(ch)
		}
		delete(h.subscribers, topic)
	}
}

func (h *Hub) remove(topic string, ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subscribers[topic]
	if !ok {
		return
	}
	if _, ok := set[ch]; !ok {
		return
	}
	delete(set, ch)
	close(ch)
	if len(set) == 0 {
		delete(h.subscribers, topic)
	}
}
