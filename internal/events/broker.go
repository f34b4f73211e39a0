package events

import (
	"context"
	"errors"
)

// ErrBrokerClosed is returned once a broker has been shut down.
var ErrBrokerClosed = errors.New("events: broker closed")

// Publisher fans an event out to its topic.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Subscriber streams events for one topic until ctx is cancelled, at which
// point the returned channel is closed.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan Event, error)
}

// Broker is both ends of the fan-out.
type Broker interface {
	Publisher
	Subscriber
}
