package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBroker fans events out over Redis pub/sub so every API replica can
// serve any subscriber.
type RedisBroker struct {
	client *redis.Client
	prefix string
	buffer int
	logger *zap.Logger
}

// NewRedisBroker wraps client. Channels are named prefix+topic.
func NewRedisBroker(client *redis.Client, prefix string, buffer int, logger *zap.Logger) *RedisBroker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = 16
	}
	return &RedisBroker{client: client, prefix: prefix, buffer: buffer, logger: logger}
}

// Channel returns the Redis channel carrying topic.
func (b *RedisBroker) Channel(topic string) string {
	return b.prefix + topic
}

// Publish encodes event and sends it to the topic channel.
func (b *RedisBroker) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := b.client.Publish(ctx, b.Channel(event.Topic), data).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", event.Topic, err)
	}
	return nil
}

// Subscribe blocks until Redis confirms the subscription, then streams
// decoded events until ctx ends.
func (b *RedisBroker) Subscribe(ctx context.Context, topic string) (<-chan Event, error) {
	pubsub := b.client.Subscribe(ctx, b.Channel(topic))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", topic, err)
	}

	out := make(chan Event, b.buffer)
	go func() {
		defer close(out)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.logger.Warn("discarding malformed event", zap.String("channel", msg.Channel), zap.Error(err))
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
