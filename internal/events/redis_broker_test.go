package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestBroker(t *testing.T) (*RedisBroker, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisBroker(client, "test:", 4, nil), s
}

func TestRedisBrokerRoundTrip(t *testing.T) {
	broker, _ := setupTestBroker(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	topic := ActivitiesTopic(9)
	ch, err := broker.Subscribe(ctx, topic)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	newValue := "RESOLVED"
	event, err := NewEvent(topic, EventCreated, 3, ActivityPayload{
		ID:           3,
		IssueID:      9,
		ActivityType: "STATUS_CHANGED",
		UserName:     "Ada",
		NewValue:     &newValue,
	})
	if err != nil {
		t.Fatalf("NewEvent failed: %v", err)
	}
	if err := broker.Publish(ctx, event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case got := <-ch:
		if got.ID != event.ID || got.Topic != topic || got.SubjectID != 3 {
			t.Errorf("unexpected envelope %+v", got)
		}
		var payload ActivityPayload
		if err := got.Decode(&payload); err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if payload.NewValue == nil || *payload.NewValue != "RESOLVED" || payload.OldValue != nil {
			t.Errorf("unexpected payload %+v", payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestRedisBrokerUsesPrefixedChannel(t *testing.T) {
	broker, s := setupTestBroker(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if _, err := broker.Subscribe(ctx, TopicIssues); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	channels := s.PubSubChannels("*")
	if len(channels) != 1 || channels[0] != "test:issues" {
		t.Errorf("expected [test:issues], got %v", channels)
	}
}

func TestRedisBrokerPublishFailsWhenServerDown(t *testing.T) {
	broker, s := setupTestBroker(t)
	s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := broker.Publish(ctx, Event{Topic: TopicIssues}); err == nil {
		t.Fatal("expected publish error with redis down")
	}
}
