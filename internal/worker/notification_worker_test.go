package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/observability"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func TestQueueRejectsWhenFull(t *testing.T) {
	q := NewNotificationQueue(&recordingPublisher{}, 1, nil, nil)
	if err := q.Publish(context.Background(), events.Event{Topic: events.TopicIssues}); err != nil {
		t.Fatalf("first publish failed: %v", err)
	}
	if err := q.Publish(context.Background(), events.Event{Topic: events.TopicIssues}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if q.Pending() != 1 {
		t.Errorf("expected 1 pending, got %d", q.Pending())
	}
}

func TestWorkerForwardsAndDrainsOnShutdown(t *testing.T) {
	pub := &recordingPublisher{}
	q := NewNotificationQueue(pub, 8, nil, nil)
	for i := 0; i < 3; i++ {
		if err := q.Publish(context.Background(), events.Event{Topic: events.TopicIssues, SubjectID: int64(i)}); err != nil {
			t.Fatalf("publish failed: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := StartNotificationWorker(ctx, q)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
	if got := pub.count(); got != 3 {
		t.Errorf("expected 3 forwarded events, got %d", got)
	}
}

func TestWorkerCountsBrokerFailures(t *testing.T) {
	metrics := observability.NewMetrics()
	q := NewNotificationQueue(&recordingPublisher{err: errors.New("down")}, 4, nil, metrics)
	_ = q.Publish(context.Background(), events.Event{Topic: events.TopicIssues})

	ctx, cancel := context.WithCancel(context.Background())
	done := StartNotificationWorker(ctx, q)
	cancel()
	<-done

	if got := metrics.SideEffectFailures("notification"); got != 1 {
		t.Errorf("expected 1 notification failure, got %d", got)
	}
}
