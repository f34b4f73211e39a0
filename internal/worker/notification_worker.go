package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/observability"
)

// ErrQueueFull is returned when the notification backlog is at capacity.
var ErrQueueFull = errors.New("notification queue full")

const drainTimeout = 2 * time.Second

// NotificationQueue decouples services from the broker. Publish never blocks;
// a single goroutine forwards queued events.
type NotificationQueue struct {
	broker  events.Publisher
	queue   chan events.Event
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewNotificationQueue creates a queue holding up to size events.
func NewNotificationQueue(broker events.Publisher, size int, logger *zap.Logger, metrics *observability.Metrics) *NotificationQueue {
	if size <= 0 {
		size = 256
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationQueue{
		broker:  broker,
		queue:   make(chan events.Event, size),
		logger:  logger,
		metrics: metrics,
	}
}

// Publish enqueues event or fails with ErrQueueFull.
func (q *NotificationQueue) Publish(_ context.Context, event events.Event) error {
	select {
	case q.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending reports the number of queued events.
func (q *NotificationQueue) Pending() int {
	return len(q.queue)
}

// Run forwards events until ctx is cancelled, then flushes what is left.
func (q *NotificationQueue) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			q.drain()
			return
		case event := <-q.queue:
			q.forward(ctx, event)
		}
	}
}

func (q *NotificationQueue) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case event := <-q.queue:
			q.forward(ctx, event)
		default:
			return
		}
	}
}

func (q *NotificationQueue) forward(ctx context.Context, event events.Event) {
	if err := q.broker.Publish(ctx, event); err != nil {
		q.metrics.RecordSideEffectFailure("notification", "publish")
		q.logger.Warn("notification publish failed",
			zap.String("topic", event.Topic),
			zap.String("event_type", string(event.Type)),
			zap.Int64("subject_id", event.SubjectID),
			zap.Error(err),
		)
	}
}

// StartNotificationWorker runs q in the background. The returned channel is
// closed once the worker has flushed and exited.
func StartNotificationWorker(ctx context.Context, q *NotificationQueue) <-chan struct{} {
	done := make(chan struct{})
	if q == nil {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		q.Run(ctx)
	}()
	return done
}
