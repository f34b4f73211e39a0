package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/observability"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

// notifier publishes best-effort events. Failures are logged and counted,
// never returned.
type notifier struct {
	publisher events.Publisher
	logger    *zap.Logger
	metrics   *observability.Metrics
}

func newNotifier(publisher events.Publisher, logger *zap.Logger, metrics *observability.Metrics) *notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &notifier{publisher: publisher, logger: logger, metrics: metrics}
}

func (n *notifier) publish(ctx context.Context, topic string, eventType events.EventType, subjectID int64, payload any) {
	if n == nil || n.publisher == nil {
		return
	}
	event, err := events.NewEvent(topic, eventType, subjectID, payload)
	if err == nil {
		err = n.publisher.Publish(context.WithoutCancel(ctx), event)
	}
	if err != nil {
		n.metrics.RecordSideEffectFailure("notification", "enqueue")
		n.logger.Warn("notification dropped",
			zap.String("topic", topic),
			zap.String("event_type", string(eventType)),
			zap.Int64("subject_id", subjectID),
			zap.Error(err),
		)
	}
}

// resolveActor loads the acting user; an unknown principal is Unauthorized.
func resolveActor(ctx context.Context, users repository.UserRepository, actor domain.Principal) (*domain.User, error) {
	if actor.UserID <= 0 {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	user, err := users.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("acting user no longer exists")
		}
		return nil, err
	}
	return user, nil
}

// notFound converts repository.ErrNotFound into a typed NOT_FOUND for resource.
func notFound(err error, resource string, id int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return err
}
