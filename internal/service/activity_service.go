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

// ActivityService records and reads the per-issue audit trail.
type ActivityService struct {
	logs     repository.ActivityLogRepository
	users    repository.UserRepository
	notifier *notifier
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// ActivityDependencies bundles collaborators for ActivityService.
type ActivityDependencies struct {
	ActivityRepo repository.ActivityLogRepository
	UserRepo     repository.UserRepository
	Publisher    events.Publisher
	Logger       *zap.Logger
	Metrics      *observability.Metrics
}

// NewActivityService constructs the service.
func NewActivityService(deps ActivityDependencies) *ActivityService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{
		logs:     deps.ActivityRepo,
		users:    deps.UserRepo,
		notifier: newNotifier(deps.Publisher, logger, deps.Metrics),
		logger:   logger,
		metrics:  deps.Metrics,
	}
}

// Record appends one entry for issueID. The store re-resolves the issue in
// a unit of work separate from whatever mutation triggered the call.
func (s *ActivityService) Record(ctx context.Context, actor domain.Principal, issueID int64, activityType domain.ActivityType, oldValue, newValue *string) (*domain.ActivityLog, error) {
	if _, err := resolveActor(ctx, s.users, actor); err != nil {
		return nil, err
	}

	entry := &domain.ActivityLog{
		IssueID:      issueID,
		ActivityType: activityType,
		UserID:       actor.UserID,
		OldValue:     oldValue,
		NewValue:     newValue,
	}
	if err := s.logs.Append(ctx, entry); err != nil {
		return nil, notFound(err, "Issue", issueID)
	}

	s.notifier.publish(ctx, events.ActivitiesTopic(issueID), events.EventCreated, entry.ID, events.NewActivityPayload(entry))
	return entry, nil
}

// RecordBestEffort calls Record and swallows any failure after logging it.
// The caller's cancellation does not abort the write.
func (s *ActivityService) RecordBestEffort(ctx context.Context, actor domain.Principal, issueID int64, activityType domain.ActivityType, oldValue, newValue *string) {
	if _, err := s.Record(context.WithoutCancel(ctx), actor, issueID, activityType, oldValue, newValue); err != nil {
		reason := "store"
		if apperrors.HasCode(err, apperrors.CodeNotFound) {
			reason = "issue_missing"
		} else if apperrors.HasCode(err, apperrors.CodeUnauthorized) {
			reason = "actor_unresolved"
		}
		s.metrics.RecordSideEffectFailure("audit", reason)
		s.logger.Warn("activity log not recorded",
			zap.Int64("issue_id", issueID),
			zap.String("activity_type", string(activityType)),
			zap.Int64("user_id", actor.UserID),
			zap.Error(err),
		)
	}
}

// ListByIssue returns the trail newest first. An unknown issue yields an
// empty slice.
func (s *ActivityService) ListByIssue(ctx context.Context, issueID int64) ([]domain.ActivityLog, error) {
	logs, err := s.logs.ListByIssue(ctx, issueID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []domain.ActivityLog{}, nil
		}
		return nil, err
	}
	return logs, nil
}
