package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/observability"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

// IssueService coordinates issue workflows.
type IssueService struct {
	issues          repository.IssueRepository
	projects        repository.ProjectRepository
	users           repository.UserRepository
	activity        *ActivityService
	notifier        *notifier
	logger          *zap.Logger
	defaultPageSize int
	maxPageSize     int
}

// IssueDependencies bundles repositories for the issue service.
type IssueDependencies struct {
	IssueRepo       repository.IssueRepository
	ProjectRepo     repository.ProjectRepository
	UserRepo        repository.UserRepository
	Activity        *ActivityService
	Publisher       events.Publisher
	Logger          *zap.Logger
	Metrics         *observability.Metrics
	DefaultPageSize int
	MaxPageSize     int
}

// IssueInput is the full replacement state of an issue. On update every
// field is applied, so a nil AssigneeID unassigns. ProjectID is only read
// on create.
type IssueInput struct {
	Title       string
	Description *string
	Status      domain.IssueStatus
	Priority    domain.IssuePriority
	ProjectID   int64
	AssigneeID  *int64
}

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	defaultSize, maxSize := deps.DefaultPageSize, deps.MaxPageSize
	if defaultSize <= 0 {
		defaultSize = 20
	}
	if maxSize < defaultSize {
		maxSize = defaultSize
	}
	return &IssueService{
		issues:          deps.IssueRepo,
		projects:        deps.ProjectRepo,
		users:           deps.UserRepo,
		activity:        deps.Activity,
		notifier:        newNotifier(deps.Publisher, logger, deps.Metrics),
		logger:          logger,
		defaultPageSize: defaultSize,
		maxPageSize:     maxSize,
	}
}

// CreateIssue persists a new issue owned by actor, then records
// ISSUE_CREATED and publishes CREATED on the issues topic.
func (s *IssueService) CreateIssue(ctx context.Context, actor domain.Principal, input IssueInput) (*domain.Issue, error) {
	status, priority, err := normalizeIssueInput(&input)
	if err != nil {
		return nil, err
	}
	if _, err := resolveActor(ctx, s.users, actor); err != nil {
		return nil, err
	}
	if _, err := s.projects.GetByID(ctx, input.ProjectID); err != nil {
		return nil, notFound(err, "Project", input.ProjectID)
	}
	if err := s.checkAssignee(ctx, input.AssigneeID); err != nil {
		return nil, err
	}

	issue := &domain.Issue{
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		Priority:    priority,
		ProjectID:   input.ProjectID,
		CreatorID:   actor.UserID,
		AssigneeID:  input.AssigneeID,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, err
	}

	view, err := s.issues.GetByIDWithPeople(ctx, issue.ID)
	if err != nil {
		return nil, notFound(err, "Issue", issue.ID)
	}

	s.activity.RecordBestEffort(ctx, actor, view.ID, domain.ActivityIssueCreated, nil, nil)
	s.notifier.publish(ctx, events.TopicIssues, events.EventCreated, view.ID, events.NewIssuePayload(view))
	return view, nil
}

// UpdateIssue replaces the mutable fields of issue id and records one
// activity entry per changed field.
func (s *IssueService) UpdateIssue(ctx context.Context, actor domain.Principal, id int64, input IssueInput) (*domain.Issue, error) {
	if _, err := resolveActor(ctx, s.users, actor); err != nil {
		return nil, err
	}
	existing, err := s.issues.GetByIDWithPeople(ctx, id)
	if err != nil {
		return nil, notFound(err, "Issue", id)
	}
	status, priority, err := normalizeIssueInput(&input)
	if err != nil {
		return nil, err
	}
	if err := s.checkAssignee(ctx, input.AssigneeID); err != nil {
		return nil, err
	}

	before := SnapshotOf(existing)

	existing.Title = input.Title
	existing.Description = input.Description
	existing.Status = status
	existing.Priority = priority
	existing.AssigneeID = input.AssigneeID
	if err := s.issues.Update(ctx, existing); err != nil {
		return nil, notFound(err, "Issue", id)
	}

	view, err := s.issues.GetByIDWithPeople(ctx, id)
	if err != nil {
		return nil, notFound(err, "Issue", id)
	}

	for _, change := range DiffIssue(before, SnapshotOf(view), s.assigneeNamer(ctx)) {
		s.activity.RecordBestEffort(ctx, actor, id, change.Type, change.OldValue, change.NewValue)
	}
	s.notifier.publish(ctx, events.TopicIssues, events.EventUpdated, id, events.NewIssuePayload(view))
	return view, nil
}

// GetIssue returns the hydrated issue.
func (s *IssueService) GetIssue(ctx context.Context, id int64) (*domain.Issue, error) {
	issue, err := s.issues.GetByIDWithPeople(ctx, id)
	if err != nil {
		return nil, notFound(err, "Issue", id)
	}
	return issue, nil
}

// DeleteIssue removes the issue with its comments and activity logs.
// The DELETED event carries the pre-delete snapshot.
func (s *IssueService) DeleteIssue(ctx context.Context, id int64) error {
	existing, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return notFound(err, "Issue", id)
	}
	if err := s.issues.Delete(ctx, id); err != nil {
		return notFound(err, "Issue", id)
	}
	s.notifier.publish(ctx, events.TopicIssues, events.EventDeleted, id, events.NewDeletedIssuePayload(existing))
	return nil
}

func (s *IssueService) checkAssignee(ctx context.Context, assigneeID *int64) error {
	if assigneeID == nil {
		return nil
	}
	if _, err := s.users.GetByID(ctx, *assigneeID); err != nil {
		return notFound(err, "Assignee", *assigneeID)
	}
	return nil
}

func (s *IssueService) assigneeNamer(ctx context.Context) AssigneeNamer {
	return func(id int64) string {
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return UnknownAssignee
		}
		return user.Name
	}
}

// normalizeIssueInput trims text, defaults status and priority to OPEN and
// MEDIUM, and rejects a blank title or unknown enum values.
func normalizeIssueInput(input *IssueInput) (domain.IssueStatus, domain.IssuePriority, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return "", "", apperrors.NewValidationError("title is required", map[string]any{"field": "title"})
	}
	status := input.Status
	if status == "" {
		status = domain.IssueStatusOpen
	}
	if !status.Valid() {
		return "", "", apperrors.NewValidationError("unknown status", map[string]any{"field": "status", "value": string(status)})
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.IssuePriorityMedium
	}
	if !priority.Valid() {
		return "", "", apperrors.NewValidationError("unknown priority", map[string]any{"field": "priority", "value": string(priority)})
	}
	return status, priority, nil
}
