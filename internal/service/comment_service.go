package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/observability"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

// maxAuditContent bounds the comment text kept in COMMENT_EDITED entries.
const maxAuditContent = 200

// CommentService coordinates comment workflows. Only the author may edit
// or delete a comment.
type CommentService struct {
	comments repository.CommentRepository
	issues   repository.IssueRepository
	users    repository.UserRepository
	activity *ActivityService
	notifier *notifier
}

// CommentDependencies bundles collaborators for CommentService.
type CommentDependencies struct {
	CommentRepo repository.CommentRepository
	IssueRepo   repository.IssueRepository
	UserRepo    repository.UserRepository
	Activity    *ActivityService
	Publisher   events.Publisher
	Logger      *zap.Logger
	Metrics     *observability.Metrics
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		comments: deps.CommentRepo,
		issues:   deps.IssueRepo,
		users:    deps.UserRepo,
		activity: deps.Activity,
		notifier: newNotifier(deps.Publisher, deps.Logger, deps.Metrics),
	}
}

// CreateComment adds a comment authored by actor. Content is validated by
// the transport layer.
func (s *CommentService) CreateComment(ctx context.Context, actor domain.Principal, issueID int64, content string) (*domain.Comment, error) {
	if _, err := resolveActor(ctx, s.users, actor); err != nil {
		return nil, err
	}
	if _, err := s.issues.GetByID(ctx, issueID); err != nil {
		return nil, notFound(err, "Issue", issueID)
	}

	comment := &domain.Comment{
		IssueID:  issueID,
		Content:  content,
		AuthorID: actor.UserID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	view, err := s.comments.GetByIDWithAuthor(ctx, comment.ID)
	if err != nil {
		return nil, notFound(err, "Comment", comment.ID)
	}

	s.activity.RecordBestEffort(ctx, actor, issueID, domain.ActivityCommentAdded, nil, nil)
	s.notifier.publish(ctx, events.CommentsTopic(issueID), events.EventCreated, view.ID, events.NewCommentPayload(view))
	return view, nil
}

// UpdateComment replaces the content of an existing comment.
func (s *CommentService) UpdateComment(ctx context.Context, actor domain.Principal, commentID int64, content string) (*domain.Comment, error) {
	comment, err := s.authoredComment(ctx, actor, commentID)
	if err != nil {
		return nil, err
	}

	oldContent := comment.Content
	comment.Content = content
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, notFound(err, "Comment", commentID)
	}
	view, err := s.comments.GetByIDWithAuthor(ctx, commentID)
	if err != nil {
		return nil, notFound(err, "Comment", commentID)
	}

	s.activity.RecordBestEffort(ctx, actor, view.IssueID, domain.ActivityCommentEdited,
		strPtr(truncateContent(oldContent)), strPtr(truncateContent(view.Content)))
	s.notifier.publish(ctx, events.CommentsTopic(view.IssueID), events.EventUpdated, view.ID, events.NewCommentPayload(view))
	return view, nil
}

// DeleteComment removes a comment. The DELETED event carries id and author.
func (s *CommentService) DeleteComment(ctx context.Context, actor domain.Principal, commentID int64) error {
	comment, err := s.authoredComment(ctx, actor, commentID)
	if err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, commentID); err != nil {
		return notFound(err, "Comment", commentID)
	}

	s.activity.RecordBestEffort(ctx, actor, comment.IssueID, domain.ActivityCommentDeleted, nil, nil)
	s.notifier.publish(ctx, events.CommentsTopic(comment.IssueID), events.EventDeleted, commentID, events.CommentPayload{
		ID:         commentID,
		IssueID:    comment.IssueID,
		AuthorID:   comment.AuthorID,
		AuthorName: comment.AuthorName,
	})
	return nil
}

// ListComments returns the issue's comments oldest first.
func (s *CommentService) ListComments(ctx context.Context, issueID int64) ([]domain.Comment, error) {
	if _, err := s.issues.GetByID(ctx, issueID); err != nil {
		return nil, notFound(err, "Issue", issueID)
	}
	return s.comments.ListByIssue(ctx, issueID)
}

func (s *CommentService) authoredComment(ctx context.Context, actor domain.Principal, commentID int64) (*domain.Comment, error) {
	if _, err := resolveActor(ctx, s.users, actor); err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByIDWithAuthor(ctx, commentID)
	if err != nil {
		return nil, notFound(err, "Comment", commentID)
	}
	if comment.AuthorID != actor.UserID {
		return nil, apperrors.NewForbidden("only the author can modify this comment")
	}
	return comment, nil
}

func truncateContent(content string) string {
	runes := []rune(content)
	if len(runes) <= maxAuditContent {
		return content
	}
	return string(runes[:maxAuditContent]) + "..."
}
