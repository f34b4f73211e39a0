package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// ErrNotFound is returned by every store when the addressed row does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a unique constraint rejects a write.
var ErrDuplicate = errors.New("record already exists")

// UserRepository defines persistence access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// ProjectFilter narrows project listing.
type ProjectFilter struct {
	SearchTerm *string
	Sort       []SortKey
}

// ProjectRepository encapsulates project persistence.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	Update(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]domain.Project, error)
	Delete(ctx context.Context, id int64) error
}

// IssueFilter captures listing filters. Nil fields impose no constraint.
type IssueFilter struct {
	Status     *domain.IssueStatus
	Priority   *domain.IssuePriority
	AssigneeID *int64
	ProjectID  *int64
	SearchTerm *string
	Sort       []SortKey
	Page       int
	PageSize   int
}

// IssueRepository encapsulates issue persistence. Deleting an issue
// cascades to its comments and activity logs.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	Update(ctx context.Context, issue *domain.Issue) error
	GetByID(ctx context.Context, id int64) (*domain.Issue, error)
	// GetByIDWithPeople returns the issue with project, creator and assignee names resolved.
	GetByIDWithPeople(ctx context.Context, id int64) (*domain.Issue, error)
	Delete(ctx context.Context, id int64) error
	ListWithFilter(ctx context.Context, filter IssueFilter) (*Page[domain.Issue], error)
}

// CommentRepository manages issue comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	Update(ctx context.Context, comment *domain.Comment) error
	GetByIDWithAuthor(ctx context.Context, id int64) (*domain.Comment, error)
	// ListByIssue returns comments ordered by created_at ascending.
	ListByIssue(ctx context.Context, issueID int64) ([]domain.Comment, error)
	Delete(ctx context.Context, id int64) error
}

// ActivityLogRepository stores append-only audit entries.
type ActivityLogRepository interface {
	// Append re-resolves the issue and inserts the entry in its own unit of
	// work. It returns ErrNotFound when the issue no longer exists.
	Append(ctx context.Context, entry *domain.ActivityLog) error
	// ListByIssue returns entries newest first, id ascending on ties.
	ListByIssue(ctx context.Context, issueID int64) ([]domain.ActivityLog, error)
}

func translateErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

// Set bundles every store the services depend on.
type Set struct {
	Users        UserRepository
	Projects     ProjectRepository
	Issues       IssueRepository
	Comments     CommentRepository
	ActivityLogs ActivityLogRepository
}

// NewPostgresSet builds the Postgres-backed Set.
func NewPostgresSet(pool *pgxpool.Pool) Set {
	return Set{
		Users:        NewUserRepository(pool),
		Projects:     NewProjectRepository(pool),
		Issues:       NewIssueRepository(pool),
		Comments:     NewCommentRepository(pool),
		ActivityLogs: NewActivityLogRepository(pool),
	}
}
