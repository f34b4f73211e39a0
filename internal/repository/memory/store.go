// Package memory provides an in-process implementation of every repository
// interface. It backs the service when no Postgres DSN is configured and
// serves as the store in service and handler tests.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
)

// Store holds all rows behind a single lock. Each repository method is one
// atomic unit of work, which matches per-row atomicity of the SQL store.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	seq map[string]int64

	users      map[int64]domain.User
	projects   map[int64]domain.Project
	issues     map[int64]domain.Issue
	comments   map[int64]domain.Comment
	activities map[int64]domain.ActivityLog
}

// New creates an empty store using the wall clock.
func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock creates an empty store whose timestamps come from now.
func NewWithClock(now func() time.Time) *Store {
	return &Store{
		now:        now,
		seq:        make(map[string]int64),
		users:      make(map[int64]domain.User),
		projects:   make(map[int64]domain.Project),
		issues:     make(map[int64]domain.Issue),
		comments:   make(map[int64]domain.Comment),
		activities: make(map[int64]domain.ActivityLog),
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() repository.UserRepository { return &userRepo{s} }

// Projects returns the project repository view of the store.
func (s *Store) Projects() repository.ProjectRepository { return &projectRepo{s} }

// Issues returns the issue repository view of the store.
func (s *Store) Issues() repository.IssueRepository { return &issueRepo{s} }

// Comments returns the comment repository view of the store.
func (s *Store) Comments() repository.CommentRepository { return &commentRepo{s} }

// ActivityLogs returns the activity log repository view of the store.
func (s *Store) ActivityLogs() repository.ActivityLogRepository { return &activityRepo{s} }

func (s *Store) nextID(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

func (s *Store) userName(id int64) string {
	return s.users[id].Name
}

// hydrate fills name fields. Callers hold at least the read lock.
func (s *Store) hydrate(issue domain.Issue) domain.Issue {
	issue.ProjectName = s.projects[issue.ProjectID].Name
	issue.CreatorName = s.userName(issue.CreatorID)
	issue.AssigneeName = nil
	if issue.AssigneeID != nil {
		if assignee, ok := s.users[*issue.AssigneeID]; ok {
			name := assignee.Name
			issue.AssigneeName = &name
		}
	}
	return issue
}

// deleteIssueLocked removes an issue with its comments and activity logs.
func (s *Store) deleteIssueLocked(id int64) {
	delete(s.issues, id)
	for cid, comment := range s.comments {
		if comment.IssueID == id {
			delete(s.comments, cid)
		}
	}
	for aid, entry := range s.activities {
		if entry.IssueID == id {
			delete(s.activities, aid)
		}
	}
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Set returns every repository view of the store.
func (s *Store) Set() repository.Set {
	return repository.Set{
		Users:        s.Users(),
		Projects:     s.Projects(),
		Issues:       s.Issues(),
		Comments:     s.Comments(),
		ActivityLogs: s.ActivityLogs(),
	}
}
