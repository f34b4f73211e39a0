package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
)

type activityRepo struct{ s *Store }

func (r *activityRepo) Append(ctx context.Context, entry *domain.ActivityLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.issues[entry.IssueID]; !ok {
		return repository.ErrNotFound
	}
	user, ok := r.s.users[entry.UserID]
	if !ok {
		return fmt.Errorf("user %d does not exist", entry.UserID)
	}
	entry.ID = r.s.nextID("activity_logs")
	entry.CreatedAt = r.s.now()
	entry.UserName = user.Name
	stored := *entry
	stored.OldValue = copyString(entry.OldValue)
	stored.NewValue = copyString(entry.NewValue)
	r.s.activities[entry.ID] = stored
	return nil
}

func (r *activityRepo) ListByIssue(_ context.Context, issueID int64) ([]domain.ActivityLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := []domain.ActivityLog{}
	for _, entry := range r.s.activities {
		if entry.IssueID != issueID {
			continue
		}
		entry.UserName = r.s.userName(entry.UserID)
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool {
		if c := result[i].CreatedAt.Compare(result[j].CreatedAt); c != 0 {
			return c > 0
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}
