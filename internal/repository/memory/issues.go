package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
)

type issueRepo struct{ s *Store }

func (r *issueRepo) Create(_ context.Context, issue *domain.Issue) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.checkRefs(issue); err != nil {
		return err
	}
	if _, ok := r.s.users[issue.CreatorID]; !ok {
		return fmt.Errorf("creator %d does not exist", issue.CreatorID)
	}
	now := r.s.now()
	issue.ID = r.s.nextID("issues")
	issue.CreatedAt = now
	issue.UpdatedAt = now
	r.s.issues[issue.ID] = stripNames(*issue)
	return nil
}

func (r *issueRepo) Update(_ context.Context, issue *domain.Issue) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.issues[issue.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if err := r.checkRefs(issue); err != nil {
		return err
	}
	stored.Title = issue.Title
	stored.Description = copyString(issue.Description)
	stored.Status = issue.Status
	stored.Priority = issue.Priority
	stored.AssigneeID = copyInt64(issue.AssigneeID)
	stored.UpdatedAt = r.s.now()
	r.s.issues[issue.ID] = stored
	issue.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *issueRepo) GetByID(_ context.Context, id int64) (*domain.Issue, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	issue, ok := r.s.issues[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &issue, nil
}

func (r *issueRepo) GetByIDWithPeople(_ context.Context, id int64) (*domain.Issue, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	issue, ok := r.s.issues[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	hydrated := r.s.hydrate(issue)
	return &hydrated, nil
}

func (r *issueRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.issues[id]; !ok {
		return repository.ErrNotFound
	}
	r.s.deleteIssueLocked(id)
	return nil
}

func (r *issueRepo) ListWithFilter(_ context.Context, filter repository.IssueFilter) (*repository.Page[domain.Issue], error) {
	keys := filter.Sort
	if len(keys) == 0 {
		keys = []repository.SortKey{repository.Asc(repository.SortFieldCreatedAt), repository.Asc(repository.SortFieldID)}
	}
	for _, key := range keys {
		if _, ok := issueComparators[key.Field]; !ok {
			return nil, fmt.Errorf("unsupported sort field %q", key.Field)
		}
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := []domain.Issue{}
	for _, issue := range r.s.issues {
		if matchesFilter(issue, filter) {
			matched = append(matched, issue)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		for _, key := range keys {
			c := issueComparators[key.Field](&matched[i], &matched[j])
			if key.Descending {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return false
	})

	total := int64(len(matched))
	start := repository.Offset(filter.Page, pageSize)
	if start > len(matched) {
		start = len(matched)
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	content := make([]domain.Issue, 0, end-start)
	for _, issue := range matched[start:end] {
		content = append(content, r.s.hydrate(issue))
	}
	return repository.NewPage(content, filter.Page, pageSize, total), nil
}

func (r *issueRepo) checkRefs(issue *domain.Issue) error {
	if _, ok := r.s.projects[issue.ProjectID]; !ok {
		return fmt.Errorf("project %d does not exist", issue.ProjectID)
	}
	if issue.AssigneeID != nil {
		if _, ok := r.s.users[*issue.AssigneeID]; !ok {
			return fmt.Errorf("assignee %d does not exist", *issue.AssigneeID)
		}
	}
	return nil
}

func matchesFilter(issue domain.Issue, filter repository.IssueFilter) bool {
	if filter.Status != nil && issue.Status != *filter.Status {
		return false
	}
	if filter.Priority != nil && issue.Priority != *filter.Priority {
		return false
	}
	if filter.AssigneeID != nil && (issue.AssigneeID == nil || *issue.AssigneeID != *filter.AssigneeID) {
		return false
	}
	if filter.ProjectID != nil && issue.ProjectID != *filter.ProjectID {
		return false
	}
	if filter.SearchTerm != nil && *filter.SearchTerm != "" &&
		!strings.Contains(strings.ToLower(issue.Title), strings.ToLower(*filter.SearchTerm)) {
		return false
	}
	return true
}

var issueComparators = map[repository.SortField]func(a, b *domain.Issue) int{
	repository.SortFieldID:        func(a, b *domain.Issue) int { return compareInt64(a.ID, b.ID) },
	repository.SortFieldCreatedAt: func(a, b *domain.Issue) int { return a.CreatedAt.Compare(b.CreatedAt) },
	repository.SortFieldUpdatedAt: func(a, b *domain.Issue) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
	repository.SortFieldTitle:     func(a, b *domain.Issue) int { return strings.Compare(a.Title, b.Title) },
	repository.SortFieldStatus:    func(a, b *domain.Issue) int { return a.Status.Rank() - b.Status.Rank() },
	repository.SortFieldPriority:  func(a, b *domain.Issue) int { return a.Priority.Rank() - b.Priority.Rank() },
}

func stripNames(issue domain.Issue) domain.Issue {
	issue.ProjectName = ""
	issue.CreatorName = ""
	issue.AssigneeName = nil
	issue.Description = copyString(issue.Description)
	issue.AssigneeID = copyInt64(issue.AssigneeID)
	return issue
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func copyInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
