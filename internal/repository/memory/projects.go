package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
)

type projectRepo struct{ s *Store }

func (r *projectRepo) Create(_ context.Context, project *domain.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[project.OwnerID]; !ok {
		return fmt.Errorf("owner %d does not exist", project.OwnerID)
	}
	now := r.s.now()
	project.ID = r.s.nextID("projects")
	project.CreatedAt = now
	project.UpdatedAt = now
	project.OwnerName = r.s.userName(project.OwnerID)
	r.s.projects[project.ID] = *project
	return nil
}

func (r *projectRepo) Update(_ context.Context, project *domain.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.projects[project.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Name = project.Name
	stored.UpdatedAt = r.s.now()
	r.s.projects[project.ID] = stored
	project.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *projectRepo) GetByID(_ context.Context, id int64) (*domain.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	project, ok := r.s.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	project.OwnerName = r.s.userName(project.OwnerID)
	return &project, nil
}

func (r *projectRepo) List(_ context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	keys := filter.Sort
	if len(keys) == 0 {
		keys = []repository.SortKey{repository.Asc(repository.SortFieldName), repository.Asc(repository.SortFieldID)}
	}
	for _, key := range keys {
		if _, ok := projectComparators[key.Field]; !ok {
			return nil, fmt.Errorf("unsupported sort field %q", key.Field)
		}
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var search string
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search = strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
	}
	result := []domain.Project{}
	for _, project := range r.s.projects {
		if search != "" && !strings.Contains(strings.ToLower(project.Name), search) {
			continue
		}
		project.OwnerName = r.s.userName(project.OwnerID)
		result = append(result, project)
	}
	sort.SliceStable(result, func(i, j int) bool {
		for _, key := range keys {
			c := projectComparators[key.Field](&result[i], &result[j])
			if key.Descending {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return false
	})
	return result, nil
}

func (r *projectRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.projects[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.projects, id)
	for issueID, issue := range r.s.issues {
		if issue.ProjectID == id {
			r.s.deleteIssueLocked(issueID)
		}
	}
	return nil
}

var projectComparators = map[repository.SortField]func(a, b *domain.Project) int{
	repository.SortFieldID:        func(a, b *domain.Project) int { return compareInt64(a.ID, b.ID) },
	repository.SortFieldName:      func(a, b *domain.Project) int { return strings.Compare(a.Name, b.Name) },
	repository.SortFieldCreatedAt: func(a, b *domain.Project) int { return a.CreatedAt.Compare(b.CreatedAt) },
	repository.SortFieldUpdatedAt: func(a, b *domain.Project) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
}
