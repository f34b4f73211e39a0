package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
)

type commentRepo struct{ s *Store }

func (r *commentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.issues[comment.IssueID]; !ok {
		return fmt.Errorf("issue %d does not exist", comment.IssueID)
	}
	if _, ok := r.s.users[comment.AuthorID]; !ok {
		return fmt.Errorf("author %d does not exist", comment.AuthorID)
	}
	now := r.s.now()
	comment.ID = r.s.nextID("comments")
	comment.CreatedAt = now
	comment.UpdatedAt = now
	r.s.comments[comment.ID] = *comment
	return nil
}

func (r *commentRepo) Update(_ context.Context, comment *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.comments[comment.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Content = comment.Content
	stored.UpdatedAt = r.s.now()
	r.s.comments[comment.ID] = stored
	comment.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *commentRepo) GetByIDWithAuthor(_ context.Context, id int64) (*domain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	comment, ok := r.s.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r.withAuthor(&comment)
	return &comment, nil
}

func (r *commentRepo) ListByIssue(_ context.Context, issueID int64) ([]domain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := []domain.Comment{}
	for _, comment := range r.s.comments {
		if comment.IssueID != issueID {
			continue
		}
		r.withAuthor(&comment)
		result = append(result, comment)
	}
	sort.Slice(result, func(i, j int) bool {
		if c := result[i].CreatedAt.Compare(result[j].CreatedAt); c != 0 {
			return c < 0
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *commentRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.comments, id)
	return nil
}

func (r *commentRepo) withAuthor(comment *domain.Comment) {
	author := r.s.users[comment.AuthorID]
	comment.AuthorName = author.Name
	comment.AuthorEmail = author.Email
}
