package service

import (
	"context"
	"strings"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

// IssueListQuery carries client-supplied listing parameters. Nil filters
// impose no constraint; all supplied filters must match.
type IssueListQuery struct {
	Page          int
	PageSize      int
	SortField     string
	SortDirection string
	Status        *domain.IssueStatus
	Priority      *domain.IssuePriority
	AssigneeID    *int64
	ProjectID     *int64
	Search        *string
}

// issueSortChains maps every sortable field to its tie-break chain. The
// first key takes the requested direction. Every chain ends in id so no
// two issues compare equal.
var issueSortChains = map[repository.SortField][]repository.SortKey{
	repository.SortFieldCreatedAt: {repository.Asc(repository.SortFieldID)},
	repository.SortFieldUpdatedAt: {repository.Desc(repository.SortFieldCreatedAt), repository.Asc(repository.SortFieldID)},
	repository.SortFieldTitle:     {repository.Desc(repository.SortFieldCreatedAt), repository.Asc(repository.SortFieldID)},
	repository.SortFieldStatus:    {repository.Desc(repository.SortFieldCreatedAt), repository.Asc(repository.SortFieldID)},
	repository.SortFieldPriority:  {repository.Desc(repository.SortFieldCreatedAt), repository.Asc(repository.SortFieldID)},
	repository.SortFieldID:        {repository.Desc(repository.SortFieldCreatedAt), repository.Asc(repository.SortFieldID)},
}

// SortableIssueFields lists accepted sort names.
var SortableIssueFields = []string{
	string(repository.SortFieldCreatedAt),
	string(repository.SortFieldUpdatedAt),
	string(repository.SortFieldTitle),
	string(repository.SortFieldStatus),
	string(repository.SortFieldPriority),
	string(repository.SortFieldID),
}

// BuildIssueSort returns the full ORDER BY chain for field. An empty field
// means createdAt; an unknown one is a validation failure.
func BuildIssueSort(field string, descending bool) ([]repository.SortKey, error) {
	if field == "" {
		field = string(repository.SortFieldCreatedAt)
	}
	tail, ok := issueSortChains[repository.SortField(field)]
	if !ok {
		return nil, apperrors.NewValidationError("unsupported sort field", map[string]any{
			"sort":    field,
			"allowed": SortableIssueFields,
		})
	}
	primary := repository.SortKey{Field: repository.SortField(field), Descending: descending}
	return append([]repository.SortKey{primary}, tail...), nil
}

// ListIssues runs a filtered, paginated, stably sorted query.
func (s *IssueService) ListIssues(ctx context.Context, query IssueListQuery) (*repository.Page[domain.Issue], error) {
	if query.Page < 0 {
		return nil, apperrors.NewValidationError("page must not be negative", map[string]any{"field": "page"})
	}
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = s.defaultPageSize
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}
	if query.Status != nil && !query.Status.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"field": "status", "value": string(*query.Status)})
	}
	if query.Priority != nil && !query.Priority.Valid() {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"field": "priority", "value": string(*query.Priority)})
	}

	sortKeys, err := BuildIssueSort(query.SortField, strings.EqualFold(query.SortDirection, "desc"))
	if err != nil {
		return nil, err
	}

	var search *string
	if query.Search != nil && strings.TrimSpace(*query.Search) != "" {
		search = query.Search
	}

	return s.issues.ListWithFilter(ctx, repository.IssueFilter{
		Status:     query.Status,
		Priority:   query.Priority,
		AssigneeID: query.AssigneeID,
		ProjectID:  query.ProjectID,
		SearchTerm: search,
		Sort:       sortKeys,
		Page:       query.Page,
		PageSize:   pageSize,
	})
}
