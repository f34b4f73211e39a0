package dto

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// IssueRequest is the full state of an issue for create and update.
type IssueRequest struct {
	Title       string               `json:"title"`
	Description *string              `json:"description"`
	Status      domain.IssueStatus   `json:"status"`
	Priority    domain.IssuePriority `json:"priority"`
	ProjectID   int64                `json:"project_id"`
	AssigneeID  *int64               `json:"assignee_id"`
}

// IssueResponse is the hydrated issue view.
type IssueResponse struct {
	ID           int64                `json:"id"`
	Title        string               `json:"title"`
	Description  *string              `json:"description"`
	Status       domain.IssueStatus   `json:"status"`
	Priority     domain.IssuePriority `json:"priority"`
	ProjectID    int64                `json:"project_id"`
	ProjectName  string               `json:"project_name"`
	CreatorID    int64                `json:"creator_id"`
	CreatorName  string               `json:"creator_name"`
	AssigneeID   *int64               `json:"assignee_id"`
	AssigneeName *string              `json:"assignee_name"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// PageResponse wraps one page of results.
type PageResponse[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	PageSize      int   `json:"page_size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
	Last          bool  `json:"last"`
}
