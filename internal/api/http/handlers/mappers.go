package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

func parseID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+name, map[string]any{"field": name, "value": c.Params(name)})
	}
	return id, nil
}

func queryInt(c *fiber.Ctx, name string, def int) (int, error) {
	val := c.Query(name)
	if val == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return 0, apperrors.NewValidationError("invalid "+name, map[string]any{"field": name, "value": val})
	}
	return parsed, nil
}

func queryInt64(c *fiber.Ctx, name string) (*int64, error) {
	val := c.Query(name)
	if val == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid "+name, map[string]any{"field": name, "value": val})
	}
	return &parsed, nil
}

// querySearch keeps the text as sent; only blank input means no filter.
func querySearch(c *fiber.Ctx, name string) *string {
	val := c.Query(name)
	if strings.TrimSpace(val) == "" {
		return nil
	}
	return &val
}

func queryString(c *fiber.Ctx, name string) *string {
	val := strings.TrimSpace(c.Query(name))
	if val == "" {
		return nil
	}
	return &val
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{ID: user.ID, Name: user.Name, Email: user.Email}
}

func issueResponse(issue *domain.Issue) dto.IssueResponse {
	return dto.IssueResponse{
		ID:           issue.ID,
		Title:        issue.Title,
		Description:  issue.Description,
		Status:       issue.Status,
		Priority:     issue.Priority,
		ProjectID:    issue.ProjectID,
		ProjectName:  issue.ProjectName,
		CreatorID:    issue.CreatorID,
		CreatorName:  issue.CreatorName,
		AssigneeID:   issue.AssigneeID,
		AssigneeName: issue.AssigneeName,
		CreatedAt:    issue.CreatedAt,
		UpdatedAt:    issue.UpdatedAt,
	}
}

func issuePage(page *repository.Page[domain.Issue]) dto.PageResponse[dto.IssueResponse] {
	items := make([]dto.IssueResponse, 0, len(page.Content))
	for i := range page.Content {
		items = append(items, issueResponse(&page.Content[i]))
	}
	return dto.PageResponse[dto.IssueResponse]{
		Content:       items,
		Page:          page.Page,
		PageSize:      page.PageSize,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
		Last:          page.Last,
	}
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:          comment.ID,
		IssueID:     comment.IssueID,
		Content:     comment.Content,
		AuthorID:    comment.AuthorID,
		AuthorName:  comment.AuthorName,
		AuthorEmail: comment.AuthorEmail,
		CreatedAt:   comment.CreatedAt,
		UpdatedAt:   comment.UpdatedAt,
	}
}

func projectResponse(project *domain.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:        project.ID,
		Name:      project.Name,
		OwnerID:   project.OwnerID,
		OwnerName: project.OwnerName,
		CreatedAt: project.CreatedAt,
		UpdatedAt: project.UpdatedAt,
	}
}

func activityResponse(entry *domain.ActivityLog) dto.ActivityLogResponse {
	return dto.ActivityLogResponse{
		ID:           entry.ID,
		IssueID:      entry.IssueID,
		ActivityType: entry.ActivityType,
		UserID:       entry.UserID,
		UserName:     entry.UserName,
		OldValue:     entry.OldValue,
		NewValue:     entry.NewValue,
		CreatedAt:    entry.CreatedAt,
	}
}
