package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/service"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

// IssuesHandler exposes issue endpoints.
type IssuesHandler struct {
	service *service.IssueService
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issueService *service.IssueService) *IssuesHandler {
	return &IssuesHandler{service: issueService}
}

// CreateIssue POST /api/issues.
func (h *IssuesHandler) CreateIssue(c *fiber.Ctx) error {
	principal, err := auth.RequirePrincipal(c)
	if err != nil {
		return err
	}
	req, err := parseIssueRequest(c)
	if err != nil {
		return err
	}
	if req.ProjectID <= 0 {
		return apperrors.NewValidationError("project_id required", map[string]any{"field": "project_id"})
	}
	issue, err := h.service.CreateIssue(c.UserContext(), principal, issueInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": issueResponse(issue)})
}

// ListIssues GET /api/issues.
func (h *IssuesHandler) ListIssues(c *fiber.Ctx) error {
	query, err := parseIssueListQuery(c)
	if err != nil {
		return err
	}
	page, err := h.service.ListIssues(c.UserContext(), query)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issuePage(page)})
}

// GetIssue GET /api/issues/:id.
func (h *IssuesHandler) GetIssue(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	issue, err := h.service.GetIssue(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueResponse(issue)})
}

// UpdateIssue PUT /api/issues/:id. Omitted optional fields are cleared.
func (h *IssuesHandler) UpdateIssue(c *fiber.Ctx) error {
	principal, err := auth.RequirePrincipal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	req, err := parseIssueRequest(c)
	if err != nil {
		return err
	}
	issue, err := h.service.UpdateIssue(c.UserContext(), principal, id, issueInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueResponse(issue)})
}

// DeleteIssue DELETE /api/issues/:id.
func (h *IssuesHandler) DeleteIssue(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteIssue(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseIssueRequest(c *fiber.Ctx) (dto.IssueRequest, error) {
	var req dto.IssueRequest
	if err := c.BodyParser(&req); err != nil {
		return req, apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Title) == "" {
		return req, apperrors.NewValidationError("title required", map[string]any{"field": "title"})
	}
	req.Status = domain.IssueStatus(strings.ToUpper(string(req.Status)))
	req.Priority = domain.IssuePriority(strings.ToUpper(string(req.Priority)))
	return req, nil
}

func issueInput(req dto.IssueRequest) service.IssueInput {
	return service.IssueInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
	}
}

func parseIssueListQuery(c *fiber.Ctx) (service.IssueListQuery, error) {
	var query service.IssueListQuery
	var err error
	if query.Page, err = queryInt(c, "page", 0); err != nil {
		return query, err
	}
	if query.PageSize, err = queryInt(c, "size", 0); err != nil {
		return query, err
	}
	if query.AssigneeID, err = queryInt64(c, "assignee_id"); err != nil {
		return query, err
	}
	if query.ProjectID, err = queryInt64(c, "project_id"); err != nil {
		return query, err
	}
	query.SortField = c.Query("sort")
	query.SortDirection = c.Query("direction")
	if status := queryString(c, "status"); status != nil {
		s := domain.IssueStatus(strings.ToUpper(*status))
		query.Status = &s
	}
	if priority := queryString(c, "priority"); priority != nil {
		p := domain.IssuePriority(strings.ToUpper(*priority))
		query.Priority = &p
	}
	query.Search = querySearch(c, "search")
	return query, nil
}
