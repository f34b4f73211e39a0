package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/service"
)

// ActivitiesHandler serves the audit trail.
type ActivitiesHandler struct {
	service *service.ActivityService
}

// NewActivitiesHandler constructs handler.
func NewActivitiesHandler(activityService *service.ActivityService) *ActivitiesHandler {
	return &ActivitiesHandler{service: activityService}
}

// ListActivities GET /api/issues/:issueId/activities, newest first.
func (h *ActivitiesHandler) ListActivities(c *fiber.Ctx) error {
	issueID, err := parseID(c, "issueId")
	if err != nil {
		return err
	}
	logs, err := h.service.ListByIssue(c.UserContext(), issueID)
	if err != nil {
		return err
	}
	items := make([]dto.ActivityLogResponse, 0, len(logs))
	for i := range logs {
		items = append(items, activityResponse(&logs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
