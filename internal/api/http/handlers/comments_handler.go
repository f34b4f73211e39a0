package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/service"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

// CommentsHandler exposes comment endpoints.
type CommentsHandler struct {
	service *service.CommentService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(commentService *service.CommentService) *CommentsHandler {
	return &CommentsHandler{service: commentService}
}

// ListComments GET /api/issues/:issueId/comments.
func (h *CommentsHandler) ListComments(c *fiber.Ctx) error {
	issueID, err := parseID(c, "issueId")
	if err != nil {
		return err
	}
	comments, err := h.service.ListComments(c.UserContext(), issueID)
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, commentResponse(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateComment POST /api/issues/:issueId/comments.
func (h *CommentsHandler) CreateComment(c *fiber.Ctx) error {
	principal, err := auth.RequirePrincipal(c)
	if err != nil {
		return err
	}
	issueID, err := parseID(c, "issueId")
	if err != nil {
		return err
	}
	content, err := parseCommentContent(c)
	if err != nil {
		return err
	}
	comment, err := h.service.CreateComment(c.UserContext(), principal, issueID, content)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// UpdateComment PUT /api/comments/:id.
func (h *CommentsHandler) UpdateComment(c *fiber.Ctx) error {
	principal, err := auth.RequirePrincipal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	content, err := parseCommentContent(c)
	if err != nil {
		return err
	}
	comment, err := h.service.UpdateComment(c.UserContext(), principal, id, content)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": commentResponse(comment)})
}

// DeleteComment DELETE /api/comments/:id.
func (h *CommentsHandler) DeleteComment(c *fiber.Ctx) error {
	principal, err := auth.RequirePrincipal(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteComment(c.UserContext(), principal, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseCommentContent(c *fiber.Ctx) (string, error) {
	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return "", apperrors.NewValidationError("invalid payload", nil)
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return "", apperrors.NewValidationError("content required", map[string]any{"field": "content"})
	}
	return content, nil
}
