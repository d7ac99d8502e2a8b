package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-service/internal/api/dto"
	"github.com/spec-kit/issue-service/internal/domain"
	"github.com/spec-kit/issue-service/internal/service"
	"github.com/spec-kit/issue-service/internal/tenant"
	apperrors "github.com/spec-kit/issue-service/pkg/util"
)

// IssuesHandler manages issue endpoints. Every route sits behind the tenant
// middleware, so a missing tenant context here means broken wiring.
type IssuesHandler struct {
	service *service.IssueService
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issueService *service.IssueService) *IssuesHandler {
	return &IssuesHandler{service: issueService}
}

// CreateIssue POST /issues.
func (h *IssuesHandler) CreateIssue(c *fiber.Ctx) error {
	tc, ok := tenant.FromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("tenant context required")
	}
	var req dto.CreateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Title) == "" {
		return apperrors.NewValidationError("title required", nil)
	}

	issue, err := h.service.Create(c.Context(), tc, service.IssueCreateInput{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": issueResponse(issue)})
}

// ListIssues GET /issues.
func (h *IssuesHandler) ListIssues(c *fiber.Ctx) error {
	tc, ok := tenant.FromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("tenant context required")
	}
	issues, err := h.service.List(c.Context(), tc)
	if err != nil {
		return err
	}
	items := make([]dto.IssueResponse, 0, len(issues))
	for i := range issues {
		items = append(items, issueResponse(&issues[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetIssue GET /issues/:id.
func (h *IssuesHandler) GetIssue(c *fiber.Ctx) error {
	tc, ok := tenant.FromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("tenant context required")
	}
	issue, err := h.service.Get(c.Context(), tc, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueResponse(issue)})
}

// UpdateIssue PATCH /issues/:id.
func (h *IssuesHandler) UpdateIssue(c *fiber.Ctx) error {
	tc, ok := tenant.FromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("tenant context required")
	}
	var req dto.UpdateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	patch := service.IssueUpdateInput{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		status := domain.IssueStatus(*req.Status)
		if !domain.ValidIssueStatus(status) {
			return apperrors.NewValidationError("status must be OPEN, IN_PROGRESS or CLOSED", map[string]any{
				"status": *req.Status,
			})
		}
		patch.Status = &status
	}
	assignee, assigneeSet, err := req.Assignee()
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	patch.AssigneeID = assignee
	patch.AssigneeSet = assigneeSet

	issue, err := h.service.Update(c.Context(), tc, c.Params("id"), patch)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": issueResponse(issue)})
}

// DeleteIssue DELETE /issues/:id.
func (h *IssuesHandler) DeleteIssue(c *fiber.Ctx) error {
	tc, ok := tenant.FromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("tenant context required")
	}
	if err := h.service.Delete(c.Context(), tc, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListActivity GET /issues/:id/activity.
func (h *IssuesHandler) ListActivity(c *fiber.Ctx) error {
	tc, ok := tenant.FromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("tenant context required")
	}
	entries, err := h.service.ListActivity(c.Context(), tc, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.ActivityResponse, 0, len(entries))
	for i := range entries {
		items = append(items, activityResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func issueResponse(issue *domain.Issue) dto.IssueResponse {
	return dto.IssueResponse{
		ID:             issue.ID,
		Title:          issue.Title,
		Description:    issue.Description,
		Status:         issue.Status,
		AssigneeID:     issue.AssigneeID,
		OrganizationID: issue.OrganizationID,
		CreatedAt:      issue.CreatedAt,
		UpdatedAt:      issue.UpdatedAt,
	}
}

func activityResponse(entry *domain.Activity) dto.ActivityResponse {
	return dto.ActivityResponse{
		ID:        entry.ID,
		IssueID:   entry.IssueID,
		Field:     entry.Field,
		OldValue:  entry.OldValue,
		NewValue:  entry.NewValue,
		CreatedAt: entry.CreatedAt,
	}
}
