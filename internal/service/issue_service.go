package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-service/internal/cache"
	"github.com/spec-kit/issue-service/internal/domain"
	"github.com/spec-kit/issue-service/internal/events"
	"github.com/spec-kit/issue-service/internal/repository"
	apperrors "github.com/spec-kit/issue-service/pkg/util"
)

// IssueService coordinates the issue lifecycle. Tenant isolation and role
// authorization are enforced here on every operation, re-validated against
// the currently persisted state rather than any cached view.
type IssueService struct {
	issues     repository.IssueRepository
	activity   *ActivityService
	listCache  *cache.IssueListCache
	dispatcher events.Dispatcher
}

// IssueDependencies bundles collaborators for the issue service.
type IssueDependencies struct {
	IssueRepo  repository.IssueRepository
	Activity   *ActivityService
	ListCache  *cache.IssueListCache
	Dispatcher events.Dispatcher
}

// IssueCreateInput describes issue creation payload. The organization is
// never taken from the payload; it always comes from the tenant context.
type IssueCreateInput struct {
	Title       string
	Description string
	AssigneeID  *string
}

// IssueUpdateInput describes a partial update. Nil pointer means the field
// was absent from the patch. AssigneeSet distinguishes an absent assigneeId
// from an explicit null, which clears the assignee.
type IssueUpdateInput struct {
	Title       *string
	Description *string
	Status      *domain.IssueStatus
	AssigneeID  *string
	AssigneeSet bool
}

// touchesRestricted reports whether the patch includes a field only ADMIN
// may change. Presence triggers the check, not effect.
func (in IssueUpdateInput) touchesRestricted() bool {
	return in.Status != nil || in.AssigneeSet
}

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	return &IssueService{
		issues:     deps.IssueRepo,
		activity:   deps.Activity,
		listCache:  deps.ListCache,
		dispatcher: deps.Dispatcher,
	}
}

// Create stores a new issue stamped with the caller's organization. Any
// authenticated tenant member may create; status defaults to OPEN and the
// assignee defaults to unset.
func (s *IssueService) Create(ctx context.Context, tc domain.TenantContext, input IssueCreateInput) (*domain.Issue, error) {
	issue := &domain.Issue{
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		Status:         domain.IssueStatusOpen,
		AssigneeID:     input.AssigneeID,
		OrganizationID: tc.OrganizationID,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, err
	}
	s.listCache.Invalidate(ctx, tc.OrganizationID)
	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueCreated,
		IssueID: issue.ID,
		Actor:   actorFromTenant(tc),
		Payload: events.IssueCreatedPayload{
			Title:      issue.Title,
			Status:     issue.Status,
			AssigneeID: issue.AssigneeID,
		},
	})
	return issue, nil
}

// List returns every issue in the caller's organization, newest first.
func (s *IssueService) List(ctx context.Context, tc domain.TenantContext) ([]domain.Issue, error) {
	if cached, ok := s.listCache.Get(ctx, tc.OrganizationID); ok {
		return cached, nil
	}
	issues, err := s.issues.ListByOrganization(ctx, tc.OrganizationID)
	if err != nil {
		return nil, err
	}
	s.listCache.Set(ctx, tc.OrganizationID, issues)
	return issues, nil
}

// Get fetches a single issue. A missing id yields NotFound; an id that
// exists under another organization yields Forbidden, never NotFound.
func (s *IssueService) Get(ctx context.Context, tc domain.TenantContext, id string) (*domain.Issue, error) {
	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("issue", map[string]any{"id": id})
		}
		return nil, err
	}
	if issue.OrganizationID != tc.OrganizationID {
		return nil, apperrors.NewForbidden("you do not have permission to access this issue")
	}
	return issue, nil
}

// Update applies a partial update. Ownership is established through Get
// first. A non-ADMIN patch that includes status or assigneeId fails before
// any mutation. Changed status/assignee values are appended to the activity
// log before the issue row itself is written.
func (s *IssueService) Update(ctx context.Context, tc domain.TenantContext, id string, patch IssueUpdateInput) (*domain.Issue, error) {
	issue, err := s.Get(ctx, tc, id)
	if err != nil {
		return nil, err
	}

	if !tc.IsAdmin() && patch.touchesRestricted() {
		return nil, apperrors.NewForbidden("only ADMIN users can update status or assignee")
	}

	statusChanged := patch.Status != nil && *patch.Status != issue.Status
	assigneeChanged := patch.AssigneeSet && !equalAssignee(patch.AssigneeID, issue.AssigneeID)

	if statusChanged {
		oldStatus := string(issue.Status)
		if _, err := s.activity.Record(ctx, ActivityRecordInput{
			IssueID:        issue.ID,
			Field:          domain.ActivityFieldStatus,
			OldValue:       &oldStatus,
			NewValue:       string(*patch.Status),
			OrganizationID: tc.OrganizationID,
		}); err != nil {
			return nil, err
		}
	}
	if assigneeChanged {
		oldValue := assigneeDisplay(issue.AssigneeID)
		if _, err := s.activity.Record(ctx, ActivityRecordInput{
			IssueID:        issue.ID,
			Field:          domain.ActivityFieldAssignee,
			OldValue:       &oldValue,
			NewValue:       assigneeDisplay(patch.AssigneeID),
			OrganizationID: tc.OrganizationID,
		}); err != nil {
			return nil, err
		}
	}

	oldStatus := issue.Status
	oldAssignee := issue.AssigneeID
	if patch.Title != nil {
		issue.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		issue.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Status != nil {
		issue.Status = *patch.Status
	}
	if patch.AssigneeSet {
		issue.AssigneeID = patch.AssigneeID
	}

	if err := s.issues.Update(ctx, issue); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// issue was deleted between the ownership check and the write
			return nil, apperrors.NewNotFound("issue", map[string]any{"id": id})
		}
		return nil, err
	}
	s.listCache.Invalidate(ctx, tc.OrganizationID)

	if statusChanged {
		s.publishEvent(ctx, events.Event{
			Type:    events.EventIssueStatusChanged,
			IssueID: issue.ID,
			Actor:   actorFromTenant(tc),
			Payload: events.IssueStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: issue.Status,
			},
		})
	}
	if assigneeChanged {
		s.publishEvent(ctx, events.Event{
			Type:    events.EventIssueAssigneeChanged,
			IssueID: issue.ID,
			Actor:   actorFromTenant(tc),
			Payload: events.IssueAssigneeChangedPayload{
				OldAssigneeID: oldAssignee,
				NewAssigneeID: issue.AssigneeID,
			},
		})
	}
	return issue, nil
}

// Delete removes an issue. Ownership is established through Get first and
// only ADMIN may delete. Activity rows for the issue are kept: the audit
// log outlives the issue.
func (s *IssueService) Delete(ctx context.Context, tc domain.TenantContext, id string) error {
	issue, err := s.Get(ctx, tc, id)
	if err != nil {
		return err
	}
	if !tc.IsAdmin() {
		return apperrors.NewForbidden("only ADMIN users can delete issues")
	}
	if err := s.issues.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("issue", map[string]any{"id": id})
		}
		return err
	}
	s.listCache.Invalidate(ctx, tc.OrganizationID)
	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueDeleted,
		IssueID: id,
		Actor:   actorFromTenant(tc),
		Payload: events.IssueDeletedPayload{Title: issue.Title},
	})
	return nil
}

// ListActivity returns the change history for an issue the caller may
// access, most recent first.
func (s *IssueService) ListActivity(ctx context.Context, tc domain.TenantContext, id string) ([]domain.Activity, error) {
	if _, err := s.Get(ctx, tc, id); err != nil {
		return nil, err
	}
	return s.activity.ListForIssue(ctx, id, tc.OrganizationID)
}

func (s *IssueService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func actorFromTenant(tc domain.TenantContext) events.Actor {
	return events.Actor{
		UserID:         tc.UserID,
		OrganizationID: tc.OrganizationID,
		Role:           tc.Role,
	}
}

func equalAssignee(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// assigneeDisplay renders a nullable assignee for the activity log.
func assigneeDisplay(assigneeID *string) string {
	if assigneeID == nil || *assigneeID == "" {
		return domain.AssigneeUnassigned
	}
	return *assigneeID
}
