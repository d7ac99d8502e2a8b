package service

import (
	"context"

	"github.com/spec-kit/issue-service/internal/domain"
	"github.com/spec-kit/issue-service/internal/repository"
)

// ActivityService owns the append-only change log for issues.
type ActivityService struct {
	activities repository.ActivityRepository
}

// ActivityRecordInput describes a single field change to append.
type ActivityRecordInput struct {
	IssueID        string
	Field          string
	OldValue       *string
	NewValue       string
	OrganizationID string
}

// NewActivityService constructs the service.
func NewActivityService(activityRepo repository.ActivityRepository) *ActivityService {
	return &ActivityService{activities: activityRepo}
}

// Record appends a change entry and returns the persisted record. It fails
// only when persistence fails; the error is propagated untouched.
func (s *ActivityService) Record(ctx context.Context, input ActivityRecordInput) (*domain.Activity, error) {
	entry := &domain.Activity{
		IssueID:        input.IssueID,
		Field:          input.Field,
		OldValue:       input.OldValue,
		NewValue:       input.NewValue,
		OrganizationID: input.OrganizationID,
	}
	if err := s.activities.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListForIssue returns the change entries for an issue, most recent first.
// Scoping by organization as well as issue keeps cross-tenant rows out even
// when an issue id is guessed.
func (s *ActivityService) ListForIssue(ctx context.Context, issueID, organizationID string) ([]domain.Activity, error) {
	return s.activities.ListByIssue(ctx, issueID, organizationID)
}
