package domain

import "time"

// Activity field names recorded in the audit trail.
const (
	ActivityFieldStatus   = "status"
	ActivityFieldAssignee = "assigneeId"
)

// AssigneeUnassigned is the display sentinel logged in place of a null
// assignee on either side of an assignee change.
const AssigneeUnassigned = "unassigned"

// Activity is an immutable audit trail entry for a single field change on
// an issue. OrganizationID is denormalized from the owning issue so history
// queries can be tenant-scoped without a join. Entries are append-only and
// deliberately outlive the issue they reference.
type Activity struct {
	ID             string
	IssueID        string
	Field          string
	OldValue       *string
	NewValue       string
	OrganizationID string
	CreatedAt      time.Time
}
