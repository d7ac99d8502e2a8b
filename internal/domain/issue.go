package domain

import "time"

// IssueStatus enumerates lifecycle states for issues. The enumeration is
// flat: any status may move to any other.
type IssueStatus string

const (
	IssueStatusOpen       IssueStatus = "OPEN"
	IssueStatusInProgress IssueStatus = "IN_PROGRESS"
	IssueStatusClosed     IssueStatus = "CLOSED"
)

// ValidIssueStatus reports whether s is a member of the status enumeration.
func ValidIssueStatus(s IssueStatus) bool {
	switch s {
	case IssueStatusOpen, IssueStatusInProgress, IssueStatusClosed:
		return true
	}
	return false
}

// Issue is the aggregate for tracked work items. OrganizationID is stamped
// at creation and never changes afterwards.
type Issue struct {
	ID             string
	Title          string
	Description    string
	Status         IssueStatus
	AssigneeID     *string
	OrganizationID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
