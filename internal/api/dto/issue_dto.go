package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/spec-kit/issue-service/internal/domain"
)

// CreateIssueRequest payload.
type CreateIssueRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	AssigneeID  *string `json:"assignee_id"`
}

// UpdateIssueRequest payload. AssigneeID stays raw so an explicit null
// (clear the assignee) can be told apart from an absent field (no change).
type UpdateIssueRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Status      *string         `json:"status"`
	AssigneeID  json.RawMessage `json:"assignee_id"`
}

var errInvalidAssignee = errors.New("assignee_id must be a string or null")

// Assignee decodes the tri-state assignee field: (nil, false, nil) when the
// field was absent, (nil, true, nil) for an explicit null, and a value
// pointer for a string.
func (r UpdateIssueRequest) Assignee() (*string, bool, error) {
	if len(r.AssigneeID) == 0 {
		return nil, false, nil
	}
	if bytes.Equal(bytes.TrimSpace(r.AssigneeID), []byte("null")) {
		return nil, true, nil
	}
	var value string
	if err := json.Unmarshal(r.AssigneeID, &value); err != nil {
		return nil, false, errInvalidAssignee
	}
	return &value, true, nil
}

// IssueResponse is the wire shape of an issue.
type IssueResponse struct {
	ID             string             `json:"id"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	Status         domain.IssueStatus `json:"status"`
	AssigneeID     *string            `json:"assignee_id"`
	OrganizationID string             `json:"organization_id"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// ActivityResponse is the wire shape of an audit entry.
type ActivityResponse struct {
	ID        string    `json:"id"`
	IssueID   string    `json:"issue_id"`
	Field     string    `json:"field"`
	OldValue  *string   `json:"old_value"`
	NewValue  string    `json:"new_value"`
	CreatedAt time.Time `json:"created_at"`
}
