package domain

// Role enumerates tenant member roles. ADMIN holds elevated privilege over
// status/assignee mutation and deletion.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// ValidRole reports whether r is a member of the role enumeration.
func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleMember
}

// TenantContext is the per-request caller identity derived from request
// metadata. It is never persisted; it is rebuilt at the boundary on every
// request and passed to business logic by argument.
type TenantContext struct {
	UserID         string
	OrganizationID string
	Role           Role
}

// IsAdmin reports whether the caller holds the ADMIN role.
func (t TenantContext) IsAdmin() bool {
	return t.Role == RoleAdmin
}
