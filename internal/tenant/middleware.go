package tenant

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-service/internal/domain"
	apperrors "github.com/spec-kit/issue-service/pkg/util"
)

const tenantContextKey = "tenant_context"

// Header names carrying the caller identity. These are set by the upstream
// gateway, which is trusted to have authenticated the user.
const (
	HeaderUserID         = "x-user-id"
	HeaderOrganizationID = "x-organization-id"
	HeaderUserRole       = "x-user-role"
)

// Middleware extracts the tenant context from request headers and rejects
// the request before any handler runs when the metadata is missing or the
// role is outside the allowed set.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := strings.TrimSpace(c.Get(HeaderUserID))
		organizationID := strings.TrimSpace(c.Get(HeaderOrganizationID))
		role := strings.TrimSpace(c.Get(HeaderUserRole))

		if userID == "" || organizationID == "" || role == "" {
			return apperrors.NewValidationError(
				"missing required headers: x-user-id, x-organization-id, x-user-role", nil)
		}
		if !domain.ValidRole(domain.Role(role)) {
			return apperrors.NewValidationError("invalid role, must be ADMIN or MEMBER", map[string]any{
				"role": role,
			})
		}

		c.Locals(tenantContextKey, domain.TenantContext{
			UserID:         userID,
			OrganizationID: organizationID,
			Role:           domain.Role(role),
		})
		return c.Next()
	}
}

// FromContext retrieves the tenant context attached by Middleware.
func FromContext(c *fiber.Ctx) (domain.TenantContext, bool) {
	val := c.Locals(tenantContextKey)
	if val == nil {
		return domain.TenantContext{}, false
	}
	tc, ok := val.(domain.TenantContext)
	return tc, ok
}
