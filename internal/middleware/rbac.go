package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ppdb/admissions-backend/internal/apperr"
	"github.com/ppdb/admissions-backend/internal/domain/models"
	"github.com/ppdb/admissions-backend/internal/httpx"
	"github.com/ppdb/admissions-backend/internal/policy"
)

// PrincipalFromContext resolves the authenticated caller into a
// policy.Principal from the claims AuthMiddleware bound onto the request.
func PrincipalFromContext(c *fiber.Ctx) policy.Principal {
	userID, _ := c.Locals("userID").(uint)
	schoolID, _ := c.Locals("schoolID").(*uint)
	role, _ := c.Locals("role").(string)

	return policy.Principal{
		UserID:   userID,
		Role:     models.UserRole(role),
		SchoolID: schoolID,
	}
}

// RoleMiddleware restricts access to an explicit set of roles. Most
// endpoints should prefer Require with a named AccessPolicy method instead
// — this exists for the handful of routes gated purely by role, with no
// tenant/owner target to check.
func RoleMiddleware(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := PrincipalFromContext(c)
		for _, allowed := range allowedRoles {
			if principal.Role == allowed {
				return c.Next()
			}
		}
		return httpx.Error(c, apperr.Forbidden("Anda tidak memiliki izin untuk mengakses sumber daya ini"))
	}
}

// Require turns a policy.Decision into an error handlers can return
// straight from httpx.Error — Forbidden with the decision's reason on deny,
// nil on allow.
func Require(decision policy.Decision) error {
	if decision.Allow {
		return nil
	}
	return apperr.Forbidden("Anda tidak memiliki izin untuk melakukan tindakan ini").WithReason(decision.Reason)
}

// SuperAdminOnly restricts a route to the platform-wide administrator.
func SuperAdminOnly() fiber.Handler {
	return RoleMiddleware(models.RoleSuperAdmin)
}

// SchoolAdminOrAbove restricts a route to school_admin or super_admin.
func SchoolAdminOrAbove() fiber.Handler {
	return RoleMiddleware(models.RoleSuperAdmin, models.RoleSchoolAdmin)
}

// ParentOnly restricts a route to parent accounts.
func ParentOnly() fiber.Handler {
	return RoleMiddleware(models.RoleParent)
}
