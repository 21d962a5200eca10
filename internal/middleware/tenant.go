package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ppdb/admissions-backend/internal/apperr"
	"github.com/ppdb/admissions-backend/internal/domain/models"
)

// IsSuperAdmin reports whether the authenticated caller is a super_admin.
func IsSuperAdmin(c *fiber.Ctx) bool {
	role, ok := c.Locals("role").(string)
	return ok && role == string(models.RoleSuperAdmin)
}

// GetTenantID returns the authenticated caller's school ID, if any. A
// super_admin has none — callers must consult IsSuperAdmin first and take
// the school ID from the request instead (path param, body field).
func GetTenantID(c *fiber.Ctx) (uint, bool) {
	schoolID, ok := c.Locals("schoolID").(*uint)
	if !ok || schoolID == nil {
		return 0, false
	}
	return *schoolID, true
}

// RequireTenantAccess fails the request unless the caller is a super_admin
// or belongs to targetSchoolID. Store-level queries are already scoped via
// store.Scope on the request context; this is for the handful of handlers
// that need an explicit pre-check before doing any I/O.
func RequireTenantAccess(c *fiber.Ctx, targetSchoolID uint) error {
	if IsSuperAdmin(c) {
		return nil
	}
	schoolID, ok := GetTenantID(c)
	if !ok || schoolID != targetSchoolID {
		return apperr.NotFound("entitas tidak ditemukan")
	}
	return nil
}
