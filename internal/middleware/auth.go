package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ppdb/admissions-backend/internal/apperr"
	"github.com/ppdb/admissions-backend/internal/domain/models"
	"github.com/ppdb/admissions-backend/internal/httpx"
	"github.com/ppdb/admissions-backend/internal/modules/auth"
	"github.com/ppdb/admissions-backend/internal/store"
)

// AuthMiddleware validates the bearer access token, re-validates its
// embedded role/school_id claims against the current database row (per
// spec §4.2 — claims are a cache, not a source of truth), and binds the
// resolved store.Scope onto the request's context.Context so every
// downstream service call issued through c.UserContext() is tenant-scoped.
func AuthMiddleware(jwtManager *auth.JWTManager, service auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return httpx.Error(c, apperr.Unauthorized("header otorisasi wajib diisi"))
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return httpx.Error(c, apperr.Unauthorized("format header otorisasi tidak valid"))
		}

		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			return httpx.Error(c, apperr.Unauthorized("token tidak valid").Wrap(err))
		}

		user, err := service.GetUserByID(c.Context(), claims.UserID)
		if err != nil {
			return httpx.Error(c, apperr.Unauthorized("user tidak ditemukan"))
		}
		if !user.IsActive {
			return httpx.Error(c, apperr.Forbidden("akun tidak aktif").WithReason("account_inactive"))
		}
		if user.School != nil && !user.School.IsOperational() {
			return httpx.Error(c, apperr.Forbidden("sekolah tidak aktif").WithReason("school_inactive"))
		}

		bindUser(c, user)
		return c.Next()
	}
}

// OptionalAuthMiddleware validates a bearer token if present but allows
// anonymous requests to proceed (used by the public result-check endpoint).
func OptionalAuthMiddleware(jwtManager *auth.JWTManager, service auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Next()
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return c.Next()
		}

		claims, err := jwtManager.ValidateAccessToken(parts[1])
		if err != nil {
			return c.Next()
		}

		user, err := service.GetUserByID(c.Context(), claims.UserID)
		if err != nil || !user.IsActive {
			return c.Next()
		}

		bindUser(c, user)
		return c.Next()
	}
}

func bindUser(c *fiber.Ctx, user *models.User) {
	c.Locals("userID", user.ID)
	c.Locals("schoolID", user.SchoolID)
	c.Locals("role", string(user.Role))
	c.Locals("email", user.Email)

	scope := store.Scope{Role: user.Role, SchoolID: user.SchoolID, UserID: user.ID}
	c.SetUserContext(store.WithScope(c.UserContext(), scope))
}

// GetUserID extracts the authenticated user ID from context.
func GetUserID(c *fiber.Ctx) (uint, bool) {
	userID, ok := c.Locals("userID").(uint)
	return userID, ok
}

// GetSchoolID extracts the authenticated user's school ID from context.
func GetSchoolID(c *fiber.Ctx) (*uint, bool) {
	schoolID, ok := c.Locals("schoolID").(*uint)
	return schoolID, ok
}

// GetRole extracts the authenticated user's role from context.
func GetRole(c *fiber.Ctx) (string, bool) {
	role, ok := c.Locals("role").(string)
	return role, ok
}
