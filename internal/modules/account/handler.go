package account

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ppdb/admissions-backend/internal/apperr"
	"github.com/ppdb/admissions-backend/internal/httpx"
	"github.com/ppdb/admissions-backend/internal/middleware"
	"github.com/ppdb/admissions-backend/internal/policy"
)

// Handler handles HTTP requests for user administration within a school.
type Handler struct {
	service Service
	policy  policy.AccessPolicy
}

func NewHandler(service Service, accessPolicy policy.AccessPolicy) *Handler {
	return &Handler{service: service, policy: accessPolicy}
}

// RegisterRoutes registers account routes. Callers must already be
// authenticated; authorization is checked per-action against the target
// school below.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	g := router.Group("/users")
	g.Post("", h.CreateUser)
	g.Get("", h.ListUsers)
	g.Get("/:id", h.GetUser)
	g.Put("/:id", h.UpdateUser)
	g.Delete("/:id", h.DeleteUser)
}

func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, apperr.Validation("format data tidak valid"))
	}

	principal := middleware.PrincipalFromContext(c)
	targetSchool, err := resolveTargetSchool(principal, req.SchoolID)
	if err != nil {
		return httpx.Error(c, err)
	}
	req.SchoolID = targetSchool
	if targetSchool != nil {
		if err := middleware.Require(h.policy.CanManageUsersInSchool(principal, *targetSchool)); err != nil {
			return httpx.Error(c, err)
		}
	} else if !principal.IsSuperAdmin() {
		return httpx.Error(c, apperr.Forbidden("hanya super_admin yang dapat membuat akun tanpa sekolah"))
	}

	response, err := h.service.CreateUser(c.UserContext(), req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.Created(c, response)
}

func (h *Handler) ListUsers(c *fiber.Ctx) error {
	principal := middleware.PrincipalFromContext(c)
	filter := DefaultUserFilter()
	filter.Role = c.Query("role")
	filter.Search = c.Query("search")
	if page, err := strconv.Atoi(c.Query("page", "1")); err == nil && page > 0 {
		filter.Page = page
	}
	if pageSize, err := strconv.Atoi(c.Query("page_size", "20")); err == nil && pageSize > 0 {
		filter.PageSize = pageSize
	}

	if principal.IsSuperAdmin() {
		if schoolIDStr := c.Query("school_id"); schoolIDStr != "" {
			id, err := strconv.ParseUint(schoolIDStr, 10, 32)
			if err != nil {
				return httpx.Error(c, apperr.Validation("school_id tidak valid"))
			}
			sid := uint(id)
			filter.SchoolID = &sid
		}
	} else {
		if err := middleware.Require(h.policy.CanManageUsersInSchool(principal, schoolIDOf(principal))); err != nil {
			return httpx.Error(c, err)
		}
		filter.SchoolID = principal.SchoolID
	}

	response, err := h.service.ListUsers(c.UserContext(), filter)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) GetUser(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	principal := middleware.PrincipalFromContext(c)
	if err := middleware.Require(h.policy.CanManageOwnProfile(principal, id)); err != nil {
		response, getErr := h.service.GetUser(c.UserContext(), id)
		if getErr != nil {
			return httpx.Error(c, getErr)
		}
		if response.SchoolID == nil || !principal.SameSchool(*response.SchoolID) {
			return httpx.Error(c, err)
		}
		if reqErr := middleware.Require(h.policy.CanManageUsersInSchool(principal, *response.SchoolID)); reqErr != nil {
			return httpx.Error(c, reqErr)
		}
		return httpx.OK(c, response)
	}

	response, err := h.service.GetUser(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) UpdateUser(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	principal := middleware.PrincipalFromContext(c)
	if err := h.authorizeUserTarget(c, principal, id); err != nil {
		return httpx.Error(c, err)
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, apperr.Validation("format data tidak valid"))
	}

	response, err := h.service.UpdateUser(c.UserContext(), id, req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	principal := middleware.PrincipalFromContext(c)
	target, err := h.service.GetUser(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	if target.SchoolID == nil || !principal.IsSuperAdmin() && !principal.SameSchool(*target.SchoolID) {
		return httpx.Error(c, apperr.NotFound("pengguna tidak ditemukan"))
	}
	if !principal.IsSuperAdmin() {
		if err := middleware.Require(h.policy.CanManageUsersInSchool(principal, *target.SchoolID)); err != nil {
			return httpx.Error(c, err)
		}
	}

	if err := h.service.DeleteUser(c.UserContext(), id); err != nil {
		return httpx.Error(c, err)
	}
	return httpx.Message(c, "pengguna berhasil dinonaktifkan")
}

// authorizeUserTarget allows a caller to act on their own profile, or a
// school_admin/super_admin to act on a user within their managed school.
func (h *Handler) authorizeUserTarget(c *fiber.Ctx, principal policy.Principal, targetUserID uint) error {
	if middleware.Require(h.policy.CanManageOwnProfile(principal, targetUserID)) == nil {
		return nil
	}
	target, err := h.service.GetUser(c.UserContext(), targetUserID)
	if err != nil {
		return err
	}
	if target.SchoolID == nil {
		return apperr.Forbidden("tidak diizinkan")
	}
	return middleware.Require(h.policy.CanManageUsersInSchool(principal, *target.SchoolID))
}

func resolveTargetSchool(principal policy.Principal, requested *uint) (*uint, error) {
	if principal.IsSuperAdmin() {
		return requested, nil
	}
	if principal.SchoolID == nil {
		return nil, apperr.Forbidden("tidak terikat ke sekolah manapun")
	}
	return principal.SchoolID, nil
}

func schoolIDOf(principal policy.Principal) uint {
	if principal.SchoolID == nil {
		return 0
	}
	return *principal.SchoolID
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, apperr.Validation("id pengguna tidak valid")
	}
	return uint(id), nil
}
