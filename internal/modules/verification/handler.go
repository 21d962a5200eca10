package verification

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ppdb/admissions-backend/internal/apperr"
	"github.com/ppdb/admissions-backend/internal/httpx"
	"github.com/ppdb/admissions-backend/internal/middleware"
	"github.com/ppdb/admissions-backend/internal/policy"
)

// Handler handles HTTP requests for admin review of registrations and
// documents.
type Handler struct {
	service Service
	policy  policy.AccessPolicy
}

func NewHandler(service Service, accessPolicy policy.AccessPolicy) *Handler {
	return &Handler{service: service, policy: accessPolicy}
}

func (h *Handler) RegisterRoutes(router fiber.Router) {
	g := router.Group("/verifications")
	g.Get("/pending", h.ListPending)
	g.Get("/stats", h.Stats)
	g.Post("/:id/verify", h.VerifyRegistration)
	g.Post("/:id/reject", h.RejectRegistration)
	g.Post("/documents/:documentId/verify", h.VerifyDocument)
}

// schoolIDOf resolves the school a verification listing is scoped to: the
// principal's own school for school_admin, or the school_id query
// parameter for super_admin, who isn't bound to any single school.
func schoolIDOf(c *fiber.Ctx, principal policy.Principal) (uint, error) {
	if principal.IsSuperAdmin() {
		schoolIDStr := c.Query("school_id")
		if schoolIDStr == "" {
			return 0, apperr.Validation("school_id wajib diisi")
		}
		id, err := strconv.ParseUint(schoolIDStr, 10, 32)
		if err != nil {
			return 0, apperr.Validation("school_id tidak valid")
		}
		return uint(id), nil
	}
	if principal.SchoolID == nil {
		return 0, apperr.Forbidden("tidak terikat ke sekolah manapun")
	}
	return *principal.SchoolID, nil
}

func (h *Handler) ListPending(c *fiber.Ctx) error {
	principal := middleware.PrincipalFromContext(c)
	schoolID, err := schoolIDOf(c, principal)
	if err != nil {
		return httpx.Error(c, err)
	}
	if err := middleware.Require(h.policy.CanVerify(principal, schoolID)); err != nil {
		return httpx.Error(c, err)
	}

	var periodID *uint
	if raw := c.Query("period_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return httpx.Error(c, apperr.Validation("period_id tidak valid"))
		}
		v := uint(id)
		periodID = &v
	}
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))

	response, err := h.service.ListPending(c.UserContext(), schoolID, periodID, page, pageSize)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) Stats(c *fiber.Ctx) error {
	principal := middleware.PrincipalFromContext(c)
	schoolID, err := schoolIDOf(c, principal)
	if err != nil {
		return httpx.Error(c, err)
	}
	periodID, err := strconv.ParseUint(c.Query("period_id"), 10, 32)
	if err != nil {
		return httpx.Error(c, apperr.Validation("period_id tidak valid"))
	}
	if err := middleware.Require(h.policy.CanVerify(principal, schoolID)); err != nil {
		return httpx.Error(c, err)
	}

	response, err := h.service.Stats(c.UserContext(), uint(periodID))
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) VerifyRegistration(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	schoolID, err := h.service.RegistrationSchoolID(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	principal := middleware.PrincipalFromContext(c)
	if err := middleware.Require(h.policy.CanVerify(principal, schoolID)); err != nil {
		return httpx.Error(c, err)
	}

	var req VerifyRegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, apperr.Validation("format data tidak valid"))
	}

	response, err := h.service.VerifyRegistration(c.UserContext(), id, principal.UserID, req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) RejectRegistration(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	schoolID, err := h.service.RegistrationSchoolID(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	principal := middleware.PrincipalFromContext(c)
	if err := middleware.Require(h.policy.CanVerify(principal, schoolID)); err != nil {
		return httpx.Error(c, err)
	}

	var req RejectRegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, apperr.Validation("format data tidak valid"))
	}

	response, err := h.service.RejectRegistration(c.UserContext(), id, principal.UserID, req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) VerifyDocument(c *fiber.Ctx) error {
	documentID, err := parseParamID(c, "documentId")
	if err != nil {
		return httpx.Error(c, err)
	}
	schoolID, err := h.service.DocumentSchoolID(c.UserContext(), documentID)
	if err != nil {
		return httpx.Error(c, err)
	}
	principal := middleware.PrincipalFromContext(c)
	if err := middleware.Require(h.policy.CanVerify(principal, schoolID)); err != nil {
		return httpx.Error(c, err)
	}

	var req VerifyDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, apperr.Validation("format data tidak valid"))
	}

	response, err := h.service.VerifyDocument(c.UserContext(), documentID, principal.UserID, req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func parseParamID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil {
		return 0, apperr.Validation("id tidak valid")
	}
	return uint(id), nil
}
