package period

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ppdb/admissions-backend/internal/apperr"
	"github.com/ppdb/admissions-backend/internal/httpx"
	"github.com/ppdb/admissions-backend/internal/middleware"
	"github.com/ppdb/admissions-backend/internal/policy"
)

// Handler handles HTTP requests for periods and registration paths.
type Handler struct {
	service Service
	policy  policy.AccessPolicy
}

func NewHandler(service Service, accessPolicy policy.AccessPolicy) *Handler {
	return &Handler{service: service, policy: accessPolicy}
}

func (h *Handler) RegisterRoutes(router fiber.Router) {
	g := router.Group("/periods")
	g.Post("", h.CreatePeriod)
	g.Get("", h.ListPeriods)
	g.Get("/:id", h.GetPeriod)
	g.Put("/:id", h.UpdatePeriod)
	g.Post("/:id/activate", h.ActivatePeriod)
	g.Post("/:id/close", h.ClosePeriod)
	g.Delete("/:id", h.DeletePeriod)

	g.Post("/:id/paths", h.CreatePath)
	g.Get("/:id/paths", h.ListPaths)

	g.Put("/paths/:pathId", h.UpdatePath)
	g.Delete("/paths/:pathId", h.DeletePath)
}

func (h *Handler) CreatePeriod(c *fiber.Ctx) error {
	principal := middleware.PrincipalFromContext(c)
	schoolID, err := resolveSchoolID(c, principal)
	if err != nil {
		return httpx.Error(c, err)
	}
	if err := middleware.Require(h.policy.CanManagePeriods(principal, schoolID)); err != nil {
		return httpx.Error(c, err)
	}

	var req CreatePeriodRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, apperr.Validation("format data tidak valid"))
	}

	response, err := h.service.CreatePeriod(c.UserContext(), schoolID, req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.Created(c, response)
}

func (h *Handler) ListPeriods(c *fiber.Ctx) error {
	principal := middleware.PrincipalFromContext(c)
	schoolID, err := resolveSchoolID(c, principal)
	if err != nil {
		return httpx.Error(c, err)
	}
	if err := middleware.Require(h.policy.CanManagePeriods(principal, schoolID)); err != nil {
		return httpx.Error(c, err)
	}

	response, err := h.service.ListPeriods(c.UserContext(), schoolID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) GetPeriod(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	response, err := h.service.GetPeriod(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}

	principal := middleware.PrincipalFromContext(c)
	if err := middleware.Require(h.policy.CanManagePeriods(principal, response.SchoolID)); err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) UpdatePeriod(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	existing, err := h.service.GetPeriod(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	principal := middleware.PrincipalFromContext(c)
	if err := middleware.Require(h.policy.CanManagePeriods(principal, existing.SchoolID)); err != nil {
		return httpx.Error(c, err)
	}

	var req UpdatePeriodRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, apperr.Validation("format data tidak valid"))
	}

	response, err := h.service.UpdatePeriod(c.UserContext(), id, req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) ActivatePeriod(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	existing, err := h.service.GetPeriod(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	principal := middleware.PrincipalFromContext(c)
	if err := middleware.Require(h.policy.CanManagePeriods(principal, existing.SchoolID)); err != nil {
		return httpx.Error(c, err)
	}

	response, err := h.service.ActivatePeriod(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) ClosePeriod(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	existing, err := h.service.GetPeriod(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	principal := middleware.PrincipalFromContext(c)
	if err := middleware.Require(h.policy.CanManagePeriods(principal, existing.SchoolID)); err != nil {
		return httpx.Error(c, err)
	}

	response, err := h.service.ClosePeriod(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) DeletePeriod(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	existing, err := h.service.GetPeriod(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	principal := middleware.PrincipalFromContext(c)
	if err := middleware.Require(h.policy.CanManagePeriods(principal, existing.SchoolID)); err != nil {
		return httpx.Error(c, err)
	}

	if err := h.service.DeletePeriod(c.UserContext(), id); err != nil {
		return httpx.Error(c, err)
	}
	return httpx.Message(c, "periode berhasil dihapus")
}

func (h *Handler) CreatePath(c *fiber.Ctx) error {
	periodID, err := parseParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	existing, err := h.service.GetPeriod(c.UserContext(), periodID)
	if err != nil {
		return httpx.Error(c, err)
	}
	principal := middleware.PrincipalFromContext(c)
	if err := middleware.Require(h.policy.CanManagePeriods(principal, existing.SchoolID)); err != nil {
		return httpx.Error(c, err)
	}

	var req CreatePathRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, apperr.Validation("format data tidak valid"))
	}

	response, err := h.service.CreatePath(c.UserContext(), periodID, req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.Created(c, response)
}

func (h *Handler) ListPaths(c *fiber.Ctx) error {
	periodID, err := parseParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	existing, err := h.service.GetPeriod(c.UserContext(), periodID)
	if err != nil {
		return httpx.Error(c, err)
	}
	principal := middleware.PrincipalFromContext(c)
	if err := middleware.Require(h.policy.CanManagePeriods(principal, existing.SchoolID)); err != nil {
		return httpx.Error(c, err)
	}

	response, err := h.service.ListPaths(c.UserContext(), periodID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) UpdatePath(c *fiber.Ctx) error {
	pathID, err := parseParamID(c, "pathId")
	if err != nil {
		return httpx.Error(c, err)
	}
	schoolID, err := h.service.PathSchoolID(c.UserContext(), pathID)
	if err != nil {
		return httpx.Error(c, err)
	}
	principal := middleware.PrincipalFromContext(c)
	if err := middleware.Require(h.policy.CanManagePeriods(principal, schoolID)); err != nil {
		return httpx.Error(c, err)
	}

	var req UpdatePathRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, apperr.Validation("format data tidak valid"))
	}

	response, err := h.service.UpdatePath(c.UserContext(), pathID, req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) DeletePath(c *fiber.Ctx) error {
	pathID, err := parseParamID(c, "pathId")
	if err != nil {
		return httpx.Error(c, err)
	}
	schoolID, err := h.service.PathSchoolID(c.UserContext(), pathID)
	if err != nil {
		return httpx.Error(c, err)
	}
	principal := middleware.PrincipalFromContext(c)
	if err := middleware.Require(h.policy.CanManagePeriods(principal, schoolID)); err != nil {
		return httpx.Error(c, err)
	}

	if err := h.service.DeletePath(c.UserContext(), pathID); err != nil {
		return httpx.Error(c, err)
	}
	return httpx.Message(c, "jalur pendaftaran berhasil dihapus")
}

// resolveSchoolID picks the school a period operation targets: the
// principal's own school for school_admin, or the school_id query
// parameter for super_admin, who isn't bound to any single school.
func resolveSchoolID(c *fiber.Ctx, principal policy.Principal) (uint, error) {
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

func parseParamID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil {
		return 0, apperr.Validation("id tidak valid")
	}
	return uint(id), nil
}
