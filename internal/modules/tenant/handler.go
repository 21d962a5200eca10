package tenant

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ppdb/admissions-backend/internal/apperr"
	"github.com/ppdb/admissions-backend/internal/httpx"
)

// Handler handles HTTP requests for the school catalog, all restricted to
// super_admin by the router's middleware chain.
type Handler struct {
	service Service
}

// NewHandler creates a new tenant (school catalog) handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers school catalog routes under the given router.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	g := router.Group("/schools")
	g.Post("", h.CreateSchool)
	g.Get("", h.ListSchools)
	g.Get("/:id", h.GetSchool)
	g.Put("/:id", h.UpdateSchool)
	g.Post("/:id/activate", h.ActivateSchool)
	g.Post("/:id/deactivate", h.DeactivateSchool)
	g.Post("/:id/suspend", h.SuspendSchool)
}

func (h *Handler) CreateSchool(c *fiber.Ctx) error {
	var req CreateSchoolRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, apperr.Validation("format data tidak valid"))
	}

	response, err := h.service.CreateSchool(c.Context(), req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.Created(c, response)
}

func (h *Handler) ListSchools(c *fiber.Ctx) error {
	filter := DefaultSchoolFilter()
	filter.Search = c.Query("search")
	filter.Status = c.Query("status")
	if page, err := strconv.Atoi(c.Query("page", "1")); err == nil && page > 0 {
		filter.Page = page
	}
	if pageSize, err := strconv.Atoi(c.Query("page_size", "20")); err == nil && pageSize > 0 {
		filter.PageSize = pageSize
	}

	response, err := h.service.ListSchools(c.Context(), filter)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) GetSchool(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	response, err := h.service.GetSchool(c.Context(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) UpdateSchool(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return httpx.Error(c, err)
	}

	var req UpdateSchoolRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, apperr.Validation("format data tidak valid"))
	}

	response, err := h.service.UpdateSchool(c.Context(), id, req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) ActivateSchool(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return httpx.Error(c, err)
	}
	response, err := h.service.ActivateSchool(c.Context(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) DeactivateSchool(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return httpx.Error(c, err)
	}
	response, err := h.service.DeactivateSchool(c.Context(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) SuspendSchool(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return httpx.Error(c, err)
	}
	response, err := h.service.SuspendSchool(c.Context(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return 0, apperr.Validation("id sekolah tidak valid")
	}
	return uint(id), nil
}
