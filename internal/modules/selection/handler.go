package selection

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ppdb/admissions-backend/internal/apperr"
	"github.com/ppdb/admissions-backend/internal/httpx"
	"github.com/ppdb/admissions-backend/internal/middleware"
	"github.com/ppdb/admissions-backend/internal/policy"
)

// Handler handles HTTP requests for the selection/announcement pipeline.
// Every route except CheckResult requires CanRunSelection; CheckResult must
// be mounted on the public router group with no auth middleware at all.
type Handler struct {
	service Service
	policy  policy.AccessPolicy
}

func NewHandler(service Service, accessPolicy policy.AccessPolicy) *Handler {
	return &Handler{service: service, policy: accessPolicy}
}

// RegisterRoutes registers the authenticated selection/announcement routes.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Post("/selection/periods/:periodId/calculate-scores", h.CalculateScores)
	router.Post("/selection/periods/:periodId/update-rankings", h.UpdateRankings)
	router.Get("/selection/periods/:periodId/rankings", h.Rankings)
	router.Get("/selection/periods/:periodId/stats", h.Stats)
	router.Post("/announcements/periods/:periodId/run-selection", h.RunSelection)
	router.Post("/announcements/periods/:periodId/announce", h.Announce)
	router.Get("/announcements/periods/:periodId/summary", h.Summary)
}

// RegisterPublicRoutes registers the anonymous result-check endpoint on a
// router group carrying no auth middleware.
func (h *Handler) RegisterPublicRoutes(router fiber.Router) {
	router.Get("/announcements/check-result", h.CheckResult)
}

func (h *Handler) requireRunSelection(c *fiber.Ctx, periodID uint) error {
	schoolID, err := h.service.PeriodSchoolID(c.UserContext(), periodID)
	if err != nil {
		return err
	}
	principal := middleware.PrincipalFromContext(c)
	return middleware.Require(h.policy.CanRunSelection(principal, schoolID))
}

func (h *Handler) CalculateScores(c *fiber.Ctx) error {
	periodID, err := parseParamID(c, "periodId")
	if err != nil {
		return httpx.Error(c, err)
	}
	if err := h.requireRunSelection(c, periodID); err != nil {
		return httpx.Error(c, err)
	}

	response, err := h.service.CalculateScores(c.UserContext(), periodID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) UpdateRankings(c *fiber.Ctx) error {
	periodID, err := parseParamID(c, "periodId")
	if err != nil {
		return httpx.Error(c, err)
	}
	if err := h.requireRunSelection(c, periodID); err != nil {
		return httpx.Error(c, err)
	}

	response, err := h.service.UpdateRankings(c.UserContext(), periodID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) RunSelection(c *fiber.Ctx) error {
	periodID, err := parseParamID(c, "periodId")
	if err != nil {
		return httpx.Error(c, err)
	}
	if err := h.requireRunSelection(c, periodID); err != nil {
		return httpx.Error(c, err)
	}

	force := c.Query("force") == "true"
	response, err := h.service.RunSelection(c.UserContext(), periodID, force)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) Announce(c *fiber.Ctx) error {
	periodID, err := parseParamID(c, "periodId")
	if err != nil {
		return httpx.Error(c, err)
	}
	if err := h.requireRunSelection(c, periodID); err != nil {
		return httpx.Error(c, err)
	}

	response, err := h.service.Announce(c.UserContext(), periodID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) Rankings(c *fiber.Ctx) error {
	periodID, err := parseParamID(c, "periodId")
	if err != nil {
		return httpx.Error(c, err)
	}
	if err := h.requireRunSelection(c, periodID); err != nil {
		return httpx.Error(c, err)
	}

	response, err := h.service.RankingsByPeriod(c.UserContext(), periodID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) Summary(c *fiber.Ctx) error {
	periodID, err := parseParamID(c, "periodId")
	if err != nil {
		return httpx.Error(c, err)
	}
	if err := h.requireRunSelection(c, periodID); err != nil {
		return httpx.Error(c, err)
	}

	response, err := h.service.Summary(c.UserContext(), periodID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) Stats(c *fiber.Ctx) error {
	periodID, err := parseParamID(c, "periodId")
	if err != nil {
		return httpx.Error(c, err)
	}
	if err := h.requireRunSelection(c, periodID); err != nil {
		return httpx.Error(c, err)
	}

	response, err := h.service.Stats(c.UserContext(), periodID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

// CheckResult is public and anonymous: no principal is resolved at all.
func (h *Handler) CheckResult(c *fiber.Ctx) error {
	registrationNumber := c.Query("registration_number")
	nisn := c.Query("nisn")

	response, err := h.service.CheckResult(c.UserContext(), registrationNumber, nisn)
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
