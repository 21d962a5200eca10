package registration

import (
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ppdb/admissions-backend/internal/apperr"
	"github.com/ppdb/admissions-backend/internal/httpx"
	"github.com/ppdb/admissions-backend/internal/middleware"
	"github.com/ppdb/admissions-backend/internal/policy"
)

// Handler handles HTTP requests for registrations and their documents.
type Handler struct {
	service Service
	policy  policy.AccessPolicy
}

func NewHandler(service Service, accessPolicy policy.AccessPolicy) *Handler {
	return &Handler{service: service, policy: accessPolicy}
}

func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Post("/registrations", h.CreateRegistration)
	router.Get("/registrations/me", h.ListMyRegistrations)
	router.Get("/registrations/:id", h.GetRegistration)
	router.Put("/registrations/:id", h.UpdateRegistration)
	router.Post("/registrations/:id/submit", h.SubmitRegistration)
	router.Post("/registrations/:id/documents", h.AttachDocument)
	router.Delete("/registrations/:id/documents/:documentId", h.DetachDocument)

	router.Get("/schools/:schoolId/registrations", h.ListSchoolRegistrations)
}

func (h *Handler) CreateRegistration(c *fiber.Ctx) error {
	principal := middleware.PrincipalFromContext(c)

	var req CreateRegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, apperr.Validation("format data tidak valid"))
	}

	if err := middleware.Require(h.policy.CanCreateOrEditDraftRegistration(principal, principal.UserID)); err != nil {
		return httpx.Error(c, err)
	}

	response, err := h.service.CreateRegistration(c.UserContext(), principal.UserID, req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.Created(c, response)
}

func (h *Handler) GetRegistration(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	response, err := h.service.GetRegistration(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}

	principal := middleware.PrincipalFromContext(c)
	decision := h.policy.CanReadRegistration(principal, response.SchoolID, response.UserID)
	if !decision.Allow {
		// Cross-tenant existence is never leaked: deny reads as 404, not 403.
		return httpx.Error(c, apperr.NotFound("pendaftaran tidak ditemukan"))
	}
	return httpx.OK(c, response)
}

func (h *Handler) ListMyRegistrations(c *fiber.Ctx) error {
	principal := middleware.PrincipalFromContext(c)
	if err := middleware.Require(h.policy.CanCreateOrEditDraftRegistration(principal, principal.UserID)); err != nil {
		return httpx.Error(c, err)
	}

	filter := DefaultRegistrationFilter()
	if err := c.QueryParser(&filter); err != nil {
		return httpx.Error(c, apperr.Validation("parameter query tidak valid"))
	}

	response, err := h.service.ListMyRegistrations(c.UserContext(), principal.UserID, filter)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) ListSchoolRegistrations(c *fiber.Ctx) error {
	schoolID, err := parseParamID(c, "schoolId")
	if err != nil {
		return httpx.Error(c, err)
	}
	principal := middleware.PrincipalFromContext(c)
	if err := middleware.Require(h.policy.CanVerify(principal, schoolID)); err != nil {
		return httpx.Error(c, err)
	}

	filter := DefaultRegistrationFilter()
	if err := c.QueryParser(&filter); err != nil {
		return httpx.Error(c, apperr.Validation("parameter query tidak valid"))
	}

	response, err := h.service.ListSchoolRegistrations(c.UserContext(), schoolID, filter)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) UpdateRegistration(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	existing, err := h.service.GetRegistration(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	principal := middleware.PrincipalFromContext(c)
	if err := middleware.Require(h.policy.CanCreateOrEditDraftRegistration(principal, existing.UserID)); err != nil {
		return httpx.Error(c, err)
	}

	var req UpdateRegistrationRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, apperr.Validation("format data tidak valid"))
	}

	response, err := h.service.UpdateRegistration(c.UserContext(), id, req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) SubmitRegistration(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	existing, err := h.service.GetRegistration(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	principal := middleware.PrincipalFromContext(c)
	if err := middleware.Require(h.policy.CanSubmitRegistration(principal, existing.UserID)); err != nil {
		return httpx.Error(c, err)
	}

	response, err := h.service.Submit(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, response)
}

func (h *Handler) AttachDocument(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	existing, err := h.service.GetRegistration(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	principal := middleware.PrincipalFromContext(c)
	if err := middleware.Require(h.policy.CanCreateOrEditDraftRegistration(principal, existing.UserID)); err != nil {
		return httpx.Error(c, err)
	}

	docType := c.FormValue("document_type")
	if docType == "" {
		return httpx.Error(c, apperr.Validation("document_type wajib diisi"))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return httpx.Error(c, apperr.Validation("berkas wajib diunggah"))
	}
	file, err := fileHeader.Open()
	if err != nil {
		return httpx.Error(c, apperr.Internal("gagal membaca berkas").Wrap(err))
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return httpx.Error(c, apperr.Internal("gagal membaca berkas").Wrap(err))
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	response, err := h.service.AttachDocument(c.UserContext(), id, docType, content, fileHeader.Filename, mimeType)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.Created(c, response)
}

func (h *Handler) DetachDocument(c *fiber.Ctx) error {
	id, err := parseParamID(c, "id")
	if err != nil {
		return httpx.Error(c, err)
	}
	documentID, err := parseParamID(c, "documentId")
	if err != nil {
		return httpx.Error(c, err)
	}
	existing, err := h.service.GetRegistration(c.UserContext(), id)
	if err != nil {
		return httpx.Error(c, err)
	}
	principal := middleware.PrincipalFromContext(c)
	if err := middleware.Require(h.policy.CanCreateOrEditDraftRegistration(principal, existing.UserID)); err != nil {
		return httpx.Error(c, err)
	}

	if err := h.service.DetachDocument(c.UserContext(), id, documentID); err != nil {
		return httpx.Error(c, err)
	}
	return httpx.Message(c, "dokumen berhasil dihapus")
}

func parseParamID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil {
		return 0, apperr.Validation("id tidak valid")
	}
	return uint(id), nil
}
