package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ppdb/admissions-backend/internal/apperr"
	"github.com/ppdb/admissions-backend/internal/httpx"
)

// Handler handles HTTP requests for authentication.
type Handler struct {
	service Service
}

// NewHandler creates a new auth handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the public (unauthenticated) auth routes.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	g := router.Group("/auth")
	g.Post("/register", h.Register)
	g.Post("/login", h.Login)
	g.Post("/refresh", h.Refresh)
	g.Post("/logout", h.Logout)
	g.Post("/verify-email", h.VerifyEmail)
	g.Post("/forgot-password", h.ForgotPassword)
	g.Post("/reset-password", h.ResetPassword)
}

// RegisterProtectedRoutes registers routes that require authentication.
func (h *Handler) RegisterProtectedRoutes(router fiber.Router) {
	g := router.Group("/auth")
	g.Post("/change-password", h.ChangePassword)
	g.Get("/me", h.Me)
}

func (h *Handler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, apperr.BadRequest("format data tidak valid"))
	}
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		return httpx.Error(c, apperr.Validation("email, password, dan nama lengkap wajib diisi"))
	}
	if len(req.Password) < 8 {
		return httpx.Error(c, apperr.Validation("password minimal 8 karakter"))
	}

	resp, err := h.service.Register(c.Context(), req)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.Created(c, resp)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, apperr.BadRequest("format data tidak valid"))
	}
	if req.Email == "" || req.Password == "" {
		return httpx.Error(c, apperr.Validation("email dan password wajib diisi"))
	}

	resp, err := h.service.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, resp)
}

func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req RefreshTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, apperr.BadRequest("format data tidak valid"))
	}
	if req.RefreshToken == "" {
		return httpx.Error(c, apperr.Validation("refresh token wajib diisi"))
	}

	resp, err := h.service.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, resp)
}

// Logout is a no-op beyond client-side token discard: there is no
// server-side revocation sink wired in the core deployment.
func (h *Handler) Logout(c *fiber.Ctx) error {
	return httpx.Message(c, "berhasil keluar")
}

func (h *Handler) VerifyEmail(c *fiber.Ctx) error {
	var req VerifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, apperr.BadRequest("format data tidak valid"))
	}
	if req.Token == "" {
		return httpx.Error(c, apperr.Validation("token wajib diisi"))
	}

	if err := h.service.VerifyEmail(c.Context(), req.Token); err != nil {
		return httpx.Error(c, err)
	}
	return httpx.Message(c, "email berhasil diverifikasi")
}

func (h *Handler) ForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, apperr.BadRequest("format data tidak valid"))
	}
	if req.Email == "" {
		return httpx.Error(c, apperr.Validation("email wajib diisi"))
	}

	// Always reports success, regardless of whether the email exists.
	_ = h.service.ForgotPassword(c.Context(), req.Email)
	return httpx.Message(c, "jika email terdaftar, tautan reset password telah dikirim")
}

func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, apperr.BadRequest("format data tidak valid"))
	}
	if req.Token == "" || req.NewPassword == "" {
		return httpx.Error(c, apperr.Validation("token dan password baru wajib diisi"))
	}
	if len(req.NewPassword) < 8 {
		return httpx.Error(c, apperr.Validation("password baru minimal 8 karakter"))
	}

	if err := h.service.ResetPassword(c.Context(), req.Token, req.NewPassword); err != nil {
		return httpx.Error(c, err)
	}
	return httpx.Message(c, "password berhasil direset")
}

func (h *Handler) ChangePassword(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return httpx.Error(c, apperr.Unauthorized("autentikasi tidak valid"))
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.Error(c, apperr.BadRequest("format data tidak valid"))
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return httpx.Error(c, apperr.Validation("password lama dan password baru wajib diisi"))
	}
	if len(req.NewPassword) < 8 {
		return httpx.Error(c, apperr.Validation("password baru minimal 8 karakter"))
	}

	if err := h.service.ChangePassword(c.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		return httpx.Error(c, err)
	}
	return httpx.Message(c, "password berhasil diubah")
}

func (h *Handler) Me(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return httpx.Error(c, apperr.Unauthorized("autentikasi tidak valid"))
	}

	user, err := h.service.GetUserByID(c.Context(), userID)
	if err != nil {
		return httpx.Error(c, err)
	}
	return httpx.OK(c, toUserResponse(user))
}
