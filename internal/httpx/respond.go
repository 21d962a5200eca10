// Package httpx is the single HTTP-boundary mapping point: every handler
// funnels its business-layer error through Error, and every success
// response through OK, so the JSON envelope and status-code mapping live
// in exactly one place.
package httpx

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/ppdb/admissions-backend/internal/apperr"
)

var statusByKind = map[apperr.Kind]int{
	apperr.KindValidation:   fiber.StatusUnprocessableEntity,
	apperr.KindBadRequest:   fiber.StatusBadRequest,
	apperr.KindUnauthorized: fiber.StatusUnauthorized,
	apperr.KindForbidden:    fiber.StatusForbidden,
	apperr.KindNotFound:     fiber.StatusNotFound,
	apperr.KindConflict:     fiber.StatusConflict,
	apperr.KindInternal:     fiber.StatusInternalServerError,
}

// Error writes a failed response. Every business error is expected to carry
// an *apperr.Error; anything else is treated as KindInternal so a stray
// fmt.Errorf from deep in a call chain never leaks stack-trace detail.
func Error(c *fiber.Ctx, err error) error {
	appErr, ok := apperr.As(err)
	if !ok {
		appErr = apperr.Internal("terjadi kesalahan pada server").Wrap(err)
	}

	if appErr.Kind == apperr.KindInternal {
		log.Printf("[%s] internal error: %v", requestIDFrom(c), err)
	}

	status, ok := statusByKind[appErr.Kind]
	if !ok {
		status = fiber.StatusInternalServerError
	}

	body := fiber.Map{
		"success": false,
		"error": fiber.Map{
			"kind":    appErr.Kind,
			"message": appErr.Message,
		},
	}
	if appErr.Reason != "" {
		body["error"].(fiber.Map)["reason"] = appErr.Reason
	}
	if len(appErr.Fields) > 0 {
		body["error"].(fiber.Map)["fields"] = appErr.Fields
	}

	return c.Status(status).JSON(body)
}

// OK writes a successful response carrying data.
func OK(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

// Created writes a 201 successful response carrying data.
func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": data})
}

// Message writes a successful response carrying only a message, for
// operations with no meaningful payload (logout, delete).
func Message(c *fiber.Ctx, message string) error {
	return c.JSON(fiber.Map{"success": true, "message": message})
}
