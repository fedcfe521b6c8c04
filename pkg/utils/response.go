package utils

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Error writes the structured error body returned by every API failure:
// {timestamp, status, error, message, path}. Internal details never leak;
// the message is the caller-facing explanation only.
func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"status":    status,
		"error":     http.StatusText(status),
		"message":   message,
		"path":      c.Path(),
	})
}

// ValidationFailed is the error body for field-level validation failures;
// it carries one entry per invalid field.
func ValidationFailed(c *fiber.Ctx, fieldErrors map[string]string) error {
	status := fiber.StatusBadRequest
	return c.Status(status).JSON(fiber.Map{
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"status":      status,
		"error":       http.StatusText(status),
		"message":     "validation failed",
		"path":        c.Path(),
		"fieldErrors": fieldErrors,
	})
}

// Paginated wraps a page of results with its paging metadata.
func Paginated(c *fiber.Ctx, data interface{}, page, limit int, total int64) error {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": data,
		"pagination": fiber.Map{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": totalPages,
		},
	})
}
