package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdesk/backend/internal/services"
	"github.com/helpdesk/backend/pkg/logger"
	"github.com/helpdesk/backend/pkg/utils"
)

func parseID(value string) (uint, error) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(parsed), nil
}

// respondServiceError translates typed service errors into the API error
// contract. Anything unrecognized becomes a generic 500 with no internal
// detail leaked.
func respondServiceError(c *fiber.Ctx, err error) error {
	var notFound *services.NotFoundError
	if errors.As(err, &notFound) {
		return utils.Error(c, fiber.StatusNotFound, notFound.Error())
	}

	var duplicate *services.DuplicateResourceError
	if errors.As(err, &duplicate) {
		return utils.Error(c, fiber.StatusConflict, duplicate.Error())
	}

	var validation *services.ValidationError
	if errors.As(err, &validation) {
		return utils.ValidationFailed(c, validation.FieldErrors)
	}

	var invalid *services.InvalidArgumentError
	if errors.As(err, &invalid) {
		return utils.Error(c, fiber.StatusBadRequest, invalid.Error())
	}

	logger.Error("unhandled_service_error", err, map[string]interface{}{
		"path": c.Path(),
	})
	return utils.Error(c, fiber.StatusInternalServerError, "internal server error")
}
