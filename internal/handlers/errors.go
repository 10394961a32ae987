package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/kudos/internal/services"
)

// respondServiceError maps the engine's typed error kinds onto HTTP
// statuses. Anything without a kind bubbles up to the fiber error handler as
// an internal error; raw store errors are never echoed to callers.
func respondServiceError(c *fiber.Ctx, err error) error {
	kind, ok := services.KindOf(err)
	if !ok {
		return err
	}

	status := fiber.StatusInternalServerError
	switch kind {
	case services.KindValidation:
		status = fiber.StatusBadRequest
	case services.KindNotFound:
		status = fiber.StatusNotFound
	case services.KindInvalidState, services.KindConflict:
		status = fiber.StatusConflict
	case services.KindForbidden:
		status = fiber.StatusForbidden
	case services.KindInsufficientQuota, services.KindInsufficientBalance,
		services.KindOutOfStock, services.KindEmptySet:
		status = fiber.StatusUnprocessableEntity
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   kind,
		"message": err.Error(),
	})
}
