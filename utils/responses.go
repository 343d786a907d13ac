package utils

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mytaskflow/backend/models"
)

func SendJSON(c *fiber.Ctx, status int, response models.APIResponse) error {
	return c.Status(status).JSON(response)
}

func SendSuccess(c *fiber.Ctx, data interface{}, message string) error {
	return SendJSON(c, fiber.StatusOK, models.NewSuccessResponse(data, message))
}

func SendCreated(c *fiber.Ctx, data interface{}, message string) error {
	return SendJSON(c, fiber.StatusCreated, models.NewSuccessResponse(data, message))
}

func SendError(c *fiber.Ctx, status int, code, message string, details map[string]string) error {
	return SendJSON(c, status, models.NewErrorResponse(code, message, details))
}

func SendBadRequest(c *fiber.Ctx, message string) error {
	return SendError(c, fiber.StatusBadRequest, "BAD_REQUEST", message, nil)
}

func SendNotFound(c *fiber.Ctx, message string) error {
	return SendError(c, fiber.StatusNotFound, "NOT_FOUND", message, nil)
}

func SendConflict(c *fiber.Ctx, message string) error {
	return SendError(c, fiber.StatusConflict, "CONFLICT", message, nil)
}

func SendUnprocessableEntity(c *fiber.Ctx, code, message string) error {
	return SendError(c, fiber.StatusUnprocessableEntity, code, message, nil)
}

func SendInternalServerError(c *fiber.Ctx, message string) error {
	return SendError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", message, nil)
}

// GetIPAddress prefers the proxy-forwarded address when present.
func GetIPAddress(c *fiber.Ctx) string {
	if ip := c.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := c.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return c.IP()
}
