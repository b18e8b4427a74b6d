package handler

import (
	"errors"

	"go-branch-stock-ws/internal/model"
	"go-branch-stock-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

// currentUser pulls the authenticated user loaded by the auth middleware.
func currentUser(c *fiber.Ctx) (*model.User, error) {
	user, ok := c.Locals("current_user").(*model.User)
	if !ok || user == nil {
		return nil, fiber.NewError(401, "Missing authenticated user")
	}
	return user, nil
}

// serviceError maps service failures onto HTTP responses.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case service.IsInvalidState(err):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		return c.Status(403).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrTransferNotFound), errors.Is(err, service.ErrQueryNotFound):
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
}
