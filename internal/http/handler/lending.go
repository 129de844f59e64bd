package handler

import (
	"github.com/gofiber/fiber/v2"

	"libapi/internal/service"
)

// Lend handles POST /books/:id/lend.
func Lend(svc service.LendingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bookID, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req lendRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return writeValidationError(c, err)
		}

		lending, err := svc.Lend(c.UserContext(), bookID, service.LendRequest{
			BorrowerName:  req.BorrowerName,
			BorrowerEmail: req.BorrowerEmail,
			Days:          req.Days,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(lending)
	}
}

// Return handles POST /lendings/:id/return.
func Return(svc service.LendingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		lending, err := svc.Return(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(lending)
	}
}
