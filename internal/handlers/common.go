package handlers

import (
	"errors"
	"strconv"

	"github.com/YoussefEssam74/intellifit-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
)

// parseActorID reads the authenticated user id the auth middleware stored
// in locals.
func parseActorID(c *fiber.Ctx) (int64, error) {
	raw, ok := c.Locals("user_id").(string)
	if !ok {
		return 0, errors.New("missing user id")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid user id")
	}
	return id, nil
}

func actorRole(c *fiber.Ctx) string {
	role, _ := c.Locals("role").(string)
	return role
}

func mapServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrSlotConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Requested time slot is already booked"})
	case errors.Is(err, services.ErrInsufficientBalance):
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "Insufficient token balance"})
	case errors.Is(err, services.ErrInvalidTransition), errors.Is(err, services.ErrCascadeChildImmutable):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrSlotNotFound),
		errors.Is(err, services.ErrEquipmentNotFound),
		errors.Is(err, services.ErrCoachNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process request"})
	}
}
