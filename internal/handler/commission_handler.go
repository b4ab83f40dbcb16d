package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"go-retail-pos/internal/service"
)

type CommissionHandler struct {
	service service.CommissionService
}

func NewCommissionHandler(s service.CommissionService) *CommissionHandler {
	return &CommissionHandler{service: s}
}

func (h *CommissionHandler) My(c *fiber.Ctx) error {
	commissions, err := h.service.My(actorFrom(c).EmployeeID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(commissions)
}

func (h *CommissionHandler) All(c *fiber.Ctx) error {
	commissions, err := h.service.All()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(commissions)
}

func (h *CommissionHandler) Payout(c *fiber.Ctx) error {
	var req struct {
		CommissionIDs []uuid.UUID `json:"commission_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.service.Payout(req.CommissionIDs); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": "Commissions marked as paid"})
}
