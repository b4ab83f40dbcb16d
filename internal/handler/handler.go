package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"go-retail-pos/internal/apperr"
	"go-retail-pos/internal/service"
)

// actorFrom rebuilds the verified caller identity set by RequireAuth.
func actorFrom(c *fiber.Ctx) service.Actor {
	actor := service.Actor{}
	if id, ok := c.Locals("employee_id").(uuid.UUID); ok {
		actor.EmployeeID = id
	}
	if role, ok := c.Locals("employee_role").(string); ok {
		actor.Role = role
	}
	if branchID, ok := c.Locals("branch_id").(uuid.UUID); ok {
		actor.BranchID = branchID
	}
	return actor
}

// respondErr maps engine errors onto HTTP statuses with a human-readable
// reason; nothing is swallowed.
func respondErr(c *fiber.Ctx, err error) error {
	status := apperr.Status(err)
	msg := err.Error()
	if status == 500 {
		msg = "Internal Server Error"
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}
