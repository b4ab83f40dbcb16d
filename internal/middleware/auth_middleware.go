package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/pkg/jwt"
)

// RequireAuth validates the bearer token and stashes the verified actor in
// the request context. The employee must still exist and be active.
func RequireAuth(tokens *jwt.Manager, employeeRepo repository.EmployeeRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := tokens.Validate(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		employee, err := employeeRepo.FindByID(claims.EmployeeID)
		if err != nil || !employee.IsActive {
			return c.Status(401).JSON(fiber.Map{"error": "Employee not found or inactive"})
		}

		c.Locals("employee_id", employee.ID)
		c.Locals("employee_role", employee.Role)
		c.Locals("branch_id", employee.BranchID)
		c.Locals("employee_name", employee.FullName)
		return c.Next()
	}
}

// RequireAdmin gates admin-only write operations.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("employee_role").(string)
		if role != model.RoleAdmin {
			return c.Status(403).JSON(fiber.Map{"error": "Admin access required"})
		}
		return c.Next()
	}
}
