package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/service"
)

type AuthHandler struct {
	service      service.AuthService
	employeeRepo repository.EmployeeRepository
}

func NewAuthHandler(s service.AuthService, employeeRepo repository.EmployeeRepository) *AuthHandler {
	return &AuthHandler{service: s, employeeRepo: employeeRepo}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	resp, err := h.service.Login(req.Username, req.Password)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	actor := actorFrom(c)
	employee, err := h.employeeRepo.FindByID(actor.EmployeeID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Employee not found"})
	}
	return c.JSON(employee.ToResponse())
}
