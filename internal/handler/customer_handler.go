package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-retail-pos/internal/service"
)

type CustomerHandler struct {
	service service.CustomerService
}

func NewCustomerHandler(s service.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: s}
}

func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var req struct {
		PhoneNumber string `json:"phone_number"`
		Name        string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	customer, err := h.service.CreateOrGet(req.PhoneNumber, req.Name)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(201).JSON(customer)
}

func (h *CustomerHandler) SearchByPhone(c *fiber.Ctx) error {
	customer, err := h.service.SearchByPhone(c.Params("phone"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(customer)
}

func (h *CustomerHandler) Bills(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid customer ID"})
	}

	bills, err := h.service.Bills(id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(bills)
}
