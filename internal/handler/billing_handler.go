package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-retail-pos/internal/service"
)

type BillingHandler struct {
	service service.BillingService
}

func NewBillingHandler(s service.BillingService) *BillingHandler {
	return &BillingHandler{service: s}
}

func (h *BillingHandler) CreateBill(c *fiber.Ctx) error {
	var req service.CreateBillRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	bill, err := h.service.CreateBill(c.UserContext(), actorFrom(c), &req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.Status(201).JSON(bill)
}

func (h *BillingHandler) GetBills(c *fiber.Ctx) error {
	bills, err := h.service.GetBills(actorFrom(c))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(bills)
}

func (h *BillingHandler) GetBill(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid bill ID"})
	}

	bill, err := h.service.GetBill(id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(bill)
}

func (h *BillingHandler) ProcessReturn(c *fiber.Ctx) error {
	var req service.ReturnRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	result, err := h.service.ProcessReturn(c.UserContext(), actorFrom(c), &req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(result)
}
