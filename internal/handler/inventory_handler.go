package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/service"
)

type InventoryHandler struct {
	service          service.StockService
	defaultThreshold int
}

func NewInventoryHandler(s service.StockService, defaultThreshold int) *InventoryHandler {
	return &InventoryHandler{service: s, defaultThreshold: defaultThreshold}
}

func (h *InventoryHandler) StockIn(c *fiber.Ctx) error {
	var req service.StockInRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	entry, err := h.service.StockIn(c.UserContext(), actorFrom(c), &req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(entry)
}

func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var req service.TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	result, err := h.service.Transfer(c.UserContext(), actorFrom(c), &req)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(result)
}

func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	threshold := h.defaultThreshold
	if raw := c.Query("threshold"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid threshold"})
		}
		threshold = parsed
	}

	items, err := h.service.LowStock(threshold)
	if err != nil {
		return respondErr(c, err)
	}
	if items == nil {
		items = []model.LowStockItem{}
	}
	return c.JSON(items)
}
