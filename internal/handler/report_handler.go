package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/service"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

// SalesReport accepts start_date/end_date (RFC 3339 or YYYY-MM-DD),
// branch_id and employee_id query filters; all optional.
func (h *ReportHandler) SalesReport(c *fiber.Ctx) error {
	var filter repository.ReportFilter

	if raw := c.Query("start_date"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid start_date"})
		}
		filter.Start = &t
	}
	if raw := c.Query("end_date"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid end_date"})
		}
		filter.End = &t
	}
	if raw := c.Query("branch_id"); raw != "" {
		id, err := parseUUID(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid branch_id"})
		}
		filter.BranchID = &id
	}
	if raw := c.Query("employee_id"); raw != "" {
		id, err := parseUUID(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid employee_id"})
		}
		filter.EmployeeID = &id
	}

	report, err := h.service.SalesReport(actorFrom(c), filter)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(report)
}

func (h *ReportHandler) DashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.DashboardStats(actorFrom(c))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(stats)
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
