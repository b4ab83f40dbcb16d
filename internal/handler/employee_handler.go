package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/internal/service"
)

type EmployeeHandler struct {
	employeeRepo          repository.EmployeeRepository
	branchRepo            repository.BranchRepository
	defaultCommissionRate decimal.Decimal
}

func NewEmployeeHandler(employeeRepo repository.EmployeeRepository, branchRepo repository.BranchRepository, defaultCommissionRate decimal.Decimal) *EmployeeHandler {
	return &EmployeeHandler{
		employeeRepo:          employeeRepo,
		branchRepo:            branchRepo,
		defaultCommissionRate: defaultCommissionRate,
	}
}

func (h *EmployeeHandler) Create(c *fiber.Ctx) error {
	var req service.CreateEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if err := service.ValidateCreateEmployee(&req); err != nil {
		return respondErr(c, err)
	}

	branchID, err := parseUUID(req.BranchID)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid branch ID"})
	}
	if _, err := h.branchRepo.FindByID(branchID); err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Branch not found"})
	}

	rate := h.defaultCommissionRate
	if req.CommissionRate != nil {
		rate = *req.CommissionRate
	}
	if rate.IsNegative() {
		return c.Status(400).JSON(fiber.Map{"error": "Commission rate cannot be negative"})
	}

	employee := model.Employee{
		Username:       req.Username,
		FullName:       req.FullName,
		Role:           req.Role,
		BranchID:       branchID,
		CommissionRate: rate,
		IsActive:       true,
	}
	if err := employee.SetPassword(req.Password); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	if err := h.employeeRepo.Create(&employee); err != nil {
		if repository.IsUniqueViolation(err) {
			return c.Status(409).JSON(fiber.Map{"error": "Username already taken"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.Status(201).JSON(employee.ToResponse())
}

func (h *EmployeeHandler) List(c *fiber.Ctx) error {
	employees, err := h.employeeRepo.FindAll()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	responses := make([]model.EmployeeResponse, 0, len(employees))
	for i := range employees {
		responses = append(responses, employees[i].ToResponse())
	}
	return c.JSON(responses)
}
