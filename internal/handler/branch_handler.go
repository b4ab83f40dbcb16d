package handler

import (
	"github.com/gofiber/fiber/v2"

	"go-retail-pos/internal/model"
	"go-retail-pos/internal/repository"
	"go-retail-pos/pkg/validator"
)

type BranchHandler struct {
	branchRepo repository.BranchRepository
}

func NewBranchHandler(branchRepo repository.BranchRepository) *BranchHandler {
	return &BranchHandler{branchRepo: branchRepo}
}

func (h *BranchHandler) Create(c *fiber.Ctx) error {
	var branch model.Branch
	if err := c.BodyParser(&branch); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if errs := validator.ValidateStruct(&branch); len(errs) > 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Validation failed", "details": errs})
	}

	branch.IsActive = true
	if err := h.branchRepo.Create(&branch); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.Status(201).JSON(branch)
}

func (h *BranchHandler) List(c *fiber.Ctx) error {
	branches, err := h.branchRepo.FindAll()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(branches)
}

func (h *BranchHandler) Get(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid branch ID"})
	}

	branch, err := h.branchRepo.FindByID(id)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Branch not found"})
	}
	return c.JSON(branch)
}
