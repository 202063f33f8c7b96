package handler

import (
	"lab-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CategoryHandler struct {
	service service.CategoryService
}

func NewCategoryHandler(s service.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: s}
}

// CreateCategory POST /api/v1/category/create
func (h *CategoryHandler) CreateCategory(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return fail(c, err, "Unauthorized")
	}

	var req service.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	category, err := h.service.CreateCategory(c.UserContext(), caller, &req)
	if err != nil {
		return fail(c, err, "Failed to create category")
	}
	return created(c, "Category created", category)
}

// GetCategories GET /api/v1/category/categories
func (h *CategoryHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return fail(c, err, "Failed to fetch categories")
	}
	return c.JSON(categories)
}

// GetLaboratories GET /api/v1/laboratories
func (h *CategoryHandler) GetLaboratories(c *fiber.Ctx) error {
	labs, err := h.service.ListLaboratories(c.UserContext())
	if err != nil {
		return fail(c, err, "Failed to fetch laboratories")
	}
	return c.JSON(labs)
}
