package handler

import (
	"lab-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SupplierHandler struct {
	service service.SupplierService
}

func NewSupplierHandler(s service.SupplierService) *SupplierHandler {
	return &SupplierHandler{service: s}
}

// CreateSupplier POST /api/v1/supplier/create
func (h *SupplierHandler) CreateSupplier(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return fail(c, err, "Unauthorized")
	}

	var req service.SupplierRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	supplier, err := h.service.CreateSupplier(c.UserContext(), caller, &req)
	if err != nil {
		return fail(c, err, "Failed to create supplier")
	}
	return created(c, "Supplier created", supplier)
}

// UpdateSupplier PUT /api/v1/supplier/update/:id
func (h *SupplierHandler) UpdateSupplier(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return fail(c, err, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid supplier ID")
	}

	var req service.UpdateSupplierRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if err := applyIfMatch(c, &req.Version); err != nil {
		return fail(c, err, "Failed to update supplier")
	}

	supplier, err := h.service.UpdateSupplier(c.UserContext(), caller, id, &req)
	if err != nil {
		return fail(c, err, "Failed to update supplier")
	}
	return success(c, "Supplier updated", supplier)
}

// GetAllSuppliers lists every supplier of the user's laboratory
// GET /api/v1/supplier/unfiltered/:userId
func (h *SupplierHandler) GetAllSuppliers(c *fiber.Ctx) error {
	return h.list(c, false)
}

// GetActiveSuppliers lists the Active suppliers of the user's laboratory
// GET /api/v1/filtered-suppliers/:userId
func (h *SupplierHandler) GetActiveSuppliers(c *fiber.Ctx) error {
	return h.list(c, true)
}

func (h *SupplierHandler) list(c *fiber.Ctx, onlyActive bool) error {
	userID, ok := paramID(c, "userId")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}

	suppliers, err := h.service.ListForUser(c.UserContext(), userID, onlyActive)
	if err != nil {
		return fail(c, err, "Failed to fetch suppliers")
	}
	return c.JSON(suppliers)
}
