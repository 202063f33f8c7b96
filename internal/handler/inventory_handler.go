package handler

import (
	"strconv"
	"strings"

	"lab-inventory/internal/repository"
	"lab-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

// InventoryHandler serves the material catalogue and the inventory log.
type InventoryHandler struct {
	service service.MaterialService
}

func NewInventoryHandler(s service.MaterialService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

// GetMaterials lists materials
// GET /api/v1/material/all?category=&laboratoryId=&q=&includeDeleted=
func (h *InventoryHandler) GetMaterials(c *fiber.Ctx) error {
	labID, ok := queryID(c, "laboratoryId")
	if !ok {
		return badRequest(c, "Invalid laboratory ID")
	}
	includeDeleted, _ := strconv.ParseBool(c.Query("includeDeleted", "false"))

	materials, err := h.service.ListMaterials(c.UserContext(), repository.MaterialFilter{
		Category:       strings.TrimSpace(c.Query("category")),
		LaboratoryID:   labID,
		Search:         strings.TrimSpace(c.Query("q")),
		IncludeDeleted: includeDeleted,
	})
	if err != nil {
		return fail(c, err, "Failed to fetch materials")
	}
	return c.JSON(materials)
}

// GetMaterial returns a single material
// GET /api/v1/material/:id
func (h *InventoryHandler) GetMaterial(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid material ID")
	}

	material, err := h.service.GetMaterial(c.UserContext(), id)
	if err != nil {
		return fail(c, err, "Failed to fetch material")
	}
	return c.JSON(material)
}

// CreateMaterial adds a material to the catalogue
// POST /api/v1/material/create
func (h *InventoryHandler) CreateMaterial(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return fail(c, err, "Unauthorized")
	}

	var req service.MaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	material, err := h.service.CreateMaterial(c.UserContext(), caller, &req)
	if err != nil {
		return fail(c, err, "Failed to create material")
	}

	return created(c, "Material created", material)
}

// UpdateMaterial applies a versioned partial patch
// PUT /api/v1/material/update/:id
func (h *InventoryHandler) UpdateMaterial(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return fail(c, err, "Unauthorized")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid material ID")
	}

	var req service.UpdateMaterialRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if err := applyIfMatch(c, &req.Version); err != nil {
		return fail(c, err, "Failed to update material")
	}

	material, err := h.service.UpdateMaterial(c.UserContext(), caller, id, &req)
	if err != nil {
		return fail(c, err, "Failed to update material")
	}

	return success(c, "Material updated", material)
}

// GetLogs lists inventory log entries, newest first
// GET /api/v1/inventory-log?materialId=&userId=
func (h *InventoryHandler) GetLogs(c *fiber.Ctx) error {
	materialID, ok := queryID(c, "materialId")
	if !ok {
		return badRequest(c, "Invalid material ID")
	}
	userID, ok := queryID(c, "userId")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}

	logs, err := h.service.ListLogs(c.UserContext(), repository.LogFilter{MaterialID: materialID, UserID: userID})
	if err != nil {
		return fail(c, err, "Failed to fetch inventory log")
	}
	return c.JSON(logs)
}

// CreateAdjustment records a manual stock correction
// POST /api/v1/inventory-log
func (h *InventoryHandler) CreateAdjustment(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return fail(c, err, "Unauthorized")
	}

	var req service.AdjustmentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	entry, err := h.service.AdjustStock(c.UserContext(), caller, &req)
	if err != nil {
		return fail(c, err, "Failed to adjust stock")
	}

	return created(c, "Stock adjusted", entry)
}
