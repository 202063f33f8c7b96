package handler

import (
	"strconv"

	"lab-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetStockMovement returns stock movement data for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days"))
	if err != nil {
		days = 0
	}
	days = service.MovementPeriod(days)

	data, err := h.service.GetStockMovement(c.UserContext(), days)
	if err != nil {
		return fail(c, err, "Failed to fetch stock movement")
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetDashboardStats returns overview statistics for the caller's laboratory
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return fail(c, err, "Unauthorized")
	}

	stats, err := h.service.GetDashboardStats(c.UserContext(), caller)
	if err != nil {
		return fail(c, err, "Failed to fetch dashboard stats")
	}

	return c.JSON(stats)
}
