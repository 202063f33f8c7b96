package handler

import (
	"lab-inventory/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// RoleHandler exposes the role and privilege catalogue used by the
// privilege assignment screen.
type RoleHandler struct {
	roleRepo      repository.RoleRepository
	privilegeRepo repository.PrivilegeRepository
}

func NewRoleHandler(roleRepo repository.RoleRepository, privilegeRepo repository.PrivilegeRepository) *RoleHandler {
	return &RoleHandler{roleRepo: roleRepo, privilegeRepo: privilegeRepo}
}

// GetRoles returns all available roles
// GET /api/v1/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	roles, err := h.roleRepo.FindAll(c.UserContext())
	if err != nil {
		return fail(c, err, "Failed to fetch roles")
	}
	return c.JSON(roles)
}

// GetPrivileges returns every privilege code
// GET /api/v1/privileges
func (h *RoleHandler) GetPrivileges(c *fiber.Ctx) error {
	privileges, err := h.privilegeRepo.FindAll(c.UserContext())
	if err != nil {
		return fail(c, err, "Failed to fetch privileges")
	}
	return c.JSON(privileges)
}
