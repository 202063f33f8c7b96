package handler

import (
	"lab-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUser handles admin registration of an already active account
// POST /api/v1/admin-register
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return fail(c, err, "Unauthorized")
	}

	var req service.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	user, err := h.userService.CreateUser(c.UserContext(), caller, &req)
	if err != nil {
		return fail(c, err, "Failed to create user")
	}

	return created(c, "User created successfully", user)
}

// UpdateUserPrivileges handles privilege assignment
// PUT /api/v1/users/:id/privileges
func (h *UserHandler) UpdateUserPrivileges(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return fail(c, err, "Unauthorized")
	}
	userID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}

	var req struct {
		Privileges []string `json:"privileges"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	user, err := h.userService.UpdateUserPrivileges(c.UserContext(), caller, userID, req.Privileges)
	if err != nil {
		return fail(c, err, "Failed to update privileges")
	}

	return success(c, "Privileges updated successfully", user)
}

// GetUsers returns the users visible to the caller
// GET /api/v1/all-users?role=&status=&q=
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return fail(c, err, "Unauthorized")
	}

	users, err := h.userService.ListUsers(c.UserContext(), caller, service.UserQuery{
		Role:   c.Query("role"),
		Status: c.Query("status"),
		Search: c.Query("q"),
	})
	if err != nil {
		return fail(c, err, "Failed to fetch users")
	}
	return c.JSON(users)
}

// GetUser returns a single user by ID
// GET /api/v1/user/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return fail(c, err, "Unauthorized")
	}
	userID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}

	user, err := h.userService.GetUser(c.UserContext(), caller, userID)
	if err != nil {
		return fail(c, err, "Failed to fetch user")
	}

	return c.JSON(user)
}

// UpdateUser applies a partial patch guarded by the user's version
// PUT /api/v1/update-user/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return fail(c, err, "Unauthorized")
	}
	userID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}

	var req service.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if err := applyIfMatch(c, &req.Version); err != nil {
		return fail(c, err, "Failed to update user")
	}

	user, err := h.userService.UpdateUser(c.UserContext(), caller, userID, &req)
	if err != nil {
		return fail(c, err, "Failed to update user")
	}

	return success(c, "User updated successfully", user)
}

// DeleteUser marks the account Deleted
// DELETE /api/v1/user/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return fail(c, err, "Unauthorized")
	}
	userID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}

	if err := h.userService.DeleteUser(c.UserContext(), caller, userID); err != nil {
		return fail(c, err, "Failed to delete user")
	}

	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}
