package handler

import (
	"strings"

	"lab-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest is accepted as a body in addition to the query form.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ValidateTokenRequest represents the validate token request body
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// Register creates an account awaiting OTP verification
// POST /api/v1/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	user, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return fail(c, err, "Failed to register")
	}
	return created(c, "Registration successful, check your email for the verification code", user)
}

// VerifyOTP confirms the emailed code
// PUT /api/v1/verify?email=&otp=
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	email, otp := strings.TrimSpace(c.Query("email")), strings.TrimSpace(c.Query("otp"))
	if email == "" || otp == "" {
		return badRequest(c, "Email and otp are required")
	}

	if err := h.authService.VerifyOTP(c.UserContext(), email, otp); err != nil {
		return fail(c, err, "Failed to verify otp")
	}
	return c.JSON(fiber.Map{"message": "Account verified, waiting for administrator approval"})
}

// ResendOTP issues a fresh code
// POST /api/v1/resend-otp?email=
func (h *AuthHandler) ResendOTP(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		return badRequest(c, "Email is required")
	}

	if err := h.authService.ResendOTP(c.UserContext(), email); err != nil {
		return fail(c, err, "Failed to resend otp")
	}
	return c.JSON(fiber.Map{"message": "A new verification code was sent"})
}

// Login handles user authentication
// POST /api/v1/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	response, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fail(c, err, "Failed to login")
	}

	return c.JSON(response)
}

// ChangePassword handles password change for the caller's own account
// PUT /api/v1/:id/change-password?oldPassword=&newPassword=
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return fail(c, err, "Unauthorized")
	}
	userID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}

	req := ChangePasswordRequest{
		OldPassword: c.Query("oldPassword"),
		NewPassword: c.Query("newPassword"),
	}
	if req.OldPassword == "" && req.NewPassword == "" && len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid JSON")
		}
	}

	if req.OldPassword == "" || req.NewPassword == "" {
		return badRequest(c, "oldPassword and newPassword are required")
	}
	if len(req.NewPassword) < 6 {
		return badRequest(c, "New password must be at least 6 characters")
	}

	if err := h.authService.ChangePassword(c.UserContext(), caller, userID, req.OldPassword, req.NewPassword); err != nil {
		return fail(c, err, "Failed to change password")
	}

	return c.JSON(fiber.Map{"message": "Password updated successfully, please log in again"})
}

// Heartbeat keeps an idle session alive
// POST /api/v1/auth/heartbeat
func (h *AuthHandler) Heartbeat(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return fail(c, err, "Unauthorized")
	}

	if err := h.authService.Heartbeat(c.UserContext(), caller.ID); err != nil {
		return fail(c, err, "Failed to update heartbeat")
	}

	return c.JSON(fiber.Map{"message": "Heartbeat received", "status": "online"})
}

// ValidateToken handles JWT token validation
// POST /api/v1/auth/validate-token
func (h *AuthHandler) ValidateToken(c *fiber.Ctx) error {
	var req ValidateTokenRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid JSON")
		}
	}
	if req.Token == "" {
		req.Token, _ = bearer(c)
	}

	if req.Token == "" {
		return badRequest(c, "Token is required")
	}

	response, err := h.authService.ValidateToken(c.UserContext(), req.Token)
	if err != nil {
		// Any failure here means the client session is unusable.
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(response)
}

// Me returns the caller's account, role and privileges
// GET /api/v1/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	caller, err := actor(c)
	if err != nil {
		return fail(c, err, "Unauthorized")
	}

	response, err := h.authService.Me(c.UserContext(), caller.ID)
	if err != nil {
		return fail(c, err, "Failed to fetch profile")
	}
	return c.JSON(response)
}

func bearer(c *fiber.Ctx) (string, bool) {
	parts := strings.Fields(c.Get(fiber.HeaderAuthorization))
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1], true
	}
	return "", false
}
