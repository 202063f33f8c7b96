package middleware

import (
	"errors"
	"strings"

	"lab-inventory/internal/model"
	"lab-inventory/internal/service"
	"lab-inventory/pkg/jwt"
	"lab-inventory/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

const (
	localActor      = "actor"
	localUserID     = "user_id"
	localPrivileges = "user_privileges"
)

// RequireAuth is middleware that validates JWT token and sets user info in context
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := bearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}

		// Checks the signature, then the stored session (status, token version, idle time)
		user, err := auth.Authenticate(c.UserContext(), tokenString)
		if err != nil {
			if unauthorized(err) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
			}
			logger.Error(c.UserContext()).Err(err).Msg("authenticate request")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to authenticate"})
		}

		c.Locals(localActor, service.Actor{
			ID:           user.ID,
			Name:         user.FullName(),
			Email:        user.Email,
			RoleCode:     user.RoleCode(),
			LaboratoryID: user.LaboratoryID,
		})
		c.Locals(localUserID, user.ID.String())
		c.Locals(localPrivileges, user.GetPrivilegeCodes())
		return c.Next()
	}
}

// bearerToken extracts the token from "Bearer <token>"
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", jwt.ErrMissingToken
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", errors.New("invalid authorization format, use: Bearer <token>")
	}
	return parts[1], nil
}

func unauthorized(err error) bool {
	for _, target := range []error{
		jwt.ErrInvalidToken,
		jwt.ErrMissingToken,
		service.ErrUserNotFound,
		service.ErrUserInactive,
		service.ErrSessionReplaced,
		service.ErrSessionTimeout,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// ActorFrom returns the caller stored by RequireAuth.
func ActorFrom(c *fiber.Ctx) (service.Actor, bool) {
	actor, ok := c.Locals(localActor).(service.Actor)
	return actor, ok
}

// RequirePrivilege checks if the authenticated user has the required privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return RequireAnyPrivilege(requiredPrivilege)
}

// RequireAnyPrivilege checks if the user has at least one of the specified privileges
func RequireAnyPrivilege(requiredPrivileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals(localPrivileges).([]string)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No privileges found"})
		}

		for _, userPriv := range privileges {
			for _, reqPriv := range requiredPrivileges {
				if userPriv == reqPriv {
					return c.Next()
				}
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden: requires one of " + strings.Join(requiredPrivileges, ", ") + " privileges",
		})
	}
}

// RequireRole admits only callers holding one of codes.
func RequireRole(codes ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFrom(c)
		if ok {
			for _, code := range codes {
				if actor.RoleCode == code {
					return c.Next()
				}
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden: requires role " + strings.Join(codes, " or "),
		})
	}
}

// SuperAdminOnly is RequireRole for the SUPERADMIN role.
func SuperAdminOnly() fiber.Handler {
	return RequireRole(model.RoleSuperAdmin)
}
