package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"lab-inventory/internal/middleware"
	"lab-inventory/internal/model"
	"lab-inventory/internal/repository"
	"lab-inventory/internal/service"
	"lab-inventory/pkg/jwt"
	"lab-inventory/pkg/logger"
	"lab-inventory/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var statusByError = []struct {
	err    error
	status int
}{
	{service.ErrBadRequest, fiber.StatusBadRequest},
	{service.ErrPasswordMismatch, fiber.StatusBadRequest},
	{service.ErrOTPInvalid, fiber.StatusBadRequest},
	{service.ErrWrongPassword, fiber.StatusBadRequest},
	{service.ErrAlreadyVerified, fiber.StatusBadRequest},
	{service.ErrUnknownReference, fiber.StatusBadRequest},
	{model.ErrNonPositiveQuantity, fiber.StatusBadRequest},

	{service.ErrInvalidCredentials, fiber.StatusUnauthorized},
	{service.ErrSessionTimeout, fiber.StatusUnauthorized},
	{service.ErrSessionReplaced, fiber.StatusUnauthorized},
	{jwt.ErrInvalidToken, fiber.StatusUnauthorized},
	{jwt.ErrMissingToken, fiber.StatusUnauthorized},

	{service.ErrForbidden, fiber.StatusForbidden},
	{service.ErrUserInactive, fiber.StatusForbidden},

	{service.ErrNotFound, fiber.StatusNotFound},
	{service.ErrUserNotFound, fiber.StatusNotFound},
	{gorm.ErrRecordNotFound, fiber.StatusNotFound},

	{repository.ErrStaleVersion, fiber.StatusConflict},
	{service.ErrEmailExists, fiber.StatusConflict},
	{model.ErrAlreadyReturned, fiber.StatusConflict},

	{service.ErrOTPExpired, fiber.StatusGone},

	{model.ErrInsufficientQuantity, fiber.StatusUnprocessableEntity},
	{service.ErrNotReagent, fiber.StatusUnprocessableEntity},
	{service.ErrMaterialDeleted, fiber.StatusUnprocessableEntity},
}

// statusFor classifies a service error into an HTTP status.
func statusFor(err error) int {
	var verr *validator.Error
	if errors.As(err, &verr) {
		return fiber.StatusBadRequest
	}
	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return fiber.StatusInternalServerError
}

// fail writes err as {"error": ...}. Unclassified errors are logged and
// hidden behind fallback.
func fail(c *fiber.Ctx, err error, fallback string) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		logger.Error(c.UserContext()).Err(err).Str("path", c.Path()).Msg(fallback)
		return c.Status(status).JSON(fiber.Map{"error": fallback})
	}

	body := fiber.Map{"error": err.Error()}
	var verr *validator.Error
	if errors.As(err, &verr) {
		body["fields"] = verr.Fields
	}
	return c.Status(status).JSON(body)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func created(c *fiber.Ctx, msg string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": msg, "data": data})
}

func success(c *fiber.Ctx, msg string, data interface{}) error {
	return c.JSON(fiber.Map{"message": msg, "data": data})
}

// actor returns the authenticated caller. Routes without RequireAuth get 401.
func actor(c *fiber.Ctx) (service.Actor, error) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		return service.Actor{}, jwt.ErrMissingToken
	}
	return a, nil
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

// queryID parses an optional uuid query parameter. Empty yields uuid.Nil.
func queryID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(raw)
	return id, err == nil
}

// applyIfMatch lets an If-Match header carry the optimistic version when
// the body does not. A header that disagrees with the body is a conflict.
func applyIfMatch(c *fiber.Ctx, version *int) error {
	raw := strings.Trim(strings.TrimPrefix(c.Get(fiber.HeaderIfMatch), "W/"), `" `)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: invalid If-Match header", service.ErrBadRequest)
	}
	if *version == 0 {
		*version = v
	}
	if *version != v {
		return repository.ErrStaleVersion
	}
	return nil
}
