package service

import (
	"context"
	"errors"

	"lab-inventory/internal/model"
	"lab-inventory/pkg/events"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is not active")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrSessionTimeout     = errors.New("session expired due to inactivity")
	ErrSessionReplaced    = errors.New("session expired (logged in on another device)")
	ErrEmailExists        = errors.New("email already exists")
	ErrPasswordMismatch   = errors.New("password and confirm password do not match")
	ErrAlreadyVerified    = errors.New("account is already verified")
	ErrOTPInvalid         = errors.New("invalid otp")
	ErrOTPExpired         = errors.New("otp expired, request a new one")
	ErrForbidden          = errors.New("you are not allowed to perform this action")
	ErrNotFound           = errors.New("record not found")
	ErrMaterialDeleted    = model.ErrMaterialDeleted
	ErrNotReagent         = errors.New("only reagent materials can be dispensed")
	ErrUnknownReference   = errors.New("referenced record does not exist")
	ErrBadRequest         = errors.New("bad request")
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID           uuid.UUID
	Name         string
	Email        string
	RoleCode     string
	LaboratoryID uuid.UUID
}

func (a Actor) event() *events.Actor {
	return &events.Actor{ID: a.ID.String(), Name: a.Name, Email: a.Email}
}

// Notifier receives events for changes that were committed.
type Notifier interface {
	Notify(ctx context.Context, ev events.Event)
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, events.Event) {}

func notifierOrNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

// notFound turns a missing row into target and passes other errors through.
func notFound(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}

// mapWriteError reports a vanished row as ErrNotFound. Version conflicts
// and quantity errors pass through unchanged.
func mapWriteError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
