package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"lab-inventory/internal/model"
	"lab-inventory/internal/repository"
	"lab-inventory/pkg/events"
	"lab-inventory/pkg/jwt"
	"lab-inventory/pkg/logger"
	"lab-inventory/pkg/mailer"
	"lab-inventory/pkg/validator"

	"github.com/google/uuid"
)

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*model.UserResponse, error)
	VerifyOTP(ctx context.Context, email, otp string) error
	ResendOTP(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	ChangePassword(ctx context.Context, actor Actor, userID uuid.UUID, oldPassword, newPassword string) error
	Authenticate(ctx context.Context, tokenString string) (*model.User, error)
	ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*TokenValidationResponse, error)
	Heartbeat(ctx context.Context, userID uuid.UUID) error
}

type RegisterRequest struct {
	FirstName       string    `json:"firstName" validate:"required"`
	MiddleName      string    `json:"middleName"`
	LastName        string    `json:"lastName" validate:"required"`
	Email           string    `json:"email" validate:"required,email"`
	Designation     string    `json:"designation"`
	LaboratoryID    uuid.UUID `json:"laboratoryId" validate:"uuid_required"`
	Password        string    `json:"password" validate:"required,min=6"`
	ConfirmPassword string    `json:"confirmPassword" validate:"required"`
}

type LoginResponse struct {
	Token      string             `json:"token"`
	ExpiresAt  time.Time          `json:"expiresAt"`
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type TokenValidationResponse struct {
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

// OTPPolicy bounds how long a code lives and how often it may be guessed.
type OTPPolicy struct {
	TTL         time.Duration
	MaxAttempts int
}

type AuthDeps struct {
	Users       repository.UserRepository
	Roles       repository.RoleRepository
	Privileges  repository.PrivilegeRepository
	Labs        repository.LaboratoryRepository
	OTPs        repository.OTPRepository
	Mailer      mailer.Mailer
	Tokens      *jwt.Manager
	Notifier    Notifier
	OTP         OTPPolicy
	IdleTimeout time.Duration
}

type authService struct {
	AuthDeps
	now     func() time.Time
	newCode func() (string, error)
}

func NewAuthService(deps AuthDeps) AuthService {
	deps.Notifier = notifierOrNoop(deps.Notifier)
	return &authService{AuthDeps: deps, now: time.Now, newCode: generateOTP}
}

// generateOTP returns a uniformly random 6 digit code.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*model.UserResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	if existing, err := s.Users.FindByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, ErrEmailExists
	}
	if _, err := s.Labs.FindByID(ctx, req.LaboratoryID); err != nil {
		return nil, notFound(err, fmt.Errorf("%w: laboratory", ErrUnknownReference))
	}

	role, err := s.Roles.FindByCode(ctx, model.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("find default role: %w", err)
	}
	all, err := s.Privileges.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		FirstName:    req.FirstName,
		MiddleName:   req.MiddleName,
		LastName:     req.LastName,
		Email:        req.Email,
		Designation:  req.Designation,
		LaboratoryID: req.LaboratoryID,
		RoleID:       &role.ID,
		Status:       model.UserToBeVerified,
		Privileges:   model.PrivilegesForRole(role.Code, all),
	}
	user.CreatedBy = "self-registration"
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}
	// The account persists only once its OTP is stored and mailed.
	err = s.Users.CreateConfirmed(ctx, user, func() error {
		return s.issueOTP(ctx, user)
	})
	if err != nil {
		if derr := s.OTPs.Delete(ctx, user.Email); derr != nil {
			logger.Warn(ctx).Err(derr).Str("email", user.Email).Msg("Failed to discard OTP after aborted registration")
		}
		return nil, err
	}
	user.Role = role

	logger.Info(ctx).Str("user_id", user.ID.String()).Msg("User registered, awaiting OTP verification")
	resp := user.ToResponse()
	return &resp, nil
}

func (s *authService) issueOTP(ctx context.Context, user *model.User) error {
	code, err := s.newCode()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	if err := s.OTPs.Save(ctx, user.Email, code, s.OTP.TTL); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return s.Mailer.SendOTP(ctx, user.Email, user.FullName(), code)
}

func (s *authService) VerifyOTP(ctx context.Context, email, otp string) error {
	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return notFound(err, ErrUserNotFound)
	}
	if user.Status != model.UserToBeVerified {
		return ErrAlreadyVerified
	}

	switch err := s.OTPs.Verify(ctx, email, strings.TrimSpace(otp), s.OTP.MaxAttempts); {
	case errors.Is(err, repository.ErrOTPMismatch):
		return ErrOTPInvalid
	case errors.Is(err, repository.ErrOTPNotFound), errors.Is(err, repository.ErrOTPAttemptsReached):
		return ErrOTPExpired
	case err != nil:
		return err
	}

	if err := s.Users.UpdateStatus(ctx, user.ID, model.UserToBeApproved, user.ID.String()); err != nil {
		return err
	}
	logger.Info(ctx).Str("user_id", user.ID.String()).Msg("Email verified, awaiting approval")
	return nil
}

func (s *authService) ResendOTP(ctx context.Context, email string) error {
	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return notFound(err, ErrUserNotFound)
	}
	if user.Status != model.UserToBeVerified {
		return ErrAlreadyVerified
	}
	return s.issueOTP(ctx, user)
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	user, err := s.Users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	if user.Status != model.UserActive {
		return nil, ErrUserInactive
	}

	// Single session: a new version invalidates every older token.
	tokenVersion := uuid.New().String()
	if err := s.Users.UpdateSession(ctx, user.ID, tokenVersion); err != nil {
		return nil, errors.New("failed to update session")
	}
	now := s.now()
	user.TokenVersion = tokenVersion
	user.LastSeenAt = &now

	token, expiresAt, err := s.Tokens.GenerateToken(jwt.Identity{
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.FullName(),
		RoleCode:     user.RoleCode(),
		LaboratoryID: user.LaboratoryID,
		Privileges:   user.GetPrivilegeCodes(),
		TokenVersion: tokenVersion,
	})
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &LoginResponse{
		Token:      token,
		ExpiresAt:  expiresAt,
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}, nil
}

func (s *authService) ChangePassword(ctx context.Context, actor Actor, userID uuid.UUID, oldPassword, newPassword string) error {
	if actor.ID != userID {
		return ErrForbidden
	}
	req := struct {
		OldPassword string `validate:"required"`
		NewPassword string `validate:"required,min=6"`
	}{oldPassword, newPassword}
	if err := validator.Check(&req); err != nil {
		return err
	}

	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return notFound(err, ErrUserNotFound)
	}
	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}
	if err := user.SetPassword(newPassword); err != nil {
		return errors.New("failed to hash new password")
	}
	return s.Users.UpdatePassword(ctx, user.ID, user.Password, uuid.New().String())
}

// Authenticate resolves a bearer token to an active user holding the
// current session.
func (s *authService) Authenticate(ctx context.Context, tokenString string) (*model.User, error) {
	claims, err := s.Tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.Users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	if user.Status != model.UserActive {
		return nil, ErrUserInactive
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionReplaced
	}
	if s.IdleTimeout > 0 && user.LastSeenAt != nil && s.now().Sub(*user.LastSeenAt) > s.IdleTimeout {
		return nil, ErrSessionTimeout
	}
	return user, nil
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*TokenValidationResponse, error) {
	user, err := s.Authenticate(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	return validationResponse(user), nil
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*TokenValidationResponse, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return validationResponse(user), nil
}

func validationResponse(user *model.User) *TokenValidationResponse {
	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.GetPrivilegeCodes(),
	}
}

func (s *authService) Heartbeat(ctx context.Context, userID uuid.UUID) error {
	if err := s.Users.UpdateLastSeen(ctx, userID); err != nil {
		return err
	}
	s.Notifier.Notify(ctx, events.New(events.TypeUserStatusUpdate, "online", userID.String(), map[string]interface{}{
		"userId":     userID.String(),
		"status":     "online",
		"lastSeenAt": s.now(),
	}, nil))
	return nil
}
