package labclient

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// LoginPath is where a verified registration continues.
const LoginPath = "/login"

var ErrPasswordMismatch = errors.New("password and confirm password do not match")

// RegisterForm is the self registration form.
type RegisterForm struct {
	FirstName       string    `json:"firstName" validate:"required"`
	MiddleName      string    `json:"middleName"`
	LastName        string    `json:"lastName" validate:"required"`
	Email           string    `json:"email" validate:"required,email"`
	Designation     string    `json:"designation"`
	LaboratoryID    uuid.UUID `json:"laboratoryId" validate:"uuid_required"`
	Password        string    `json:"password" validate:"required,min=6"`
	ConfirmPassword string    `json:"confirmPassword" validate:"required"`
}

// Register submits the form. Mismatched passwords are rejected before any
// request is made.
func (c *Client) Register(ctx context.Context, form RegisterForm) (*User, error) {
	if form.Password != form.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	req, err := c.request(ctx, false)
	if err != nil {
		return nil, err
	}
	var out envelope[User]
	if err := send(req.SetBody(form), http.MethodPost, "/register", &out); err != nil {
		return nil, err
	}
	return checked(&out.Data)
}

// VerifyOTP confirms the emailed code. It returns LoginPath only when the
// server answered 2xx; on any failure the returned path is empty.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	req, err := c.request(ctx, false)
	if err != nil {
		return "", err
	}
	req.SetQueryParams(map[string]string{"email": strings.TrimSpace(email), "otp": strings.TrimSpace(otp)})
	if err := send(req, http.MethodPut, "/verify", nil); err != nil {
		return "", err
	}
	return LoginPath, nil
}

func (c *Client) ResendOTP(ctx context.Context, email string) error {
	req, err := c.request(ctx, false)
	if err != nil {
		return err
	}
	return send(req.SetQueryParam("email", strings.TrimSpace(email)), http.MethodPost, "/resend-otp", nil)
}

// Login authenticates and stores the new session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	req, err := c.request(ctx, false)
	if err != nil {
		return nil, err
	}
	var out LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := send(req.SetBody(body), http.MethodPost, "/login", &out); err != nil {
		return nil, err
	}
	if _, err := checked(&out); err != nil {
		return nil, err
	}

	if out.User.Role == nil {
		out.User.Role = out.Role
	}
	s := &Session{Token: out.Token, ExpiresAt: out.ExpiresAt, User: out.User, Privileges: out.Privileges}
	if err := c.sessions.Save(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Logout forgets the local session. Tokens are invalidated server side by
// the next login.
func (c *Client) Logout() error {
	return c.sessions.Clear()
}

// Me returns the profile of the session user.
func (c *Client) Me(ctx context.Context) (*Profile, error) {
	return getOne[Profile](ctx, c, "/me")
}

func (c *Client) Heartbeat(ctx context.Context) error {
	req, err := c.request(ctx, true)
	if err != nil {
		return err
	}
	return send(req, http.MethodPost, "/auth/heartbeat", nil)
}

// ChangePassword changes the session user's password. The server ends the
// session, so it is cleared locally as well.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	s, err := c.sessions.Current()
	if err != nil {
		return err
	}
	req, err := c.request(ctx, true)
	if err != nil {
		return err
	}
	req.SetQueryParams(map[string]string{"oldPassword": oldPassword, "newPassword": newPassword})
	if err := send(req, http.MethodPut, "/"+s.User.ID.String()+"/change-password", nil); err != nil {
		return err
	}
	return c.sessions.Clear()
}

func (c *Client) validateToken(ctx context.Context, token string) (*Profile, error) {
	req, err := c.request(ctx, false)
	if err != nil {
		return nil, err
	}
	var out Profile
	if err := send(req.SetBody(map[string]string{"token": token}), http.MethodPost, "/auth/validate-token", &out); err != nil {
		return nil, err
	}
	return checked(&out)
}
