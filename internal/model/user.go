package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserStatus string

const (
	UserActive       UserStatus = "Active"
	UserInactive     UserStatus = "Inactive"
	UserToBeApproved UserStatus = "To Be Approved"
	UserToBeVerified UserStatus = "To Be OTP-Verified"
	UserDeleted      UserStatus = "Deleted"
)

// User represents a laboratory account
type User struct {
	BaseModel
	FirstName    string      `gorm:"type:varchar(100);not null" json:"firstName"`
	MiddleName   string      `gorm:"type:varchar(100)" json:"middleName"`
	LastName     string      `gorm:"type:varchar(100);not null" json:"lastName"`
	Email        string      `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password     string      `gorm:"type:varchar(255);not null" json:"-"`
	Designation  string      `gorm:"type:varchar(100)" json:"designation"`
	LaboratoryID uuid.UUID   `gorm:"type:uuid;index" json:"laboratoryId"`
	Laboratory   *Laboratory `gorm:"foreignKey:LaboratoryID" json:"laboratory,omitempty"`
	RoleID       *uint       `gorm:"index" json:"roleId"`
	Role         *Role       `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Status       UserStatus  `gorm:"type:varchar(32);not null;index" json:"status"`
	Privileges   []Privilege `gorm:"many2many:user_privileges;" json:"privileges,omitempty"`
	TokenVersion string      `gorm:"type:varchar(255);default:''" json:"-"` // For single session enforcement
	LastSeenAt   *time.Time  `json:"lastSeenAt,omitempty"`
	Version      int         `gorm:"not null;default:1" json:"version"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// HasPrivilege checks if the user has a specific privilege
func (u *User) HasPrivilege(code string) bool {
	for _, p := range u.Privileges {
		if p.Code == code {
			return true
		}
	}
	return false
}

// GetPrivilegeCodes returns a slice of all privilege codes for this user
func (u *User) GetPrivilegeCodes() []string {
	codes := make([]string, len(u.Privileges))
	for i, p := range u.Privileges {
		codes[i] = p.Code
	}
	return codes
}

func (u *User) RoleCode() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Code
}

// FullName joins the non-empty name parts.
func (u *User) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{u.FirstName, u.MiddleName, u.LastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID           uuid.UUID   `json:"id"`
	FirstName    string      `json:"firstName"`
	MiddleName   string      `json:"middleName"`
	LastName     string      `json:"lastName"`
	Email        string      `json:"email"`
	Designation  string      `json:"designation"`
	LaboratoryID uuid.UUID   `json:"laboratoryId"`
	Laboratory   *Laboratory `json:"laboratory,omitempty"`
	RoleID       *uint       `json:"roleId,omitempty"`
	Role         *Role       `json:"role,omitempty"`
	Status       UserStatus  `json:"status"`
	LastSeenAt   *time.Time  `json:"lastSeenAt,omitempty"`
	Privileges   []string    `json:"privileges"`
	Version      int         `json:"version"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:           u.ID,
		FirstName:    u.FirstName,
		MiddleName:   u.MiddleName,
		LastName:     u.LastName,
		Email:        u.Email,
		Designation:  u.Designation,
		LaboratoryID: u.LaboratoryID,
		Laboratory:   u.Laboratory,
		RoleID:       u.RoleID,
		Role:         u.Role,
		Status:       u.Status,
		LastSeenAt:   u.LastSeenAt,
		Privileges:   u.GetPrivilegeCodes(),
		Version:      u.Version,
	}
}
