package model

// Role represents user roles in the system
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

const (
	RoleSuperAdmin = "SUPERADMIN"
	RoleAdmin      = "ADMIN"
	RoleUser       = "USER"
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:        RoleSuperAdmin,
		Name:        "Super Administrator",
		Description: "Full system access including privilege management",
	},
	{
		Code:        RoleAdmin,
		Name:        "Administrator",
		Description: "Manages laboratory accounts, materials and suppliers",
	},
	{
		Code:        RoleUser,
		Name:        "Laboratory Personnel",
		Description: "Browses inventory and files transaction forms",
	},
}

// IsAdminRole reports whether code belongs to an administrative account.
func IsAdminRole(code string) bool {
	return code == RoleAdmin || code == RoleSuperAdmin
}

// CanManage reports whether an actor with actorRole may edit or delete an
// account holding targetRole. Plain admins cannot touch other admin accounts.
func CanManage(actorRole, targetRole string) bool {
	switch actorRole {
	case RoleSuperAdmin:
		return true
	case RoleAdmin:
		return !IsAdminRole(targetRole)
	default:
		return false
	}
}
