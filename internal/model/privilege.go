package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "material:update"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivUserView            = "user:view"
	PrivUserCreate          = "user:create"
	PrivUserUpdate          = "user:update"
	PrivUserDelete          = "user:delete"
	PrivUserUpdatePrivilege = "user:update_privilege"
	PrivMaterialView        = "material:view"
	PrivMaterialCreate      = "material:create"
	PrivMaterialUpdate      = "material:update"
	PrivSupplierView        = "supplier:view"
	PrivSupplierManage      = "supplier:manage"
	PrivCategoryManage      = "category:manage"
	PrivTransactionView     = "transaction:view"
	PrivTransactionCreate   = "transaction:create"
	PrivLogView             = "log:view"
	PrivLogCreate           = "log:create"
	PrivDashboardView       = "dashboard:view"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	{Code: PrivUserView, Name: "View User"},
	{Code: PrivUserCreate, Name: "Create User"},
	{Code: PrivUserUpdate, Name: "Update User"},
	{Code: PrivUserDelete, Name: "Delete User"},
	{Code: PrivUserUpdatePrivilege, Name: "Update User Privileges"},
	{Code: PrivMaterialView, Name: "View Material"},
	{Code: PrivMaterialCreate, Name: "Create Material"},
	{Code: PrivMaterialUpdate, Name: "Update Material"},
	{Code: PrivSupplierView, Name: "View Supplier"},
	{Code: PrivSupplierManage, Name: "Manage Supplier"},
	{Code: PrivCategoryManage, Name: "Manage Category"},
	{Code: PrivTransactionView, Name: "View Transaction Forms"},
	{Code: PrivTransactionCreate, Name: "File Transaction Forms"},
	{Code: PrivLogView, Name: "View Inventory Log"},
	{Code: PrivLogCreate, Name: "Adjust Stock"},
	{Code: PrivDashboardView, Name: "View Dashboard"},
}

// rolePrivileges lists the codes granted to each non-superadmin role.
// SUPERADMIN always receives every privilege.
var rolePrivileges = map[string][]string{
	RoleAdmin: {
		PrivUserView, PrivUserCreate, PrivUserUpdate, PrivUserDelete,
		PrivMaterialView, PrivMaterialCreate, PrivMaterialUpdate,
		PrivSupplierView, PrivSupplierManage, PrivCategoryManage,
		PrivTransactionView, PrivTransactionCreate,
		PrivLogView, PrivLogCreate, PrivDashboardView,
	},
	RoleUser: {
		PrivMaterialView, PrivSupplierView,
		PrivTransactionView, PrivTransactionCreate,
		PrivLogView, PrivDashboardView,
	},
}

// PrivilegesForRole filters all down to what role code is entitled to.
func PrivilegesForRole(code string, all []Privilege) []Privilege {
	if code == RoleSuperAdmin {
		return all
	}
	allowed := map[string]bool{}
	for _, c := range rolePrivileges[code] {
		allowed[c] = true
	}
	var out []Privilege
	for _, p := range all {
		if allowed[p.Code] {
			out = append(out, p)
		}
	}
	return out
}
