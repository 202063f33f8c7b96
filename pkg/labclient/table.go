package labclient

import "strings"

const (
	StatusActive  = "Active"
	StatusDeleted = "Deleted"

	RoleSuperAdmin = "SUPERADMIN"
	RoleAdmin      = "ADMIN"
	RoleUser       = "USER"
)

// Row actions offered by the user table.
const (
	ActionEdit   = "Edit"
	ActionDelete = "Delete"
)

// Search keeps the items containing query, case-insensitively. An empty
// query keeps everything.
func Search(items []string, query string) []string {
	return filter(items, query, func(s string) string { return s })
}

// SearchMaterials matches query against item name, code and description.
func SearchMaterials(materials []Material, query string) []Material {
	return filter(materials, query, func(m Material) string {
		return joinNonEmpty(m.ItemName, m.ItemCode, m.Description)
	})
}

// SearchUsers matches query against the name parts and the email.
func SearchUsers(users []User, query string) []User {
	return filter(users, query, func(u User) string {
		return joinNonEmpty(u.FirstName, u.MiddleName, u.LastName, u.Email)
	})
}

// ByCategory keeps the materials of one category table.
func ByCategory(materials []Material, category string) []Material {
	var out []Material
	for _, m := range materials {
		if strings.EqualFold(m.CategoryName(), category) {
			out = append(out, m)
		}
	}
	return out
}

func filter[T any](items []T, query string, text func(T) string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if q == "" || strings.Contains(strings.ToLower(text(item)), q) {
			out = append(out, item)
		}
	}
	return out
}

// RowActions lists the actions the user table offers for u. Deleted
// accounts get none.
func RowActions(u User) []string {
	if u.Status == StatusDeleted {
		return nil
	}
	return []string{ActionEdit, ActionDelete}
}
