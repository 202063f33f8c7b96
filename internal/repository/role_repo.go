package repository

import (
	"context"

	"lab-inventory/internal/model"

	"gorm.io/gorm"
)

type RoleRepository interface {
	FindAll(ctx context.Context) ([]model.Role, error)
	FindByID(ctx context.Context, id uint) (*model.Role, error)
	FindByCode(ctx context.Context, code string) (*model.Role, error)
	ReplacePrivileges(ctx context.Context, role *model.Role, privileges []model.Privilege) error
	SeedDefaults(ctx context.Context) error
}

type roleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) FindAll(ctx context.Context) ([]model.Role, error) {
	var roles []model.Role
	err := r.db.WithContext(ctx).Preload("Privileges").Find(&roles).Error
	return roles, err
}

func (r *roleRepo) FindByID(ctx context.Context, id uint) (*model.Role, error) {
	var role model.Role
	if err := r.db.WithContext(ctx).Preload("Privileges").First(&role, id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepo) FindByCode(ctx context.Context, code string) (*model.Role, error) {
	var role model.Role
	if err := r.db.WithContext(ctx).Preload("Privileges").Where("code = ?", code).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepo) ReplacePrivileges(ctx context.Context, role *model.Role, privileges []model.Privilege) error {
	return r.db.WithContext(ctx).Model(role).Association("Privileges").Replace(privileges)
}

func (r *roleRepo) SeedDefaults(ctx context.Context) error {
	return seedMissing(r.db.WithContext(ctx), "code", model.DefaultRoles, func(role model.Role) interface{} {
		return role.Code
	})
}
