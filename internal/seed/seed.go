package seed

import (
	"context"
	"errors"
	"fmt"

	"lab-inventory/internal/model"
	"lab-inventory/internal/repository"
	"lab-inventory/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Seeder creates the reference data every installation needs. Each step is
// idempotent, so it is safe to run on every boot.
type Seeder struct {
	Labs       repository.LaboratoryRepository
	Privileges repository.PrivilegeRepository
	Roles      repository.RoleRepository
	Categories repository.CategoryRepository
	Users      repository.UserRepository
}

func New(db *gorm.DB) *Seeder {
	return &Seeder{
		Labs:       repository.NewLaboratoryRepo(db),
		Privileges: repository.NewPrivilegeRepo(db),
		Roles:      repository.NewRoleRepo(db),
		Categories: repository.NewCategoryRepo(db),
		Users:      repository.NewUserRepo(db),
	}
}

// Admin is the bootstrap superadmin account.
type Admin struct {
	Email    string
	Password string
}

func (s *Seeder) Run(ctx context.Context, admin Admin) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"laboratories", s.Labs.SeedDefaults},
		{"privileges", s.Privileges.SeedDefaults},
		{"roles", s.Roles.SeedDefaults},
		{"categories", s.Categories.SeedDefaults},
		{"role privileges", s.grantRolePrivileges},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("seed %s: %w", step.name, err)
		}
	}
	if err := s.ensureAdmin(ctx, admin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}

// grantRolePrivileges fills roles that have no privileges yet. Roles an
// operator already customised are left alone.
func (s *Seeder) grantRolePrivileges(ctx context.Context) error {
	all, err := s.Privileges.FindAll(ctx)
	if err != nil {
		return err
	}
	roles, err := s.Roles.FindAll(ctx)
	if err != nil {
		return err
	}
	for i := range roles {
		role := &roles[i]
		if len(role.Privileges) > 0 {
			continue
		}
		granted := model.PrivilegesForRole(role.Code, all)
		if err := s.Roles.ReplacePrivileges(ctx, role, granted); err != nil {
			return err
		}
		logger.Logger.Info().Str("role", role.Code).Int("privileges", len(granted)).Msg("role privileges assigned")
	}
	return nil
}

func (s *Seeder) ensureAdmin(ctx context.Context, admin Admin) error {
	if admin.Email == "" {
		return nil
	}
	if _, err := s.Users.FindByEmail(ctx, admin.Email); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	role, err := s.Roles.FindByCode(ctx, model.RoleSuperAdmin)
	if err != nil {
		return err
	}
	labs, err := s.Labs.FindAll(ctx)
	if err != nil {
		return err
	}
	if len(labs) == 0 {
		return errors.New("no laboratory to attach the administrator to")
	}

	user := &model.User{
		FirstName:    "System",
		LastName:     "Administrator",
		Email:        admin.Email,
		Designation:  "Administrator",
		LaboratoryID: labs[0].ID,
		RoleID:       &role.ID,
		Status:       model.UserActive,
		Privileges:   role.Privileges,
		TokenVersion: uuid.NewString(),
		Version:      1,
	}
	user.CreatedBy = "system"
	user.UpdatedBy = "system"
	if err := user.SetPassword(admin.Password); err != nil {
		return err
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return err
	}
	logger.Logger.Info().Str("email", admin.Email).Msg("administrator account created")
	return nil
}

// ResetPassword sets a new password for email and ends its current session.
func ResetPassword(ctx context.Context, users repository.UserRepository, email, password string) error {
	user, err := users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find %s: %w", email, err)
	}
	if err := user.SetPassword(password); err != nil {
		return err
	}
	return users.UpdatePassword(ctx, user.ID, user.Password, uuid.NewString())
}
