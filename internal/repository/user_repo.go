package repository

import (
	"context"
	"strings"

	"lab-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserFilter narrows FindAll. Zero values mean "no filter".
type UserFilter struct {
	RoleCode     string
	Status       model.UserStatus
	ExcludeRoles []string
	LaboratoryID uuid.UUID
	Search       string
}

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error)
	FindAll(ctx context.Context, filter UserFilter) ([]model.User, error)
	Create(ctx context.Context, user *model.User) error
	CreateConfirmed(ctx context.Context, user *model.User, confirm func() error) error
	UpdateFields(ctx context.Context, id uuid.UUID, version int, changes map[string]interface{}) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.UserStatus, updatedBy string) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword, tokenVersion string) error
	UpdatePrivileges(ctx context.Context, userID uuid.UUID, privileges []model.Privilege) error
	UpdateSession(ctx context.Context, userID uuid.UUID, tokenVersion string) error
	UpdateLastSeen(ctx context.Context, userID uuid.UUID) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

func (r *userRepo) preload(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Role").Preload("Privileges").Preload("Laboratory")
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.preload(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.preload(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *userRepo) FindAll(ctx context.Context, filter UserFilter) ([]model.User, error) {
	query := r.preload(ctx).Model(&model.User{})

	if filter.RoleCode != "" || len(filter.ExcludeRoles) > 0 {
		query = query.Joins("LEFT JOIN roles ON roles.id = users.role_id")
		if filter.RoleCode != "" {
			query = query.Where("roles.code = ?", filter.RoleCode)
		}
		if len(filter.ExcludeRoles) > 0 {
			query = query.Where("roles.code IS NULL OR roles.code NOT IN ?", filter.ExcludeRoles)
		}
	}
	if filter.Status != "" {
		query = query.Where("users.status = ?", filter.Status)
	}
	if filter.LaboratoryID != uuid.Nil {
		query = query.Where("users.laboratory_id = ?", filter.LaboratoryID)
	}
	if filter.Search != "" {
		like := containsPattern(filter.Search)
		query = query.Where(
			`LOWER(users.first_name || ' ' || users.middle_name || ' ' || users.last_name || ' ' || users.email) LIKE ? ESCAPE '\'`,
			like,
		)
	}

	var users []model.User
	if err := query.Order("users.last_name, users.first_name").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// CreateConfirmed inserts user and commits only if confirm succeeds.
func (r *userRepo) CreateConfirmed(ctx context.Context, user *model.User, confirm func() error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return confirm()
	})
}

func (r *userRepo) UpdateFields(ctx context.Context, id uuid.UUID, version int, changes map[string]interface{}) error {
	return updateVersioned(r.db.WithContext(ctx), &model.User{}, id, version, changes)
}

// UpdateStatus bypasses the version check. Used by OTP verification and soft delete.
func (r *userRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.UserStatus, updatedBy string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     status,
		"updated_by": updatedBy,
		"version":    gorm.Expr("version + 1"),
	}).Error
}

func (r *userRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword, tokenVersion string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"password":      hashedPassword,
		"token_version": tokenVersion,
	}).Error
}

func (r *userRepo) UpdatePrivileges(ctx context.Context, userID uuid.UUID, privileges []model.Privilege) error {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Model(&user).Association("Privileges").Replace(privileges)
}

// UpdateSession rotates the token version and marks the user as seen.
func (r *userRepo) UpdateSession(ctx context.Context, userID uuid.UUID, tokenVersion string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"token_version": tokenVersion,
		"last_seen_at":  gorm.Expr("NOW()"),
	}).Error
}

func (r *userRepo) UpdateLastSeen(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("last_seen_at", gorm.Expr("NOW()")).Error
}
