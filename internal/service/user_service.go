package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lab-inventory/internal/model"
	"lab-inventory/internal/repository"
	"lab-inventory/pkg/validator"

	"github.com/google/uuid"
)

type UserService interface {
	ListUsers(ctx context.Context, actor Actor, query UserQuery) ([]model.UserResponse, error)
	GetUser(ctx context.Context, actor Actor, id uuid.UUID) (*model.UserResponse, error)
	CreateUser(ctx context.Context, actor Actor, req *CreateUserRequest) (*model.UserResponse, error)
	UpdateUser(ctx context.Context, actor Actor, id uuid.UUID, req *UpdateUserRequest) (*model.UserResponse, error)
	DeleteUser(ctx context.Context, actor Actor, id uuid.UUID) error
	UpdateUserPrivileges(ctx context.Context, actor Actor, id uuid.UUID, codes []string) (*model.UserResponse, error)
}

type UserQuery struct {
	Role   string
	Status string
	Search string
}

type CreateUserRequest struct {
	FirstName    string    `json:"firstName" validate:"required"`
	MiddleName   string    `json:"middleName"`
	LastName     string    `json:"lastName" validate:"required"`
	Email        string    `json:"email" validate:"required,email"`
	Designation  string    `json:"designation"`
	LaboratoryID uuid.UUID `json:"laboratoryId" validate:"uuid_required"`
	Password     string    `json:"password" validate:"required,min=6"`
	RoleCode     string    `json:"roleCode" validate:"omitempty,oneof=SUPERADMIN ADMIN USER"`
}

// UpdateUserRequest is a partial patch. Nil fields are left untouched.
type UpdateUserRequest struct {
	FirstName    *string    `json:"firstName" validate:"omitempty,min=1"`
	MiddleName   *string    `json:"middleName"`
	LastName     *string    `json:"lastName" validate:"omitempty,min=1"`
	Email        *string    `json:"email" validate:"omitempty,email"`
	Designation  *string    `json:"designation"`
	LaboratoryID *uuid.UUID `json:"laboratoryId"`
	Status       *string    `json:"status" validate:"omitempty,user_status"`
	RoleCode     *string    `json:"roleCode" validate:"omitempty,oneof=SUPERADMIN ADMIN USER"`
	Password     *string    `json:"password" validate:"omitempty,min=6"`
	Version      int        `json:"version" validate:"required,min=1"`
}

type userService struct {
	userRepo      repository.UserRepository
	privilegeRepo repository.PrivilegeRepository
	roleRepo      repository.RoleRepository
	labRepo       repository.LaboratoryRepository
}

func NewUserService(userRepo repository.UserRepository, privilegeRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository, labRepo repository.LaboratoryRepository) UserService {
	return &userService{
		userRepo:      userRepo,
		privilegeRepo: privilegeRepo,
		roleRepo:      roleRepo,
		labRepo:       labRepo,
	}
}

// hiddenRoles are the account roles actor may not see.
func hiddenRoles(actor Actor) []string {
	if actor.RoleCode == model.RoleSuperAdmin {
		return nil
	}
	return []string{model.RoleAdmin, model.RoleSuperAdmin}
}

func (s *userService) ListUsers(ctx context.Context, actor Actor, query UserQuery) ([]model.UserResponse, error) {
	hidden := hiddenRoles(actor)
	for _, r := range hidden {
		if strings.EqualFold(query.Role, r) {
			return []model.UserResponse{}, nil
		}
	}

	users, err := s.userRepo.FindAll(ctx, repository.UserFilter{
		RoleCode:     strings.ToUpper(query.Role),
		Status:       model.UserStatus(query.Status),
		ExcludeRoles: hidden,
		Search:       query.Search,
	})
	if err != nil {
		return nil, err
	}

	responses := make([]model.UserResponse, len(users))
	for i := range users {
		responses[i] = users[i].ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUser(ctx context.Context, actor Actor, id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	if actor.ID != id && actor.RoleCode != model.RoleSuperAdmin && model.IsAdminRole(user.RoleCode()) {
		return nil, ErrUserNotFound
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) CreateUser(ctx context.Context, actor Actor, req *CreateUserRequest) (*model.UserResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if req.RoleCode == "" {
		req.RoleCode = model.RoleUser
	}
	if !model.CanManage(actor.RoleCode, req.RoleCode) {
		return nil, ErrForbidden
	}

	if existing, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, ErrEmailExists
	}
	if _, err := s.labRepo.FindByID(ctx, req.LaboratoryID); err != nil {
		return nil, notFound(err, fmt.Errorf("%w: laboratory", ErrUnknownReference))
	}
	role, err := s.roleRepo.FindByCode(ctx, req.RoleCode)
	if err != nil {
		return nil, notFound(err, errors.New("role not found"))
	}
	all, err := s.privilegeRepo.FindAll(ctx)
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
		Status:       model.UserActive,
		Privileges:   model.PrivilegesForRole(role.Code, all),
	}
	user.CreatedBy = actor.ID.String()
	user.UpdatedBy = actor.ID.String()
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	user.Role = role

	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) UpdateUser(ctx context.Context, actor Actor, id uuid.UUID, req *UpdateUserRequest) (*model.UserResponse, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	self := actor.ID == id
	if !self && !model.CanManage(actor.RoleCode, user.RoleCode()) {
		return nil, ErrForbidden
	}
	if self && (req.Status != nil || req.RoleCode != nil) {
		return nil, ErrForbidden
	}

	changes := map[string]interface{}{"updated_by": actor.ID.String()}
	if req.FirstName != nil {
		changes["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.MiddleName != nil {
		changes["middle_name"] = strings.TrimSpace(*req.MiddleName)
	}
	if req.LastName != nil {
		changes["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Designation != nil {
		changes["designation"] = *req.Designation
	}
	if req.Email != nil && !strings.EqualFold(*req.Email, user.Email) {
		if existing, err := s.userRepo.FindByEmail(ctx, *req.Email); err == nil && existing != nil {
			return nil, ErrEmailExists
		}
		changes["email"] = strings.TrimSpace(*req.Email)
	}
	if req.LaboratoryID != nil && *req.LaboratoryID != user.LaboratoryID {
		if _, err := s.labRepo.FindByID(ctx, *req.LaboratoryID); err != nil {
			return nil, notFound(err, fmt.Errorf("%w: laboratory", ErrUnknownReference))
		}
		changes["laboratory_id"] = *req.LaboratoryID
	}
	if req.Status != nil {
		changes["status"] = model.UserStatus(*req.Status)
	}
	if req.Password != nil && *req.Password != "" {
		tmp := model.User{}
		if err := tmp.SetPassword(*req.Password); err != nil {
			return nil, errors.New("failed to hash password")
		}
		changes["password"] = tmp.Password
		changes["token_version"] = uuid.New().String()
	}

	var newRole *model.Role
	if req.RoleCode != nil && *req.RoleCode != user.RoleCode() {
		if !model.CanManage(actor.RoleCode, *req.RoleCode) {
			return nil, ErrForbidden
		}
		newRole, err = s.roleRepo.FindByCode(ctx, *req.RoleCode)
		if err != nil {
			return nil, notFound(err, errors.New("role not found"))
		}
		changes["role_id"] = newRole.ID
	}

	if err := s.userRepo.UpdateFields(ctx, id, req.Version, changes); err != nil {
		return nil, mapWriteError(err)
	}

	// Role changes reset per-user privileges to the role's defaults.
	if newRole != nil {
		all, err := s.privilegeRepo.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.userRepo.UpdatePrivileges(ctx, id, model.PrivilegesForRole(newRole.Code, all)); err != nil {
			return nil, err
		}
	}

	updated, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	resp := updated.ToResponse()
	return &resp, nil
}

// DeleteUser is a soft delete: the account keeps its rows and is marked Deleted.
func (s *userService) DeleteUser(ctx context.Context, actor Actor, id uuid.UUID) error {
	if actor.ID == id {
		return ErrForbidden
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return notFound(err, ErrUserNotFound)
	}
	if !model.CanManage(actor.RoleCode, user.RoleCode()) {
		return ErrForbidden
	}
	return s.userRepo.UpdateStatus(ctx, id, model.UserDeleted, actor.ID.String())
}

func (s *userService) UpdateUserPrivileges(ctx context.Context, actor Actor, id uuid.UUID, codes []string) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	if actor.RoleCode != model.RoleSuperAdmin {
		return nil, ErrForbidden
	}

	privileges, err := s.privilegeRepo.FindByCodes(ctx, codes)
	if err != nil {
		return nil, errors.New("failed to find privileges")
	}
	if len(privileges) != len(uniqueStrings(codes)) {
		return nil, fmt.Errorf("%w: privilege", ErrUnknownReference)
	}
	if err := s.userRepo.UpdatePrivileges(ctx, user.ID, privileges); err != nil {
		return nil, err
	}

	updated, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	resp := updated.ToResponse()
	return &resp, nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
