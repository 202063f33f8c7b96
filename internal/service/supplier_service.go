package service

import (
	"context"
	"strings"

	"lab-inventory/internal/model"
	"lab-inventory/internal/repository"
	"lab-inventory/pkg/events"
	"lab-inventory/pkg/validator"

	"github.com/google/uuid"
)

type SupplierService interface {
	CreateSupplier(ctx context.Context, actor Actor, req *SupplierRequest) (*model.Supplier, error)
	UpdateSupplier(ctx context.Context, actor Actor, id uuid.UUID, req *UpdateSupplierRequest) (*model.Supplier, error)
	ListForUser(ctx context.Context, userID uuid.UUID, onlyActive bool) ([]model.Supplier, error)
}

type SupplierRequest struct {
	LaboratoryID  uuid.UUID `json:"laboratoryId"`
	CompanyName   string    `json:"companyName" validate:"required,max=255"`
	ContactPerson string    `json:"contactPerson" validate:"max=150"`
	ContactNumber string    `json:"contactNumber" validate:"max=50"`
	Email         string    `json:"email" validate:"omitempty,email"`
	Address       string    `json:"address"`
}

type UpdateSupplierRequest struct {
	CompanyName   *string `json:"companyName" validate:"omitempty,min=1,max=255"`
	ContactPerson *string `json:"contactPerson" validate:"omitempty,max=150"`
	ContactNumber *string `json:"contactNumber" validate:"omitempty,max=50"`
	Email         *string `json:"email" validate:"omitempty,email"`
	Address       *string `json:"address"`
	Status        *string `json:"status" validate:"omitempty,oneof=Active Inactive"`
	Version       int     `json:"version" validate:"required,min=1"`
}

type supplierService struct {
	supplierRepo repository.SupplierRepository
	userRepo     repository.UserRepository
	notifier     Notifier
}

func NewSupplierService(supplierRepo repository.SupplierRepository, userRepo repository.UserRepository, notifier Notifier) SupplierService {
	return &supplierService{supplierRepo: supplierRepo, userRepo: userRepo, notifier: notifierOrNoop(notifier)}
}

func (s *supplierService) CreateSupplier(ctx context.Context, actor Actor, req *SupplierRequest) (*model.Supplier, error) {
	if req.LaboratoryID == uuid.Nil {
		req.LaboratoryID = actor.LaboratoryID
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	if req.LaboratoryID != actor.LaboratoryID && actor.RoleCode != model.RoleSuperAdmin {
		return nil, ErrForbidden
	}

	supplier := &model.Supplier{
		LaboratoryID:  req.LaboratoryID,
		CompanyName:   strings.TrimSpace(req.CompanyName),
		ContactPerson: req.ContactPerson,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		Address:       req.Address,
		Status:        model.SupplierActive,
		Version:       1,
	}
	supplier.CreatedBy = actor.ID.String()
	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, events.New(events.TypeSupplierUpdate, "supplier_created", supplier.ID.String(), supplier, actor.event()))
	return supplier, nil
}

func (s *supplierService) UpdateSupplier(ctx context.Context, actor Actor, id uuid.UUID, req *UpdateSupplierRequest) (*model.Supplier, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	current, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrNotFound)
	}
	if current.LaboratoryID != actor.LaboratoryID && actor.RoleCode != model.RoleSuperAdmin {
		return nil, ErrForbidden
	}

	changes := map[string]interface{}{"updated_by": actor.ID.String()}
	for col, v := range map[string]*string{
		"company_name":   req.CompanyName,
		"contact_person": req.ContactPerson,
		"contact_number": req.ContactNumber,
		"email":          req.Email,
		"address":        req.Address,
		"status":         req.Status,
	} {
		if v != nil {
			changes[col] = strings.TrimSpace(*v)
		}
	}

	if err := s.supplierRepo.UpdateFields(ctx, id, req.Version, changes); err != nil {
		return nil, mapWriteError(err)
	}
	updated, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrNotFound)
	}
	s.notifier.Notify(ctx, events.New(events.TypeSupplierUpdate, "supplier_updated", updated.ID.String(), updated, actor.event()))
	return updated, nil
}

// ListForUser returns the suppliers of the user's laboratory.
func (s *supplierService) ListForUser(ctx context.Context, userID uuid.UUID, onlyActive bool) ([]model.Supplier, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return s.supplierRepo.FindByLaboratory(ctx, user.LaboratoryID, onlyActive)
}
