package repository

import (
	"context"

	"lab-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupplierRepository interface {
	Create(ctx context.Context, supplier *model.Supplier) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	FindByLaboratory(ctx context.Context, laboratoryID uuid.UUID, onlyActive bool) ([]model.Supplier, error)
	UpdateFields(ctx context.Context, id uuid.UUID, version int, changes map[string]interface{}) error
}

type supplierRepo struct {
	db *gorm.DB
}

func NewSupplierRepo(db *gorm.DB) SupplierRepository {
	return &supplierRepo{db}
}

func (r *supplierRepo) Create(ctx context.Context, supplier *model.Supplier) error {
	return r.db.WithContext(ctx).Create(supplier).Error
}

func (r *supplierRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	var supplier model.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *supplierRepo) FindByLaboratory(ctx context.Context, laboratoryID uuid.UUID, onlyActive bool) ([]model.Supplier, error) {
	query := r.db.WithContext(ctx).Where("laboratory_id = ?", laboratoryID)
	if onlyActive {
		query = query.Where("status = ?", model.SupplierActive)
	}
	var suppliers []model.Supplier
	err := query.Order("company_name").Find(&suppliers).Error
	return suppliers, err
}

func (r *supplierRepo) UpdateFields(ctx context.Context, id uuid.UUID, version int, changes map[string]interface{}) error {
	return updateVersioned(r.db.WithContext(ctx), &model.Supplier{}, id, version, changes)
}
