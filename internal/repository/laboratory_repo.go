package repository

import (
	"context"

	"lab-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LaboratoryRepository interface {
	FindAll(ctx context.Context) ([]model.Laboratory, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Laboratory, error)
	SeedDefaults(ctx context.Context) error
}

type laboratoryRepo struct {
	db *gorm.DB
}

func NewLaboratoryRepo(db *gorm.DB) LaboratoryRepository {
	return &laboratoryRepo{db}
}

func (r *laboratoryRepo) FindAll(ctx context.Context) ([]model.Laboratory, error) {
	var labs []model.Laboratory
	err := r.db.WithContext(ctx).Order("name").Find(&labs).Error
	return labs, err
}

func (r *laboratoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Laboratory, error) {
	var lab model.Laboratory
	if err := r.db.WithContext(ctx).First(&lab, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lab, nil
}

func (r *laboratoryRepo) SeedDefaults(ctx context.Context) error {
	labs := make([]model.Laboratory, len(model.DefaultLaboratories))
	for i, lab := range model.DefaultLaboratories {
		lab.CreatedBy = "system"
		labs[i] = lab
	}
	return seedMissing(r.db.WithContext(ctx), "name", labs, func(l model.Laboratory) interface{} {
		return l.Name
	})
}
