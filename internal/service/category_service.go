package service

import (
	"context"
	"strings"

	"lab-inventory/internal/model"
	"lab-inventory/internal/repository"
	"lab-inventory/pkg/validator"
)

// CategoryService serves the reference data forms are filled from.
type CategoryService interface {
	CreateCategory(ctx context.Context, actor Actor, req *CategoryRequest) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListLaboratories(ctx context.Context) ([]model.Laboratory, error)
}

type CategoryRequest struct {
	ShortName    string `json:"shortName" validate:"required,category_name"`
	Subcategory1 string `json:"subcategory1" validate:"max=100"`
	Subcategory2 string `json:"subcategory2" validate:"max=100"`
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	labRepo      repository.LaboratoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository, labRepo repository.LaboratoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo, labRepo: labRepo}
}

func (s *categoryService) CreateCategory(ctx context.Context, actor Actor, req *CategoryRequest) (*model.Category, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}
	category := &model.Category{
		ShortName:    req.ShortName,
		Subcategory1: strings.TrimSpace(req.Subcategory1),
		Subcategory2: strings.TrimSpace(req.Subcategory2),
	}
	category.CreatedBy = actor.ID.String()
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.categoryRepo.FindAll(ctx)
}

func (s *categoryService) ListLaboratories(ctx context.Context) ([]model.Laboratory, error) {
	return s.labRepo.FindAll(ctx)
}
