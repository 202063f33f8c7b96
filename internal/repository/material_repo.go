package repository

import (
	"context"
	"time"

	"lab-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaterialFilter narrows FindAll. Category matches the category short name.
type MaterialFilter struct {
	Category       string
	LaboratoryID   uuid.UUID
	Search         string
	IncludeDeleted bool
}

// Audit identifies who performed a write.
type Audit struct {
	UserID  uuid.UUID
	Remarks string
}

type MaterialRepository interface {
	Create(ctx context.Context, material *model.Material, audit Audit) error
	FindAll(ctx context.Context, filter MaterialFilter) ([]model.Material, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Material, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Material, error)
	Update(ctx context.Context, id uuid.UUID, version int, changes map[string]interface{}, audit Audit) (*model.Material, error)
}

type materialRepo struct {
	db *gorm.DB
}

func NewMaterialRepo(db *gorm.DB) MaterialRepository {
	return &materialRepo{db}
}

// Create stores the material and its opening log row in one transaction.
func (r *materialRepo) Create(ctx context.Context, material *model.Material, audit Audit) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(material).Error; err != nil {
			return err
		}
		id := material.ID
		entry := model.InventoryLog{
			UserID:     audit.UserID,
			MaterialID: material.ID,
			Date:       time.Now(),
			Quantity:   material.QuantityAvailable,
			Balance:    material.QuantityAvailable,
			Source:     model.SourceCreate,
			SourceID:   &id,
			Remarks:    audit.Remarks,
		}
		entry.CreatedBy = audit.UserID.String()
		return tx.Create(&entry).Error
	})
}

func (r *materialRepo) FindAll(ctx context.Context, filter MaterialFilter) ([]model.Material, error) {
	query := r.db.WithContext(ctx).Model(&model.Material{}).
		Preload("Category").Preload("Supplier").Preload("Laboratory")

	if filter.Category != "" {
		query = query.Joins("JOIN categories ON categories.id = materials.category_id").
			Where("categories.short_name = ?", filter.Category)
	}
	if filter.LaboratoryID != uuid.Nil {
		query = query.Where("materials.laboratory_id = ?", filter.LaboratoryID)
	}
	if !filter.IncludeDeleted {
		query = query.Where("materials.status <> ?", model.MaterialDeleted)
	}
	if filter.Search != "" {
		like := containsPattern(filter.Search)
		query = query.Where(
			`LOWER(materials.item_name) LIKE ? ESCAPE '\' OR LOWER(materials.item_code) LIKE ? ESCAPE '\' OR LOWER(materials.description) LIKE ? ESCAPE '\'`,
			like, like, like,
		)
	}

	var materials []model.Material
	err := query.Order("materials.item_name").Find(&materials).Error
	return materials, err
}

func (r *materialRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Material, error) {
	var material model.Material
	err := r.db.WithContext(ctx).
		Preload("Category").Preload("Supplier").Preload("Laboratory").
		First(&material, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *materialRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Material, error) {
	var materials []model.Material
	if len(ids) == 0 {
		return materials, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&materials).Error
	return materials, err
}

// Update applies a versioned edit under a row lock. A change to
// quantity_available is recorded as an Edit log row with the signed delta.
func (r *materialRepo) Update(ctx context.Context, id uuid.UUID, version int, changes map[string]interface{}, audit Audit) (*model.Material, error) {
	var updated model.Material
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.Material
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&current, "id = ?", id).Error; err != nil {
			return err
		}
		if current.Version != version {
			return ErrStaleVersion
		}

		delta := 0
		if q, ok := changes["quantity_available"]; ok {
			next, _ := q.(int)
			if next < 0 {
				return model.ErrInsufficientQuantity
			}
			delta = next - current.QuantityAvailable
		}

		if err := updateVersioned(tx, &model.Material{}, id, version, changes); err != nil {
			return err
		}

		if delta != 0 {
			entry := model.InventoryLog{
				UserID:     audit.UserID,
				MaterialID: id,
				Date:       time.Now(),
				Quantity:   delta,
				Balance:    current.QuantityAvailable + delta,
				Source:     model.SourceEdit,
				SourceID:   &id,
				Remarks:    audit.Remarks,
			}
			entry.CreatedBy = audit.UserID.String()
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}

		return tx.Preload("Category").Preload("Supplier").First(&updated, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
