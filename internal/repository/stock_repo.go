package repository

import (
	"context"
	"time"

	"lab-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockMovement describes one quantity change on a material together with
// the transaction record that caused it. Record may be nil for manual
// adjustments. Delta may be zero for calibrations.
type StockMovement struct {
	MaterialID uuid.UUID
	Delta      int
	UserID     uuid.UUID
	Source     string
	Remarks    string
	Record     model.Record
}

// StockResult is the outcome of a committed movement.
type StockResult struct {
	Material model.Material
	Log      model.InventoryLog
}

type StockRepository interface {
	Move(ctx context.Context, m StockMovement) (*StockResult, error)
	ReturnBorrow(ctx context.Context, borrowID uuid.UUID, qty int, userID uuid.UUID, remarks string) (*model.Borrow, *StockResult, error)
}

type stockRepo struct {
	db  *gorm.DB
	now func() time.Time
}

func NewStockRepo(db *gorm.DB) StockRepository {
	return &stockRepo{db: db, now: time.Now}
}

func (r *stockRepo) Move(ctx context.Context, m StockMovement) (*StockResult, error) {
	var result StockResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = r.move(tx, m, false)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// move locks the material row, applies the delta, persists the record and
// appends a log row. It must run inside a transaction. Deleted materials
// only accept stock coming back from a borrow.
func (r *stockRepo) move(tx *gorm.DB, m StockMovement, allowDeleted bool) (StockResult, error) {
	var material model.Material
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&material, "id = ?", m.MaterialID).Error; err != nil {
		return StockResult{}, err
	}
	if material.Status == model.MaterialDeleted && !allowDeleted {
		return StockResult{}, model.ErrMaterialDeleted
	}
	if err := material.Adjust(m.Delta); err != nil {
		return StockResult{}, err
	}

	if m.Delta != 0 {
		err := tx.Model(&model.Material{}).Where("id = ?", material.ID).Updates(map[string]interface{}{
			"quantity_available": material.QuantityAvailable,
			"updated_by":         m.UserID.String(),
			"version":            gorm.Expr("version + 1"),
		}).Error
		if err != nil {
			return StockResult{}, err
		}
		material.Version++
	}

	var sourceID *uuid.UUID
	if m.Record != nil {
		if err := tx.Create(m.Record).Error; err != nil {
			return StockResult{}, err
		}
		id := m.Record.GetID()
		sourceID = &id
	}

	entry := model.InventoryLog{
		UserID:     m.UserID,
		MaterialID: material.ID,
		Date:       r.now(),
		Quantity:   m.Delta,
		Balance:    material.QuantityAvailable,
		Source:     m.Source,
		SourceID:   sourceID,
		Remarks:    m.Remarks,
	}
	entry.CreatedBy = m.UserID.String()
	if err := tx.Create(&entry).Error; err != nil {
		return StockResult{}, err
	}

	return StockResult{Material: material, Log: entry}, nil
}

// ReturnBorrow closes an open borrow and restocks the returned quantity.
func (r *stockRepo) ReturnBorrow(ctx context.Context, borrowID uuid.UUID, qty int, userID uuid.UUID, remarks string) (*model.Borrow, *StockResult, error) {
	var borrow model.Borrow
	var result StockResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&borrow, "id = ?", borrowID).Error; err != nil {
			return err
		}
		if err := borrow.MarkReturned(qty, r.now()); err != nil {
			return err
		}
		if remarks != "" {
			borrow.Remarks = remarks
		}
		borrow.UpdatedBy = userID.String()
		if err := tx.Save(&borrow).Error; err != nil {
			return err
		}

		var err error
		result, err = r.move(tx, StockMovement{
			MaterialID: borrow.MaterialID,
			Delta:      qty,
			UserID:     userID,
			Source:     model.SourceReturn,
			Remarks:    remarks,
		}, true)
		if err != nil {
			return err
		}
		id := borrow.ID
		result.Log.SourceID = &id
		return tx.Model(&result.Log).Update("source_id", id).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &borrow, &result, nil
}
