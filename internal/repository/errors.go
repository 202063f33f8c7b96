package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrStaleVersion means the row changed since the caller read it.
	ErrStaleVersion = errors.New("record was modified by another request, reload and retry")
	ErrNotFound     = gorm.ErrRecordNotFound
)

// updateVersioned applies changes only when the stored version still equals
// version, and bumps it. table is a pointer to the model type.
func updateVersioned(tx *gorm.DB, table interface{}, id uuid.UUID, version int, changes map[string]interface{}) error {
	updates := make(map[string]interface{}, len(changes)+1)
	for k, v := range changes {
		updates[k] = v
	}
	updates["version"] = gorm.Expr("version + 1")

	res := tx.Model(table).Where("id = ? AND version = ?", id, version).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(table).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrStaleVersion
	}
	return nil
}

// seedMissing inserts every row whose column value is not stored yet.
// Existing rows are left untouched.
func seedMissing[T any](db *gorm.DB, column string, rows []T, key func(T) interface{}) error {
	for _, row := range rows {
		if err := db.Where(column+" = ?", key(row)).FirstOrCreate(&row).Error; err != nil {
			return fmt.Errorf("seed %v: %w", key(row), err)
		}
	}
	return nil
}
