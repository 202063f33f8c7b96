package repository

import (
	"context"

	"lab-inventory/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecordRepository reads the transaction forms and stores incidents, which
// never move stock.
type RecordRepository interface {
	FindBorrows(ctx context.Context, userID uuid.UUID) ([]model.Borrow, error)
	FindBorrowByID(ctx context.Context, id uuid.UUID) (*model.Borrow, error)
	FindDispositions(ctx context.Context, userID uuid.UUID) ([]model.Disposition, error)
	FindCalibrations(ctx context.Context, materialID uuid.UUID) ([]model.Calibration, error)
	FindDispenses(ctx context.Context, userID uuid.UUID) ([]model.ReagentDispense, error)
	FindIncidents(ctx context.Context, userID uuid.UUID) ([]model.IncidentForm, error)
	CreateIncident(ctx context.Context, incident *model.IncidentForm) error
}

type recordRepo struct {
	db *gorm.DB
}

func NewRecordRepo(db *gorm.DB) RecordRepository {
	return &recordRepo{db}
}

func (r *recordRepo) scoped(ctx context.Context, column string, id uuid.UUID) *gorm.DB {
	q := r.db.WithContext(ctx)
	if id != uuid.Nil {
		q = q.Where(column+" = ?", id)
	}
	return q
}

func (r *recordRepo) FindBorrows(ctx context.Context, userID uuid.UUID) ([]model.Borrow, error) {
	var borrows []model.Borrow
	err := r.scoped(ctx, "user_id", userID).Preload("Material").Preload("User").
		Order("date_borrowed DESC").Find(&borrows).Error
	return borrows, err
}

func (r *recordRepo) FindBorrowByID(ctx context.Context, id uuid.UUID) (*model.Borrow, error) {
	var borrow model.Borrow
	if err := r.db.WithContext(ctx).Preload("Material").First(&borrow, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &borrow, nil
}

func (r *recordRepo) FindDispositions(ctx context.Context, userID uuid.UUID) ([]model.Disposition, error) {
	var records []model.Disposition
	err := r.scoped(ctx, "user_id", userID).Preload("Material").
		Order("date_disposed DESC").Find(&records).Error
	return records, err
}

func (r *recordRepo) FindCalibrations(ctx context.Context, materialID uuid.UUID) ([]model.Calibration, error) {
	var records []model.Calibration
	err := r.scoped(ctx, "material_id", materialID).Preload("Material").
		Order("calibration_date DESC").Find(&records).Error
	return records, err
}

func (r *recordRepo) FindDispenses(ctx context.Context, userID uuid.UUID) ([]model.ReagentDispense, error) {
	var records []model.ReagentDispense
	err := r.scoped(ctx, "user_id", userID).Preload("Material").
		Order("date DESC").Find(&records).Error
	return records, err
}

func (r *recordRepo) FindIncidents(ctx context.Context, userID uuid.UUID) ([]model.IncidentForm, error) {
	var records []model.IncidentForm
	err := r.scoped(ctx, "user_id", userID).Order("date DESC").Find(&records).Error
	return records, err
}

func (r *recordRepo) CreateIncident(ctx context.Context, incident *model.IncidentForm) error {
	return r.db.WithContext(ctx).Create(incident).Error
}
