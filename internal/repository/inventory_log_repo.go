package repository

import (
	"context"
	"time"

	"lab-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LogFilter struct {
	MaterialID uuid.UUID
	UserID     uuid.UUID
}

// StockMovementData is one day of aggregated inventory movement.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// DashboardStats is the inventory overview.
type DashboardStats struct {
	TotalMaterials int64           `json:"totalMaterials"`
	LowStockCount  int64           `json:"lowStockCount"`
	ExpiringCount  int64           `json:"expiringCount"`
	TotalValuation decimal.Decimal `json:"totalValuation"`
}

type InventoryLogRepository interface {
	FindAll(ctx context.Context, filter LogFilter) ([]model.InventoryLog, error)
	GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats(ctx context.Context, laboratoryID uuid.UUID, expiringBefore time.Time) (*DashboardStats, error)
}

type inventoryLogRepo struct {
	db *gorm.DB
}

func NewInventoryLogRepo(db *gorm.DB) InventoryLogRepository {
	return &inventoryLogRepo{db}
}

func (r *inventoryLogRepo) FindAll(ctx context.Context, filter LogFilter) ([]model.InventoryLog, error) {
	query := r.db.WithContext(ctx).Preload("Material").Preload("User")
	if filter.MaterialID != uuid.Nil {
		query = query.Where("material_id = ?", filter.MaterialID)
	}
	if filter.UserID != uuid.Nil {
		query = query.Where("user_id = ?", filter.UserID)
	}
	var logs []model.InventoryLog
	err := query.Order("date DESC").Find(&logs).Error
	return logs, err
}

// GetStockMovement sums positive deltas as inbound and negative deltas as
// outbound, per day.
func (r *inventoryLogRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error) {
	rows, err := r.db.WithContext(ctx).Model(&model.InventoryLog{}).
		Select(`
			TO_CHAR(DATE(date), 'YYYY-MM-DD') as day,
			COALESCE(SUM(CASE WHEN quantity > 0 THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN quantity < 0 THEN -quantity ELSE 0 END), 0) as outbound
		`).
		Where("date BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(date)").
		Order("day ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []StockMovementData{}
	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}
	return results, rows.Err()
}

// GetDashboardStats ignores deleted materials. A nil laboratoryID covers
// every laboratory.
func (r *inventoryLogRepo) GetDashboardStats(ctx context.Context, laboratoryID uuid.UUID, expiringBefore time.Time) (*DashboardStats, error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&model.Material{}).Where("status <> ?", model.MaterialDeleted)
		if laboratoryID != uuid.Nil {
			q = q.Where("laboratory_id = ?", laboratoryID)
		}
		return q
	}

	var stats DashboardStats
	if err := base().Count(&stats.TotalMaterials).Error; err != nil {
		return nil, err
	}
	if err := base().Where("quantity_available <= reorder_threshold").Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}
	if err := base().Where("expiry_date IS NOT NULL AND expiry_date <= ?", expiringBefore).Count(&stats.ExpiringCount).Error; err != nil {
		return nil, err
	}
	var valuation string
	if err := base().Select("COALESCE(SUM(cost * quantity_available), 0)::text").Scan(&valuation).Error; err != nil {
		return nil, err
	}
	v, err := decimal.NewFromString(valuation)
	if err != nil {
		return nil, err
	}
	stats.TotalValuation = v
	return &stats, nil
}
