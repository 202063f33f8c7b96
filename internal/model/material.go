package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientQuantity = errors.New("requested quantity exceeds quantity available")
	ErrNonPositiveQuantity  = errors.New("quantity must be greater than zero")
	ErrMaterialDeleted      = errors.New("material is deleted")
)

type MaterialStatus string

const (
	MaterialActive  MaterialStatus = "Active"
	MaterialDeleted MaterialStatus = "Deleted"
)

// Material is an inventory item tracked per laboratory.
type Material struct {
	BaseModel
	LaboratoryID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"laboratoryId"`
	Laboratory        *Laboratory     `gorm:"foreignKey:LaboratoryID" json:"laboratory,omitempty"`
	CategoryID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"categoryId"`
	Category          *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	SupplierID        *uuid.UUID      `gorm:"type:uuid;index" json:"supplierId,omitempty"`
	Supplier          *Supplier       `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	ItemCode          string          `gorm:"type:varchar(64);index" json:"itemCode"`
	ItemName          string          `gorm:"type:varchar(255);not null;index" json:"itemName"`
	Description       string          `gorm:"type:text" json:"description"`
	Unit              string          `gorm:"type:varchar(32)" json:"unit"`
	Location          string          `gorm:"type:varchar(255)" json:"location"`
	ExpiryDate        *time.Time      `gorm:"type:date;index" json:"expiryDate,omitempty"`
	Cost              decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"cost"`
	QuantityAvailable int             `gorm:"not null;default:0;check:quantity_available >= 0" json:"quantityAvailable"`
	ReorderThreshold  int             `gorm:"not null;default:0" json:"reorderThreshold"`
	MaxThreshold      int             `gorm:"not null;default:0" json:"maxThreshold"`
	// Reagent container tracking
	LotNo             string         `gorm:"type:varchar(64)" json:"lotNo,omitempty"`
	QtyPerContainer   int            `gorm:"default:0" json:"qtyPerContainer,omitempty"`
	TotalNoContainers int            `gorm:"default:0" json:"totalNoContainers,omitempty"`
	Notes             string         `gorm:"type:text" json:"notes,omitempty"`
	Status            MaterialStatus `gorm:"type:varchar(16);not null;default:'Active';index" json:"status"`
	Version           int            `gorm:"not null;default:1" json:"version"`
}

// Adjust applies a signed quantity delta. The result can never go below zero.
func (m *Material) Adjust(delta int) error {
	next := m.QuantityAvailable + delta
	if next < 0 {
		return fmt.Errorf("%w: available %d, requested %d", ErrInsufficientQuantity, m.QuantityAvailable, -delta)
	}
	m.QuantityAvailable = next
	return nil
}

// Withdraw removes qty units for a borrow, disposal or dispense.
func (m *Material) Withdraw(qty int) error {
	if qty <= 0 {
		return ErrNonPositiveQuantity
	}
	return m.Adjust(-qty)
}

// IsLowStock reports whether the material reached its reorder threshold.
func (m *Material) IsLowStock() bool {
	return m.QuantityAvailable <= m.ReorderThreshold
}

// Valuation is cost multiplied by the quantity on hand.
func (m *Material) Valuation() decimal.Decimal {
	return m.Cost.Mul(decimal.NewFromInt(int64(m.QuantityAvailable)))
}
