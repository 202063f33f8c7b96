package model

import (
	"time"

	"github.com/google/uuid"
)

// Sources recorded on inventory log rows.
const (
	SourceCreate      = "Create"
	SourceEdit        = "Edit"
	SourceAdjustment  = "Adjustment"
	SourceBorrow      = "Borrow"
	SourceReturn      = "Return"
	SourceDisposal    = "Disposal"
	SourceDispense    = "Dispense"
	SourceCalibration = "Calibration"
)

// InventoryLog is an append-only audit row. Quantity is the signed delta
// applied to the material.
type InventoryLog struct {
	BaseModel
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	MaterialID uuid.UUID  `gorm:"type:uuid;not null;index" json:"materialId"`
	Material   *Material  `gorm:"foreignKey:MaterialID" json:"material,omitempty"`
	Date       time.Time  `gorm:"not null;index" json:"date"`
	Quantity   int        `gorm:"not null" json:"quantity"`
	Balance    int        `gorm:"not null" json:"balance"`
	Source     string     `gorm:"type:varchar(32);not null;index" json:"source"`
	SourceID   *uuid.UUID `gorm:"type:uuid" json:"sourceId,omitempty"`
	Remarks    string     `gorm:"type:text" json:"remarks"`
}

func (InventoryLog) TableName() string {
	return "inventory_logs"
}
