package model

import "github.com/google/uuid"

type SupplierStatus string

const (
	SupplierActive   SupplierStatus = "Active"
	SupplierInactive SupplierStatus = "Inactive"
)

type Supplier struct {
	BaseModel
	LaboratoryID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"laboratoryId"`
	CompanyName   string         `gorm:"type:varchar(255);not null" json:"companyName"`
	ContactPerson string         `gorm:"type:varchar(150)" json:"contactPerson"`
	ContactNumber string         `gorm:"type:varchar(50)" json:"contactNumber"`
	Email         string         `gorm:"type:varchar(255)" json:"email"`
	Address       string         `gorm:"type:text" json:"address"`
	Status        SupplierStatus `gorm:"type:varchar(16);not null;default:'Active'" json:"status"`
	Version       int            `gorm:"not null;default:1" json:"version"`
}
