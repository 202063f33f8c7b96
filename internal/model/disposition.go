package model

import (
	"time"

	"github.com/google/uuid"
)

// Disposition records quantity discarded or retired from a material.
type Disposition struct {
	BaseModel
	UserID            uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	User              *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	MaterialID        uuid.UUID `gorm:"type:uuid;not null;index" json:"materialId"`
	Material          *Material `gorm:"foreignKey:MaterialID" json:"material,omitempty"`
	ItemDescription   string    `gorm:"type:text" json:"itemDescription"`
	QuantityDisposed  int       `gorm:"not null" json:"quantityDisposed"`
	ReasonForDisposal string    `gorm:"type:text;not null" json:"reasonForDisposal"`
	MethodOfDisposal  string    `gorm:"type:varchar(150)" json:"methodOfDisposal"`
	DisposedBy        string    `gorm:"type:varchar(150)" json:"disposedBy"`
	DateDisposed      time.Time `gorm:"not null" json:"dateDisposed"`
	Comments          string    `gorm:"type:text" json:"comments"`
}
