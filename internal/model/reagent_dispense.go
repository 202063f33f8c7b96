package model

import (
	"time"

	"github.com/google/uuid"
)

type ReagentDispense struct {
	BaseModel
	UserID            uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	User              *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	MaterialID        uuid.UUID `gorm:"type:uuid;not null;index" json:"materialId"`
	Material          *Material `gorm:"foreignKey:MaterialID" json:"material,omitempty"`
	Date              time.Time `gorm:"not null" json:"date"`
	TotalNoContainers int       `gorm:"default:0" json:"totalNoContainers"`
	LotNo             string    `gorm:"type:varchar(64)" json:"lotNo"`
	QuantityDispensed int       `gorm:"not null" json:"quantityDispensed"`
	Remarks           string    `gorm:"type:text" json:"remarks"`
}

func (ReagentDispense) TableName() string {
	return "reagent_dispenses"
}
