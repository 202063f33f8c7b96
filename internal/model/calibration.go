package model

import (
	"time"

	"github.com/google/uuid"
)

type Calibration struct {
	BaseModel
	UserID              uuid.UUID  `gorm:"type:uuid;not null;index" json:"userId"`
	User                *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	MaterialID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"materialId"`
	Material            *Material  `gorm:"foreignKey:MaterialID" json:"material,omitempty"`
	CalibrationDate     time.Time  `gorm:"not null" json:"calibrationDate"`
	NextCalibrationDate *time.Time `json:"nextCalibrationDate,omitempty"`
	CalibratedBy        string     `gorm:"type:varchar(150)" json:"calibratedBy"`
	Result              string     `gorm:"type:varchar(64)" json:"result"`
	Notes               string     `gorm:"type:text" json:"notes"`
}
