package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// IncidentForm references any number of materials and personnel. The
// references are stored as JSON arrays, never as delimited strings.
type IncidentForm struct {
	BaseModel
	UserID           uuid.UUID                      `gorm:"type:uuid;not null;index" json:"userId"`
	User             *User                          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	NatureOfIncident string                         `gorm:"type:varchar(255);not null" json:"natureOfIncident"`
	Date             time.Time                      `gorm:"not null" json:"date"`
	Time             string                         `gorm:"type:varchar(5)" json:"time"`
	Area             string                         `gorm:"type:varchar(150)" json:"area"`
	Equipment        string                         `gorm:"type:varchar(255)" json:"equipment"`
	MaterialIDs      datatypes.JSONSlice[uuid.UUID] `json:"materialIds"`
	PersonnelIDs     datatypes.JSONSlice[uuid.UUID] `json:"personnelIds"`
	Description      string                         `gorm:"type:text" json:"description"`
	Attachments      datatypes.JSONSlice[string]    `json:"attachments"`
}
