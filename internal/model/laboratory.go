package model

// Laboratory is one of the fixed physical labs materials and accounts belong to.
type Laboratory struct {
	BaseModel
	Name     string `gorm:"type:varchar(150);uniqueIndex;not null" json:"name"`
	Location string `gorm:"type:varchar(255)" json:"location"`
}

// DefaultLaboratories are seeded on first boot.
var DefaultLaboratories = []Laboratory{
	{Name: "Pathology Laboratory", Location: "Building A, 2nd Floor"},
	{Name: "Chemistry Laboratory", Location: "Building B, 1st Floor"},
	{Name: "Microbiology Laboratory", Location: "Building B, 3rd Floor"},
}
