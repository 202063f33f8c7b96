package model

// Category short names group materials into the four inventory tables.
const (
	CategoryBiological = "Biological"
	CategoryChemical   = "Chemical"
	CategoryReagent    = "Reagent"
	CategoryGeneral    = "General"
)

type Category struct {
	BaseModel
	ShortName    string `gorm:"type:varchar(32);not null;index" json:"shortName" validate:"required,category_name"`
	Subcategory1 string `gorm:"type:varchar(100)" json:"subcategory1"`
	Subcategory2 string `gorm:"type:varchar(100)" json:"subcategory2"`
}

// DefaultCategories are seeded on first boot, one per inventory table.
var DefaultCategories = []Category{
	{ShortName: CategoryBiological, Subcategory1: "Specimens"},
	{ShortName: CategoryChemical, Subcategory1: "Solvents"},
	{ShortName: CategoryReagent, Subcategory1: "Test Kits"},
	{ShortName: CategoryGeneral, Subcategory1: "Glassware"},
}
