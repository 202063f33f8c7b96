package labclient

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Records decoded from the API. The validate tags are the accepted shape:
// a response that does not satisfy them is rejected with ErrInvalidResponse.

type Laboratory struct {
	ID       uuid.UUID `json:"id" validate:"uuid_required"`
	Name     string    `json:"name" validate:"required"`
	Location string    `json:"location"`
}

type Role struct {
	ID   uint   `json:"id"`
	Code string `json:"code" validate:"required"`
	Name string `json:"name"`
}

type User struct {
	ID           uuid.UUID  `json:"id" validate:"uuid_required"`
	FirstName    string     `json:"firstName" validate:"required"`
	MiddleName   string     `json:"middleName"`
	LastName     string     `json:"lastName" validate:"required"`
	Email        string     `json:"email" validate:"required,email"`
	Designation  string     `json:"designation"`
	LaboratoryID uuid.UUID  `json:"laboratoryId"`
	Role         *Role      `json:"role,omitempty"`
	Status       string     `json:"status" validate:"required,user_status"`
	LastSeenAt   *time.Time `json:"lastSeenAt,omitempty"`
	Privileges   []string   `json:"privileges"`
	Version      int        `json:"version" validate:"min=0"`
}

// FullName joins the non-empty name parts.
func (u User) FullName() string {
	return joinNonEmpty(u.FirstName, u.MiddleName, u.LastName)
}

// RoleCode is empty when the role was not loaded.
func (u User) RoleCode() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Code
}

type Category struct {
	ID           uuid.UUID `json:"id" validate:"uuid_required"`
	ShortName    string    `json:"shortName" validate:"required,category_name"`
	Subcategory1 string    `json:"subcategory1"`
	Subcategory2 string    `json:"subcategory2"`
}

type Supplier struct {
	ID            uuid.UUID `json:"id" validate:"uuid_required"`
	LaboratoryID  uuid.UUID `json:"laboratoryId"`
	CompanyName   string    `json:"companyName" validate:"required"`
	ContactPerson string    `json:"contactPerson"`
	ContactNumber string    `json:"contactNumber"`
	Email         string    `json:"email" validate:"omitempty,email"`
	Address       string    `json:"address"`
	Status        string    `json:"status" validate:"required,oneof=Active Inactive"`
	Version       int       `json:"version"`
}

type Material struct {
	ID                uuid.UUID       `json:"id" validate:"uuid_required"`
	LaboratoryID      uuid.UUID       `json:"laboratoryId"`
	CategoryID        uuid.UUID       `json:"categoryId"`
	Category          *Category       `json:"category,omitempty"`
	SupplierID        *uuid.UUID      `json:"supplierId,omitempty"`
	ItemCode          string          `json:"itemCode"`
	ItemName          string          `json:"itemName" validate:"required"`
	Description       string          `json:"description"`
	Unit              string          `json:"unit"`
	Location          string          `json:"location"`
	ExpiryDate        *time.Time      `json:"expiryDate,omitempty"`
	Cost              decimal.Decimal `json:"cost"`
	QuantityAvailable int             `json:"quantityAvailable" validate:"min=0"`
	ReorderThreshold  int             `json:"reorderThreshold" validate:"min=0"`
	MaxThreshold      int             `json:"maxThreshold" validate:"min=0"`
	LotNo             string          `json:"lotNo,omitempty"`
	QtyPerContainer   int             `json:"qtyPerContainer,omitempty" validate:"min=0"`
	TotalNoContainers int             `json:"totalNoContainers,omitempty" validate:"min=0"`
	Notes             string          `json:"notes,omitempty"`
	Status            string          `json:"status" validate:"required,oneof=Active Deleted"`
	Version           int             `json:"version"`
}

// CategoryName is the short name of the material's category, if loaded.
func (m Material) CategoryName() string {
	if m.Category == nil {
		return ""
	}
	return m.Category.ShortName
}

type Borrow struct {
	ID               uuid.UUID  `json:"id" validate:"uuid_required"`
	UserID           uuid.UUID  `json:"userId" validate:"uuid_required"`
	MaterialID       uuid.UUID  `json:"materialId" validate:"uuid_required"`
	Department       string     `json:"department"`
	DateBorrowed     time.Time  `json:"dateBorrowed"`
	QuantityBorrowed int        `json:"quantityBorrowed" validate:"gt=0"`
	DateReturned     *time.Time `json:"dateReturned,omitempty"`
	QuantityReturned int        `json:"quantityReturned" validate:"min=0"`
	Status           string     `json:"status" validate:"required,oneof=Borrowed Returned"`
	Remarks          string     `json:"remarks"`
}

type Disposition struct {
	ID                uuid.UUID `json:"id" validate:"uuid_required"`
	UserID            uuid.UUID `json:"userId" validate:"uuid_required"`
	MaterialID        uuid.UUID `json:"materialId" validate:"uuid_required"`
	ItemDescription   string    `json:"itemDescription"`
	QuantityDisposed  int       `json:"quantityDisposed" validate:"gt=0"`
	ReasonForDisposal string    `json:"reasonForDisposal" validate:"required"`
	MethodOfDisposal  string    `json:"methodOfDisposal"`
	DisposedBy        string    `json:"disposedBy"`
	DateDisposed      time.Time `json:"dateDisposed"`
	Comments          string    `json:"comments"`
}

type ReagentDispense struct {
	ID                uuid.UUID `json:"id" validate:"uuid_required"`
	UserID            uuid.UUID `json:"userId" validate:"uuid_required"`
	MaterialID        uuid.UUID `json:"materialId" validate:"uuid_required"`
	Date              time.Time `json:"date"`
	TotalNoContainers int       `json:"totalNoContainers" validate:"min=0"`
	LotNo             string    `json:"lotNo"`
	QuantityDispensed int       `json:"quantityDispensed" validate:"gt=0"`
	Remarks           string    `json:"remarks"`
}

type Calibration struct {
	ID                  uuid.UUID  `json:"id" validate:"uuid_required"`
	UserID              uuid.UUID  `json:"userId" validate:"uuid_required"`
	MaterialID          uuid.UUID  `json:"materialId" validate:"uuid_required"`
	CalibrationDate     time.Time  `json:"calibrationDate"`
	NextCalibrationDate *time.Time `json:"nextCalibrationDate,omitempty"`
	CalibratedBy        string     `json:"calibratedBy"`
	Result              string     `json:"result"`
	Notes               string     `json:"notes"`
}

type IncidentForm struct {
	ID               uuid.UUID   `json:"id" validate:"uuid_required"`
	UserID           uuid.UUID   `json:"userId" validate:"uuid_required"`
	NatureOfIncident string      `json:"natureOfIncident" validate:"required"`
	Date             time.Time   `json:"date"`
	Time             string      `json:"time"`
	Area             string      `json:"area"`
	Equipment        string      `json:"equipment"`
	MaterialIDs      []uuid.UUID `json:"materialIds"`
	PersonnelIDs     []uuid.UUID `json:"personnelIds"`
	Description      string      `json:"description"`
	Attachments      []string    `json:"attachments"`
}

type InventoryLog struct {
	ID         uuid.UUID  `json:"id" validate:"uuid_required"`
	UserID     uuid.UUID  `json:"userId"`
	MaterialID uuid.UUID  `json:"materialId" validate:"uuid_required"`
	Date       time.Time  `json:"date"`
	Quantity   int        `json:"quantity"`
	Balance    int        `json:"balance" validate:"min=0"`
	Source     string     `json:"source" validate:"required"`
	SourceID   *uuid.UUID `json:"sourceId,omitempty"`
	Remarks    string     `json:"remarks"`
}

// LoginResult is the body of a successful login.
type LoginResult struct {
	Token      string    `json:"token" validate:"required"`
	ExpiresAt  time.Time `json:"expiresAt"`
	User       User      `json:"user"`
	Role       *Role     `json:"role"`
	Privileges []string  `json:"privileges"`
}

// Profile is returned by token validation and /me.
type Profile struct {
	User       User     `json:"user"`
	Role       *Role    `json:"role"`
	Privileges []string `json:"privileges"`
}
