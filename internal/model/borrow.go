package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrAlreadyReturned = errors.New("borrowed material was already returned")

type BorrowStatus string

const (
	BorrowOpen     BorrowStatus = "Borrowed"
	BorrowReturned BorrowStatus = "Returned"
)

type Borrow struct {
	BaseModel
	UserID           uuid.UUID    `gorm:"type:uuid;not null;index" json:"userId"`
	User             *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	MaterialID       uuid.UUID    `gorm:"type:uuid;not null;index" json:"materialId"`
	Material         *Material    `gorm:"foreignKey:MaterialID" json:"material,omitempty"`
	Department       string       `gorm:"type:varchar(150)" json:"department"`
	DateBorrowed     time.Time    `gorm:"not null" json:"dateBorrowed"`
	QuantityBorrowed int          `gorm:"not null" json:"quantityBorrowed"`
	DateReturned     *time.Time   `json:"dateReturned,omitempty"`
	QuantityReturned int          `gorm:"not null;default:0" json:"quantityReturned"`
	Status           BorrowStatus `gorm:"type:varchar(16);not null;default:'Borrowed';index" json:"status"`
	Remarks          string       `gorm:"type:text" json:"remarks"`
}

// MarkReturned closes the borrow. qty may be lower than what was borrowed
// when part of it was consumed or damaged.
func (b *Borrow) MarkReturned(qty int, at time.Time) error {
	if b.Status == BorrowReturned {
		return ErrAlreadyReturned
	}
	if qty < 0 || qty > b.QuantityBorrowed {
		return ErrInsufficientQuantity
	}
	b.QuantityReturned = qty
	b.DateReturned = &at
	b.Status = BorrowReturned
	return nil
}
