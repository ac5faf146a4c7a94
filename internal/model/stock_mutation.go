package model

import (
	"time"

	"github.com/google/uuid"
)

// Mutation types. Quantity is always positive; the type carries the sign.
const (
	MutationIn  = "in"
	MutationOut = "out"
)

// StockMutation is one entry in the append-only stock ledger. Rows are never
// updated or deleted — corrections are expressed as new mutations.
type StockMutation struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Type        string    `gorm:"type:varchar(8);not null"` // "in" | "out"
	Quantity    int       `gorm:"not null"`
	BeforeStock int       `gorm:"not null"`
	AfterStock  int       `gorm:"not null"`
	Date        time.Time `gorm:"type:date;not null;index"`
	Description string
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
	User    *User    `gorm:"foreignKey:UserID"`
}

// Consistent checks the ledger arithmetic invariant:
// after = before ± quantity depending on type, and after never negative.
func (m *StockMutation) Consistent() bool {
	if m.Quantity <= 0 || m.AfterStock < 0 {
		return false
	}
	switch m.Type {
	case MutationIn:
		return m.AfterStock == m.BeforeStock+m.Quantity
	case MutationOut:
		return m.AfterStock == m.BeforeStock-m.Quantity
	default:
		return false
	}
}
