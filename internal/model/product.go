package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog entry and the source of truth for *current* stock.
// Stock is a materialized value derived from the mutation ledger: outside of
// product creation it is only ever written together with a StockMutation (or
// re-derived from stock cards), never set directly. At all times it equals the
// AfterStock of the product's most recent mutation.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code        string    `gorm:"uniqueIndex;not null"`
	Name        string    `gorm:"index;not null"`
	Description *string
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock       int             `gorm:"not null;default:0"`
	Unit        string          `gorm:"not null;default:'unit'"`
	Image       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
