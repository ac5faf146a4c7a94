package model

import (
	"time"

	"github.com/google/uuid"
)

// StockCard is the per-(product, day) rollup of the mutation ledger — derived,
// denormalized data kept consistent by the same transaction that writes the
// ledger. Exactly one card may exist per product per date.
//
// InitialStock is captured when the card is first written (the product's stock
// at start of day) and is immutable afterwards, even if earlier same-day
// history is corrected.
type StockCard struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_cards_product_date"`
	Date         time.Time `gorm:"type:date;not null;uniqueIndex:idx_stock_cards_product_date"`
	InitialStock int       `gorm:"not null"`
	InStock      int       `gorm:"not null;default:0"`
	OutStock     int       `gorm:"not null;default:0"`
	FinalStock   int       `gorm:"not null"`
	Notes        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// Consistent checks the rollup invariant:
// final = initial + in - out, with final never negative.
func (c *StockCard) Consistent() bool {
	return c.InStock >= 0 && c.OutStock >= 0 &&
		c.FinalStock >= 0 &&
		c.FinalStock == c.InitialStock+c.InStock-c.OutStock
}
