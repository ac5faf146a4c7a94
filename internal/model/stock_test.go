package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStockMutationConsistent(t *testing.T) {
	m := StockMutation{Type: MutationOut, Quantity: 30, BeforeStock: 100, AfterStock: 70}
	assert.True(t, m.Consistent())

	m = StockMutation{Type: MutationIn, Quantity: 30, BeforeStock: 70, AfterStock: 100}
	assert.True(t, m.Consistent())

	// wrong arithmetic
	m = StockMutation{Type: MutationOut, Quantity: 30, BeforeStock: 100, AfterStock: 80}
	assert.False(t, m.Consistent())

	// negative result
	m = StockMutation{Type: MutationOut, Quantity: 30, BeforeStock: 10, AfterStock: -20}
	assert.False(t, m.Consistent())

	// zero quantity carries no information
	m = StockMutation{Type: MutationIn, Quantity: 0, BeforeStock: 10, AfterStock: 10}
	assert.False(t, m.Consistent())

	// unknown type
	m = StockMutation{Type: "adjust", Quantity: 5, BeforeStock: 10, AfterStock: 15}
	assert.False(t, m.Consistent())
}

func TestStockCardConsistent(t *testing.T) {
	c := StockCard{InitialStock: 100, InStock: 20, OutStock: 50, FinalStock: 70}
	assert.True(t, c.Consistent())

	c = StockCard{InitialStock: 0, InStock: 0, OutStock: 0, FinalStock: 0}
	assert.True(t, c.Consistent())

	c = StockCard{InitialStock: 100, InStock: 20, OutStock: 50, FinalStock: 60}
	assert.False(t, c.Consistent())

	c = StockCard{InitialStock: 10, InStock: 0, OutStock: 20, FinalStock: -10}
	assert.False(t, c.Consistent())

	c = StockCard{InitialStock: 10, InStock: -5, OutStock: 0, FinalStock: 5}
	assert.False(t, c.Consistent())
}
