package repository

import "gorm.io/gorm/clause"

// lockForUpdate is the SELECT ... FOR UPDATE clause shared by every
// read-then-write sequence on stock-bearing rows.
func lockForUpdate() clause.Locking { return clause.Locking{Strength: "UPDATE"} }
