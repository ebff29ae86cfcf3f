package medicine

import (
	"time"

	"github.com/google/uuid"
)

// DefaultMinStock is applied when a medicine is registered without an
// explicit low-stock threshold.
const DefaultMinStock = 5

// Medicine is one inventory item. Price is in whole rupiah. Stock is the
// authoritative count; it may go negative in lenient mode and is never
// silently clamped.
type Medicine struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Price        int64     `db:"price" json:"price"`
	Unit         string    `db:"unit" json:"unit"`
	Stock        int       `db:"stock" json:"stock"`
	InitialStock int       `db:"initial_stock" json:"initial_stock"`
	MinStock     int       `db:"min_stock" json:"min_stock"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// IsLowStock reports whether the stock has reached the reorder threshold.
func (m *Medicine) IsLowStock() bool {
	return m.Stock <= m.MinStock
}
