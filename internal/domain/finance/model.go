package finance

import (
	"time"

	"github.com/google/uuid"
)

// Transaction categories. CategoryMedicine is distinguished: manual entries
// in it move medicine stock.
const (
	CategoryMedicalService = "Medical Service"
	CategoryMedicine       = "Medicine & Vitamins"
	CategoryEquipment      = "Medical Equipment"
	CategoryOperational    = "Operational"
	CategoryMaintenance    = "Maintenance"
	CategoryOther          = "Other"
)

// Transaction directions.
const (
	TypeIn  = "in"  // income: a sale or service fee
	TypeOut = "out" // expense: a purchase
)

// Transaction is one ledger entry. Entries created by a visit carry its
// VisitID; manual medicine purchases and sales carry the MedicineID they
// move stock for.
type Transaction struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	TxDate      time.Time  `db:"tx_date" json:"tx_date"`
	Description string     `db:"description" json:"description"`
	Category    string     `db:"category" json:"category"`
	Type        string     `db:"type" json:"type"`
	Amount      int64      `db:"amount" json:"amount"`
	Quantity    int        `db:"quantity" json:"quantity"`
	MedicineID  *uuid.UUID `db:"medicine_id" json:"medicine_id,omitempty"`
	VisitID     *uuid.UUID `db:"visit_id" json:"visit_id,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Summary aggregates the ledger over a date range.
type Summary struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Net     int64 `json:"net"`
}

// stockDelta returns the signed stock effect of this transaction: a sale
// (in) debits stock, a purchase (out) credits it. Zero when the entry does
// not move stock.
func (t *Transaction) stockDelta() int {
	if t.Category != CategoryMedicine || t.MedicineID == nil || t.Quantity <= 0 {
		return 0
	}
	if t.Type == TypeIn {
		return -t.Quantity
	}
	return t.Quantity
}
