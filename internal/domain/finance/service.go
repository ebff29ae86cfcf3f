package finance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bidancare/clinic/internal/platform/db"
)

var validCategories = map[string]bool{
	CategoryMedicalService: true,
	CategoryMedicine:       true,
	CategoryEquipment:      true,
	CategoryOperational:    true,
	CategoryMaintenance:    true,
	CategoryOther:          true,
}

var validTypes = map[string]bool{
	TypeIn:  true,
	TypeOut: true,
}

// StockLedger is the slice of the inventory service the reconciler needs.
type StockLedger interface {
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error
}

// Service keeps the ledger and medicine stock mutually consistent. Every
// mutation runs in one database transaction: the entry write and its stock
// effect land together or not at all.
type Service struct {
	repo   Repository
	ledger StockLedger
	tx     db.TxManager
}

func NewService(repo Repository, ledger StockLedger, tx db.TxManager) *Service {
	return &Service{repo: repo, ledger: ledger, tx: tx}
}

func (s *Service) Create(ctx context.Context, t *Transaction) error {
	if err := s.validate(t); err != nil {
		return err
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, t); err != nil {
			return err
		}
		return s.applyStockDelta(ctx, t, 1)
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetByID(ctx, id)
}

// Update reverts the stored entry's stock effect through its medicine FK,
// writes the new fields, then applies the new effect.
func (s *Service) Update(ctx context.Context, t *Transaction) error {
	if err := s.validate(t); err != nil {
		return err
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		old, err := s.repo.GetByID(ctx, t.ID)
		if err != nil {
			return err
		}
		t.VisitID = old.VisitID

		if err := s.applyStockDelta(ctx, old, -1); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, t); err != nil {
			return err
		}
		return s.applyStockDelta(ctx, t, 1)
	})
}

// Delete reverses the entry's stock effect before removing it, so a deleted
// purchase or sale no longer leaves phantom stock behind.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		old, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.applyStockDelta(ctx, old, -1); err != nil {
			return err
		}
		return s.repo.Delete(ctx, id)
	})
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Transaction, int, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

func (s *Service) Summarize(ctx context.Context, from, to time.Time) (*Summary, error) {
	return s.repo.Summarize(ctx, from, to)
}

// RecordVisitIncome inserts an income entry owned by a visit. Stock is not
// touched: the visit moves stock through its own line items.
func (s *Service) RecordVisitIncome(ctx context.Context, visitID uuid.UUID, txDate time.Time, description, category string, amount int64) error {
	if amount <= 0 {
		return nil
	}
	t := &Transaction{
		TxDate:      txDate,
		Description: description,
		Category:    category,
		Type:        TypeIn,
		Amount:      amount,
		VisitID:     &visitID,
	}
	return s.repo.Create(ctx, t)
}

// ReconcileVisitIncome keeps the one-transaction-per-visit-per-category
// invariant: the entry is updated when present, inserted when newly
// non-zero, and deleted when the amount drops to zero.
func (s *Service) ReconcileVisitIncome(ctx context.Context, visitID uuid.UUID, txDate time.Time, description, category string, amount int64) error {
	existing, err := s.repo.GetByVisitCategory(ctx, visitID, category)
	switch {
	case err == nil && amount > 0:
		existing.TxDate = txDate
		existing.Description = description
		existing.Amount = amount
		return s.repo.Update(ctx, existing)
	case err == nil:
		return s.repo.Delete(ctx, existing.ID)
	case err == ErrNotFound:
		return s.RecordVisitIncome(ctx, visitID, txDate, description, category, amount)
	default:
		return err
	}
}

// DeleteVisitTransactions removes every entry owned by a visit. Stock is
// reverted by the visit itself via its line items.
func (s *Service) DeleteVisitTransactions(ctx context.Context, visitID uuid.UUID) error {
	return s.repo.DeleteByVisit(ctx, visitID)
}

func (s *Service) applyStockDelta(ctx context.Context, t *Transaction, sign int) error {
	delta := t.stockDelta() * sign
	if delta == 0 {
		return nil
	}
	return s.ledger.AdjustStock(ctx, *t.MedicineID, delta)
}

func (s *Service) validate(t *Transaction) error {
	t.Description = strings.TrimSpace(t.Description)
	if t.Description == "" {
		return fmt.Errorf("description is required")
	}
	if !validCategories[t.Category] {
		return fmt.Errorf("invalid category %q", t.Category)
	}
	if !validTypes[t.Type] {
		return fmt.Errorf("type must be %q or %q", TypeIn, TypeOut)
	}
	if t.Amount < 0 {
		return fmt.Errorf("amount must not be negative")
	}
	if t.Quantity < 0 {
		return fmt.Errorf("quantity must not be negative")
	}
	if t.TxDate.IsZero() {
		t.TxDate = time.Now().UTC()
	}
	return nil
}
