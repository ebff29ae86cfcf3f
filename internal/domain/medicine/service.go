package medicine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service owns the inventory ledger. Strict mode fails an adjustment on a
// missing medicine, aborting the enclosing transaction; lenient mode (the
// historical behavior) logs and skips it so the primary write still lands.
type Service struct {
	repo   Repository
	strict bool
	logger zerolog.Logger
}

func NewService(repo Repository, strict bool, logger zerolog.Logger) *Service {
	return &Service{repo: repo, strict: strict, logger: logger}
}

func (s *Service) Create(ctx context.Context, m *Medicine) error {
	if err := s.validate(m); err != nil {
		return err
	}
	if m.InitialStock == 0 {
		m.InitialStock = m.Stock
	}
	if m.MinStock <= 0 {
		m.MinStock = DefaultMinStock
	}
	return s.repo.Create(ctx, m)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByName(ctx context.Context, name string) (*Medicine, error) {
	return s.repo.GetByName(ctx, name)
}

func (s *Service) Update(ctx context.Context, m *Medicine) error {
	if _, err := s.repo.GetByID(ctx, m.ID); err != nil {
		return err
	}
	if err := s.validate(m); err != nil {
		return err
	}
	if m.MinStock <= 0 {
		m.MinStock = DefaultMinStock
	}
	return s.repo.Update(ctx, m)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, search string, limit, offset int) ([]*Medicine, int, error) {
	return s.repo.List(ctx, search, limit, offset)
}

func (s *Service) ListLowStock(ctx context.Context) ([]*Medicine, error) {
	return s.repo.ListLowStock(ctx)
}

// Debit decreases stock by qty (a sale).
func (s *Service) Debit(ctx context.Context, id uuid.UUID, qty int) error {
	return s.AdjustStock(ctx, id, -qty)
}

// Credit increases stock by qty (a restock or return).
func (s *Service) Credit(ctx context.Context, id uuid.UUID, qty int) error {
	return s.AdjustStock(ctx, id, qty)
}

// AdjustStock applies a signed stock delta. A lookup miss follows the
// configured strictness.
func (s *Service) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	if delta == 0 {
		return nil
	}
	err := s.repo.AdjustStock(ctx, id, delta)
	if errors.Is(err, ErrNotFound) {
		if s.strict {
			return fmt.Errorf("adjust stock: %w", err)
		}
		s.logger.Warn().
			Str("medicine_id", id.String()).
			Int("delta", delta).
			Msg("stock adjustment skipped, medicine missing")
		return nil
	}
	return err
}

func (s *Service) validate(m *Medicine) error {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if m.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	if m.Unit == "" {
		return fmt.Errorf("unit is required")
	}
	return nil
}
