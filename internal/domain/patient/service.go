package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, p *Patient) error {
	if err := s.validate(ctx, p, uuid.Nil); err != nil {
		return err
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if _, err := s.repo.GetByID(ctx, p.ID); err != nil {
		return err
	}
	if err := s.validate(ctx, p, p.ID); err != nil {
		return err
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, search string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, search, limit, offset)
}

func (s *Service) ListExpectant(ctx context.Context) ([]*Patient, error) {
	return s.repo.ListExpectant(ctx)
}

// FindOrCreate returns the existing patient with the same name and address,
// or registers a new one. Used by the bulk importer.
func (s *Service) FindOrCreate(ctx context.Context, p *Patient) (*Patient, bool, error) {
	address := ""
	if p.Address != nil {
		address = *p.Address
	}
	existing, err := s.repo.FindByNameAddress(ctx, p.Name, address)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	if err := s.Create(ctx, p); err != nil {
		return nil, false, err
	}
	return p, true, nil
}

func (s *Service) UpsertObstetric(ctx context.Context, id uuid.UUID, lmpDate *time.Time, husbandName *string) error {
	return s.repo.UpsertObstetric(ctx, id, lmpDate, husbandName)
}

func (s *Service) validate(ctx context.Context, p *Patient, selfID uuid.UUID) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}

	if p.NIK != nil && *p.NIK != "" {
		nik := strings.TrimSpace(*p.NIK)
		if len(nik) != 16 || !isDigits(nik) {
			return fmt.Errorf("nik must be exactly 16 digits")
		}
		p.NIK = &nik

		existing, err := s.repo.GetByNIK(ctx, nik)
		if err == nil && existing.ID != selfID {
			return fmt.Errorf("nik %s is already registered", nik)
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}

	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
