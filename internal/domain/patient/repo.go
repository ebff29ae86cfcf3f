package patient

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a patient does not exist.
var ErrNotFound = errors.New("patient not found")

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByNIK(ctx context.Context, nik string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns patients ordered by name, optionally filtered by a
	// case-insensitive substring match on name, NIK, or phone.
	List(ctx context.Context, search string, limit, offset int) ([]*Patient, int, error)
	// FindByNameAddress looks up a patient by exact name and address,
	// case-insensitive. Used by the bulk importer for dedup.
	FindByNameAddress(ctx context.Context, name, address string) (*Patient, error)
	// UpsertObstetric writes the LMP date and husband name captured during
	// an antenatal visit onto the patient.
	UpsertObstetric(ctx context.Context, id uuid.UUID, lmpDate *time.Time, husbandName *string) error
	// ListExpectant returns all patients with a known LMP date.
	ListExpectant(ctx context.Context) ([]*Patient, error)
}
