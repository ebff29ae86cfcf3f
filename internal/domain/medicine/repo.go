package medicine

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a medicine does not exist.
var ErrNotFound = errors.New("medicine not found")

type Repository interface {
	Create(ctx context.Context, m *Medicine) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error)
	GetByName(ctx context.Context, name string) (*Medicine, error)
	Update(ctx context.Context, m *Medicine) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns medicines ordered by name, optionally filtered by a
	// case-insensitive substring match on name.
	List(ctx context.Context, search string, limit, offset int) ([]*Medicine, int, error)
	ListLowStock(ctx context.Context) ([]*Medicine, error)
	// AdjustStock applies `stock = stock + delta` in a single statement so
	// concurrent adjustments serialize in the store. Returns ErrNotFound
	// when the medicine does not exist.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error
}
