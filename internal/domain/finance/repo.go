package finance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a transaction does not exist.
var ErrNotFound = errors.New("transaction not found")

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	Type     string
	Category string
	From     time.Time
	To       time.Time
}

type Repository interface {
	Create(ctx context.Context, t *Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	Update(ctx context.Context, t *Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Transaction, int, error)
	Summarize(ctx context.Context, from, to time.Time) (*Summary, error)
	// GetByVisitCategory finds the single transaction a visit owns in a
	// category, if any.
	GetByVisitCategory(ctx context.Context, visitID uuid.UUID, category string) (*Transaction, error)
	DeleteByVisit(ctx context.Context, visitID uuid.UUID) error
}
