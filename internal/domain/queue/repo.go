package queue

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a queue entry does not exist.
var ErrNotFound = errors.New("queue entry not found")

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListByDate returns a day's entries in booking order.
	ListByDate(ctx context.Context, date time.Time) ([]*Entry, error)
	// ListActive returns waiting and in-progress entries for a day.
	ListActive(ctx context.Context, date time.Time) ([]*Entry, error)
}
