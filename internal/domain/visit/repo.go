package visit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a medical record does not exist.
var ErrNotFound = errors.New("medical record not found")

// ListFilter narrows ListRecords. Zero values mean "no filter".
type ListFilter struct {
	PatientID uuid.UUID
	From      time.Time
	To        time.Time
	Search    string
}

type Repository interface {
	CreateRecord(ctx context.Context, r *MedicalRecord) error
	GetRecord(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)
	UpdateRecord(ctx context.Context, r *MedicalRecord) error
	DeleteRecord(ctx context.Context, id uuid.UUID) error
	ListRecords(ctx context.Context, filter ListFilter, limit, offset int) ([]*MedicalRecord, int, error)
	CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error)

	CreateItem(ctx context.Context, item *Item) error
	ListItemsByVisit(ctx context.Context, visitID uuid.UUID) ([]*Item, error)
	DeleteItemsByVisit(ctx context.Context, visitID uuid.UUID) error
}
