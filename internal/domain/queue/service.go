package queue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bidancare/clinic/internal/domain/patient"
)

var validSessions = map[string]bool{
	SessionMorning:   true,
	SessionAfternoon: true,
	SessionEvening:   true,
}

var validStatuses = map[string]bool{
	StatusWaiting:    true,
	StatusInProgress: true,
	StatusDone:       true,
	StatusCancelled:  true,
}

// PatientDirectory resolves the patient a booking belongs to.
type PatientDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

type Service struct {
	repo     Repository
	patients PatientDirectory
}

func NewService(repo Repository, patients PatientDirectory) *Service {
	return &Service{repo: repo, patients: patients}
}

// BookingInput is what the front desk submits to put a patient in the queue.
type BookingInput struct {
	PatientID   uuid.UUID `json:"patient_id"`
	QueueDate   time.Time `json:"queue_date"`
	Session     string    `json:"session"`
	ServiceType string    `json:"service_type"`
	Complaint   *string   `json:"complaint,omitempty"`
}

// Book creates a waiting entry for the given day and session.
func (s *Service) Book(ctx context.Context, in *BookingInput) (*Entry, error) {
	if in.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if !validSessions[in.Session] {
		return nil, fmt.Errorf("session must be %s, %s or %s",
			SessionMorning, SessionAfternoon, SessionEvening)
	}
	if strings.TrimSpace(in.ServiceType) == "" {
		return nil, fmt.Errorf("service_type is required")
	}
	if in.QueueDate.IsZero() {
		in.QueueDate = time.Now().UTC().Truncate(24 * time.Hour)
	}

	p, err := s.patients.Get(ctx, in.PatientID)
	if err != nil {
		return nil, fmt.Errorf("load patient: %w", err)
	}
	e := &Entry{
		PatientID:   p.ID,
		PatientName: p.Name,
		QueueDate:   in.QueueDate,
		Session:     in.Session,
		ServiceType: strings.TrimSpace(in.ServiceType),
		Complaint:   in.Complaint,
		Status:      StatusWaiting,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Entry, error) {
	return s.repo.GetByID(ctx, id)
}

// SetStatus moves an entry along the allowed edges. Any other move is
// rejected before the store is touched.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string) (*Entry, error) {
	if !validStatuses[status] {
		return nil, fmt.Errorf("unknown status %q", status)
	}
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(e.Status, status) {
		return nil, fmt.Errorf("cannot move queue entry from %s to %s", e.Status, status)
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	e.Status = status
	return e, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListByDate(ctx context.Context, date time.Time) ([]*Entry, error) {
	return s.repo.ListByDate(ctx, date)
}

func (s *Service) ListActive(ctx context.Context, date time.Time) ([]*Entry, error) {
	return s.repo.ListActive(ctx, date)
}
