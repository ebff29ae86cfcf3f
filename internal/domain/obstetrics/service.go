package obstetrics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bidancare/clinic/internal/domain/patient"
)

// ExpectantMother is a patient with a recorded LMP, decorated with the
// derived pregnancy numbers.
type ExpectantMother struct {
	PatientID        uuid.UUID  `json:"patient_id"`
	Name             string     `json:"name"`
	Phone            *string    `json:"phone,omitempty"`
	HusbandName      *string    `json:"husband_name,omitempty"`
	LMPDate          time.Time  `json:"lmp_date"`
	GestationalWeeks int        `json:"gestational_weeks"`
	DueDate          time.Time  `json:"due_date"`
	Trimester        int        `json:"trimester"`
	Status           string     `json:"status"`
}

// TrimesterCounts breaks the expectant list down per trimester.
type TrimesterCounts struct {
	Trimester1 int `json:"trimester_1"`
	Trimester2 int `json:"trimester_2"`
	Trimester3 int `json:"trimester_3"`
	Total      int `json:"total"`
}

// PatientDirectory is the slice of the patient service the monitor reads.
type PatientDirectory interface {
	ListExpectant(ctx context.Context) ([]*patient.Patient, error)
}

// Service derives the pregnancy dashboard from patient LMP dates. It keeps
// no state of its own.
type Service struct {
	patients PatientDirectory
	now      func() time.Time
}

func NewService(patients PatientDirectory) *Service {
	return &Service{patients: patients, now: time.Now}
}

// ListExpectant returns every pregnant patient, optionally filtered to one
// trimester (0 = all).
func (s *Service) ListExpectant(ctx context.Context, trimester int) ([]*ExpectantMother, error) {
	if trimester < 0 || trimester > 3 {
		return nil, fmt.Errorf("trimester must be 1, 2 or 3")
	}
	patients, err := s.patients.ListExpectant(ctx)
	if err != nil {
		return nil, err
	}
	at := s.now()

	mothers := make([]*ExpectantMother, 0, len(patients))
	for _, p := range patients {
		if p.LMPDate == nil {
			continue
		}
		m := decorate(p, at)
		if trimester != 0 && m.Trimester != trimester {
			continue
		}
		mothers = append(mothers, m)
	}
	return mothers, nil
}

// CountByTrimester summarizes the expectant list for the dashboard header.
func (s *Service) CountByTrimester(ctx context.Context) (*TrimesterCounts, error) {
	mothers, err := s.ListExpectant(ctx, 0)
	if err != nil {
		return nil, err
	}
	var counts TrimesterCounts
	for _, m := range mothers {
		switch m.Trimester {
		case 1:
			counts.Trimester1++
		case 2:
			counts.Trimester2++
		case 3:
			counts.Trimester3++
		}
	}
	counts.Total = len(mothers)
	return &counts, nil
}

func decorate(p *patient.Patient, at time.Time) *ExpectantMother {
	weeks := GestationalWeeks(*p.LMPDate, at)
	return &ExpectantMother{
		PatientID:        p.ID,
		Name:             p.Name,
		Phone:            p.Phone,
		HusbandName:      p.HusbandName,
		LMPDate:          *p.LMPDate,
		GestationalWeeks: weeks,
		DueDate:          DueDate(*p.LMPDate),
		Trimester:        Trimester(weeks),
		Status:           WatchStatus(weeks),
	}
}
