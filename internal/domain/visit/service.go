package visit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bidancare/clinic/internal/domain/finance"
	"github.com/bidancare/clinic/internal/domain/medicine"
	"github.com/bidancare/clinic/internal/domain/patient"
	"github.com/bidancare/clinic/internal/platform/db"
)

// PatientDirectory is the slice of the patient service the compiler needs.
type PatientDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
	UpsertObstetric(ctx context.Context, id uuid.UUID, lmpDate *time.Time, husbandName *string) error
}

// MedicineCatalog resolves cart lines and moves stock.
type MedicineCatalog interface {
	Get(ctx context.Context, id uuid.UUID) (*medicine.Medicine, error)
	Debit(ctx context.Context, id uuid.UUID, qty int) error
	Credit(ctx context.Context, id uuid.UUID, qty int) error
}

// Ledger records the income a visit generates.
type Ledger interface {
	RecordVisitIncome(ctx context.Context, visitID uuid.UUID, txDate time.Time, description, category string, amount int64) error
	ReconcileVisitIncome(ctx context.Context, visitID uuid.UUID, txDate time.Time, description, category string, amount int64) error
	DeleteVisitTransactions(ctx context.Context, visitID uuid.UUID) error
}

// Service turns a submitted visit into a consistent set of rows: the record,
// its items, the stock debits and the income entries all land in one
// database transaction.
type Service struct {
	repo      Repository
	patients  PatientDirectory
	medicines MedicineCatalog
	ledger    Ledger
	tx        db.TxManager
	strict    bool
	logger    zerolog.Logger
}

func NewService(repo Repository, patients PatientDirectory, medicines MedicineCatalog,
	ledger Ledger, tx db.TxManager, strict bool, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		patients:  patients,
		medicines: medicines,
		ledger:    ledger,
		tx:        tx,
		strict:    strict,
		logger:    logger,
	}
}

// compiled is an in-memory visit before any row is written.
type compiled struct {
	record *MedicalRecord
	items  []*Item
}

// Create compiles and persists a new visit.
func (s *Service) Create(ctx context.Context, in *Input) (*MedicalRecord, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	var rec *MedicalRecord
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.compile(ctx, in)
		if err != nil {
			return err
		}
		if err := s.repo.CreateRecord(ctx, c.record); err != nil {
			return err
		}
		if in.ANC != nil {
			if err := s.patients.UpsertObstetric(ctx, in.PatientID, in.ANC.LMPDate, in.ANC.HusbandName); err != nil {
				return err
			}
		}
		for _, item := range c.items {
			item.VisitID = c.record.ID
			if err := s.repo.CreateItem(ctx, item); err != nil {
				return err
			}
			if err := s.medicines.Debit(ctx, item.MedicineID, item.Quantity); err != nil {
				return err
			}
		}
		if err := s.ledger.RecordVisitIncome(ctx, c.record.ID, c.record.VisitDate,
			"Service fee - "+c.record.PatientName, finance.CategoryMedicalService,
			c.record.ServiceFee); err != nil {
			return err
		}
		if err := s.ledger.RecordVisitIncome(ctx, c.record.ID, c.record.VisitDate,
			"Medicine sale - "+c.record.PatientName, finance.CategoryMedicine,
			c.record.MedicineCost); err != nil {
			return err
		}
		rec = c.record
		return nil
	})
	return rec, err
}

// Edit replaces a visit. The old items' stock is credited back before the
// new cart debits it, so an unchanged cart leaves every count untouched.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, in *Input) (*MedicalRecord, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	var rec *MedicalRecord
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		old, err := s.repo.GetRecord(ctx, id)
		if err != nil {
			return err
		}
		oldItems, err := s.repo.ListItemsByVisit(ctx, id)
		if err != nil {
			return err
		}
		for _, item := range oldItems {
			if err := s.medicines.Credit(ctx, item.MedicineID, item.Quantity); err != nil {
				return err
			}
		}
		if err := s.repo.DeleteItemsByVisit(ctx, id); err != nil {
			return err
		}

		c, err := s.compile(ctx, in)
		if err != nil {
			return err
		}
		c.record.ID = id
		c.record.CreatedAt = old.CreatedAt
		if err := s.repo.UpdateRecord(ctx, c.record); err != nil {
			return err
		}
		if in.ANC != nil {
			if err := s.patients.UpsertObstetric(ctx, in.PatientID, in.ANC.LMPDate, in.ANC.HusbandName); err != nil {
				return err
			}
		}

		if err := s.ledger.ReconcileVisitIncome(ctx, id, c.record.VisitDate,
			"Service fee - "+c.record.PatientName, finance.CategoryMedicalService,
			c.record.ServiceFee); err != nil {
			return err
		}
		if err := s.ledger.ReconcileVisitIncome(ctx, id, c.record.VisitDate,
			"Medicine sale - "+c.record.PatientName, finance.CategoryMedicine,
			c.record.MedicineCost); err != nil {
			return err
		}

		for _, item := range c.items {
			item.VisitID = id
			if err := s.repo.CreateItem(ctx, item); err != nil {
				return err
			}
			if err := s.medicines.Debit(ctx, item.MedicineID, item.Quantity); err != nil {
				return err
			}
		}
		rec = c.record
		return nil
	})
	return rec, err
}

// Delete removes a visit and everything it produced: item stock is credited
// back and the linked income entries go with the record.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		items, err := s.repo.ListItemsByVisit(ctx, id)
		if err != nil {
			return err
		}
		for _, item := range items {
			if err := s.medicines.Credit(ctx, item.MedicineID, item.Quantity); err != nil {
				return err
			}
		}
		if err := s.repo.DeleteItemsByVisit(ctx, id); err != nil {
			return err
		}
		if err := s.ledger.DeleteVisitTransactions(ctx, id); err != nil {
			return err
		}
		return s.repo.DeleteRecord(ctx, id)
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*MedicalRecord, []*Item, error) {
	rec, err := s.repo.GetRecord(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.repo.ListItemsByVisit(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return rec, items, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*MedicalRecord, int, error) {
	return s.repo.ListRecords(ctx, filter, limit, offset)
}

func (s *Service) CountByPatient(ctx context.Context, patientID uuid.UUID) (int, error) {
	return s.repo.CountByPatient(ctx, patientID)
}

// compile resolves the patient and the cart into a record plus items with
// prices frozen at sale time. Nothing is written.
func (s *Service) compile(ctx context.Context, in *Input) (*compiled, error) {
	p, err := s.patients.Get(ctx, in.PatientID)
	if err != nil {
		return nil, fmt.Errorf("load patient: %w", err)
	}

	var (
		items        []*Item
		therapyParts []string
		medicineCost int64
	)
	for _, line := range in.Cart {
		med, err := s.medicines.Get(ctx, line.MedicineID)
		if errors.Is(err, medicine.ErrNotFound) {
			if s.strict {
				return nil, fmt.Errorf("cart medicine %s: %w", line.MedicineID, err)
			}
			s.logger.Warn().Str("medicine_id", line.MedicineID.String()).
				Msg("skipping unknown medicine in visit cart")
			continue
		}
		if err != nil {
			return nil, err
		}
		subtotal := int64(line.Quantity) * med.Price
		items = append(items, &Item{
			MedicineID:  med.ID,
			Name:        med.Name,
			Quantity:    line.Quantity,
			PriceAtSale: med.Price,
			Subtotal:    subtotal,
		})
		therapyParts = append(therapyParts, fmt.Sprintf("%s (%d)", med.Name, line.Quantity))
		medicineCost += subtotal
	}

	rec := &MedicalRecord{
		PatientID:        p.ID,
		VisitDate:        in.VisitDate,
		PatientName:      p.Name,
		PatientAddress:   p.Address,
		PatientAge:       p.AgeAt(in.VisitDate),
		Weight:           in.Weight,
		BloodPressure:    in.BloodPressure,
		HeartRate:        in.HeartRate,
		Temperature:      in.Temperature,
		OxygenSaturation: in.OxygenSaturation,
		Diagnosis:        in.Diagnosis,
		Action:           in.Action,
		Therapy:          strings.Join(therapyParts, ", "),
		StaffName:        in.StaffName,
		RiskLevel:        in.RiskLevel,
		ServiceFee:       in.ServiceFee,
		MedicineCost:     medicineCost,
		TotalPrice:       in.ServiceFee + medicineCost,
	}
	if in.ANC != nil {
		rec.ANC = true
		rec.GravidaCode = in.ANC.GravidaCode
		rec.USGType = in.ANC.USGType
		rec.Leopold1 = in.ANC.Leopold1
		rec.Leopold2 = in.ANC.Leopold2
		rec.Leopold3 = in.ANC.Leopold3
		rec.Leopold4 = in.ANC.Leopold4
		rec.FetalHeartRate = in.ANC.FetalHeartRate
	}
	return &compiled{record: rec, items: items}, nil
}

func (s *Service) validate(in *Input) error {
	if in.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if in.VisitDate.IsZero() {
		in.VisitDate = time.Now().UTC()
	}
	if in.ServiceFee < 0 {
		return fmt.Errorf("service_fee must not be negative")
	}
	if in.RiskLevel != nil {
		switch *in.RiskLevel {
		case RiskLow, RiskHigh, RiskVeryHigh:
		default:
			return fmt.Errorf("risk_level must be one of %s, %s, %s", RiskLow, RiskHigh, RiskVeryHigh)
		}
	}
	for _, line := range in.Cart {
		if line.Quantity <= 0 {
			return fmt.Errorf("cart quantity must be positive")
		}
	}
	return nil
}
