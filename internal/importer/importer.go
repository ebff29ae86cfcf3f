package importer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/bidancare/clinic/internal/domain/finance"
	"github.com/bidancare/clinic/internal/domain/patient"
	"github.com/bidancare/clinic/internal/domain/visit"
	"github.com/bidancare/clinic/internal/platform/db"
)

// PatientDirectory dedups imported patients by name and address.
type PatientDirectory interface {
	FindOrCreate(ctx context.Context, p *patient.Patient) (*patient.Patient, bool, error)
}

// RecordStore persists the medical records an import produces.
type RecordStore interface {
	CreateRecord(ctx context.Context, r *visit.MedicalRecord) error
}

// Ledger records the revenue of imported visits.
type Ledger interface {
	RecordVisitIncome(ctx context.Context, visitID uuid.UUID, txDate time.Time, description, category string, amount int64) error
}

// Result summarizes one workbook import.
type Result struct {
	Imported    int      `json:"imported"`
	Failed      int      `json:"failed"`
	NewPatients int      `json:"new_patients"`
	Log         []string `json:"log"`
}

// Service replays a legacy bookkeeping workbook into the database. Each row
// becomes a patient (deduped), a medical record and, when priced, an income
// entry. Rows never carry stock: the old sheets recorded totals only.
type Service struct {
	patients PatientDirectory
	records  RecordStore
	ledger   Ledger
	tx       db.TxManager
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(patients PatientDirectory, records RecordStore, ledger Ledger,
	tx db.TxManager, logger zerolog.Logger) *Service {
	return &Service{
		patients: patients,
		records:  records,
		ledger:   ledger,
		tx:       tx,
		logger:   logger,
		now:      time.Now,
	}
}

// ImportWorkbook reads every sheet of an .xlsx stream. A failed row is
// counted and logged; the batch keeps going.
func (s *Service) ImportWorkbook(ctx context.Context, r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	result := &Result{Log: []string{}}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			result.Failed++
			result.Log = append(result.Log, fmt.Sprintf("sheet %s: %v", sheet, err))
			continue
		}
		s.importSheet(ctx, sheet, rows, result)
	}
	s.logger.Info().
		Int("imported", result.Imported).
		Int("failed", result.Failed).
		Int("new_patients", result.NewPatients).
		Msg("workbook import finished")
	return result, nil
}

func (s *Service) importSheet(ctx context.Context, sheet string, rows [][]string, result *Result) {
	var idx map[string]int
	for n, cells := range rows {
		if idx == nil {
			idx, _ = headerIndex(cells)
			continue
		}
		name := cellAt(cells, idx, colName)
		if name == "" {
			continue
		}
		if err := s.importRow(ctx, cells, idx, result); err != nil {
			result.Failed++
			line := fmt.Sprintf("sheet %s row %d (%s): %v", sheet, n+1, name, err)
			result.Log = append(result.Log, line)
			s.logger.Warn().Str("sheet", sheet).Int("row", n+1).Err(err).
				Msg("import row failed")
			continue
		}
		result.Imported++
	}
}

// importRow writes one row in its own transaction so a bad row cannot take
// its neighbors down with it.
func (s *Service) importRow(ctx context.Context, cells []string, idx map[string]int, result *Result) error {
	name := cellAt(cells, idx, colName)
	address := strPtrOrNil(cellAt(cells, idx, colAddress))
	visitDate := parseDate(cellAt(cells, idx, colDate), s.now().UTC())
	age := parseAge(cellAt(cells, idx, colAge))
	tariff := parseMoney(cellAt(cells, idx, colTariff))
	cogs := parseMoney(cellAt(cells, idx, colCOGS))

	var createdPatient bool
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		p, created, err := s.patients.FindOrCreate(ctx, &patient.Patient{
			Name:    name,
			Address: address,
		})
		if err != nil {
			return fmt.Errorf("patient: %w", err)
		}
		createdPatient = created

		rec := &visit.MedicalRecord{
			PatientID:        p.ID,
			VisitDate:        visitDate,
			PatientName:      p.Name,
			PatientAddress:   p.Address,
			PatientAge:       age,
			Weight:           strPtrOrNil(cellAt(cells, idx, colWeight)),
			BloodPressure:    strPtrOrNil(cellAt(cells, idx, colBP)),
			HeartRate:        strPtrOrNil(cellAt(cells, idx, colPulse)),
			Temperature:      strPtrOrNil(cellAt(cells, idx, colTemperature)),
			OxygenSaturation: strPtrOrNil(cellAt(cells, idx, colSpO2)),
			Diagnosis:        cellAt(cells, idx, colDiagnosis),
			Action:           cellAt(cells, idx, colAction),
			Therapy:          cellAt(cells, idx, colTherapy),
			StaffName:        cellAt(cells, idx, colStaff),
			ServiceFee:       tariff - cogs,
			MedicineCost:     cogs,
			TotalPrice:       tariff,
		}
		if err := s.records.CreateRecord(ctx, rec); err != nil {
			return fmt.Errorf("record: %w", err)
		}
		return s.ledger.RecordVisitIncome(ctx, rec.ID, visitDate,
			"Service fee - "+p.Name, finance.CategoryMedicalService, tariff)
	})
	if err != nil {
		return err
	}
	// Count the patient only once the row's transaction committed. A rolled
	// back row must not inflate the tally.
	if createdPatient {
		result.NewPatients++
	}
	return nil
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
