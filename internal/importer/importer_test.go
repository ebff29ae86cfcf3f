package importer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/bidancare/clinic/internal/domain/patient"
	"github.com/bidancare/clinic/internal/domain/visit"
)

type fakePatients struct {
	byKey map[string]*patient.Patient
}

func (f *fakePatients) FindOrCreate(_ context.Context, p *patient.Patient) (*patient.Patient, bool, error) {
	addr := ""
	if p.Address != nil {
		addr = *p.Address
	}
	key := strings.ToUpper(p.Name) + "|" + strings.ToUpper(addr)
	if existing, ok := f.byKey[key]; ok {
		return existing, false, nil
	}
	p.ID = uuid.New()
	f.byKey[key] = p
	return p, true, nil
}

type fakeRecords struct {
	records []*visit.MedicalRecord
	failFor string
}

func (f *fakeRecords) CreateRecord(_ context.Context, r *visit.MedicalRecord) error {
	if f.failFor != "" && r.PatientName == f.failFor {
		return fmt.Errorf("boom")
	}
	r.ID = uuid.New()
	f.records = append(f.records, r)
	return nil
}

type fakeLedger struct {
	entries []int64
}

func (f *fakeLedger) RecordVisitIncome(_ context.Context, _ uuid.UUID, _ time.Time, _, _ string, amount int64) error {
	if amount <= 0 {
		return nil
	}
	f.entries = append(f.entries, amount)
	return nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf
}

var header = []interface{}{"NAMA", "ALAMAT", "TGL", "UMUR", "TARIF", "HPP",
	"DIAGNOSA", "TINDAKAN", "TERAPI", "BB", "TD", "N", "S", "SPO", "PETUGAS"}

func newTestService(records *fakeRecords, ledger *fakeLedger) (*Service, *fakePatients) {
	patients := &fakePatients{byKey: make(map[string]*patient.Patient)}
	svc := NewService(patients, records, ledger, passthroughTx{}, zerolog.Nop())
	return svc, patients
}

func TestImportWorkbook(t *testing.T) {
	records := &fakeRecords{}
	ledger := &fakeLedger{}
	svc, patients := newTestService(records, ledger)

	buf := buildWorkbook(t, [][]interface{}{
		header,
		{"Siti Rahma", "Jl. Melati 4", "10/3/2025", "29", "Rp 80.000", "30000",
			"ISPA", "Pemeriksaan", "Paracetamol", "55", "110/70", "80", "36.5", "98", "Bidan Ani"},
		{"Siti Rahma", "Jl. Melati 4", "12/3/2025", "29", "50000", "",
			"Kontrol", "Pemeriksaan", "", "", "", "", "", "", "Bidan Ani"},
		{"", "", "", "", "", "", "", "", "", "", "", "", "", "", ""},
		{"Dewi Lestari", "Jl. Anggrek 2", "3 BLN LALU", "3 BLN", "0", "",
			"Imunisasi", "Imunisasi dasar", "", "", "", "", "", "", "Bidan Ani"},
	})

	result, err := svc.ImportWorkbook(context.Background(), buf)
	if err != nil {
		t.Fatalf("ImportWorkbook: %v", err)
	}
	if result.Imported != 3 {
		t.Errorf("imported = %d, want 3", result.Imported)
	}
	if result.Failed != 0 {
		t.Errorf("failed = %d, want 0 (%v)", result.Failed, result.Log)
	}
	if result.NewPatients != 2 {
		t.Errorf("new patients = %d, want 2 (dedup by name+address)", result.NewPatients)
	}
	if len(patients.byKey) != 2 {
		t.Errorf("patients stored = %d, want 2", len(patients.byKey))
	}

	first := records.records[0]
	if first.ServiceFee != 50000 {
		t.Errorf("service_fee = %d, want 50000 (tariff minus cogs)", first.ServiceFee)
	}
	if first.MedicineCost != 30000 {
		t.Errorf("medicine_cost = %d, want 30000", first.MedicineCost)
	}
	if first.TotalPrice != 80000 {
		t.Errorf("total_price = %d, want 80000", first.TotalPrice)
	}
	if !first.VisitDate.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("visit_date = %s", first.VisitDate.Format("2006-01-02"))
	}

	baby := records.records[2]
	if baby.PatientAge != 0 {
		t.Errorf("month-old age = %d, want 0", baby.PatientAge)
	}

	// Only the two priced rows produce income entries.
	if len(ledger.entries) != 2 {
		t.Errorf("income entries = %d, want 2", len(ledger.entries))
	}
}

func TestImportCountsFailuresAndContinues(t *testing.T) {
	records := &fakeRecords{failFor: "Broken Row"}
	ledger := &fakeLedger{}
	svc, _ := newTestService(records, ledger)

	buf := buildWorkbook(t, [][]interface{}{
		header,
		{"Broken Row", "Jl. Rusak 1", "10/3/2025", "30", "10000", "", "X", "", "", "", "", "", "", "", ""},
		{"Siti Rahma", "Jl. Melati 4", "10/3/2025", "29", "10000", "", "X", "", "", "", "", "", "", "", ""},
	})

	result, err := svc.ImportWorkbook(context.Background(), buf)
	if err != nil {
		t.Fatalf("ImportWorkbook: %v", err)
	}
	if result.Imported != 1 {
		t.Errorf("imported = %d, want 1", result.Imported)
	}
	if result.Failed != 1 {
		t.Errorf("failed = %d, want 1", result.Failed)
	}
	if len(result.Log) != 1 || !strings.Contains(result.Log[0], "Broken Row") {
		t.Errorf("log = %v", result.Log)
	}
	// Both rows bring an unseen patient, but only the committed row counts.
	if result.NewPatients != 1 {
		t.Errorf("new patients = %d, want 1", result.NewPatients)
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	svc, _ := newTestService(&fakeRecords{}, &fakeLedger{})

	if _, err := svc.ImportWorkbook(context.Background(), strings.NewReader("not a workbook")); err == nil {
		t.Error("expected error for a non-xlsx stream")
	}
}
