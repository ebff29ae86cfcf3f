package visit

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bidancare/clinic/internal/domain/finance"
	"github.com/bidancare/clinic/internal/domain/medicine"
	"github.com/bidancare/clinic/internal/domain/patient"
)

type mockRepo struct {
	records map[uuid.UUID]*MedicalRecord
	items   map[uuid.UUID][]*Item
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		records: make(map[uuid.UUID]*MedicalRecord),
		items:   make(map[uuid.UUID][]*Item),
	}
}

func (m *mockRepo) CreateRecord(_ context.Context, r *MedicalRecord) error {
	r.ID = uuid.New()
	cp := *r
	m.records[r.ID] = &cp
	return nil
}

func (m *mockRepo) GetRecord(_ context.Context, id uuid.UUID) (*MedicalRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockRepo) UpdateRecord(_ context.Context, r *MedicalRecord) error {
	if _, ok := m.records[r.ID]; !ok {
		return ErrNotFound
	}
	cp := *r
	m.records[r.ID] = &cp
	return nil
}

func (m *mockRepo) DeleteRecord(_ context.Context, id uuid.UUID) error {
	if _, ok := m.records[id]; !ok {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *mockRepo) ListRecords(_ context.Context, _ ListFilter, _, _ int) ([]*MedicalRecord, int, error) {
	out := make([]*MedicalRecord, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	return out, len(out), nil
}

func (m *mockRepo) CountByPatient(_ context.Context, patientID uuid.UUID) (int, error) {
	n := 0
	for _, r := range m.records {
		if r.PatientID == patientID {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) CreateItem(_ context.Context, item *Item) error {
	item.ID = uuid.New()
	cp := *item
	m.items[item.VisitID] = append(m.items[item.VisitID], &cp)
	return nil
}

func (m *mockRepo) ListItemsByVisit(_ context.Context, visitID uuid.UUID) ([]*Item, error) {
	return m.items[visitID], nil
}

func (m *mockRepo) DeleteItemsByVisit(_ context.Context, visitID uuid.UUID) error {
	delete(m.items, visitID)
	return nil
}

type fakePatients struct {
	patients map[uuid.UUID]*patient.Patient
	lmp      map[uuid.UUID]*time.Time
	husband  map[uuid.UUID]*string
}

func newFakePatients() *fakePatients {
	return &fakePatients{
		patients: make(map[uuid.UUID]*patient.Patient),
		lmp:      make(map[uuid.UUID]*time.Time),
		husband:  make(map[uuid.UUID]*string),
	}
}

func (f *fakePatients) Get(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, patient.ErrNotFound
	}
	return p, nil
}

func (f *fakePatients) UpsertObstetric(_ context.Context, id uuid.UUID, lmpDate *time.Time, husbandName *string) error {
	if lmpDate != nil {
		f.lmp[id] = lmpDate
	}
	if husbandName != nil {
		f.husband[id] = husbandName
	}
	return nil
}

type fakeMedicines struct {
	meds map[uuid.UUID]*medicine.Medicine
}

func (f *fakeMedicines) Get(_ context.Context, id uuid.UUID) (*medicine.Medicine, error) {
	m, ok := f.meds[id]
	if !ok {
		return nil, medicine.ErrNotFound
	}
	return m, nil
}

func (f *fakeMedicines) Debit(_ context.Context, id uuid.UUID, qty int) error {
	if m, ok := f.meds[id]; ok {
		m.Stock -= qty
	}
	return nil
}

func (f *fakeMedicines) Credit(_ context.Context, id uuid.UUID, qty int) error {
	if m, ok := f.meds[id]; ok {
		m.Stock += qty
	}
	return nil
}

// fakeLedger keeps one amount per visit and category, like the real
// reconciler does.
type fakeLedger struct {
	entries map[uuid.UUID]map[string]int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{entries: make(map[uuid.UUID]map[string]int64)}
}

func (f *fakeLedger) RecordVisitIncome(_ context.Context, visitID uuid.UUID, _ time.Time, _, category string, amount int64) error {
	if amount <= 0 {
		return nil
	}
	if f.entries[visitID] == nil {
		f.entries[visitID] = make(map[string]int64)
	}
	f.entries[visitID][category] = amount
	return nil
}

func (f *fakeLedger) ReconcileVisitIncome(ctx context.Context, visitID uuid.UUID, txDate time.Time, description, category string, amount int64) error {
	if amount <= 0 {
		delete(f.entries[visitID], category)
		return nil
	}
	return f.RecordVisitIncome(ctx, visitID, txDate, description, category, amount)
}

func (f *fakeLedger) DeleteVisitTransactions(_ context.Context, visitID uuid.UUID) error {
	delete(f.entries, visitID)
	return nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	svc       *Service
	repo      *mockRepo
	patients  *fakePatients
	medicines *fakeMedicines
	ledger    *fakeLedger

	patientID uuid.UUID
	medID     uuid.UUID
}

func newFixture(strict bool) *fixture {
	repo := newMockRepo()
	patients := newFakePatients()
	medicines := &fakeMedicines{meds: make(map[uuid.UUID]*medicine.Medicine)}
	ledger := newFakeLedger()

	f := &fixture{
		repo:      repo,
		patients:  patients,
		medicines: medicines,
		ledger:    ledger,
		patientID: uuid.New(),
		medID:     uuid.New(),
	}
	birth := time.Date(1995, 6, 15, 0, 0, 0, 0, time.UTC)
	addr := "Jl. Melati 4"
	patients.patients[f.patientID] = &patient.Patient{
		ID:        f.patientID,
		Name:      "Siti Rahma",
		BirthDate: &birth,
		Address:   &addr,
	}
	medicines.meds[f.medID] = &medicine.Medicine{
		ID:    f.medID,
		Name:  "Paracetamol",
		Price: 1000,
		Stock: 100,
	}
	f.svc = NewService(repo, patients, medicines, ledger, passthroughTx{}, strict, zerolog.Nop())
	return f
}

func (f *fixture) input() *Input {
	return &Input{
		PatientID:  f.patientID,
		VisitDate:  time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
		Diagnosis:  "ISPA ringan",
		Action:     "Pemeriksaan umum",
		StaffName:  "Bidan Ani",
		ServiceFee: 50000,
		Cart:       []CartLine{{MedicineID: f.medID, Quantity: 3}},
	}
}

func TestCreateCompilesVisit(t *testing.T) {
	f := newFixture(false)

	rec, err := f.svc.Create(context.Background(), f.input())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := f.medicines.meds[f.medID].Stock; got != 97 {
		t.Errorf("stock = %d, want 97", got)
	}
	if rec.MedicineCost != 3000 {
		t.Errorf("medicine_cost = %d, want 3000", rec.MedicineCost)
	}
	if rec.TotalPrice != 53000 {
		t.Errorf("total_price = %d, want 53000", rec.TotalPrice)
	}
	if rec.Therapy != "Paracetamol (3)" {
		t.Errorf("therapy = %q", rec.Therapy)
	}
	if rec.PatientAge != 29 {
		t.Errorf("patient_age = %d, want 29", rec.PatientAge)
	}
	if rec.PatientName != "Siti Rahma" {
		t.Errorf("patient_name = %q", rec.PatientName)
	}
	if len(f.repo.items[rec.ID]) != 1 {
		t.Errorf("items stored = %d, want 1", len(f.repo.items[rec.ID]))
	}
	entries := f.ledger.entries[rec.ID]
	if entries[finance.CategoryMedicalService] != 50000 {
		t.Errorf("service fee entry = %d, want 50000", entries[finance.CategoryMedicalService])
	}
	if entries[finance.CategoryMedicine] != 3000 {
		t.Errorf("medicine entry = %d, want 3000", entries[finance.CategoryMedicine])
	}
}

func TestCreateSkipsZeroAmountEntries(t *testing.T) {
	f := newFixture(false)
	in := f.input()
	in.ServiceFee = 0
	in.Cart = nil

	rec, err := f.svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(f.ledger.entries[rec.ID]) != 0 {
		t.Errorf("entries = %v, want none", f.ledger.entries[rec.ID])
	}
}

func TestEditRecreditsOldItemsFirst(t *testing.T) {
	f := newFixture(false)

	rec, err := f.svc.Create(context.Background(), f.input())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	in := f.input()
	in.Cart[0].Quantity = 5
	if _, err := f.svc.Edit(context.Background(), rec.ID, in); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if got := f.medicines.meds[f.medID].Stock; got != 95 {
		t.Errorf("stock after edit = %d, want 95", got)
	}
	if got := f.ledger.entries[rec.ID][finance.CategoryMedicine]; got != 5000 {
		t.Errorf("medicine entry = %d, want 5000", got)
	}
}

func TestEditUnchangedCartLeavesStockAlone(t *testing.T) {
	f := newFixture(false)

	rec, err := f.svc.Create(context.Background(), f.input())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.svc.Edit(context.Background(), rec.ID, f.input()); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if got := f.medicines.meds[f.medID].Stock; got != 97 {
		t.Errorf("stock after no-op edit = %d, want 97", got)
	}
}

func TestEditDroppedFeeRemovesEntry(t *testing.T) {
	f := newFixture(false)

	rec, err := f.svc.Create(context.Background(), f.input())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	in := f.input()
	in.ServiceFee = 0
	if _, err := f.svc.Edit(context.Background(), rec.ID, in); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if _, ok := f.ledger.entries[rec.ID][finance.CategoryMedicalService]; ok {
		t.Errorf("service fee entry survived a zeroed fee")
	}
}

func TestDeleteRestoresStockAndRemovesEverything(t *testing.T) {
	f := newFixture(false)

	rec, err := f.svc.Create(context.Background(), f.input())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := f.svc.Delete(context.Background(), rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := f.medicines.meds[f.medID].Stock; got != 100 {
		t.Errorf("stock after delete = %d, want 100", got)
	}
	if len(f.repo.records) != 0 {
		t.Errorf("record survived delete")
	}
	if len(f.repo.items[rec.ID]) != 0 {
		t.Errorf("items survived delete")
	}
	if len(f.ledger.entries[rec.ID]) != 0 {
		t.Errorf("ledger entries survived delete")
	}
}

func TestUnknownCartMedicineLenientSkips(t *testing.T) {
	f := newFixture(false)
	in := f.input()
	in.Cart = append(in.Cart, CartLine{MedicineID: uuid.New(), Quantity: 2})

	rec, err := f.svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.MedicineCost != 3000 {
		t.Errorf("medicine_cost = %d, want 3000 (unknown line skipped)", rec.MedicineCost)
	}
	if len(f.repo.items[rec.ID]) != 1 {
		t.Errorf("items = %d, want 1", len(f.repo.items[rec.ID]))
	}
}

func TestUnknownCartMedicineStrictFails(t *testing.T) {
	f := newFixture(true)
	in := f.input()
	in.Cart = []CartLine{{MedicineID: uuid.New(), Quantity: 2}}

	if _, err := f.svc.Create(context.Background(), in); err == nil {
		t.Fatal("expected error for unknown medicine in strict mode")
	}
	if len(f.repo.records) != 0 {
		t.Errorf("record written despite failed compile")
	}
}

func TestCreateANCUpsertsPatientAndStoresColumns(t *testing.T) {
	f := newFixture(false)
	lmp := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	husband := "Budi Santoso"
	gravida := "2"
	djj := "140"
	in := f.input()
	in.ANC = &ANCInput{
		LMPDate:        &lmp,
		HusbandName:    &husband,
		GravidaCode:    &gravida,
		FetalHeartRate: &djj,
	}

	rec, err := f.svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !rec.ANC {
		t.Error("record not flagged as ANC")
	}
	if rec.GravidaCode == nil || *rec.GravidaCode != "2" {
		t.Errorf("gravida_code not stored")
	}
	if got := f.patients.lmp[f.patientID]; got == nil || !got.Equal(lmp) {
		t.Errorf("lmp_date not upserted onto patient")
	}
	if got := f.patients.husband[f.patientID]; got == nil || *got != husband {
		t.Errorf("husband_name not upserted onto patient")
	}
}

func TestLegacyRendering(t *testing.T) {
	gravida := "3"
	usg := "transabdominal"
	djj := "142"
	leo1, leo2 := "3 jari bawah px", "puka"
	rec := &MedicalRecord{
		Diagnosis:      "hamil 32 minggu",
		Action:         "ANC rutin",
		ANC:            true,
		GravidaCode:    &gravida,
		USGType:        &usg,
		FetalHeartRate: &djj,
		Leopold1:       &leo1,
		Leopold2:       &leo2,
	}

	if got := rec.LegacyDiagnosis(); got != "G3 - hamil 32 minggu" {
		t.Errorf("LegacyDiagnosis = %q", got)
	}
	action := rec.LegacyAction("Budi Santoso")
	for _, want := range []string{"[ANC Data]", "Suami: Budi Santoso", "USG: transabdominal", "DJJ: 142", "Leo 1-4: 3 jari bawah px/puka//"} {
		if !strings.Contains(action, want) {
			t.Errorf("LegacyAction missing %q in %q", want, action)
		}
	}

	plain := &MedicalRecord{Diagnosis: "ISPA", Action: "Pemeriksaan"}
	if got := plain.LegacyDiagnosis(); got != "ISPA" {
		t.Errorf("non-ANC LegacyDiagnosis = %q", got)
	}
	if got := plain.LegacyAction(""); got != "Pemeriksaan" {
		t.Errorf("non-ANC LegacyAction = %q", got)
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(false)

	cases := []struct {
		name   string
		mutate func(*Input)
	}{
		{"missing patient", func(in *Input) { in.PatientID = uuid.Nil }},
		{"negative fee", func(in *Input) { in.ServiceFee = -1 }},
		{"zero cart qty", func(in *Input) { in.Cart[0].Quantity = 0 }},
		{"bad risk level", func(in *Input) { bad := "XX"; in.RiskLevel = &bad }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := f.input()
			tc.mutate(in)
			if _, err := f.svc.Create(context.Background(), in); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCountByPatient(t *testing.T) {
	f := newFixture(false)

	for i := 0; i < 3; i++ {
		if _, err := f.svc.Create(context.Background(), f.input()); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	n, err := f.svc.CountByPatient(context.Background(), f.patientID)
	if err != nil {
		t.Fatalf("CountByPatient: %v", err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}
