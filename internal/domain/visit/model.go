package visit

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Risk levels recorded on a visit.
const (
	RiskLow      = "RR"  // resiko rendah
	RiskHigh     = "RT"  // resiko tinggi
	RiskVeryHigh = "RST" // resiko sangat tinggi
)

// MedicalRecord is one finished visit. Patient name, address and age are
// snapshotted at visit time so later edits to the patient card do not
// rewrite history.
type MedicalRecord struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	VisitDate time.Time `db:"visit_date" json:"visit_date"`

	PatientName    string  `db:"patient_name" json:"patient_name"`
	PatientAddress *string `db:"patient_address" json:"patient_address,omitempty"`
	PatientAge     int     `db:"patient_age" json:"patient_age"`

	Weight           *string `db:"weight" json:"weight,omitempty"`
	BloodPressure    *string `db:"blood_pressure" json:"blood_pressure,omitempty"`
	HeartRate        *string `db:"heart_rate" json:"heart_rate,omitempty"`
	Temperature      *string `db:"temperature" json:"temperature,omitempty"`
	OxygenSaturation *string `db:"oxygen_saturation" json:"oxygen_saturation,omitempty"`

	Diagnosis string  `db:"diagnosis" json:"diagnosis"`
	Action    string  `db:"action" json:"action"`
	Therapy   string  `db:"therapy" json:"therapy"`
	StaffName string  `db:"staff_name" json:"staff_name"`
	RiskLevel *string `db:"risk_level" json:"risk_level,omitempty"`

	ServiceFee   int64 `db:"service_fee" json:"service_fee"`
	MedicineCost int64 `db:"medicine_cost" json:"medicine_cost"`
	TotalPrice   int64 `db:"total_price" json:"total_price"`

	ANC            bool    `db:"anc" json:"anc"`
	GravidaCode    *string `db:"gravida_code" json:"gravida_code,omitempty"`
	USGType        *string `db:"usg_type" json:"usg_type,omitempty"`
	Leopold1       *string `db:"leopold1" json:"leopold1,omitempty"`
	Leopold2       *string `db:"leopold2" json:"leopold2,omitempty"`
	Leopold3       *string `db:"leopold3" json:"leopold3,omitempty"`
	Leopold4       *string `db:"leopold4" json:"leopold4,omitempty"`
	FetalHeartRate *string `db:"fetal_heart_rate" json:"fetal_heart_rate,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Item is one medicine line on a visit. PriceAtSale freezes the unit price
// at the moment of sale so later price changes do not rewrite old totals.
type Item struct {
	ID          uuid.UUID `db:"id" json:"id"`
	VisitID     uuid.UUID `db:"visit_id" json:"visit_id"`
	MedicineID  uuid.UUID `db:"medicine_id" json:"medicine_id"`
	Name        string    `db:"name" json:"name"`
	Quantity    int       `db:"qty" json:"qty"`
	PriceAtSale int64     `db:"price_at_sale" json:"price_at_sale"`
	Subtotal    int64     `db:"subtotal" json:"subtotal"`
}

// CartLine is one requested medicine on an incoming visit.
type CartLine struct {
	MedicineID uuid.UUID `json:"medicine_id"`
	Quantity   int       `json:"qty"`
}

// ANCInput carries the antenatal fields of a pregnancy check-up.
type ANCInput struct {
	LMPDate        *time.Time `json:"lmp_date,omitempty"`
	HusbandName    *string    `json:"husband_name,omitempty"`
	GravidaCode    *string    `json:"gravida_code,omitempty"`
	USGType        *string    `json:"usg_type,omitempty"`
	Leopold1       *string    `json:"leopold1,omitempty"`
	Leopold2       *string    `json:"leopold2,omitempty"`
	Leopold3       *string    `json:"leopold3,omitempty"`
	Leopold4       *string    `json:"leopold4,omitempty"`
	FetalHeartRate *string    `json:"fetal_heart_rate,omitempty"`
}

// Input is everything the front desk submits for a visit.
type Input struct {
	PatientID uuid.UUID `json:"patient_id"`
	VisitDate time.Time `json:"visit_date"`

	Weight           *string `json:"weight,omitempty"`
	BloodPressure    *string `json:"blood_pressure,omitempty"`
	HeartRate        *string `json:"heart_rate,omitempty"`
	Temperature      *string `json:"temperature,omitempty"`
	OxygenSaturation *string `json:"oxygen_saturation,omitempty"`

	Diagnosis string  `json:"diagnosis"`
	Action    string  `json:"action"`
	StaffName string  `json:"staff_name"`
	RiskLevel *string `json:"risk_level,omitempty"`

	ServiceFee int64      `json:"service_fee"`
	ANC        *ANCInput  `json:"anc,omitempty"`
	Cart       []CartLine `json:"cart,omitempty"`
}

// LegacyDiagnosis renders the diagnosis the way the old paper forms did,
// with the gravida code prefixed ("G2 - hamil 32 minggu"). Display only.
func (r *MedicalRecord) LegacyDiagnosis() string {
	if !r.ANC || r.GravidaCode == nil || *r.GravidaCode == "" {
		return r.Diagnosis
	}
	return fmt.Sprintf("G%s - %s", *r.GravidaCode, r.Diagnosis)
}

// LegacyAction renders the action text with the ANC block appended in the
// old export format. Display only; the structured columns stay the source
// of truth.
func (r *MedicalRecord) LegacyAction(husbandName string) string {
	if !r.ANC {
		return r.Action
	}
	var b strings.Builder
	b.WriteString(r.Action)
	b.WriteString("\n\n[ANC Data]")
	b.WriteString("\nSuami: " + husbandName)
	b.WriteString("\nUSG: " + deref(r.USGType))
	b.WriteString("\nDJJ: " + deref(r.FetalHeartRate))
	b.WriteString(fmt.Sprintf("\nLeo 1-4: %s/%s/%s/%s",
		deref(r.Leopold1), deref(r.Leopold2), deref(r.Leopold3), deref(r.Leopold4)))
	return b.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
