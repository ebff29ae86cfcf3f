package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a registered patient of the practice. The obstetric fields
// (husband name, LMP date) are filled in lazily when an antenatal visit is
// recorded.
type Patient struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	NIK         *string    `db:"nik" json:"nik,omitempty"`
	Name        string     `db:"name" json:"name"`
	BirthDate   *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Gender      *string    `db:"gender" json:"gender,omitempty"`
	Phone       *string    `db:"phone" json:"phone,omitempty"`
	Address     *string    `db:"address" json:"address,omitempty"`
	PatientType *string    `db:"patient_type" json:"patient_type,omitempty"`
	HusbandName *string    `db:"husband_name" json:"husband_name,omitempty"`
	LMPDate     *time.Time `db:"lmp_date" json:"lmp_date,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// AgeAt returns the patient's age in whole years at the given date, or 0
// when the birth date is unknown.
func (p *Patient) AgeAt(at time.Time) int {
	if p.BirthDate == nil {
		return 0
	}
	years := at.Year() - p.BirthDate.Year()
	anniversary := time.Date(at.Year(), p.BirthDate.Month(), p.BirthDate.Day(), 0, 0, 0, 0, at.Location())
	if at.Before(anniversary) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
