package obstetrics

import "time"

// Pregnancy watch statuses derived from gestational age.
const (
	StatusRoutine            = "routine"
	StatusFetalMovementWatch = "fetal movement watch"
	StatusLaborWatch         = "labor watch"
)

const gestationDays = 280

// GestationalWeeks returns the whole weeks of gestation at the given date,
// rounding partial weeks up. Zero when the date precedes the LMP.
func GestationalWeeks(lmp, at time.Time) int {
	days := int(at.Sub(lmp).Hours() / 24)
	if days < 0 {
		return 0
	}
	return (days + 6) / 7
}

// DueDate estimates delivery at 280 days after the last menstrual period.
func DueDate(lmp time.Time) time.Time {
	return lmp.AddDate(0, 0, gestationDays)
}

// Trimester maps gestational weeks onto the trimester number (1..3).
func Trimester(weeks int) int {
	switch {
	case weeks <= 13:
		return 1
	case weeks <= 27:
		return 2
	default:
		return 3
	}
}

// WatchStatus grades how closely a pregnancy should be followed.
func WatchStatus(weeks int) string {
	switch {
	case weeks >= 37:
		return StatusLaborWatch
	case Trimester(weeks) == 3:
		return StatusFetalMovementWatch
	default:
		return StatusRoutine
	}
}
