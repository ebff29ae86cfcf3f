package queue

import (
	"time"

	"github.com/google/uuid"
)

// Queue entry statuses.
const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in-progress"
	StatusDone       = "done"
	StatusCancelled  = "cancelled"
)

// Practice sessions a booking can target.
const (
	SessionMorning   = "morning"
	SessionAfternoon = "afternoon"
	SessionEvening   = "evening"
)

// transitions lists the allowed status edges. A done or cancelled entry is
// terminal.
var transitions = map[string][]string{
	StatusWaiting:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusDone, StatusCancelled},
}

// CanTransition reports whether a queue entry may move from one status to
// another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Entry is one booking in the daily queue. PatientName is snapshotted so
// the board renders without joins.
type Entry struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	PatientName string    `db:"patient_name" json:"patient_name"`
	QueueDate   time.Time `db:"queue_date" json:"queue_date"`
	Session     string    `db:"session" json:"session"`
	ServiceType string    `db:"service_type" json:"service_type"`
	Complaint   *string   `db:"complaint" json:"complaint,omitempty"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
