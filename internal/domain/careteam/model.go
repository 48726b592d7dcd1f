package careteam

import (
	"time"

	"github.com/google/uuid"
)

// Assignment authorizes a doctor to act on one patient's data.
type Assignment struct {
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Activity bands a patient by how recently they recorded vitals.
type Activity string

const (
	ActivityNone       Activity = "none"
	ActivityVeryActive Activity = "very-active"
	ActivityActive     Activity = "active"
	ActivityModerate   Activity = "moderate"
	ActivityInactive   Activity = "inactive"
)

// ClassifyActivity bands the whole days elapsed between last and now:
// at most 1 is very active, at most 3 active, at most 7 moderate, anything
// older inactive. A nil last means the patient has never recorded.
func ClassifyActivity(last *time.Time, now time.Time) Activity {
	if last == nil {
		return ActivityNone
	}
	days := int(now.Sub(*last) / (24 * time.Hour))
	switch {
	case days <= 1:
		return ActivityVeryActive
	case days <= 3:
		return ActivityActive
	case days <= 7:
		return ActivityModerate
	default:
		return ActivityInactive
	}
}

// PatientSummary is one row of a doctor's patient list.
type PatientSummary struct {
	PatientID    uuid.UUID  `json:"patient_id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	AssignedAt   time.Time  `json:"assigned_at"`
	RecordCount  int        `json:"record_count"`
	LastRecordAt *time.Time `json:"last_record_at,omitempty"`
	Activity     Activity   `json:"activity"`
}

// DoctorSummary is one row of a patient's care team.
type DoctorSummary struct {
	DoctorID   uuid.UUID `json:"doctor_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	AssignedAt time.Time `json:"assigned_at"`
}
