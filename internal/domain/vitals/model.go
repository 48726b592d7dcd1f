package vitals

import (
	"time"

	"github.com/google/uuid"
)

// Vitals is one set of parsed measurements.
type Vitals struct {
	Systolic  int     `json:"systolic"`
	Diastolic int     `json:"diastolic"`
	Sugar     float64 `json:"sugar"`
	HeartRate int     `json:"heart_rate"`
}

// RawVitals holds the four measurements exactly as submitted.
type RawVitals struct {
	Systolic  string
	Diastolic string
	Sugar     string
	HeartRate string
}

// Wellness is the classification derived from a set of vitals. It is never
// stored.
type Wellness string

const (
	WellnessHealthy Wellness = "healthy"
	WellnessAlert   Wellness = "alert"
)

// HealthRecord maps to the health_record table. Records are immutable.
type HealthRecord struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Systolic  int       `db:"systolic" json:"systolic"`
	Diastolic int       `db:"diastolic" json:"diastolic"`
	Sugar     float64   `db:"sugar" json:"sugar"`
	HeartRate int       `db:"heart_rate" json:"heart_rate"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	// Seq breaks ties between records with the same timestamp; higher is newer.
	Seq int64 `db:"seq" json:"-"`

	Wellness Wellness `db:"-" json:"wellness,omitempty"`
}

// Vitals returns the measurements of the record.
func (r *HealthRecord) Vitals() Vitals {
	return Vitals{Systolic: r.Systolic, Diastolic: r.Diastolic, Sugar: r.Sugar, HeartRate: r.HeartRate}
}

// Cursor marks a position in a patient's history. The zero Cursor is the
// newest end.
type Cursor struct {
	CreatedAt time.Time
	Seq       int64
}

// IsZero reports whether c is the start of the history.
func (c Cursor) IsZero() bool {
	return c.CreatedAt.IsZero() && c.Seq == 0
}

// CursorOf returns the position just after r in descending order.
func CursorOf(r *HealthRecord) Cursor {
	return Cursor{CreatedAt: r.CreatedAt, Seq: r.Seq}
}

// Admits reports whether r comes strictly after the cursor in newest-first
// order.
func (c Cursor) Admits(r *HealthRecord) bool {
	if c.IsZero() {
		return true
	}
	if r.CreatedAt.Equal(c.CreatedAt) {
		return r.Seq < c.Seq
	}
	return r.CreatedAt.Before(c.CreatedAt)
}

// Summary aggregates a patient's history.
type Summary struct {
	PatientID uuid.UUID     `json:"patient_id"`
	Total     int           `json:"total"`
	Healthy   int           `json:"healthy"`
	Alert     int           `json:"alert"`
	Latest    *HealthRecord `json:"latest,omitempty"`
}
