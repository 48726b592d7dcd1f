package inbox

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MaxMessageLength is the longest alert text accepted, in characters.
const MaxMessageLength = 1000

// AlertState is the delivery state of an alert. The only transition is
// sent to seen.
type AlertState string

const (
	StateSent AlertState = "sent"
	StateSeen AlertState = "seen"
)

func (s AlertState) Valid() bool {
	return s == StateSent || s == StateSeen
}

// Alert maps to the alert table. DoctorName and PatientName are filled in on
// reads and are not stored.
type Alert struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	DoctorID  uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	PatientID uuid.UUID  `db:"patient_id" json:"patient_id"`
	Message   string     `db:"message" json:"message"`
	State     AlertState `db:"state" json:"state"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	SeenAt    *time.Time `db:"seen_at" json:"seen_at,omitempty"`
	Seq       int64      `db:"seq" json:"-"`

	DoctorName  string `db:"-" json:"doctor_name,omitempty"`
	PatientName string `db:"-" json:"patient_name,omitempty"`
}

// Window is a relative date range for a doctor's sent list.
type Window string

const (
	WindowAll   Window = ""
	WindowToday Window = "today"
	Window7d    Window = "7d"
	Window30d   Window = "30d"
	Window365d  Window = "365d"
)

// ParseWindow accepts the query values the portal uses; "all" and the empty
// string both mean no window.
func ParseWindow(s string) (Window, error) {
	switch w := Window(s); w {
	case WindowAll, WindowToday, Window7d, Window30d, Window365d:
		return w, nil
	case "all":
		return WindowAll, nil
	}
	return "", fmt.Errorf("unknown window %q", s)
}

// Since returns the earliest creation time the window admits, or the zero
// time for no window. "today" starts at midnight in now's location.
func (w Window) Since(now time.Time) time.Time {
	switch w {
	case WindowToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case Window7d:
		return now.AddDate(0, 0, -7)
	case Window30d:
		return now.AddDate(0, 0, -30)
	case Window365d:
		return now.AddDate(0, 0, -365)
	}
	return time.Time{}
}

// Filter narrows a doctor's sent list. Zero values match everything.
type Filter struct {
	State     AlertState
	PatientID uuid.UUID
	Window    Window
}

// SenderQuery is the store-level form of Filter. DoctorID is always applied.
type SenderQuery struct {
	DoctorID  uuid.UUID
	State     AlertState
	PatientID uuid.UUID
	Since     time.Time
}
