package inbox

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AlertRepository persists alerts. Listings are newest first and carry the
// counterpart's display name.
type AlertRepository interface {
	// Create inserts the alert and assigns its ID and Seq. Returns
	// identity.ErrUnknownAccount when either account does not exist.
	Create(ctx context.Context, a *Alert) error
	ListBySender(ctx context.Context, q SenderQuery) ([]*Alert, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Alert, error)
	// MarkSeen moves the alert matching (alertID, patientID, sent) to seen and
	// reports whether a row changed.
	MarkSeen(ctx context.Context, alertID, patientID uuid.UUID, at time.Time) (bool, error)
	CountUnseen(ctx context.Context, patientID uuid.UUID) (int, error)
	// CountByState returns totals across all alerts.
	CountByState(ctx context.Context) (sent, seen int, err error)
}
