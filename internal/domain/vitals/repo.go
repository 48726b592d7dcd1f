package vitals

import (
	"context"

	"github.com/google/uuid"
)

// RecordRepository persists health records. All listings are newest first,
// ordered by created_at and then by insertion sequence.
type RecordRepository interface {
	// Create inserts the record and assigns its ID and Seq. Returns
	// identity.ErrUnknownAccount when the patient does not exist.
	Create(ctx context.Context, r *HealthRecord) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*HealthRecord, int, error)
	// ListByPatientAfter returns up to limit records that come strictly after
	// the cursor.
	ListByPatientAfter(ctx context.Context, patientID uuid.UUID, after Cursor, limit int) ([]*HealthRecord, error)
	Count(ctx context.Context) (int, error)
}
