package careteam

import (
	"context"

	"github.com/google/uuid"
)

type AssignmentRepository interface {
	// Create inserts the pair. Returns ErrDuplicateAssignment for an existing
	// pair and identity.ErrUnknownAccount when either id has no account.
	Create(ctx context.Context, a *Assignment) error
	Delete(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error)
	Exists(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error)
	// ListPatients returns the doctor's patients with record statistics,
	// ordered by name. Activity is left for the service to fill in.
	ListPatients(ctx context.Context, doctorID uuid.UUID) ([]*PatientSummary, error)
	ListDoctors(ctx context.Context, patientID uuid.UUID) ([]*DoctorSummary, error)
	Count(ctx context.Context) (int, error)
}
