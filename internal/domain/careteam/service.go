package careteam

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/identity"
)

// AccountLookup resolves account ids for role checks.
type AccountLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*identity.Account, error)
}

type Service struct {
	assignments AssignmentRepository
	accounts    AccountLookup
	now         func() time.Time
	logger      zerolog.Logger
}

func NewService(assignments AssignmentRepository, accounts AccountLookup) *Service {
	return &Service{
		assignments: assignments,
		accounts:    accounts,
		now:         time.Now,
		logger:      zerolog.Nop(),
	}
}

func (s *Service) SetLogger(l zerolog.Logger) { s.logger = l }

func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Assign links a doctor to a patient. Both ids must resolve to accounts of
// the matching role; the doctor does not need to be approved yet.
func (s *Service) Assign(ctx context.Context, doctorID, patientID uuid.UUID) (*Assignment, error) {
	if err := s.requireRole(ctx, doctorID, identity.RoleDoctor); err != nil {
		return nil, err
	}
	if err := s.requireRole(ctx, patientID, identity.RolePatient); err != nil {
		return nil, err
	}

	a := &Assignment{DoctorID: doctorID, PatientID: patientID, CreatedAt: s.now().UTC()}
	if err := s.assignments.Create(ctx, a); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("doctor_id", doctorID.String()).
		Str("patient_id", patientID.String()).
		Msg("patient assigned")
	return a, nil
}

// Unassign removes the pair. Alerts sent while it existed are kept.
func (s *Service) Unassign(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	removed, err := s.assignments.Delete(ctx, doctorID, patientID)
	if err != nil {
		return false, err
	}
	s.logger.Info().
		Str("doctor_id", doctorID.String()).
		Str("patient_id", patientID.String()).
		Bool("applied", removed).
		Msg("patient unassigned")
	return removed, nil
}

func (s *Service) IsAssigned(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	return s.assignments.Exists(ctx, doctorID, patientID)
}

// Authorize is the gate for every doctor operation on a specific patient.
func (s *Service) Authorize(ctx context.Context, doctorID, patientID uuid.UUID) error {
	ok, err := s.assignments.Exists(ctx, doctorID, patientID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAssigned
	}
	return nil
}

// PatientsOf lists a doctor's patients with their activity band.
func (s *Service) PatientsOf(ctx context.Context, doctorID uuid.UUID) ([]*PatientSummary, error) {
	patients, err := s.assignments.ListPatients(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for _, p := range patients {
		p.Activity = ClassifyActivity(p.LastRecordAt, now)
	}
	return patients, nil
}

func (s *Service) DoctorsOf(ctx context.Context, patientID uuid.UUID) ([]*DoctorSummary, error) {
	return s.assignments.ListDoctors(ctx, patientID)
}

// CountAssignments returns the total number of doctor/patient pairs.
func (s *Service) CountAssignments(ctx context.Context) (int, error) {
	return s.assignments.Count(ctx)
}

func (s *Service) requireRole(ctx context.Context, id uuid.UUID, role identity.Role) error {
	a, err := s.accounts.GetByID(ctx, id)
	if errors.Is(err, identity.ErrAccountNotFound) {
		return fmt.Errorf("%w: no %s with id %s", identity.ErrUnknownAccount, role, id)
	}
	if err != nil {
		return err
	}
	if a.Role != role {
		return fmt.Errorf("%w: account %s is not a %s", identity.ErrUnknownAccount, id, role)
	}
	return nil
}
