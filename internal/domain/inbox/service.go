package inbox

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/identity"
)

// Authorizer gates a doctor's access to one patient.
type Authorizer interface {
	Authorize(ctx context.Context, doctorID, patientID uuid.UUID) error
}

type Service struct {
	alerts AlertRepository
	authz  Authorizer
	now    func() time.Time
	logger zerolog.Logger
}

func NewService(alerts AlertRepository, authz Authorizer) *Service {
	return &Service{
		alerts: alerts,
		authz:  authz,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
}

func (s *Service) SetLogger(l zerolog.Logger) { s.logger = l }

func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Send creates an alert in state sent. The assignment is checked before the
// message so an unassigned doctor learns nothing else.
func (s *Service) Send(ctx context.Context, doctorID, patientID uuid.UUID, message string) (*Alert, error) {
	if err := s.authz.Authorize(ctx, doctorID, patientID); err != nil {
		return nil, err
	}
	message = strings.TrimSpace(message)
	if !utf8.ValidString(message) {
		return nil, ErrInvalidMessage
	}
	if n := utf8.RuneCountInString(message); n == 0 || n > MaxMessageLength {
		return nil, ErrInvalidMessage
	}

	a := &Alert{
		DoctorID:  doctorID,
		PatientID: patientID,
		Message:   message,
		State:     StateSent,
		CreatedAt: s.now().UTC(),
	}
	if err := s.alerts.Create(ctx, a); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("alert_id", a.ID.String()).
		Str("doctor_id", doctorID.String()).
		Str("patient_id", patientID.String()).
		Msg("alert sent")
	return a, nil
}

// ListSentBy returns the doctor's own alerts, newest first.
func (s *Service) ListSentBy(ctx context.Context, doctorID uuid.UUID, f Filter) ([]*Alert, error) {
	if f.State != "" && !f.State.Valid() {
		return nil, fmt.Errorf("%w: unknown state %q", identity.ErrInvalidInput, f.State)
	}
	return s.alerts.ListBySender(ctx, SenderQuery{
		DoctorID:  doctorID,
		State:     f.State,
		PatientID: f.PatientID,
		Since:     f.Window.Since(s.now()),
	})
}

// ListForPatient returns every alert addressed to the patient, newest first.
func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*Alert, error) {
	return s.alerts.ListByPatient(ctx, patientID)
}

// MarkSeen acknowledges an alert. Alerts that are already seen, missing, or
// addressed to someone else are left alone and reported as not applied.
func (s *Service) MarkSeen(ctx context.Context, patientID, alertID uuid.UUID) (bool, error) {
	applied, err := s.alerts.MarkSeen(ctx, alertID, patientID, s.now().UTC())
	if err != nil {
		return false, err
	}
	s.logger.Debug().
		Str("alert_id", alertID.String()).
		Str("patient_id", patientID.String()).
		Bool("applied", applied).
		Msg("alert mark seen")
	return applied, nil
}

func (s *Service) UnseenCount(ctx context.Context, patientID uuid.UUID) (int, error) {
	return s.alerts.CountUnseen(ctx, patientID)
}

// CountByState returns how many alerts are sent and seen in total.
func (s *Service) CountByState(ctx context.Context) (sent, seen int, err error) {
	return s.alerts.CountByState(ctx)
}
