package vitals

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/identity"
)

// DefaultPageSize is how many records History fetches per round trip.
const DefaultPageSize = 50

// AccountLookup resolves the owner of a submission.
type AccountLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*identity.Account, error)
}

// Authorizer gates doctor access to a patient's records.
type Authorizer interface {
	Authorize(ctx context.Context, doctorID, patientID uuid.UUID) error
}

type Service struct {
	records  RecordRepository
	accounts AccountLookup
	authz    Authorizer
	now      func() time.Time
	logger   zerolog.Logger
}

func NewService(records RecordRepository, accounts AccountLookup, authz Authorizer) *Service {
	return &Service{
		records:  records,
		accounts: accounts,
		authz:    authz,
		now:      time.Now,
		logger:   zerolog.Nop(),
	}
}

func (s *Service) SetLogger(l zerolog.Logger) { s.logger = l }

func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Submit stores a patient's own measurements stamped with the service clock.
func (s *Service) Submit(ctx context.Context, caller identity.Caller, raw RawVitals) (*HealthRecord, error) {
	if caller.Role != identity.RolePatient {
		return nil, fmt.Errorf("%w: only patients record vitals", identity.ErrForbidden)
	}
	v, reasons := Validate(raw)
	if len(reasons) > 0 {
		return nil, &ValidationError{Reasons: reasons}
	}
	return s.store(ctx, caller.ID, v, s.now())
}

// Backfill stores measurements with an explicit timestamp. It is meant for
// seeding and tests and is not exposed over HTTP.
func (s *Service) Backfill(ctx context.Context, patientID uuid.UUID, v Vitals, at time.Time) (*HealthRecord, error) {
	if reasons := ValidateVitals(v); len(reasons) > 0 {
		return nil, &ValidationError{Reasons: reasons}
	}
	return s.store(ctx, patientID, v, at)
}

func (s *Service) store(ctx context.Context, patientID uuid.UUID, v Vitals, at time.Time) (*HealthRecord, error) {
	owner, err := s.accounts.GetByID(ctx, patientID)
	if errors.Is(err, identity.ErrAccountNotFound) || (err == nil && owner.Role != identity.RolePatient) {
		return nil, fmt.Errorf("%w: no patient with id %s", identity.ErrUnknownAccount, patientID)
	}
	if err != nil {
		return nil, err
	}

	r := &HealthRecord{
		PatientID: patientID,
		Systolic:  v.Systolic,
		Diastolic: v.Diastolic,
		Sugar:     v.Sugar,
		HeartRate: v.HeartRate,
		CreatedAt: at.UTC(),
	}
	if err := s.records.Create(ctx, r); err != nil {
		return nil, err
	}
	r.Wellness = Classify(v)
	s.logger.Debug().
		Str("patient_id", patientID.String()).
		Str("record_id", r.ID.String()).
		Str("wellness", string(r.Wellness)).
		Msg("health record stored")
	return r, nil
}

// History yields a patient's records newest first, fetching pageSize at a
// time. Each call to the returned sequence starts over from the newest record.
func (s *Service) History(ctx context.Context, patientID uuid.UUID, pageSize int) iter.Seq2[*HealthRecord, error] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return func(yield func(*HealthRecord, error) bool) {
		var cursor Cursor
		for {
			page, err := s.records.ListByPatientAfter(ctx, patientID, cursor, pageSize)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, r := range page {
				r.Wellness = Classify(r.Vitals())
				if !yield(r, nil) {
					return
				}
			}
			if len(page) < pageSize {
				return
			}
			cursor = CursorOf(page[len(page)-1])
		}
	}
}

// Page returns one offset page of a patient's history in History order.
func (s *Service) Page(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*HealthRecord, int, error) {
	records, total, err := s.records.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, r := range records {
		r.Wellness = Classify(r.Vitals())
	}
	return records, total, nil
}

// HistoryForDoctor is Page behind the care-team gate.
func (s *Service) HistoryForDoctor(ctx context.Context, doctorID, patientID uuid.UUID, limit, offset int) ([]*HealthRecord, int, error) {
	if err := s.authz.Authorize(ctx, doctorID, patientID); err != nil {
		return nil, 0, err
	}
	return s.Page(ctx, patientID, limit, offset)
}

// Summary walks the full history and tallies classifications.
func (s *Service) Summary(ctx context.Context, patientID uuid.UUID) (*Summary, error) {
	sum := &Summary{PatientID: patientID}
	for r, err := range s.History(ctx, patientID, DefaultPageSize) {
		if err != nil {
			return nil, err
		}
		if sum.Latest == nil {
			sum.Latest = r
		}
		sum.Total++
		if r.Wellness == WellnessAlert {
			sum.Alert++
		} else {
			sum.Healthy++
		}
	}
	return sum, nil
}

// CountRecords returns the number of stored records across all patients.
func (s *Service) CountRecords(ctx context.Context) (int, error) {
	return s.records.Count(ctx)
}
