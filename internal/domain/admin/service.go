package admin

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/identity"
)

type Service struct {
	accounts    identity.AccountRepository
	assignments Counter
	records     Counter
	alerts      AlertCounter
	tx          TxRunner
	logger      zerolog.Logger
}

func NewService(accounts identity.AccountRepository, assignments, records Counter, alerts AlertCounter) *Service {
	return &Service{
		accounts:    accounts,
		assignments: assignments,
		records:     records,
		alerts:      alerts,
		tx:          passThrough{},
		logger:      zerolog.Nop(),
	}
}

func (s *Service) SetLogger(l zerolog.Logger) { s.logger = l }

// SetTxRunner makes Stats read all counts inside one transaction.
func (s *Service) SetTxRunner(tx TxRunner) {
	if tx != nil {
		s.tx = tx
	}
}

// Approve moves a pending doctor to approved. Anything other than a pending
// doctor with that id is left untouched and reported as not applied.
func (s *Service) Approve(ctx context.Context, caller identity.Caller, doctorID uuid.UUID) (bool, error) {
	if !caller.IsAdmin() {
		return false, identity.ErrForbidden
	}
	applied, err := s.accounts.TransitionStatus(ctx, doctorID, identity.RoleDoctor,
		identity.StatusPending, identity.StatusApproved)
	if err != nil {
		return false, err
	}
	s.logDecision(caller, doctorID, DecisionApprove, applied)
	return applied, nil
}

// Reject deletes a pending doctor together with any assignments it already
// has. Approved doctors are never removed through here.
func (s *Service) Reject(ctx context.Context, caller identity.Caller, doctorID uuid.UUID) (bool, error) {
	if !caller.IsAdmin() {
		return false, identity.ErrForbidden
	}
	applied, err := s.accounts.DeleteMatching(ctx, doctorID, identity.RoleDoctor, identity.StatusPending)
	if err != nil {
		return false, err
	}
	s.logDecision(caller, doctorID, DecisionReject, applied)
	return applied, nil
}

func (s *Service) logDecision(caller identity.Caller, doctorID uuid.UUID, d Decision, applied bool) {
	ev := s.logger.Debug()
	if applied {
		ev = s.logger.Info()
	}
	ev.Str("doctor_id", doctorID.String()).
		Str("admin_id", caller.ID.String()).
		Str("decision", string(d)).
		Bool("applied", applied).
		Msg("doctor decision")
}

// PendingDoctors lists doctors awaiting approval, oldest first.
func (s *Service) PendingDoctors(ctx context.Context, caller identity.Caller, limit, offset int) ([]*identity.Account, int, error) {
	if !caller.IsAdmin() {
		return nil, 0, identity.ErrForbidden
	}
	return s.accounts.List(ctx, identity.ListFilter{
		Role:   identity.RoleDoctor,
		Status: identity.StatusPending,
	}, limit, offset)
}

func (s *Service) Stats(ctx context.Context, caller identity.Caller) (*Stats, error) {
	if !caller.IsAdmin() {
		return nil, identity.ErrForbidden
	}
	st := &Stats{}
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		counts := []struct {
			filter identity.ListFilter
			dst    *int
		}{
			{identity.ListFilter{Role: identity.RolePatient}, &st.Patients},
			{identity.ListFilter{Role: identity.RoleDoctor, Status: identity.StatusApproved}, &st.Doctors},
			{identity.ListFilter{Role: identity.RoleDoctor, Status: identity.StatusPending}, &st.PendingDoctors},
			{identity.ListFilter{Role: identity.RoleAdmin}, &st.Admins},
		}
		for _, c := range counts {
			n, err := s.accounts.Count(ctx, c.filter)
			if err != nil {
				return err
			}
			*c.dst = n
		}

		var err error
		if st.Assignments, err = s.assignments.Count(ctx); err != nil {
			return err
		}
		if st.Records, err = s.records.Count(ctx); err != nil {
			return err
		}
		st.AlertsSent, st.AlertsSeen, err = s.alerts.CountByState(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}
