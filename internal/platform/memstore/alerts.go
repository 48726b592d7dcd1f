package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/identity"
	"github.com/SwapnilGotsurve/health-care-system-sub000/internal/domain/inbox"
)

type alertRepo struct{ s *Store }

func (r alertRepo) Create(ctx context.Context, a *inbox.Alert) error {
	unlock, err := r.s.write(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if !r.s.exists(a.DoctorID, a.PatientID) {
		return identity.ErrUnknownAccount
	}
	a.ID = uuid.New()
	a.Seq = r.s.nextSeq()
	cp := *a
	cp.DoctorName, cp.PatientName = "", ""
	r.s.alerts[a.ID] = &cp
	return nil
}

func newestFirst(out []*inbox.Alert) []*inbox.Alert {
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Seq > out[j].Seq
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r alertRepo) ListBySender(ctx context.Context, q inbox.SenderQuery) ([]*inbox.Alert, error) {
	defer r.s.read(ctx)()

	var out []*inbox.Alert
	for _, a := range r.s.alerts {
		if a.DoctorID != q.DoctorID {
			continue
		}
		if q.State != "" && a.State != q.State {
			continue
		}
		if q.PatientID != uuid.Nil && a.PatientID != q.PatientID {
			continue
		}
		if !q.Since.IsZero() && a.CreatedAt.Before(q.Since) {
			continue
		}
		cp := *a
		cp.PatientName = r.s.accounts[a.PatientID].Name
		out = append(out, &cp)
	}
	return newestFirst(out), nil
}

func (r alertRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*inbox.Alert, error) {
	defer r.s.read(ctx)()

	var out []*inbox.Alert
	for _, a := range r.s.alerts {
		if a.PatientID != patientID {
			continue
		}
		cp := *a
		cp.DoctorName = r.s.accounts[a.DoctorID].Name
		out = append(out, &cp)
	}
	return newestFirst(out), nil
}

func (r alertRepo) MarkSeen(ctx context.Context, alertID, patientID uuid.UUID, at time.Time) (bool, error) {
	unlock, err := r.s.write(ctx)
	if err != nil {
		return false, err
	}
	defer unlock()

	a, ok := r.s.alerts[alertID]
	if !ok || a.PatientID != patientID || a.State != inbox.StateSent {
		return false, nil
	}
	a.State = inbox.StateSeen
	a.SeenAt = &at
	return true, nil
}

func (r alertRepo) CountUnseen(ctx context.Context, patientID uuid.UUID) (int, error) {
	defer r.s.read(ctx)()
	n := 0
	for _, a := range r.s.alerts {
		if a.PatientID == patientID && a.State == inbox.StateSent {
			n++
		}
	}
	return n, nil
}

func (r alertRepo) CountByState(ctx context.Context) (sent, seen int, err error) {
	defer r.s.read(ctx)()
	for _, a := range r.s.alerts {
		switch a.State {
		case inbox.StateSent:
			sent++
		case inbox.StateSeen:
			seen++
		}
	}
	return sent, seen, nil
}
